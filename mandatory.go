package scpi

// mandatoryCommands builds the IEEE 488.2 common command tree every
// Engine carries regardless of device: *CLS, *ESE[?], *ESR?, *IDN?,
// *OPC[?], *RST, *SRE[?], *STB?, *TST?, *WAI. Names omit the leading
// '*'; the Lexer already splits it into its own CommonPrefix token, so
// the tree only ever sees the bare mnemonic.
func mandatoryCommands() *Node {
	return Root(
		Leaf("CLS", Event(func(dev Device, ctx *Context, args *Arguments) error {
			return dev.ExecCLS()
		})),
		Leaf("ESE", Both(
			func(dev Device, ctx *Context, args *Arguments) error {
				sd, ok := dev.(StatusDevice)
				if !ok {
					return nil
				}
				v, err := args.Int64(true)
				if err != nil {
					return err
				}
				sd.SetESE(uint8(v))
				return nil
			},
			func(dev Device, ctx *Context, args *Arguments, resp *ResponseUnit) error {
				sd, ok := dev.(StatusDevice)
				if !ok {
					resp.Data(uint8(0)).Finish()
					return nil
				}
				resp.Data(sd.ESE()).Finish()
				return nil
			},
		)),
		Leaf("ESR", Query(func(dev Device, ctx *Context, args *Arguments, resp *ResponseUnit) error {
			sd, ok := dev.(StatusDevice)
			if !ok {
				resp.Data(uint8(0)).Finish()
				return nil
			}
			esr := sd.ESR()
			sd.SetESR(0)
			resp.Data(esr).Finish()
			return nil
		})),
		Leaf("OPC", Both(
			func(dev Device, ctx *Context, args *Arguments) error {
				return dev.ExecOPC()
			},
			func(dev Device, ctx *Context, args *Arguments, resp *ResponseUnit) error {
				// This engine dispatches strictly sequentially: there is
				// never a pending operation by the time the query runs.
				resp.Data(true).Finish()
				return nil
			},
		)),
		Leaf("RST", Event(func(dev Device, ctx *Context, args *Arguments) error {
			return dev.ExecRST()
		})),
		Leaf("SRE", Both(
			func(dev Device, ctx *Context, args *Arguments) error {
				sd, ok := dev.(StatusDevice)
				if !ok {
					return nil
				}
				v, err := args.Int64(true)
				if err != nil {
					return err
				}
				sd.SetSRE(uint8(v))
				return nil
			},
			func(dev Device, ctx *Context, args *Arguments, resp *ResponseUnit) error {
				sd, ok := dev.(StatusDevice)
				if !ok {
					resp.Data(uint8(0)).Finish()
					return nil
				}
				resp.Data(sd.SRE()).Finish()
				return nil
			},
		)),
		Leaf("STB", Query(func(dev Device, ctx *Context, args *Arguments, resp *ResponseUnit) error {
			sd, ok := dev.(StatusDevice)
			if !ok {
				resp.Data(uint8(0)).Finish()
				return nil
			}
			stb := sd.ReadSTB()
			if ctx.MAV() {
				stb |= 0x10
			}
			resp.Data(stb).Finish()
			return nil
		})),
		Leaf("TST", Query(func(dev Device, ctx *Context, args *Arguments, resp *ResponseUnit) error {
			if err := dev.ExecTST(); err != nil {
				if code, ok := err.(ErrorCode); ok {
					resp.Data(int16(code)).Finish()
					return nil
				}
				resp.Data(int16(SelfTestFailed)).Finish()
				return nil
			}
			resp.Data(int16(0)).Finish()
			return nil
		})),
		Leaf("WAI", Event(func(dev Device, ctx *Context, args *Arguments) error {
			// No overlapped operations exist in a strictly sequential
			// engine, so there is nothing to wait for.
			return nil
		})),
	)
}

// IdnLeaf builds the *IDN? node from a device's identification
// strings; devices supply it to NewEngine's caller because, unlike the
// rest of mandatoryCommands, its response is device data rather than
// fixed IEEE 488.2 behavior.
func IdnLeaf(manufacturer, model, serial, firmware string) *Node {
	return Leaf("IDN", Query(func(dev Device, ctx *Context, args *Arguments, resp *ResponseUnit) error {
		resp.Data(Character(manufacturer)).
			Data(Character(model)).
			Data(Character(serial)).
			Data(Character(firmware)).
			Finish()
		return nil
	}))
}

package scpi

// registerMask clears bit 15, which IEEE 488.2 reserves (summary
// registers report 0 through 32767).
const registerMask uint16 = 0x7FFF

// EventRegister is one SCPI-1999 status structure: a condition
// register reflecting live instrument state, a sticky event register
// latching transitions, an enable mask selecting which event bits
// summarize upward, and positive/negative transition filters
// controlling which condition transitions latch an event bit.
type EventRegister struct {
	Condition uint16
	Event     uint16
	Enable    uint16
	PtrFilter uint16
	NtrFilter uint16
}

// SetCondition updates the condition register and latches event bits
// for any bit whose transition matches the transition filters: a 0->1
// transition on a bit set in PtrFilter, or a 1->0 transition on a bit
// set in NtrFilter.
func (r *EventRegister) SetCondition(cond uint16) {
	rising := ^r.Condition & cond
	falling := r.Condition &^ cond
	r.Event |= (rising & r.PtrFilter) | (falling & r.NtrFilter)
	r.Condition = cond
}

// Summary reports whether this register's masked event bits, ANDed
// with its enable mask, are nonzero -- the bit this register
// contributes to its owner's status byte.
func (r *EventRegister) Summary() bool {
	return (r.Event & r.Enable & registerMask) != 0
}

// Reset zeroes the enable and transition filters, leaving condition
// and event untouched; this is STATus:PRESet's standard effect on a
// SCPI-1999 event register (SCPI-99 Volume 2 §20.2).
func (r *EventRegister) Reset() {
	r.Enable = 0
	r.PtrFilter = 0
	r.NtrFilter = 0
}

// StatusCommands builds the STATus:OPERation and STATus:QUEStionable
// subtrees plus STATus:PRESet, sharing one handler set parameterized
// by which register each operates on. Device command trees that want
// SCPI-1999 status reporting include this alongside their own branches.
func StatusCommands() *Node {
	return Branch("STATus",
		registerSubtree("OPERation", func(d StatusDevice) *EventRegister { return d.OperationRegister() }),
		registerSubtree("QUEStionable", func(d StatusDevice) *EventRegister { return d.QuestionableRegister() }),
		Leaf("PRESet", Event(func(dev Device, ctx *Context, args *Arguments) error {
			if sd, ok := dev.(StatusDevice); ok {
				sd.OperationRegister().Reset()
				sd.QuestionableRegister().Reset()
			}
			return dev.ExecPreset()
		})),
	)
}

func registerSubtree(name string, reg func(StatusDevice) *EventRegister) *Node {
	asStatus := func(dev Device) *EventRegister {
		sd, ok := dev.(StatusDevice)
		if !ok {
			return &EventRegister{}
		}
		return reg(sd)
	}
	return BranchWith(name,
		nil,
		DefaultLeaf("EVENt", Query(func(dev Device, ctx *Context, args *Arguments, resp *ResponseUnit) error {
			r := asStatus(dev)
			ev := r.Event & registerMask
			r.Event = 0
			resp.Data(ev).Finish()
			return nil
		})),
		Leaf("CONDition", Query(func(dev Device, ctx *Context, args *Arguments, resp *ResponseUnit) error {
			resp.Data(asStatus(dev).Condition & registerMask).Finish()
			return nil
		})),
		Leaf("ENABle", Both(
			func(dev Device, ctx *Context, args *Arguments) error {
				v, err := args.NextNumeric(true)
				if err != nil {
					return err
				}
				asStatus(dev).Enable = uint16(v.Value) & registerMask
				return nil
			},
			func(dev Device, ctx *Context, args *Arguments, resp *ResponseUnit) error {
				resp.Data(asStatus(dev).Enable & registerMask).Finish()
				return nil
			},
		)),
		Leaf("PTRansition", Both(
			func(dev Device, ctx *Context, args *Arguments) error {
				v, err := args.NextNumeric(true)
				if err != nil {
					return err
				}
				asStatus(dev).PtrFilter = uint16(v.Value) & registerMask
				return nil
			},
			func(dev Device, ctx *Context, args *Arguments, resp *ResponseUnit) error {
				resp.Data(asStatus(dev).PtrFilter & registerMask).Finish()
				return nil
			},
		)),
		Leaf("NTRansition", Both(
			func(dev Device, ctx *Context, args *Arguments) error {
				v, err := args.NextNumeric(true)
				if err != nil {
					return err
				}
				asStatus(dev).NtrFilter = uint16(v.Value) & registerMask
				return nil
			},
			func(dev Device, ctx *Context, args *Arguments, resp *ResponseUnit) error {
				resp.Data(asStatus(dev).NtrFilter & registerMask).Finish()
				return nil
			},
		)),
	)
}

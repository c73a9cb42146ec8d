// Package demo implements a small in-memory instrument used by
// cmd/scpi-demo to exercise the engine end to end: a voltage/current
// source and measurement subsystem plus the SCPI-1999 status
// substrate and error queue.
package demo

import (
	scpi "github.com/scpi-go/scpi-rs"
)

const errorQueueCapacity = 10

// Instrument is a toy StatusDevice: voltage/current are settable and
// echoed back by MEASure, and OUTPut just tracks a bool. It exists to
// give the demo CLI something real to dispatch against.
type Instrument struct {
	voltage float64
	current float64
	output  bool

	esr, ese, sre uint8
	errors        []scpi.Error

	oper scpi.EventRegister
	ques scpi.EventRegister
}

// NewInstrument returns an Instrument in its post-*RST state.
func NewInstrument() *Instrument {
	d := &Instrument{}
	_ = d.ExecRST()
	return d
}

func (d *Instrument) ExecCLS() error {
	d.esr = 0
	d.errors = d.errors[:0]
	d.oper.Event = 0
	d.ques.Event = 0
	return nil
}

func (d *Instrument) ExecRST() error {
	d.voltage = 0
	d.current = 0
	d.output = false
	return nil
}

func (d *Instrument) ExecOPC() error { return nil }
func (d *Instrument) ExecTST() error { return nil }

func (d *Instrument) ExecPreset() error { return nil }

func (d *Instrument) ESR() uint8      { return d.esr }
func (d *Instrument) SetESR(v uint8)  { d.esr = v }
func (d *Instrument) ESE() uint8      { return d.ese }
func (d *Instrument) SetESE(v uint8)  { d.ese = v }
func (d *Instrument) SRE() uint8      { return d.sre }
func (d *Instrument) SetSRE(v uint8)  { d.sre = v }

// ReadSTB composes the status byte from everything the device owns:
// bit 7 OPERation summary, bit 5 Event Status summary, bit 3
// QUEStionable summary, bit 2 error-queue-not-empty. The Engine ORs in
// bit 4 (MAV) itself; see Context.MAV.
func (d *Instrument) ReadSTB() uint8 {
	var stb uint8
	if d.oper.Summary() {
		stb |= 1 << 7
	}
	if d.esr&d.ese != 0 {
		stb |= 1 << 5
	}
	if d.ques.Summary() {
		stb |= 1 << 3
	}
	if len(d.errors) > 0 {
		stb |= 1 << 2
	}
	return stb
}

func (d *Instrument) ErrorEnqueue(e scpi.Error) {
	if len(d.errors) >= errorQueueCapacity {
		d.errors[len(d.errors)-1] = scpi.FromCode(scpi.QueueOverflow)
		return
	}
	d.errors = append(d.errors, e)
}

func (d *Instrument) ErrorDequeue() scpi.Error {
	if len(d.errors) == 0 {
		return scpi.FromCode(scpi.NoError)
	}
	e := d.errors[0]
	d.errors = d.errors[1:]
	return e
}

func (d *Instrument) ErrorLen() int { return len(d.errors) }
func (d *Instrument) ErrorClear()   { d.errors = d.errors[:0] }

func (d *Instrument) OperationRegister() *scpi.EventRegister    { return &d.oper }
func (d *Instrument) QuestionableRegister() *scpi.EventRegister { return &d.ques }

// Tree builds the demo's device-specific command tree: SOURce, MEASure,
// OUTPut, and SYSTem:ERRor, plus the SCPI-1999 status substrate.
func Tree() *scpi.Node {
	return scpi.Root(
		scpi.Branch("SOURce",
			scpi.BranchWith("VOLTage", scpi.Both(
				func(dev scpi.Device, ctx *scpi.Context, args *scpi.Arguments) error {
					v, err := args.Float64(true)
					if err != nil {
						return err
					}
					dev.(*Instrument).voltage = v
					return nil
				},
				func(dev scpi.Device, ctx *scpi.Context, args *scpi.Arguments, resp *scpi.ResponseUnit) error {
					resp.Data(dev.(*Instrument).voltage).Finish()
					return nil
				},
			)),
			scpi.BranchWith("CURRent", scpi.Both(
				func(dev scpi.Device, ctx *scpi.Context, args *scpi.Arguments) error {
					v, err := args.Float64(true)
					if err != nil {
						return err
					}
					dev.(*Instrument).current = v
					return nil
				},
				func(dev scpi.Device, ctx *scpi.Context, args *scpi.Arguments, resp *scpi.ResponseUnit) error {
					resp.Data(dev.(*Instrument).current).Finish()
					return nil
				},
			)),
		),
		scpi.Branch("MEASure",
			scpi.Leaf("VOLTage", scpi.Query(func(dev scpi.Device, ctx *scpi.Context, args *scpi.Arguments, resp *scpi.ResponseUnit) error {
				resp.Data(dev.(*Instrument).voltage).Finish()
				return nil
			})),
			scpi.Leaf("CURRent", scpi.Query(func(dev scpi.Device, ctx *scpi.Context, args *scpi.Arguments, resp *scpi.ResponseUnit) error {
				resp.Data(dev.(*Instrument).current).Finish()
				return nil
			})),
		),
		scpi.Leaf("OUTPut", scpi.Both(
			func(dev scpi.Device, ctx *scpi.Context, args *scpi.Arguments) error {
				v, err := args.Bool(true)
				if err != nil {
					return err
				}
				dev.(*Instrument).output = v
				return nil
			},
			func(dev scpi.Device, ctx *scpi.Context, args *scpi.Arguments, resp *scpi.ResponseUnit) error {
				resp.Data(dev.(*Instrument).output).Finish()
				return nil
			},
		)),
		scpi.Branch("SYSTem",
			scpi.BranchWith("ERRor", nil,
				scpi.DefaultLeaf("NEXT", scpi.Query(func(dev scpi.Device, ctx *scpi.Context, args *scpi.Arguments, resp *scpi.ResponseUnit) error {
					e := dev.(*Instrument).ErrorDequeue()
					msg := e.Code.DefaultMessage()
					if e.Info != "" {
						msg += "; " + e.Info
					}
					resp.Data(int16(e.Code)).Data(msg).Finish()
					return nil
				})),
				scpi.Leaf("COUNt", scpi.Query(func(dev scpi.Device, ctx *scpi.Context, args *scpi.Arguments, resp *scpi.ResponseUnit) error {
					resp.Data(int32(dev.(*Instrument).ErrorLen())).Finish()
					return nil
				})),
			),
		),
		scpi.StatusCommands(),
	)
}

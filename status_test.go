package scpi

import "testing"

func TestEventRegisterRisingEdgeLatchesPTR(t *testing.T) {
	var r EventRegister
	r.PtrFilter = 0x01
	r.NtrFilter = 0x02

	r.SetCondition(0x01) // bit0 rises 0->1, filtered by PTR
	if r.Event != 0x01 {
		t.Errorf("Event = %#x, want 0x01", r.Event)
	}
	if r.Condition != 0x01 {
		t.Errorf("Condition = %#x, want 0x01", r.Condition)
	}
}

func TestEventRegisterFallingEdgeLatchesNTR(t *testing.T) {
	var r EventRegister
	r.NtrFilter = 0x02
	r.Condition = 0x02 // bit1 already set

	r.SetCondition(0x00) // bit1 falls 1->0, filtered by NTR
	if r.Event != 0x02 {
		t.Errorf("Event = %#x, want 0x02", r.Event)
	}
}

func TestEventRegisterUnfilteredTransitionDoesNotLatch(t *testing.T) {
	var r EventRegister
	r.PtrFilter = 0x00
	r.NtrFilter = 0x00

	r.SetCondition(0x01)
	r.SetCondition(0x00)
	if r.Event != 0 {
		t.Errorf("Event = %#x, want 0 (no filter bits set)", r.Event)
	}
}

func TestEventRegisterSummaryRequiresEnable(t *testing.T) {
	var r EventRegister
	r.Event = 0x04
	if r.Summary() {
		t.Error("Summary should be false while Enable is zero")
	}
	r.Enable = 0x04
	if !r.Summary() {
		t.Error("Summary should be true once the event bit is enabled")
	}
}

func TestEventRegisterSummaryMasksReservedBit(t *testing.T) {
	var r EventRegister
	r.Event = 1 << 15
	r.Enable = 1 << 15
	if r.Summary() {
		t.Error("bit 15 is reserved and must not contribute to Summary")
	}
}

func TestEventRegisterResetPreservesConditionAndEvent(t *testing.T) {
	var r EventRegister
	r.Condition = 0x03
	r.Event = 0x03
	r.Enable = 0x03
	r.PtrFilter = 0x03
	r.NtrFilter = 0x03

	r.Reset()
	if r.Enable != 0 || r.PtrFilter != 0 || r.NtrFilter != 0 {
		t.Error("Reset should zero Enable and both transition filters")
	}
	if r.Condition != 0x03 || r.Event != 0x03 {
		t.Error("Reset should not touch Condition or Event")
	}
}

type statusOnlyDevice struct {
	fakeDevice
	presetCalled bool
}

func (d *statusOnlyDevice) ExecPreset() error {
	d.presetCalled = true
	return nil
}

func TestStatusPresetClearsEnableAndFilters(t *testing.T) {
	dev := &statusOnlyDevice{}
	dev.oper.Enable = 0x7F
	dev.ques.PtrFilter = 0x7F

	tree := Root(StatusCommands())
	e := NewEngine(tree, "x", "y", "0", "0")

	dispatch(e, dev, "STAT:PRES\n")

	if dev.oper.Enable != 0 || dev.ques.PtrFilter != 0 {
		t.Error("STATus:PRESet should reset both registers")
	}
	if !dev.presetCalled {
		t.Error("STATus:PRESet should also invoke the device's ExecPreset")
	}
}

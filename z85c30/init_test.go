package z85c30

import (
	"testing"

	"github.com/BertoldVdb/go-z85c30/console"
	"github.com/BertoldVdb/go-z85c30/z85c30/scctest"
)

type regWrite struct {
	reg   uint8
	value uint8
}

var programSequence = []regWrite{
	{4, 0x44},
	{3, 0xC0},
	{5, 0x60},
	{10, 0x00},
	{11, 0x56},
	{12, 0x1E},
	{13, 0x00},
	{14, 0x03},
	{15, 0x20},
	{0, 0x10},
	{0, 0x30},
	{3, 0xC1},
	{5, 0x68},
	{1, 0x00},
	{0, 0x80},
	{0, 0x10},
}

func checkWrites(t *testing.T, got []scctest.Op, want []regWrite) {
	if len(got) != len(want) {
		t.Fatalf("Got %d register writes, wanted %d: %v", len(got), len(want), got)
	}
	for i := range want {
		if got[i].Reg != want[i].reg || got[i].Value != want[i].value {
			t.Errorf("Write %d: got %v, wanted r%d=%#02x", i, got[i], want[i].reg, want[i].value)
		}
	}
}

func TestBaudDivisor(t *testing.T) {
	if d, ok := baudDivisor(testClock, testBaud); !ok || d != 0x1E {
		t.Error("Wrong divisor for 9600 baud", d, ok)
	}
	if d, ok := baudDivisor(14745600, 115200); !ok || d != 2 {
		t.Error("Wrong divisor for 115200 baud", d, ok)
	}
	if _, ok := baudDivisor(testClock, 0); ok {
		t.Error("Zero baud accepted")
	}
	if _, ok := baudDivisor(1000, 9600); ok {
		t.Error("Unreachable baud accepted")
	}
	if _, ok := baudDivisor(0xFFFFFFFF, 1); ok {
		t.Error("Divisor above 16 bits accepted")
	}
}

func TestPolledInitializeSequence(t *testing.T) {
	rig := newTestRig(console.FlowNone, console.FlowNone, 0)
	d := NewPolledDriver(rig.host, rig.options())

	if err := d.Initialize(0); err != nil {
		t.Fatal(err)
	}
	ops := rig.chip.Ops()

	if len(ops) == 0 || ops[0].Write || ops[0].Reg != rr0 {
		t.Fatal("Channel reset must start with a status read", ops)
	}
	checkWrites(t, scctest.RegisterWrites(ops, "A"), append([]regWrite{{9, 0x80}}, programSequence...))

	if err := d.Initialize(1); err != nil {
		t.Fatal(err)
	}
	ops = rig.chip.Ops()
	checkWrites(t, scctest.RegisterWrites(ops, "B"), append([]regWrite{{9, 0x40}}, programSequence...))

	if rig.irqs.installs != 0 {
		t.Error("Polled mode installed a vector")
	}
	if rig.chip.Register("A", wr1) != 0 {
		t.Error("Polled mode enabled interrupts")
	}
}

func TestInterruptInitializeSequence(t *testing.T) {
	rig := newTestRig(console.FlowNone, console.FlowRTSCTS, 0)
	d := NewInterruptDriver(rig.host, rig.options())

	if err := d.Initialize(0); err != nil {
		t.Fatal(err)
	}
	want := append([]regWrite{{9, 0x80}}, programSequence...)
	want = append(want,
		regWrite{5, 0x68},
		regWrite{1, 0x13},
		regWrite{2, 0x00},
		regWrite{9, 0x08},
		regWrite{0, 0x10})
	checkWrites(t, scctest.RegisterWrites(rig.chip.Ops(), "A"), want)

	/* RTS/CTS owns RTS: no modem control write before enabling */
	if err := d.Initialize(1); err != nil {
		t.Fatal(err)
	}
	want = append([]regWrite{{9, 0x40}}, programSequence...)
	want = append(want,
		regWrite{1, 0x13},
		regWrite{2, 0x00},
		regWrite{9, 0x08},
		regWrite{0, 0x10})
	checkWrites(t, scctest.RegisterWrites(rig.chip.Ops(), "B"), want)

	if rig.irqs.installs != 1 {
		t.Error("Vector must be installed exactly once per chip", rig.irqs.installs)
	}
	if !rig.irqs.Installed(testVector) {
		t.Error("Vector not installed")
	}

	p := d.mustLookup(0)
	if p.active || !p.tx.IsEmpty() {
		t.Error("Fresh port must be idle with an empty ring")
	}
}

func TestInitializeErrors(t *testing.T) {
	rig := newTestRig(console.FlowNone, console.FlowNone, 0)

	d := NewInterruptDriver(rig.host, &Options{})
	if err := d.Initialize(0); err != ErrorNoInterrupts {
		t.Error("Missing vector table not reported", err)
	}

	d = NewInterruptDriver(rig.host, rig.options())
	if err := d.Initialize(2); err != console.ErrorNoSuchPort {
		t.Error("Bad minor not reported", err)
	}

	if _, err := d.Write(0, []byte("x")); err != ErrorNotInitialized {
		t.Error("Write on uninitialized port returned", err)
	}
	if err := d.FirstOpen(0); err != ErrorNotInitialized {
		t.Error("Open on uninitialized port returned", err)
	}

	if err := d.Initialize(0); err != nil {
		t.Fatal(err)
	}
	if err := d.Initialize(0); err != ErrorInitialized {
		t.Error("Double initialization returned", err)
	}

	rig.host.configs[1].Bus = nil
	if err := d.Initialize(1); err != ErrorNoBus {
		t.Error("Missing bus returned", err)
	}

	rig.host.configs[1].Bus = rig.chip
	rig.host.configs[1].Baud = 0
	if err := d.Initialize(1); err != ErrorBaud {
		t.Error("Zero baud returned", err)
	}

	defer func() {
		if recover() == nil {
			t.Error("WritePolled on uninitialized port did not panic")
		}
	}()
	d.WritePolled(1, 'x')
}

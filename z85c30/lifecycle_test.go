package z85c30

import (
	"bytes"
	"testing"
	"time"

	"github.com/BertoldVdb/go-z85c30/console"
	"github.com/BertoldVdb/go-z85c30/z85c30/scctest"
)

func TestProbe(t *testing.T) {
	rig := newTestRig(console.FlowNone, console.FlowNone, 0)
	d := NewPolledDriver(rig.host, nil)

	if !d.Probe(0) || !d.Probe(1) {
		t.Error("Probe failed")
	}
	if d.OutputUsesInterrupts() {
		t.Error("Output completion is not interrupt driven")
	}
	if d.SetAttributes(0, &console.Attributes{Baud: 19200}) != console.ErrorNotSupported {
		t.Error("SetAttributes must not be supported")
	}
}

func TestOpenCloseDTR(t *testing.T) {
	rig := newTestRig(console.FlowNone, console.FlowDTRCTS, 0)
	d := rig.polledDriver(t)

	if err := d.FirstOpen(0); err != nil {
		t.Fatal(err)
	}
	if rig.chip.Register("A", wr5)&wr5DTR == 0 {
		t.Error("Open did not assert DTR")
	}
	if err := d.LastClose(0); err != nil {
		t.Fatal(err)
	}
	if rig.chip.Register("A", wr5)&wr5DTR != 0 {
		t.Error("Close did not negate DTR")
	}

	/* DTR/CTS flow control owns DTR */
	d.FirstOpen(1)
	d.LastClose(1)
	for _, op := range scctest.RegisterWrites(rig.chip.Ops(), "B") {
		if op.Reg == wr5 {
			t.Error("Open/close touched the modem control register under DTR/CTS", op)
		}
	}
}

func TestWritePolledWaitsForTransmitter(t *testing.T) {
	rig := newTestRig(console.FlowNone, console.FlowNone, 0)
	rig.chip.TxBusyReads = 3
	d := rig.polledDriver(t)

	d.WritePolled(0, 'a')
	d.WritePolled(0, 'b')

	ops := rig.chip.Ops()
	dataSeen := 0
	statusBetween := 0
	for _, op := range ops {
		if op.Data && op.Write {
			dataSeen++
			continue
		}
		if dataSeen == 1 && !op.Write && op.Reg == rr0 {
			statusBetween++
		}
	}

	if got := scctest.DataWrites(ops, "A"); !bytes.Equal(got, []byte("ab")) {
		t.Error("Data writes", got)
	}
	if statusBetween != 4 {
		t.Error("Second write did not wait for the transmitter, status reads:", statusBetween)
	}
}

func TestPolledReadWrite(t *testing.T) {
	rig := newTestRig(console.FlowNone, console.FlowNone, 0)
	rig.chip.AutoDrain = true
	d := rig.polledDriver(t)

	if _, ok := d.ReadPolled(1); ok {
		t.Error("Read returned data on idle line")
	}

	rig.chip.Receive("B", []byte("q"))
	if c, ok := d.ReadPolled(1); !ok || c != 'q' {
		t.Error("Read returned", c, ok)
	}
	if _, ok := d.ReadPolled(5); ok {
		t.Error("Read on bad minor returned data")
	}

	n, err := d.Write(1, []byte("polled"))
	if err != nil || n != 6 {
		t.Error("Write returned", n, err)
	}
	if got := rig.chip.Sent("B"); !bytes.Equal(got, []byte("polled")) {
		t.Error("Sent", got)
	}
	if d.mustLookup(1).tx != nil {
		t.Error("Polled mode must not use the transmit ring")
	}
}

func TestWriteInterruptDelivers(t *testing.T) {
	rig := newTestRig(console.FlowNone, console.FlowNone, 4)
	rig.chip.AutoDrain = true
	rig.chip.SetCTS("A", true)
	d := rig.interruptDriver(t)

	done := make(chan struct{})
	go rig.raiseUntil(done)
	defer close(done)

	msg := []byte("hello world, this is longer than the ring")
	n, err := d.Write(0, msg)
	if err != nil || n != len(msg) {
		t.Fatal("Write returned", n, err)
	}

	waitFor(t, "transmission", func() bool {
		return bytes.Equal(rig.chip.Sent("A"), msg)
	})

	p := d.mustLookup(0)
	waitFor(t, "idle", func() bool {
		var active bool
		p.level.Protect(func() { active = p.active })
		return !active
	})

	if rig.chip.Register("A", wr5)&wr5RTS != 0 {
		t.Error("RTS still asserted after draining")
	}
	if len(rig.chip.Sent("B")) != 0 {
		t.Error("Channel B transmitted")
	}
}

func TestWriteKickStartsWhenIdle(t *testing.T) {
	rig := newTestRig(console.FlowNone, console.FlowNone, 0)
	rig.chip.SetCTS("A", true)
	d := rig.interruptDriver(t)

	if _, err := d.Write(0, []byte("ok")); err != nil {
		t.Fatal(err)
	}

	/* No interrupt delivered: the first byte went out from the write call */
	if got := rig.chip.Sent("A"); !bytes.Equal(got, []byte("o")) {
		t.Error("Sent", got)
	}

	p := d.mustLookup(0)
	if !p.active || p.tx.Len() != 1 {
		t.Error("Expected an active transmission with one byte queued")
	}
	if p.modemCtrl&wr5RTS == 0 {
		t.Error("RTS not asserted while transmitting")
	}
}

func TestFlushBlocksUntilDrained(t *testing.T) {
	rig := newTestRig(console.FlowNone, console.FlowNone, 0)
	rig.chip.AutoDrain = true
	d := rig.interruptDriver(t)

	d.FirstOpen(0)

	/* Peer holds CTS off: the bytes stay queued */
	d.Write(0, []byte("wait"))

	flushed := make(chan struct{})
	go func() {
		d.LastClose(0)
		close(flushed)
	}()

	select {
	case <-flushed:
		t.Fatal("Flush returned with output pending")
	case <-time.After(50 * time.Millisecond):
	}

	rig.chip.SetCTS("A", true)
	go rig.raiseUntil(flushed)

	select {
	case <-flushed:
	case <-time.After(2 * time.Second):
		t.Fatal("Flush did not return after CTS was asserted")
	}

	if got := rig.chip.Sent("A"); !bytes.Equal(got, []byte("wait")) {
		t.Error("Sent", got)
	}
	if rig.chip.Register("A", wr5)&wr5DTR != 0 {
		t.Error("Flush did not close the port")
	}
}

func TestFlowProvider(t *testing.T) {
	rig := newTestRig(console.FlowRTSCTS, console.FlowNone, 0)
	d := rig.interruptDriver(t)

	if d.Flow(1) != nil {
		t.Error("Port without flow control returned a throttle")
	}

	f := d.Flow(0)
	if f == nil {
		t.Fatal("No throttle for RTS/CTS port")
	}

	f.StartRemoteTx()
	if rig.chip.Register("A", wr5)&wr5RTS == 0 {
		t.Error("Start did not assert RTS")
	}
	f.StopRemoteTx()
	if rig.chip.Register("A", wr5)&wr5RTS != 0 {
		t.Error("Stop did not negate RTS")
	}
}

func TestRTSCTSStartsWithRTSNegated(t *testing.T) {
	rig := newTestRig(console.FlowRTSCTS, console.FlowNone, 0)
	d := rig.interruptDriver(t)

	if err := d.FirstOpen(0); err != nil {
		t.Fatal(err)
	}
	if rig.chip.Register("A", wr5)&wr5RTS != 0 {
		t.Error("RTS asserted by initialize or open")
	}

	/* Only the input throttle drives RTS */
	flow := d.Flow(0)
	flow.StopRemoteTx()
	flow.StartRemoteTx()
	if rig.chip.Register("A", wr5)&wr5RTS == 0 {
		t.Error("RTS not asserted after the throttle restarted the peer")
	}
}

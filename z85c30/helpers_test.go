package z85c30

import (
	"sync"
	"testing"
	"time"

	"github.com/BertoldVdb/go-z85c30/console"
	"github.com/BertoldVdb/go-z85c30/irq"
	"github.com/BertoldVdb/go-z85c30/sysstate"
	"github.com/BertoldVdb/go-z85c30/z85c30/scctest"
)

const (
	ctrlA = 0x100
	dataA = 0x101
	ctrlB = 0x102
	dataB = 0x103

	testVector irq.Vector = 5

	/* Time constant 0x1E */
	testClock = 9830400
	testBaud  = 9600
)

type testHost struct {
	configs []console.PortConfig

	mutex sync.Mutex
	rx    map[int][]byte
}

func (h *testHost) Count() int {
	return len(h.configs)
}

func (h *testHost) Config(minor int) *console.PortConfig {
	if minor < 0 || minor >= len(h.configs) {
		return nil
	}
	return &h.configs[minor]
}

func (h *testHost) EnqueueRaw(minor int, p []byte) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	if len(p) != 1 {
		panic("Driver must deliver one byte per call")
	}
	h.rx[minor] = append(h.rx[minor], p...)
}

func (h *testHost) received(minor int) []byte {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	return append([]byte(nil), h.rx[minor]...)
}

type countingInstaller struct {
	*irq.Controller
	installs int
}

func (c *countingInstaller) Install(v irq.Vector, h irq.Handler) error {
	c.installs++
	return c.Controller.Install(v, h)
}

type testRig struct {
	chip   *scctest.Chip
	host   *testHost
	irqs   *countingInstaller
	system *sysstate.State
}

func newTestRig(flowA, flowB console.FlowKind, txSize int) *testRig {
	chip := scctest.NewChip(ctrlA, dataA, ctrlB, dataB)

	host := &testHost{
		configs: []console.PortConfig{
			{
				Name:         "ttyS0",
				CtrlPort1:    ctrlA,
				CtrlPort2:    ctrlA,
				DataPort:     dataA,
				Vector:       testVector,
				Clock:        testClock,
				Baud:         testBaud,
				Flow:         flowA,
				Bus:          chip,
				TxBufferSize: txSize,
			},
			{
				Name:         "ttyS1",
				CtrlPort1:    ctrlB,
				CtrlPort2:    ctrlA,
				DataPort:     dataB,
				Vector:       testVector,
				Clock:        testClock,
				Baud:         testBaud,
				Flow:         flowB,
				Bus:          chip,
				TxBufferSize: txSize,
			},
		},
		rx: make(map[int][]byte),
	}

	system := &sysstate.State{}
	system.SetUp()

	return &testRig{
		chip:   chip,
		host:   host,
		irqs:   &countingInstaller{Controller: irq.NewController()},
		system: system,
	}
}

func (r *testRig) options() *Options {
	return &Options{
		Interrupts: r.irqs,
		Scheduler:  r.system,
	}
}

func (r *testRig) interruptDriver(t *testing.T) *InterruptDriver {
	d := NewInterruptDriver(r.host, r.options())
	for minor := range r.host.configs {
		if err := d.Initialize(minor); err != nil {
			t.Fatal("Initialize failed", minor, err)
		}
	}
	r.chip.Ops()
	return d
}

func (r *testRig) polledDriver(t *testing.T) *PolledDriver {
	d := NewPolledDriver(r.host, r.options())
	for minor := range r.host.configs {
		if err := d.Initialize(minor); err != nil {
			t.Fatal("Initialize failed", minor, err)
		}
	}
	r.chip.Ops()
	return d
}

// raiseUntil keeps delivering the vector until done is closed
func (r *testRig) raiseUntil(done <-chan struct{}) {
	for {
		select {
		case <-done:
			return
		default:
		}
		r.irqs.Raise(testVector)
		time.Sleep(100 * time.Microsecond)
	}
}

func waitFor(t *testing.T, what string, cond func() bool) {
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("Timeout waiting for", what)
		}
		time.Sleep(time.Millisecond)
	}
}

// Package z85c30 drives the channels of a Zilog Z85C30 SCC. Output is either interrupt
// driven through a software transmit ring with CTS flow control, or polled. Input is
// delivered to the console line discipline from the interrupt handler, or polled.
//
// Task context and the interrupt handler share the modem control shadow, the transmit
// active flag and the transmit ring of a port. They are only accessed with the port's
// irq.Level disabled.
package z85c30

import (
	"errors"
	"io/ioutil"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/BertoldVdb/go-z85c30/console"
	"github.com/BertoldVdb/go-z85c30/irq"
	"github.com/BertoldVdb/go-z85c30/ringbuffer"
)

var (
	// ErrorNoBus is returned when a port has no register access configured
	ErrorNoBus = errors.New("Port has no register bus")

	// ErrorBaud is returned when the baud rate cannot be derived from the clock
	ErrorBaud = errors.New("Baud rate not reachable with configured clock")

	// ErrorNotInitialized is returned when using a port before Initialize succeeded
	ErrorNotInitialized = errors.New("Port not initialized")

	// ErrorInitialized is returned when initializing a port twice
	ErrorInitialized = errors.New("Port already initialized")

	// ErrorNoInterrupts is returned when interrupt mode is used without vector table
	ErrorNoInterrupts = errors.New("Interrupt mode needs a vector installer")
)

// Host is the driver table the driver is attached to
type Host interface {
	Count() int
	Config(minor int) *console.PortConfig

	// EnqueueRaw passes received bytes to the line discipline
	EnqueueRaw(minor int, p []byte)
}

// VectorInstaller registers interrupt handlers
type VectorInstaller interface {
	Install(v irq.Vector, h irq.Handler) error
}

// Scheduler lets busy loops give up the processor. Before the system is up there is
// nothing to yield to and loops spin.
type Scheduler interface {
	IsUp() bool
	Yield()
}

// Options configure a Driver
type Options struct {
	Interrupts VectorInstaller
	Scheduler  Scheduler
	Log        *logrus.Entry
}

// Driver holds the runtime state of every initialized port
type Driver struct {
	host       Host
	interrupts VectorInstaller
	sched      Scheduler
	log        *logrus.Entry

	mutex   sync.Mutex
	ports   []*port
	vectors map[irq.Vector]bool
}

type port struct {
	minor int
	cfg   *console.PortConfig
	log   *logrus.Entry

	level    irq.Level
	upstream func(p []byte)

	// Guarded by level
	modemCtrl uint8
	active    bool
	tx        *ringbuffer.Ring

	// Only used from the interrupt handler
	rxBuf [1]byte
}

func newDriver(host Host, opts *Options) *Driver {
	if opts == nil {
		opts = &Options{}
	}

	log := opts.Log
	if log == nil {
		l := logrus.New()
		l.Out = ioutil.Discard
		log = logrus.NewEntry(l)
	}

	return &Driver{
		host:       host,
		interrupts: opts.Interrupts,
		sched:      opts.Scheduler,
		log:        log,
		ports:      make([]*port, host.Count()),
		vectors:    make(map[irq.Vector]bool),
	}
}

func (d *Driver) lookup(minor int) (*port, error) {
	d.mutex.Lock()
	defer d.mutex.Unlock()

	if minor < 0 || minor >= len(d.ports) {
		return nil, console.ErrorNoSuchPort
	}

	p := d.ports[minor]
	if p == nil {
		return nil, ErrorNotInitialized
	}
	return p, nil
}

func (d *Driver) mustLookup(minor int) *port {
	p, err := d.lookup(minor)
	assert(err == nil, "z85c30: operation on unusable port")
	return p
}

func (d *Driver) install(p *port) error {
	d.mutex.Lock()
	defer d.mutex.Unlock()

	if d.ports[p.minor] != nil {
		return ErrorInitialized
	}
	d.ports[p.minor] = p
	return nil
}

func (d *Driver) snapshot() []*port {
	d.mutex.Lock()
	defer d.mutex.Unlock()

	ports := make([]*port, len(d.ports))
	copy(ports, d.ports)
	return ports
}

// yield gives up the processor once the system is up. Before that callers spin.
func (d *Driver) yield() {
	if d.sched != nil && d.sched.IsUp() {
		d.sched.Yield()
	}
}

func (p *port) channelA() bool {
	return p.cfg.CtrlPort1 == p.cfg.CtrlPort2
}

func (p *port) channelName() string {
	if p.channelA() {
		return "A"
	}
	return "B"
}

func (p *port) status() uint8 {
	return p.cfg.Bus.GetRegister(p.cfg.CtrlPort1, rr0)
}

func (p *port) command(cmd uint8) {
	p.cfg.Bus.SetRegister(p.cfg.CtrlPort1, wr0, cmd)
}

func assert(condition bool, msg string) {
	if !condition {
		panic(msg)
	}
}

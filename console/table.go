package console

import (
	"io/ioutil"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/BertoldVdb/go-z85c30/linedisc"
)

// DefaultPollInterval is the sleep between empty polls of a polled mode Device.Read
const DefaultPollInterval = time.Millisecond

type portData struct {
	openCount int
	rx        *linedisc.Queue
}

// Table is the arena of configured ports, addressed by minor number
type Table struct {
	sync.Mutex

	configs []PortConfig
	ports   []portData

	fns Fns
	log *logrus.Entry

	PollInterval time.Duration
}

// NewTable creates the table. The driver is attached afterwards with Install since it
// usually needs the table itself for configuration lookup and input delivery.
func NewTable(configs []PortConfig, log *logrus.Entry) *Table {
	if log == nil {
		l := logrus.New()
		l.Out = ioutil.Discard
		log = logrus.NewEntry(l)
	}

	return &Table{
		configs:      configs,
		ports:        make([]portData, len(configs)),
		log:          log,
		PollInterval: DefaultPollInterval,
	}
}

// Install attaches the driver operating all ports
func (t *Table) Install(fns Fns) {
	t.fns = fns
}

// Count returns the number of configured ports
func (t *Table) Count() int {
	return len(t.configs)
}

// Config returns the configuration of minor, or nil if it does not exist
func (t *Table) Config(minor int) *PortConfig {
	if minor < 0 || minor >= len(t.configs) {
		return nil
	}
	return &t.configs[minor]
}

// EnqueueRaw hands received bytes to the line discipline of minor. Input for ports that
// are not open is discarded.
func (t *Table) EnqueueRaw(minor int, p []byte) {
	t.Lock()
	var rx *linedisc.Queue
	if minor >= 0 && minor < len(t.ports) {
		rx = t.ports[minor].rx
	}
	t.Unlock()

	if rx != nil {
		rx.EnqueueRaw(p)
	}
}

// Initialize probes and initializes every port. Ports that fail are logged and skipped;
// the first error is returned.
func (t *Table) Initialize() error {
	var result error

	for minor := range t.configs {
		log := t.log.WithField("minor", minor).WithField("port", t.configs[minor].Name)

		if !t.fns.Probe(minor) {
			log.Warn("Probe failed")
			if result == nil {
				result = ErrorNotPresent
			}
			continue
		}

		if err := t.fns.Initialize(minor); err != nil {
			log.WithError(err).Error("Initialization failed")
			if result == nil {
				result = err
			}
			continue
		}

		log.Debug("Port initialized")
	}

	return result
}

// ReadPolled performs one non-blocking input poll on minor
func (t *Table) ReadPolled(minor int) (byte, bool, error) {
	if t.Config(minor) == nil {
		return 0, false, ErrorNoSuchPort
	}

	reader, ok := t.fns.(PolledReader)
	if !ok {
		return 0, false, ErrorNotSupported
	}

	c, ok := reader.ReadPolled(minor)
	return c, ok, nil
}

// SetAttributes forwards a line settings change to the driver
func (t *Table) SetAttributes(minor int, attr *Attributes) error {
	if t.Config(minor) == nil {
		return ErrorNoSuchPort
	}
	return t.fns.SetAttributes(minor, attr)
}

// Open opens minor. The first open of a port creates its line discipline and calls the
// driver FirstOpen.
func (t *Table) Open(minor int) (*Device, error) {
	cfg := t.Config(minor)
	if cfg == nil {
		return nil, ErrorNoSuchPort
	}

	t.Lock()
	defer t.Unlock()

	p := &t.ports[minor]
	if p.openCount == 0 {
		var throttle linedisc.Throttle
		if fp, ok := t.fns.(FlowProvider); ok {
			throttle = fp.Flow(minor)
		}
		p.rx = linedisc.NewQueue(cfg.RxBufferSize, throttle)

		if err := t.fns.FirstOpen(minor); err != nil {
			p.rx = nil
			return nil, err
		}
	}
	p.openCount++

	d := &Device{
		table: t,
		minor: minor,
		rx:    p.rx,
		log: t.log.WithFields(logrus.Fields{
			"minor":   minor,
			"port":    cfg.Name,
			"session": uuid.New().String(),
		}),
	}
	d.closeflag.CloseFunc = func() error {
		d.log.Debug("Closing")
		return t.release(minor)
	}
	d.log.Debug("Opened")

	return d, nil
}

func (t *Table) release(minor int) error {
	t.Lock()
	p := &t.ports[minor]
	p.openCount--
	if p.openCount > 0 {
		t.Unlock()
		return nil
	}

	rx := p.rx
	p.rx = nil
	t.Unlock()

	rx.Close()

	/* LastClose can block on output drain, input delivery must not wait for it */
	return t.fns.LastClose(minor)
}

package z85c30

import "github.com/BertoldVdb/go-z85c30/console"

// InterruptDriver operates ports with interrupt driven output and input
type InterruptDriver struct {
	*Driver
}

// PolledDriver operates ports without interrupts
type PolledDriver struct {
	*Driver
}

var (
	_ console.Fns          = (*InterruptDriver)(nil)
	_ console.FlowProvider = (*InterruptDriver)(nil)
	_ console.Fns          = (*PolledDriver)(nil)
	_ console.PolledReader = (*PolledDriver)(nil)
	_ console.FlowProvider = (*PolledDriver)(nil)
)

// NewInterruptDriver creates the interrupt mode driver. opts.Interrupts is required.
func NewInterruptDriver(host Host, opts *Options) *InterruptDriver {
	return &InterruptDriver{newDriver(host, opts)}
}

// NewPolledDriver creates the polled mode driver
func NewPolledDriver(host Host, opts *Options) *PolledDriver {
	return &PolledDriver{newDriver(host, opts)}
}

// Probe always succeeds, presence is a matter of configuration
func (d *Driver) Probe(minor int) bool {
	return true
}

// FirstOpen asserts DTR
func (d *Driver) FirstOpen(minor int) error {
	p, err := d.lookup(minor)
	if err != nil {
		return err
	}

	d.open(p)
	return nil
}

// WritePolled writes c without using interrupts. The port must be initialized.
func (d *Driver) WritePolled(minor int, c byte) {
	d.writePolled(d.mustLookup(minor), c)
}

// SetAttributes is not supported, the line format is fixed at initialization
func (d *Driver) SetAttributes(minor int, attr *console.Attributes) error {
	return console.ErrorNotSupported
}

// OutputUsesInterrupts is false: the line discipline is never notified of output completion
func (d *Driver) OutputUsesInterrupts() bool {
	return false
}

// Initialize brings up the channel and enables its interrupts
func (d *InterruptDriver) Initialize(minor int) error {
	return d.initializeInterrupts(minor)
}

// LastClose waits for queued output to drain and negates DTR
func (d *InterruptDriver) LastClose(minor int) error {
	p, err := d.lookup(minor)
	if err != nil {
		return err
	}

	d.flush(p)
	return nil
}

// Write queues p for transmission. It blocks while the transmit ring is full.
func (d *InterruptDriver) Write(minor int, buf []byte) (int, error) {
	p, err := d.lookup(minor)
	if err != nil {
		return 0, err
	}

	return d.writeInterrupt(p, buf), nil
}

// Initialize brings up the channel with interrupts disabled
func (d *PolledDriver) Initialize(minor int) error {
	return d.initializePolled(minor)
}

// LastClose negates DTR
func (d *PolledDriver) LastClose(minor int) error {
	p, err := d.lookup(minor)
	if err != nil {
		return err
	}

	d.close(p)
	return nil
}

// Write busy waits each byte out
func (d *PolledDriver) Write(minor int, buf []byte) (int, error) {
	p, err := d.lookup(minor)
	if err != nil {
		return 0, err
	}

	return d.writePolledBuffer(p, buf), nil
}

// ReadPolled returns a received character if one is waiting
func (d *PolledDriver) ReadPolled(minor int) (byte, bool) {
	p, err := d.lookup(minor)
	if err != nil {
		return 0, false
	}

	return d.readPolled(p)
}

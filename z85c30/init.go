package z85c30

import (
	"github.com/sirupsen/logrus"

	"github.com/BertoldVdb/go-z85c30/console"
	"github.com/BertoldVdb/go-z85c30/irq"
	"github.com/BertoldVdb/go-z85c30/ringbuffer"
)

// newPort validates the configuration of minor and creates its runtime state
func (d *Driver) newPort(minor int) (*port, error) {
	cfg := d.host.Config(minor)
	if cfg == nil {
		return nil, console.ErrorNoSuchPort
	}
	if cfg.Bus == nil {
		return nil, ErrorNoBus
	}
	if _, ok := baudDivisor(cfg.Clock, cfg.Baud); !ok {
		return nil, ErrorBaud
	}

	p := &port{
		minor:     minor,
		cfg:       cfg,
		modemCtrl: wr5Tx8Bits | wr5TxEnable,
	}
	p.upstream = func(buf []byte) {
		d.host.EnqueueRaw(minor, buf)
	}
	p.log = d.log.WithFields(logrus.Fields{
		"minor":   minor,
		"port":    cfg.Name,
		"channel": p.channelName(),
	})

	return p, nil
}

// resetChannel issues the channel specific hardware reset
func (p *port) resetChannel() {
	/* Settle the register pointer state machine */
	p.status()

	if p.channelA() {
		p.cfg.Bus.SetRegister(p.cfg.CtrlPort1, wr9, wr9ChAReset)
	} else {
		p.cfg.Bus.SetRegister(p.cfg.CtrlPort1, wr9, wr9ChBReset)
	}
}

// initializePort programs 8N1 at the configured rate and leaves all interrupts disabled.
// The order of the writes matters.
func (p *port) initializePort() {
	bus := p.cfg.Bus
	ctrl := p.cfg.CtrlPort1

	bus.SetRegister(ctrl, wr4, wr4FormatBits)
	bus.SetRegister(ctrl, wr3, wr3Rx8Bits)
	bus.SetRegister(ctrl, wr5, wr5Tx8Bits)
	bus.SetRegister(ctrl, wr10, 0x00)
	bus.SetRegister(ctrl, wr11, wr11TRxCOutBRG|wr11TRxCOutput|wr11TxClockBRG|wr11RxClockBRG)

	divisor, _ := baudDivisor(p.cfg.Clock, p.cfg.Baud)
	bus.SetRegister(ctrl, wr12, uint8(divisor))
	bus.SetRegister(ctrl, wr13, uint8(divisor>>8))

	bus.SetRegister(ctrl, wr14, wr14BRGEnable|wr14BRGSource|wr14Null)

	/* Only CTS changes raise external/status interrupts */
	bus.SetRegister(ctrl, wr15, wr15CTSIntEnable)

	bus.SetRegister(ctrl, wr0, wr0ResetExtStatusInt)
	bus.SetRegister(ctrl, wr0, wr0ErrorReset)

	bus.SetRegister(ctrl, wr3, wr3Rx8Bits|wr3RxEnable)
	bus.SetRegister(ctrl, wr5, wr5Tx8Bits|wr5TxEnable)

	/* Interrupts are enabled separately once the driver state is complete */
	bus.SetRegister(ctrl, wr1, 0)

	bus.SetRegister(ctrl, wr0, wr0ResetTxCRC)
	bus.SetRegister(ctrl, wr0, wr0ResetExtStatusInt)

	p.log.WithFields(logrus.Fields{
		"baud":    p.cfg.Baud,
		"divisor": divisor,
	}).Debug("Channel programmed")
}

func (p *port) enableInterrupts() {
	bus := p.cfg.Bus
	ctrl := p.cfg.CtrlPort1

	bus.SetRegister(ctrl, wr1, wr1ExtIntEnable|wr1TxIntEnable|wr1IntAllRx)
	bus.SetRegister(ctrl, wr2, 0)
	bus.SetRegister(ctrl, wr9, wr9MIE)

	bus.SetRegister(ctrl, wr0, wr0ResetExtStatusInt)
}

// initializePolled brings up minor without interrupts
func (d *Driver) initializePolled(minor int) error {
	p, err := d.newPort(minor)
	if err != nil {
		return err
	}

	p.resetChannel()
	p.initializePort()

	if err := d.install(p); err != nil {
		return err
	}

	p.log.Info("Initialized in polled mode")
	return nil
}

// initializeInterrupts brings up minor with interrupt driven transmit and receive. The
// vector is installed once per chip, by channel A.
func (d *Driver) initializeInterrupts(minor int) error {
	if d.interrupts == nil {
		return ErrorNoInterrupts
	}

	p, err := d.newPort(minor)
	if err != nil {
		return err
	}

	p.resetChannel()
	p.initializePort()

	p.tx = ringbuffer.New(p.cfg.TxBufferSize)
	p.active = false

	if !p.ownsRTS() {
		p.negateRTS()
	}

	/* The handler must find the port before the first interrupt can fire */
	if err := d.install(p); err != nil {
		return err
	}

	if p.channelA() {
		if err := d.installVector(p.cfg.Vector); err != nil {
			p.log.WithError(err).WithField("vector", p.cfg.Vector).Error("Failed to install interrupt handler")
			d.uninstall(p)
			return err
		}
		p.log.WithField("vector", p.cfg.Vector).Debug("Interrupt handler installed")
	}

	p.enableInterrupts()

	p.log.Info("Initialized in interrupt mode")
	return nil
}

func (d *Driver) uninstall(p *port) {
	d.mutex.Lock()
	defer d.mutex.Unlock()

	if d.ports[p.minor] == p {
		d.ports[p.minor] = nil
	}
}

// installVector installs the handler unless this driver already owns v. Several chips can
// share one vector, the handler scans all ports on it.
func (d *Driver) installVector(v irq.Vector) error {
	d.mutex.Lock()
	defer d.mutex.Unlock()

	if d.vectors[v] {
		return nil
	}

	if err := d.interrupts.Install(v, d.isr); err != nil {
		return err
	}
	d.vectors[v] = true
	return nil
}

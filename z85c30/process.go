package z85c30

import "github.com/BertoldVdb/go-z85c30/irq"

// receive moves received characters to the line discipline until the chip has none left.
// It touches no shared port state and runs with the level enabled, so the line discipline
// is free to throttle the peer from here.
func (p *port) receive(pending uint8) {
	if pending&rr3RxIP == 0 {
		return
	}

	for rxCharAvailable(p.status()) {
		p.rxBuf[0] = p.cfg.Bus.GetData(p.cfg.DataPort)
		p.upstream(p.rxBuf[:])
	}
}

// transmitLocked pushes at most one byte to the chip
func (p *port) transmitLocked() {
	status := p.status()

	if !txBufferEmpty(status) {
		/* Another interrupt follows when the holding register frees up */
		return
	}

	if !ctsAsserted(status) {
		/* The next CTS transition raises an external/status interrupt */
		p.command(wr0ResetTxIntPending)
		return
	}

	if p.tx.IsEmpty() {
		p.active = false
		if !p.ownsRTS() {
			p.updateModemCtrlLocked(0, wr5RTS)
		}
		p.command(wr0ResetTxIntPending)
		return
	}

	c, err := p.tx.Dequeue()
	assert(err == nil, "z85c30: transmit ring underflow")

	p.cfg.Bus.SetData(p.cfg.DataPort, c)
	p.command(wr0ResetTxIntPending)
}

// serviceLocked runs the transmit and external/status phases and releases the interrupt
// under service
func (p *port) serviceLocked(pending uint8) {
	p.transmitLocked()

	if pending&rr3ExtIP != 0 {
		p.command(wr0ResetExtStatusInt)
		p.status()
	}

	p.command(wr0ResetHighestIUS)
}

// process services the pending bits of this channel
func (p *port) process(pending uint8) {
	p.receive(pending)

	p.level.Disable()
	p.serviceLocked(pending)
	p.level.Enable()
}

// isr is the handler of every vector used by a channel A. RR3 only exists on channel A,
// so each port reads it through the channel A control port and keeps its own half.
func (d *Driver) isr(v irq.Vector) {
	for _, p := range d.snapshot() {
		if p == nil || p.tx == nil || p.cfg.Vector != v {
			continue
		}

		channelA := p.channelA()
		for {
			pending := channelPending(p.cfg.Bus.GetRegister(p.cfg.CtrlPort2, rr3), channelA)
			if pending == 0 {
				break
			}
			p.process(pending)
		}
	}
}

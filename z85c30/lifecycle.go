package z85c30

// open asserts DTR, unless DTR/CTS flow control drives it
func (d *Driver) open(p *port) {
	if !p.ownsDTR() {
		p.assertDTR()
	}
	p.log.Debug("Opened")
}

// close negates DTR, unless DTR/CTS flow control drives it
func (d *Driver) close(p *port) {
	if !p.ownsDTR() {
		p.negateDTR()
	}
	p.log.Debug("Closed")
}

func (p *port) txEmpty() bool {
	p.level.Disable()
	defer p.level.Enable()

	return p.tx.IsEmpty()
}

// flush waits until the transmit ring drained, then closes. There is no timeout: a peer
// that never asserts CTS blocks flush forever.
func (d *Driver) flush(p *port) {
	p.log.Debug("Flushing")

	for !p.txEmpty() {
		d.yield()
	}

	d.close(p)
}

// kickStart starts a transmission sequence from task context
func (d *Driver) kickStart(p *port) {
	if !p.ownsRTS() {
		p.assertRTS()
	}

	p.level.Disable()
	p.active = true
	p.serviceLocked(rr3TxIP)
	p.level.Enable()
}

// writeInterrupt queues buf for the interrupt handler. It blocks while the ring is full
// and never drops data.
func (d *Driver) writeInterrupt(p *port, buf []byte) int {
	for i := 0; i < len(buf); {
		p.level.Disable()
		full := p.tx.IsFull()
		active := p.active
		if !full {
			err := p.tx.Enqueue(buf[i])
			assert(err == nil, "z85c30: enqueue on non-full ring failed")
		}
		p.level.Enable()

		if !full {
			i++
			continue
		}

		if !active {
			d.kickStart(p)
		} else {
			d.yield()
		}
	}

	/* Make sure the queued data is on its way */
	p.level.Disable()
	active := p.active
	p.level.Enable()

	if !active {
		d.kickStart(p)
	}

	return len(buf)
}

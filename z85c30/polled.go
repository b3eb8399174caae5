package z85c30

// writePolled waits for the transmit holding register and writes c, bypassing the ring
func (d *Driver) writePolled(p *port, c byte) {
	for !txBufferEmpty(p.status()) {
		d.yield()
	}

	p.cfg.Bus.SetData(p.cfg.DataPort, c)
}

// readPolled checks once for a received character
func (d *Driver) readPolled(p *port) (byte, bool) {
	if !rxCharAvailable(p.status()) {
		return 0, false
	}

	return p.cfg.Bus.GetData(p.cfg.DataPort), true
}

func (d *Driver) writePolledBuffer(p *port, buf []byte) int {
	for _, c := range buf {
		d.writePolled(p, c)
	}

	return len(buf)
}

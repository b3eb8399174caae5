package z85c30

import (
	"github.com/BertoldVdb/go-z85c30/console"
	"github.com/BertoldVdb/go-z85c30/linedisc"
)

// flowStrategy throttles the remote peer by toggling one modem control line. The
// strategies are stateless and shared by all ports using them.
type flowStrategy interface {
	stopRemoteTx(p *port)
	startRemoteTx(p *port)
}

type flowRTSCTS struct{}

func (flowRTSCTS) stopRemoteTx(p *port)  { p.negateRTS() }
func (flowRTSCTS) startRemoteTx(p *port) { p.assertRTS() }

type flowDTRCTS struct{}

func (flowDTRCTS) stopRemoteTx(p *port)  { p.negateDTR() }
func (flowDTRCTS) startRemoteTx(p *port) { p.assertDTR() }

var strategies = map[console.FlowKind]flowStrategy{
	console.FlowRTSCTS: flowRTSCTS{},
	console.FlowDTRCTS: flowDTRCTS{},
}

// portFlow binds a strategy to a port for the line discipline
type portFlow struct {
	p        *port
	strategy flowStrategy
}

func (f *portFlow) StopRemoteTx() error {
	f.strategy.stopRemoteTx(f.p)
	return nil
}

func (f *portFlow) StartRemoteTx() error {
	f.strategy.startRemoteTx(f.p)
	return nil
}

// Flow returns the flow control of minor, or nil if it has none or is not initialized
func (d *Driver) Flow(minor int) linedisc.Throttle {
	p, err := d.lookup(minor)
	if err != nil {
		return nil
	}

	strategy, ok := strategies[p.cfg.Flow]
	if !ok {
		return nil
	}
	return &portFlow{p: p, strategy: strategy}
}

// ownsRTS is true when the RTS/CTS handshake drives RTS, the driver then leaves it alone
func (p *port) ownsRTS() bool {
	return p.cfg.Flow == console.FlowRTSCTS
}

// ownsDTR is true when the DTR/CTS handshake drives DTR
func (p *port) ownsDTR() bool {
	return p.cfg.Flow == console.FlowDTRCTS
}

// updateModemCtrlLocked changes the shadow and rewrites the whole register
func (p *port) updateModemCtrlLocked(set uint8, clear uint8) {
	p.modemCtrl = (p.modemCtrl | set) &^ clear
	p.cfg.Bus.SetRegister(p.cfg.CtrlPort1, wr5, p.modemCtrl)
}

func (p *port) updateModemCtrl(set uint8, clear uint8) {
	p.level.Disable()
	defer p.level.Enable()

	p.updateModemCtrlLocked(set, clear)
}

func (p *port) assertRTS() { p.updateModemCtrl(wr5RTS, 0) }
func (p *port) negateRTS() { p.updateModemCtrl(0, wr5RTS) }
func (p *port) assertDTR() { p.updateModemCtrl(wr5DTR, 0) }
func (p *port) negateDTR() { p.updateModemCtrl(0, wr5DTR) }

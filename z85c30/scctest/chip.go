// Package scctest simulates a dual channel Z85C30 behind a regaccess.Bus for tests.
package scctest

import (
	"fmt"
	"sync"
)

// Register and bit values the simulation reacts to
const (
	regWR0 = 0x00
	regWR1 = 0x01
	regRR0 = 0x00
	regRR3 = 0x03

	CmdResetExtStatus = 0x10
	CmdResetTxInt     = 0x28
	CmdErrorReset     = 0x30
	CmdResetIUS       = 0x38
	CmdResetTxCRC     = 0x80

	wr1ExtInt = 0x01
	wr1TxInt  = 0x02
	wr1RxInt  = 0x10

	StatusRxAvailable = 0x01
	StatusTxEmpty     = 0x04
	StatusCTS         = 0x20

	ipExt = 0x01
	ipTx  = 0x02
	ipRx  = 0x04
)

// Op is one register access seen by the chip
type Op struct {
	Channel string
	Write   bool
	Data    bool
	Reg     uint8
	Value   uint8
}

func (o Op) String() string {
	dir := "R"
	if o.Write {
		dir = "W"
	}
	if o.Data {
		return fmt.Sprintf("%s%s data=%#02x", o.Channel, dir, o.Value)
	}
	return fmt.Sprintf("%s%s r%d=%#02x", o.Channel, dir, o.Reg, o.Value)
}

// Channel is the state of one side of the chip
type Channel struct {
	name string
	ctrl uint32
	data uint32

	wr [16]uint8

	rxFifo  []byte
	txEmpty bool
	cts     bool
	sent    []byte

	extIP bool
	txIP  bool

	// Set by a data write in AutoDrain mode, the holding register empties on the next
	// status or interrupt pending read
	draining bool

	statusReads int
}

// Chip is a simulated SCC. All methods are safe for concurrent use.
type Chip struct {
	mutex sync.Mutex

	a, b *Channel
	ops  []Op

	// AutoDrain empties the transmit holding register at the first status or RR3 read
	// after a data write, raising a transmit interrupt when enabled
	AutoDrain bool

	// TxBusyReads keeps the holding register busy for this many status reads after a
	// data write when AutoDrain is off and Drain is not called
	TxBusyReads int
}

// NewChip creates a chip answering on the given control and data addresses.
// Channel A and B must use distinct addresses.
func NewChip(ctrlA, dataA, ctrlB, dataB uint32) *Chip {
	return &Chip{
		a: &Channel{name: "A", ctrl: ctrlA, data: dataA, txEmpty: true},
		b: &Channel{name: "B", ctrl: ctrlB, data: dataB, txEmpty: true},
	}
}

func (c *Chip) channel(addr uint32) *Channel {
	switch addr {
	case c.a.ctrl, c.a.data:
		return c.a
	case c.b.ctrl, c.b.data:
		return c.b
	}
	panic(fmt.Sprintf("scctest: access to unknown address %#x", addr))
}

func (c *Chip) byName(name string) *Channel {
	if name == "A" {
		return c.a
	}
	return c.b
}

func (ch *Channel) status() uint8 {
	var s uint8
	if len(ch.rxFifo) > 0 {
		s |= StatusRxAvailable
	}
	if ch.txEmpty {
		s |= StatusTxEmpty
	}
	if ch.cts {
		s |= StatusCTS
	}
	return s
}

func (ch *Channel) pending() uint8 {
	var p uint8
	if ch.extIP {
		p |= ipExt
	}
	if ch.txIP {
		p |= ipTx
	}
	if len(ch.rxFifo) > 0 && ch.wr[regWR1]&wr1RxInt != 0 {
		p |= ipRx
	}
	return p
}

func (c *Chip) rr3() uint8 {
	return c.a.pending()<<3 | c.b.pending()
}

// GetRegister implements regaccess.Bus
func (c *Chip) GetRegister(addr uint32, reg uint8) uint8 {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	ch := c.channel(addr)

	var v uint8
	switch reg {
	case regRR0:
		c.settle(ch)
		ch.statusReads++
		if !ch.txEmpty && !c.AutoDrain && c.TxBusyReads > 0 && ch.statusReads > c.TxBusyReads {
			ch.txEmpty = true
		}
		v = ch.status()
	case regRR3:
		if ch == c.a {
			c.settle(c.a)
			c.settle(c.b)
			v = c.rr3()
		}
	}

	c.ops = append(c.ops, Op{Channel: ch.name, Reg: reg, Value: v})
	return v
}

// SetRegister implements regaccess.Bus
func (c *Chip) SetRegister(addr uint32, reg uint8, value uint8) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	ch := c.channel(addr)
	c.ops = append(c.ops, Op{Channel: ch.name, Write: true, Reg: reg, Value: value})

	if reg != regWR0 {
		ch.wr[reg] = value
		return
	}

	switch value {
	case CmdResetExtStatus:
		ch.extIP = false
	case CmdResetTxInt:
		ch.txIP = false
	}
}

// GetData implements regaccess.Bus
func (c *Chip) GetData(addr uint32) uint8 {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	ch := c.channel(addr)

	var v uint8
	if len(ch.rxFifo) > 0 {
		v = ch.rxFifo[0]
		ch.rxFifo = ch.rxFifo[1:]
	}

	c.ops = append(c.ops, Op{Channel: ch.name, Data: true, Value: v})
	return v
}

// SetData implements regaccess.Bus
func (c *Chip) SetData(addr uint32, value uint8) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	ch := c.channel(addr)
	c.ops = append(c.ops, Op{Channel: ch.name, Write: true, Data: true, Value: value})

	ch.sent = append(ch.sent, value)
	ch.txEmpty = false
	ch.txIP = false
	ch.statusReads = 0
	ch.draining = c.AutoDrain
}

func (c *Chip) settle(ch *Channel) {
	if ch.draining {
		c.drain(ch)
	}
}

func (c *Chip) drain(ch *Channel) {
	ch.draining = false
	ch.txEmpty = true
	if ch.wr[regWR1]&wr1TxInt != 0 {
		ch.txIP = true
	}
}

// Drain completes the transmission of the character in the holding register
func (c *Chip) Drain(channel string) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.drain(c.byName(channel))
}

// Receive makes characters arrive on a channel
func (c *Chip) Receive(channel string, p []byte) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	ch := c.byName(channel)
	ch.rxFifo = append(ch.rxFifo, p...)
}

// SetCTS changes the CTS input. A transition raises an external/status interrupt when enabled.
func (c *Chip) SetCTS(channel string, asserted bool) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	ch := c.byName(channel)
	if ch.cts != asserted && ch.wr[regWR1]&wr1ExtInt != 0 {
		ch.extIP = true
	}
	ch.cts = asserted
}

// SetTxEmpty forces the transmit holding register state
func (c *Chip) SetTxEmpty(channel string, empty bool) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.byName(channel).txEmpty = empty
}

// Pending returns the RR3 value
func (c *Chip) Pending() uint8 {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	return c.rr3()
}

// Sent returns all characters written to the data register of a channel
func (c *Chip) Sent(channel string) []byte {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	ch := c.byName(channel)
	return append([]byte(nil), ch.sent...)
}

// Register returns the last value written to a write register of a channel
func (c *Chip) Register(channel string, reg uint8) uint8 {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	return c.byName(channel).wr[reg]
}

// Ops returns the access log and clears it
func (c *Chip) Ops() []Op {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	ops := c.ops
	c.ops = nil
	return ops
}

// CountCommands counts WR0 writes of cmd in ops for a channel
func CountCommands(ops []Op, channel string, cmd uint8) int {
	n := 0
	for _, op := range ops {
		if op.Channel == channel && op.Write && !op.Data && op.Reg == regWR0 && op.Value == cmd {
			n++
		}
	}
	return n
}

// DataWrites returns the data register writes in ops for a channel
func DataWrites(ops []Op, channel string) []byte {
	var out []byte
	for _, op := range ops {
		if op.Channel == channel && op.Write && op.Data {
			out = append(out, op.Value)
		}
	}
	return out
}

// RegisterWrites returns the control register writes in ops for a channel
func RegisterWrites(ops []Op, channel string) []Op {
	var out []Op
	for _, op := range ops {
		if op.Channel == channel && op.Write && !op.Data {
			out = append(out, op)
		}
	}
	return out
}

// Package console is the driver table that owns serial port configuration and the line
// disciplines above the chip drivers. Chip drivers plug in through the Fns operation table.
package console

import (
	"errors"

	"github.com/BertoldVdb/go-z85c30/closeflag"
	"github.com/BertoldVdb/go-z85c30/irq"
	"github.com/BertoldVdb/go-z85c30/linedisc"
	"github.com/BertoldVdb/go-z85c30/regaccess"
)

var (
	// ErrorNotSupported is returned for operations the driver does not implement
	ErrorNotSupported = errors.New("Operation not supported by driver")

	// ErrorNoSuchPort is returned for minor numbers outside the table
	ErrorNoSuchPort = errors.New("No such port")

	// ErrorNotPresent is returned when the driver probe fails
	ErrorNotPresent = errors.New("Device not present")

	// ErrorClosed is returned when using or closing a closed Device
	ErrorClosed = closeflag.ErrorClosed
)

// FlowKind selects the hardware flow control handshake of a port
type FlowKind int

const (
	// FlowNone does not throttle the peer
	FlowNone FlowKind = iota
	// FlowRTSCTS uses RTS to throttle the peer and CTS to be throttled
	FlowRTSCTS
	// FlowDTRCTS uses DTR to throttle the peer and CTS to be throttled
	FlowDTRCTS
)

func (f FlowKind) String() string {
	switch f {
	case FlowNone:
		return "none"
	case FlowRTSCTS:
		return "rts/cts"
	case FlowDTRCTS:
		return "dtr/cts"
	}
	return "unknown"
}

// PortConfig describes one serial channel. It is immutable once the table is built.
type PortConfig struct {
	Name string

	// CtrlPort1 is the control port of this channel. CtrlPort2 is the control port of
	// channel A of the same chip; both are equal for channel A itself.
	CtrlPort1 uint32
	CtrlPort2 uint32
	DataPort  uint32

	Vector irq.Vector

	// Clock is the chip input clock in Hz, Baud the fixed line rate
	Clock uint32
	Baud  uint32

	Flow FlowKind
	Bus  regaccess.Bus

	// Buffer sizes, zero selects the package defaults
	TxBufferSize int
	RxBufferSize int
}

// Attributes are line settings a driver could apply at runtime
type Attributes struct {
	Baud uint32
	Flow FlowKind
}

// Fns is the operation table a chip driver exposes
type Fns interface {
	Probe(minor int) bool
	FirstOpen(minor int) error
	LastClose(minor int) error
	Write(minor int, p []byte) (int, error)
	Initialize(minor int) error
	WritePolled(minor int, c byte)
	SetAttributes(minor int, attr *Attributes) error

	// OutputUsesInterrupts reports if output completion is signalled by interrupts
	OutputUsesInterrupts() bool
}

// PolledReader is implemented by drivers that support non-blocking polled input. The
// second return value is false when no byte was available.
type PolledReader interface {
	ReadPolled(minor int) (byte, bool)
}

// FlowProvider is implemented by drivers that can throttle the remote peer. Flow returns
// nil when the port has no flow control.
type FlowProvider interface {
	Flow(minor int) linedisc.Throttle
}

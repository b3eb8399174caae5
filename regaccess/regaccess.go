package regaccess

import "sync"

// Bus is the complete contract between a serial chip driver and the hardware. Control
// registers are reached through a control port address plus a logical register selector,
// the data register through its own address.
type Bus interface {
	GetRegister(addr uint32, reg uint8) uint8
	SetRegister(addr uint32, reg uint8, value uint8)
	GetData(addr uint32) uint8
	SetData(addr uint32, value uint8)
}

// Port8 is byte wide access to an I/O or memory mapped location
type Port8 interface {
	Read8(addr uint32) uint8
	Write8(addr uint32, value uint8)
}

// Indirect implements Bus for chips that multiplex their register file behind a single
// control port: the selector is written first, the value is then read or written at the
// same address. Register 0 is addressed directly.
type Indirect struct {
	Port Port8

	// The pointer write and the access that follows must not be split by
	// another access to the same chip.
	mutex sync.Mutex
}

// NewIndirect wraps port
func NewIndirect(port Port8) *Indirect {
	return &Indirect{Port: port}
}

// GetRegister selects reg and reads it back
func (i *Indirect) GetRegister(addr uint32, reg uint8) uint8 {
	i.mutex.Lock()
	defer i.mutex.Unlock()

	if reg != 0 {
		i.Port.Write8(addr, reg)
	}
	return i.Port.Read8(addr)
}

// SetRegister selects reg and writes value into it
func (i *Indirect) SetRegister(addr uint32, reg uint8, value uint8) {
	i.mutex.Lock()
	defer i.mutex.Unlock()

	if reg != 0 {
		i.Port.Write8(addr, reg)
	}
	i.Port.Write8(addr, value)
}

// GetData reads the data register
func (i *Indirect) GetData(addr uint32) uint8 {
	return i.Port.Read8(addr)
}

// SetData writes the data register
func (i *Indirect) SetData(addr uint32, value uint8) {
	i.Port.Write8(addr, value)
}

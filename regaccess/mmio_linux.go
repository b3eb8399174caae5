package regaccess

import (
	"errors"
	"fmt"
	"os"
	"syscall"

	"golang.org/x/sys/unix"
)

var (
	// ErrorOutOfWindow is returned when an address falls outside the mapped window
	ErrorOutOfWindow = errors.New("Address outside mapped window")
)

// MMIO is a Port8 backed by a window of physical memory mapped from /dev/mem. Addresses
// passed to Read8 and Write8 are physical addresses inside the window.
type MMIO struct {
	file *os.File
	mem  []byte
	base uint32
}

// OpenMMIO maps length bytes of physical memory starting at base. base must be page aligned.
func OpenMMIO(base uint32, length int) (*MMIO, error) {
	file, err := os.OpenFile("/dev/mem", syscall.O_RDWR|syscall.O_SYNC, 0600)
	if err != nil {
		return nil, err
	}

	mem, err := unix.Mmap(int(file.Fd()), int64(base), length, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("mmap of %#x failed: %w", base, os.NewSyscallError("mmap", err))
	}

	return &MMIO{
		file: file,
		mem:  mem,
		base: base,
	}, nil
}

func (m *MMIO) offset(addr uint32) int {
	off := int(addr - m.base)
	if addr < m.base || off >= len(m.mem) {
		panic(ErrorOutOfWindow)
	}
	return off
}

// Read8 reads one byte register
func (m *MMIO) Read8(addr uint32) uint8 {
	return m.mem[m.offset(addr)]
}

// Write8 writes one byte register
func (m *MMIO) Write8(addr uint32, value uint8) {
	m.mem[m.offset(addr)] = value
}

// Close unmaps the window
func (m *MMIO) Close() error {
	err := unix.Munmap(m.mem)
	m.mem = nil

	if cerr := m.file.Close(); err == nil {
		err = cerr
	}
	return err
}

// Package terminal switches the controlling terminal to character at a time input so
// keystrokes reach the serial line unbuffered.
package terminal

import (
	"golang.org/x/sys/unix"
)

// State is a saved termios configuration
type State struct {
	fd      int
	termios unix.Termios
}

// IsTerminal returns true if fd refers to a tty
func IsTerminal(fd int) bool {
	_, err := unix.IoctlGetTermios(fd, unix.TCGETS)
	return err == nil
}

// MakeRaw disables line editing and echo on fd and returns the previous state. Signal
// generating keys keep working so the console can still be interrupted.
func MakeRaw(fd int) (*State, error) {
	termios, err := unix.IoctlGetTermios(fd, unix.TCGETS)
	if err != nil {
		return nil, err
	}

	old := &State{fd: fd, termios: *termios}

	rawMode(termios)
	if err := unix.IoctlSetTermios(fd, unix.TCSETS, termios); err != nil {
		return nil, err
	}

	return old, nil
}

func rawMode(termios *unix.Termios) {
	termios.Iflag &^= unix.IGNBRK | unix.BRKINT | unix.PARMRK | unix.ISTRIP | unix.INLCR | unix.IGNCR | unix.ICRNL | unix.IXON
	termios.Oflag &^= unix.OPOST
	termios.Lflag &^= unix.ECHO | unix.ECHONL | unix.ICANON | unix.IEXTEN
	termios.Cflag &^= unix.CSIZE | unix.PARENB
	termios.Cflag |= unix.CS8

	termios.Cc[unix.VMIN] = 1
	termios.Cc[unix.VTIME] = 0
}

// Restore puts back the configuration saved by MakeRaw
func (s *State) Restore() error {
	return unix.IoctlSetTermios(s.fd, unix.TCSETS, &s.termios)
}

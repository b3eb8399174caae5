package sysstate

import (
	"context"
	"errors"
	"runtime"
	"sync"
)

// ErrorShutdown is returned by WaitUp once the system has shut down
var ErrorShutdown = errors.New("System is shut down")

// Phase is the coarse lifecycle of the system
type Phase int

const (
	// Booting means no scheduler is running; busy loops must spin without yielding
	Booting Phase = iota
	// Up means multitasking is running and busy loops should yield
	Up
	// Shutdown means the system is going down
	Shutdown
)

func (p Phase) String() string {
	switch p {
	case Booting:
		return "booting"
	case Up:
		return "up"
	case Shutdown:
		return "shutdown"
	}
	return "unknown"
}

// State is the system state. The zero value is Booting.
type State struct {
	sync.Mutex
	phase Phase

	updateChan chan (struct{})
}

func (s *State) closeChan() {
	if s.updateChan != nil {
		close(s.updateChan)
		s.updateChan = nil
	}
}

func (s *State) set(p Phase) {
	s.Lock()
	defer s.Unlock()

	s.phase = p
	s.closeChan()
}

// SetUp marks the system as multitasking
func (s *State) SetUp() {
	s.set(Up)
}

// SetShutdown marks the system as going down and wakes waiters
func (s *State) SetShutdown() {
	s.set(Shutdown)
}

// Phase returns the current phase
func (s *State) Phase() Phase {
	s.Lock()
	defer s.Unlock()

	return s.phase
}

// IsUp returns true if callers may yield the processor
func (s *State) IsUp() bool {
	return s.Phase() == Up
}

// Yield gives up the processor. Callers check IsUp first during early boot.
func (s *State) Yield() {
	runtime.Gosched()
}

// WaitUp blocks until the system is up
func (s *State) WaitUp(ctx context.Context) error {
	for {
		s.Lock()
		switch s.phase {
		case Up:
			s.Unlock()
			return nil
		case Shutdown:
			s.Unlock()
			return ErrorShutdown
		}

		if s.updateChan == nil {
			s.updateChan = make(chan (struct{}))
		}
		c := s.updateChan
		s.Unlock()

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-c:
		}
	}
}

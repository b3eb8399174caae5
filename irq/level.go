package irq

import "sync"

// Level is a critical section masking one interrupt priority level. It is the only
// synchronization between task context and the interrupt handler of a port: task code
// disables the level around each read-modify-write of shared port state, and the handler
// disables it around the phases that touch that state. It is not a general purpose lock
// and does not nest.
type Level struct {
	mutex sync.Mutex
}

// Disable masks the level
func (l *Level) Disable() {
	l.mutex.Lock()
}

// Enable unmasks the level
func (l *Level) Enable() {
	l.mutex.Unlock()
}

// Protect runs f with the level masked
func (l *Level) Protect(f func()) {
	l.Disable()
	defer l.Enable()

	f()
}

package ringbuffer

import "errors"

// DefaultCapacity is the transmit staging size used when a port does not configure one
const DefaultCapacity = 128

var (
	// ErrorOverflow is returned by Enqueue when the buffer is full
	ErrorOverflow = errors.New("Ring buffer is full")

	// ErrorUnderflow is returned by Dequeue when the buffer is empty
	ErrorUnderflow = errors.New("Ring buffer is empty")
)

// Ring is a fixed capacity byte queue. It never grows. It has no lock of its own: a producer
// and a consumer running in different contexts must exclude each other externally
// (for the serial drivers this is the port's interrupt level).
type Ring struct {
	ring []byte

	readPointer  int
	writePointer int
	elements     int
}

// New creates an empty ring that can hold capacity bytes. A capacity below one is replaced by DefaultCapacity.
func New(capacity int) *Ring {
	if capacity < 1 {
		capacity = DefaultCapacity
	}

	return &Ring{
		ring: make([]byte, capacity),
	}
}

func (r *Ring) incrementPointer(ptr *int) {
	*ptr++
	if *ptr >= len(r.ring) {
		*ptr = 0
	}
}

// IsEmpty returns true if there is nothing to dequeue
func (r *Ring) IsEmpty() bool {
	return r.elements == 0
}

// IsFull returns true if Enqueue would fail
func (r *Ring) IsFull() bool {
	return r.elements == len(r.ring)
}

// Len returns the number of queued bytes
func (r *Ring) Len() int {
	return r.elements
}

// Cap returns the fixed capacity
func (r *Ring) Cap() int {
	return len(r.ring)
}

// Enqueue appends c to the tail. It fails with ErrorOverflow instead of overwriting older data.
func (r *Ring) Enqueue(c byte) error {
	if r.IsFull() {
		return ErrorOverflow
	}

	r.ring[r.writePointer] = c
	r.incrementPointer(&r.writePointer)
	r.elements++

	return nil
}

// Dequeue removes the byte at the head
func (r *Ring) Dequeue() (byte, error) {
	if r.IsEmpty() {
		return 0, ErrorUnderflow
	}

	c := r.ring[r.readPointer]
	r.incrementPointer(&r.readPointer)
	r.elements--

	return c, nil
}

// Clear drops all queued bytes and returns how many there were
func (r *Ring) Clear() int {
	n := r.elements

	r.readPointer = 0
	r.writePointer = 0
	r.elements = 0

	return n
}

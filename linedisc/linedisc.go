package linedisc

import (
	"bytes"
	"errors"
	"sync"
)

var (
	// ErrorClosed is returned when reading from a closed and empty queue
	ErrorClosed = errors.New("Line discipline is closed")
)

// DefaultCapacity is the raw input queue size used when none is given
const DefaultCapacity = 256

// Throttle asks the remote peer to pause or resume sending. Serial drivers expose their
// hardware flow control through this interface.
type Throttle interface {
	StopRemoteTx() error
	StartRemoteTx() error
}

// Queue is the raw inbound queue of one terminal line. The driver appends received bytes
// from interrupt context, which never blocks: bytes that do not fit are counted and
// dropped. Readers block until data arrives. When a Throttle is set, the peer is stopped
// once the fill level crosses the high water mark and restarted when readers drain it
// below the low water mark.
type Queue struct {
	sync.Mutex
	buffer bytes.Buffer

	canReadSignal chan (struct{})

	maximumCapacity int
	highWater       int
	lowWater        int

	throttle  Throttle
	throttled bool

	dropped uint64
	closed  bool
}

func signalChannel(c chan (struct{})) {
	select {
	case c <- struct{}{}:
	default:
	}
}

// NewQueue creates a queue holding at most maximumCapacity bytes. throttle may be nil.
func NewQueue(maximumCapacity int, throttle Throttle) *Queue {
	if maximumCapacity <= 0 {
		maximumCapacity = DefaultCapacity
	}

	return &Queue{
		maximumCapacity: maximumCapacity,
		highWater:       maximumCapacity * 3 / 4,
		lowWater:        maximumCapacity / 4,
		throttle:        throttle,
		canReadSignal:   make(chan (struct{}), 1),
	}
}

// EnqueueRaw appends received bytes and returns how many were stored
func (q *Queue) EnqueueRaw(p []byte) int {
	q.Lock()
	if q.closed {
		q.dropped += uint64(len(p))
		q.Unlock()
		return 0
	}

	remaining := q.maximumCapacity - q.buffer.Len()
	assert(remaining >= 0, "Maximum capacity exceeded")

	accepted := p
	if len(accepted) > remaining {
		accepted = accepted[:remaining]
		q.dropped += uint64(len(p) - remaining)
	}
	q.buffer.Write(accepted)

	stop := false
	if q.throttle != nil && !q.throttled && q.buffer.Len() >= q.highWater {
		q.throttled = true
		stop = true
	}
	q.Unlock()

	if len(accepted) > 0 {
		signalChannel(q.canReadSignal)
	}
	if stop {
		q.throttle.StopRemoteTx()
	}

	return len(accepted)
}

// Read implements io.Reader. It blocks until at least one byte is queued.
func (q *Queue) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}

	for {
		q.Lock()
		n, _ := q.buffer.Read(p)

		if n > 0 {
			if q.buffer.Len() > 0 {
				/* Another goroutine can potentially also read */
				signalChannel(q.canReadSignal)
			}

			start := false
			if q.throttled && q.buffer.Len() <= q.lowWater {
				q.throttled = false
				start = true
			}
			q.Unlock()

			if start {
				q.throttle.StartRemoteTx()
			}
			return n, nil
		}

		if q.closed {
			signalChannel(q.canReadSignal)
			q.Unlock()
			return 0, ErrorClosed
		}

		q.Unlock()

		<-q.canReadSignal
	}
}

// Len returns the number of queued bytes
func (q *Queue) Len() int {
	q.Lock()
	defer q.Unlock()

	return q.buffer.Len()
}

// Dropped returns how many received bytes were lost because the queue was full or closed
func (q *Queue) Dropped() uint64 {
	q.Lock()
	defer q.Unlock()

	return q.dropped
}

// Throttled returns true while the peer is being held off
func (q *Queue) Throttled() bool {
	q.Lock()
	defer q.Unlock()

	return q.throttled
}

// Close makes Read return ErrorClosed once the queue is exhausted. Later input is dropped.
func (q *Queue) Close() error {
	q.Lock()
	defer q.Unlock()

	q.closed = true
	signalChannel(q.canReadSignal)

	return nil
}

func assert(condition bool, msg string) {
	if !condition {
		panic(msg)
	}
}

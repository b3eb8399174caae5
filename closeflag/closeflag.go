// Package closeflag signals a close to any number of waiters and runs a close hook once
package closeflag

import (
	"errors"
	"sync"
)

var (
	// ErrorClosed is returned by every Close after the first
	ErrorClosed = errors.New("Already closed")
)

// CloseFlag is closed once. The zero value is open and ready to use.
type CloseFlag struct {
	mutex  sync.Mutex
	closed bool
	ch     chan (struct{})

	// CloseFunc runs on the first Close, outside the lock, so it may call Close itself
	CloseFunc func() error
}

func (c *CloseFlag) chanLocked() chan (struct{}) {
	if c.ch == nil {
		c.ch = make(chan (struct{}))
		if c.closed {
			close(c.ch)
		}
	}
	return c.ch
}

// Chan returns a channel that is closed once the flag is closed
func (c *CloseFlag) Chan() <-chan (struct{}) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	return c.chanLocked()
}

// IsClosed returns true after the first Close
func (c *CloseFlag) IsClosed() bool {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	return c.closed
}

// Close closes the flag and returns the result of CloseFunc. Later calls return ErrorClosed.
func (c *CloseFlag) Close() error {
	c.mutex.Lock()
	if c.closed {
		c.mutex.Unlock()
		return ErrorClosed
	}

	c.closed = true
	if c.ch != nil {
		close(c.ch)
	}
	f := c.CloseFunc
	c.mutex.Unlock()

	if f != nil {
		return f()
	}
	return nil
}

package irq

import (
	"errors"
	"sync"
)

var (
	// ErrorInstalled is returned when a vector already has a handler
	ErrorInstalled = errors.New("Interrupt vector already has a handler")

	// ErrorNoHandler is returned when raising a vector without handler
	ErrorNoHandler = errors.New("No handler installed for interrupt vector")
)

// Vector identifies an interrupt source
type Vector uint32

// Handler services a vector. It runs to completion and is never re-entered for the same vector.
type Handler func(v Vector)

type vectorEntry struct {
	sync.Mutex
	handler Handler
	count   uint64
}

// Controller is a vector table. Delivery on one vector is serialized; different vectors
// may be serviced concurrently.
type Controller struct {
	sync.Mutex
	vectors map[Vector]*vectorEntry
}

// NewController creates an empty vector table
func NewController() *Controller {
	return &Controller{
		vectors: make(map[Vector]*vectorEntry),
	}
}

// Install registers h for v. A vector can only be installed once.
func (c *Controller) Install(v Vector, h Handler) error {
	c.Lock()
	defer c.Unlock()

	if _, ok := c.vectors[v]; ok {
		return ErrorInstalled
	}

	c.vectors[v] = &vectorEntry{handler: h}
	return nil
}

// Installed returns true if v has a handler
func (c *Controller) Installed(v Vector) bool {
	c.Lock()
	defer c.Unlock()

	_, ok := c.vectors[v]
	return ok
}

// Raise delivers v to its handler and returns once the handler completed
func (c *Controller) Raise(v Vector) error {
	c.Lock()
	e, ok := c.vectors[v]
	c.Unlock()

	if !ok {
		return ErrorNoHandler
	}

	e.Lock()
	defer e.Unlock()

	e.count++
	e.handler(v)

	return nil
}

// Count returns how many times v was delivered
func (c *Controller) Count(v Vector) uint64 {
	c.Lock()
	e, ok := c.vectors[v]
	c.Unlock()

	if !ok {
		return 0
	}

	e.Lock()
	defer e.Unlock()
	return e.count
}

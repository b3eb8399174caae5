package irq

import (
	"time"

	"github.com/BertoldVdb/go-z85c30/closeflag"
)

// Ticker raises a vector at a fixed interval, standing in for an interrupt line that is
// not delivered (user space). It implements the multirun Runnable interface.
type Ticker struct {
	controller *Controller
	vector     Vector
	interval   time.Duration

	closeflag closeflag.CloseFlag
}

// NewTicker creates a ticker raising v on c every interval
func NewTicker(c *Controller, v Vector, interval time.Duration) *Ticker {
	return &Ticker{
		controller: c,
		vector:     v,
		interval:   interval,
	}
}

// Run raises the vector until Close is called
func (t *Ticker) Run() error {
	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()

	for {
		select {
		case <-t.closeflag.Chan():
			return nil
		case <-ticker.C:
			t.controller.Raise(t.vector)
		}
	}
}

// Close stops Run
func (t *Ticker) Close() error {
	return t.closeflag.Close()
}

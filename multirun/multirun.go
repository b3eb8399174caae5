// Package multirun runs a group of blocking services and stops them together
package multirun

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sync"

	"github.com/BertoldVdb/go-z85c30/closeflag"
)

var (
	// ErrorClosed is returned by Run when the group was closed
	ErrorClosed = errors.New("The multirun was closed")
)

// Runnable has a blocking Run method and a Close method that makes Run return
type Runnable interface {
	Run() error
	Close() error
}

type funcRunnable struct {
	runCb   func() error
	closeCb func() error
}

func (f *funcRunnable) Run() error {
	return f.runCb()
}

func (f *funcRunnable) Close() error {
	if f.closeCb == nil {
		return nil
	}
	return f.closeCb()
}

// MultiRun runs Runnables concurrently. When one fails, or Close is called, all items
// are closed in reverse registration order; each item's Run has returned before the item
// registered before it is closed. Register an item after the items it depends on.
type MultiRun struct {
	mutex  sync.Mutex
	items  []Runnable
	done   []chan (struct{})
	result error

	closeflag closeflag.CloseFlag
}

// Register adds item to the group. Items must be registered before Run.
func (m *MultiRun) Register(item Runnable) {
	m.items = append(m.items, item)
}

// RegisterFunc adds a Runnable made of two functions. closeCb may be nil.
func (m *MultiRun) RegisterFunc(runCb func() error, closeCb func() error) {
	m.Register(&funcRunnable{runCb: runCb, closeCb: closeCb})
}

func (m *MultiRun) fail(err error) {
	m.mutex.Lock()
	if m.result == nil {
		m.result = err
	}
	m.mutex.Unlock()

	m.Close()
}

// Run starts all items and waits until every one returned. It returns the first item
// error, or ErrorClosed if the group was closed.
func (m *MultiRun) Run() error {
	m.mutex.Lock()
	if m.closeflag.IsClosed() {
		m.mutex.Unlock()
		return ErrorClosed
	}

	m.done = make([]chan (struct{}), len(m.items))
	for i := range m.done {
		m.done[i] = make(chan (struct{}))
	}
	done := m.done
	m.mutex.Unlock()

	var wg sync.WaitGroup
	for i, item := range m.items {
		wg.Add(1)
		go func(item Runnable, done chan (struct{})) {
			defer wg.Done()

			err := item.Run()
			close(done)

			if err != nil {
				m.fail(err)
			}
		}(item, done[i])
	}
	wg.Wait()

	m.mutex.Lock()
	defer m.mutex.Unlock()

	if m.result == nil && m.closeflag.IsClosed() {
		return ErrorClosed
	}
	return m.result
}

// Close stops the items, last registered first, and returns the first Close error
func (m *MultiRun) Close() error {
	if err := m.closeflag.Close(); err != nil {
		return err
	}

	m.mutex.Lock()
	done := m.done
	m.mutex.Unlock()

	var result error
	for i := len(m.items) - 1; i >= 0; i-- {
		if err := m.items[i].Close(); err != nil && result == nil {
			result = err
		}

		if done != nil {
			<-done[i]
		}
	}

	return result
}

// CloseOnSignal closes the group when one of sigs arrives. A second signal during the
// shutdown exits the process immediately.
func (m *MultiRun) CloseOnSignal(sigs ...os.Signal) {
	c := make(chan os.Signal, 1)
	signal.Notify(c, sigs...)

	go func() {
		select {
		case <-c:
		case <-m.closeflag.Chan():
			signal.Stop(c)
			return
		}

		go func() {
			<-c
			fmt.Fprintln(os.Stderr, "Signalled a second time, quitting without cleanup.")
			os.Exit(1)
		}()

		m.Close()
	}()
}

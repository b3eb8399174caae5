package console

import (
	"errors"
	"io"

	"github.com/BertoldVdb/go-z85c30/closeflag"
)

// ErrorInputEnded is returned by Bridge.Run when the local input reached end of file
var ErrorInputEnded = errors.New("Local input ended")

// Bridge copies a local stream pair to and from an open Device. It implements the
// multirun Runnable interface. Closing the bridge closes the device, which can block
// until queued output has drained, so whatever services the port must still be running.
type Bridge struct {
	dev *Device
	in  io.Reader
	out io.Writer

	closeflag closeflag.CloseFlag
}

// NewBridge connects in and out to dev. The bridge owns dev from now on.
func NewBridge(dev *Device, in io.Reader, out io.Writer) *Bridge {
	b := &Bridge{
		dev: dev,
		in:  in,
		out: out,
	}
	b.closeflag.CloseFunc = dev.Close

	return b
}

// Run copies until the bridge is closed or the input ends. A read blocked on the local
// input is abandoned, not interrupted.
func (b *Bridge) Run() error {
	inputDone := make(chan error, 1)
	go func() {
		_, err := io.Copy(b.dev, b.in)
		inputDone <- err
	}()

	go io.Copy(b.out, b.dev)

	select {
	case <-b.closeflag.Chan():
		return nil
	case err := <-inputDone:
		if b.closeflag.IsClosed() {
			return nil
		}
		if err == nil {
			err = ErrorInputEnded
		}
		return err
	}
}

// Close closes the device
func (b *Bridge) Close() error {
	return b.closeflag.Close()
}

package console

import (
	"time"

	"github.com/sirupsen/logrus"

	"github.com/BertoldVdb/go-z85c30/closeflag"
	"github.com/BertoldVdb/go-z85c30/linedisc"
)

// Device is one open handle on a port. It implements io.ReadWriteCloser.
type Device struct {
	table *Table
	minor int
	rx    *linedisc.Queue
	log   *logrus.Entry

	closeflag closeflag.CloseFlag
}

// Minor returns the port number of the device
func (d *Device) Minor() int {
	return d.minor
}

// Write passes p to the driver. Depending on the driver it blocks until the data is
// queued or until it has been written to the chip.
func (d *Device) Write(p []byte) (int, error) {
	if d.closeflag.IsClosed() {
		return 0, ErrorClosed
	}
	if len(p) == 0 {
		return 0, nil
	}

	return d.table.fns.Write(d.minor, p)
}

// Read returns received bytes. For drivers with polled input the chip is polled until
// at least one byte arrives, otherwise the line discipline queue is read.
func (d *Device) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}

	reader, ok := d.table.fns.(PolledReader)
	if !ok {
		if d.closeflag.IsClosed() {
			return 0, ErrorClosed
		}
		return d.rx.Read(p)
	}

	for {
		if d.closeflag.IsClosed() {
			return 0, ErrorClosed
		}

		n := 0
		for n < len(p) {
			c, ok := reader.ReadPolled(d.minor)
			if !ok {
				break
			}
			p[n] = c
			n++
		}

		if n > 0 {
			return n, nil
		}

		time.Sleep(d.table.PollInterval)
	}
}

// Close releases the handle. The last close of a port calls the driver LastClose, which
// may block until pending output has drained.
func (d *Device) Close() error {
	return d.closeflag.Close()
}

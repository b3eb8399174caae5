// Command sccconsole attaches the terminal to one channel of a memory mapped Z85C30
package main

import (
	"flag"
	"os"
	"strings"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/BertoldVdb/go-z85c30/console"
	"github.com/BertoldVdb/go-z85c30/irq"
	"github.com/BertoldVdb/go-z85c30/logrusconfig"
	"github.com/BertoldVdb/go-z85c30/multirun"
	"github.com/BertoldVdb/go-z85c30/regaccess"
	"github.com/BertoldVdb/go-z85c30/sysstate"
	"github.com/BertoldVdb/go-z85c30/terminal"
	"github.com/BertoldVdb/go-z85c30/z85c30"
)

var flows = map[string]console.FlowKind{
	"none":    console.FlowNone,
	"rts/cts": console.FlowRTSCTS,
	"dtr/cts": console.FlowDTRCTS,
}

func main() {
	base := flag.Uint64("base", 0, "Physical base address of the register window (page aligned)")
	length := flag.Int("length", 4096, "Size of the register window")
	ctrlA := flag.Uint64("ctrla", 0, "Channel A control port address")
	dataA := flag.Uint64("dataa", 0, "Channel A data port address")
	ctrlB := flag.Uint64("ctrlb", 0, "Channel B control port address")
	dataB := flag.Uint64("datab", 0, "Channel B data port address")
	clock := flag.Uint("clock", 9830400, "SCC input clock in Hz")
	baud := flag.Uint("baud", 9600, "Line rate")
	flowName := flag.String("flow", "none", "Flow control: none, rts/cts or dtr/cts")
	channel := flag.String("channel", "a", "Channel to attach to: a or b")
	mode := flag.String("mode", "polled", "Driver mode: polled, or interrupt to service the chip from a timer")
	tick := flag.Duration("tick", time.Millisecond, "Service interval in interrupt mode")
	logrusconfig.InitParam()
	flag.Parse()

	log := logrusconfig.GetLogger("sccconsole", logrus.InfoLevel)

	flow, ok := flows[strings.ToLower(*flowName)]
	if !ok {
		log.Fatalf("Unknown flow control %q", *flowName)
	}

	mmio, err := regaccess.OpenMMIO(uint32(*base), *length)
	if err != nil {
		log.WithError(err).Fatal("Failed to map registers")
	}
	defer mmio.Close()

	bus := regaccess.NewIndirect(mmio)
	const vector irq.Vector = 0

	port := func(name string, ctrl uint64, data uint64) console.PortConfig {
		return console.PortConfig{
			Name:      name,
			CtrlPort1: uint32(ctrl),
			CtrlPort2: uint32(*ctrlA),
			DataPort:  uint32(data),
			Vector:    vector,
			Clock:     uint32(*clock),
			Baud:      uint32(*baud),
			Flow:      flow,
			Bus:       bus,
		}
	}
	configs := []console.PortConfig{
		port("scca", *ctrlA, *dataA),
		port("sccb", *ctrlB, *dataB),
	}

	system := &sysstate.State{}
	group := &multirun.MultiRun{}
	table := console.NewTable(configs, log.WithField("prefix", "console"))
	opts := &z85c30.Options{
		Scheduler: system,
		Log:       log.WithField("prefix", "z85c30"),
	}

	switch *mode {
	case "polled":
		table.Install(z85c30.NewPolledDriver(table, opts))
	case "interrupt":
		controller := irq.NewController()
		opts.Interrupts = controller
		table.Install(z85c30.NewInterruptDriver(table, opts))

		/* Registered first so it is stopped last, after the device flushed */
		group.Register(irq.NewTicker(controller, vector, *tick))
	default:
		log.Fatalf("Unknown mode %q", *mode)
	}

	if err := table.Initialize(); err != nil {
		log.WithError(err).Warn("Not all ports initialized")
	}

	minor := 0
	if strings.ToLower(*channel) == "b" {
		minor = 1
	}

	dev, err := table.Open(minor)
	if err != nil {
		log.WithError(err).Fatal("Failed to open port")
	}
	system.SetUp()
	log.WithField("port", configs[minor].Name).Info("Console attached")

	if fd := int(os.Stdin.Fd()); terminal.IsTerminal(fd) {
		saved, err := terminal.MakeRaw(fd)
		if err != nil {
			log.WithError(err).Fatal("Failed to set terminal to raw mode")
		}
		defer saved.Restore()
	}

	group.Register(console.NewBridge(dev, os.Stdin, os.Stdout))
	group.CloseOnSignal(syscall.SIGINT, syscall.SIGTERM)

	err = group.Run()
	switch err {
	case multirun.ErrorClosed, console.ErrorInputEnded:
		log.Info("Shutting down")
	default:
		log.WithError(err).Error("Console failed")
	}

	/* Only now: flushing the device needed a running system */
	system.SetShutdown()
}

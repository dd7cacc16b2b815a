// Package firmware binds the protocol engine to the control loop.
package firmware

import (
	"bytes"
	"io"

	"github.com/golang/glog"

	"github.com/robotalks/gservo/pkg/dispatch"
	fx "github.com/robotalks/gservo/pkg/framework"
	"github.com/robotalks/gservo/pkg/link"
	"github.com/robotalks/gservo/pkg/protocol"
	"github.com/robotalks/gservo/pkg/settings"
)

// Firmware parses input lines, executes them and writes the
// replies once per iteration.
type Firmware struct {
	Dispatcher *dispatch.Dispatcher

	parser *protocol.Parser
	out    io.Writer
	buf    bytes.Buffer
	begun  bool
}

// New creates a Firmware writing replies to out.
func New(act dispatch.Actuator, store settings.Store, out io.Writer) *Firmware {
	f := &Firmware{out: out}
	f.Dispatcher = dispatch.New(act, store, &f.buf)
	f.parser = protocol.NewParser(f.Dispatcher)
	return f
}

func (f *Firmware) begin() {
	if !f.begun {
		f.begun = true
		f.Dispatcher.Begin()
	}
}

// Feed parses and executes data. Replies are buffered until Tick.
func (f *Firmware) Feed(data []byte) {
	f.begin()
	glog.V(2).Infof("input %q", data)
	f.parser.Parse(data)
}

// Tick refreshes the actuator and flushes the replies.
func (f *Firmware) Tick() error {
	f.begin()
	f.Dispatcher.Loop()
	return f.flush()
}

func (f *Firmware) flush() error {
	if f.buf.Len() == 0 {
		return nil
	}
	defer f.buf.Reset()
	_, err := f.out.Write(f.buf.Bytes())
	return err
}

// Control implements fx.Controller.
func (f *Firmware) Control(cc fx.ControlContext) error {
	f.begin()
	for _, msg := range cc.Messages().Take(link.IsInput) {
		f.Feed(msg.(*link.InputMsg).Data)
	}
	if err := f.Tick(); err != nil {
		glog.Warningf("firmware: write reply: %v", err)
	}
	return nil
}

// AddToLoop implements fx.LoopAdder.
func (f *Firmware) AddToLoop(l *fx.Loop) {
	l.AddController(fx.PrLvControl, f)
}

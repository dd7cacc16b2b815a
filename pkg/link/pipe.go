package link

import (
	"context"
	"io"
	"sync"

	"github.com/golang/glog"

	fx "github.com/robotalks/gservo/pkg/framework"
)

// Pipe posts chunks from a transport to the loop and attaches the
// transport to the output Hub while running.
type Pipe struct {
	Source     string
	ReadWriter ChunkReadWriter
	Hub        *Hub

	closeOnce sync.Once
}

// NewPipe creates a Pipe.
func NewPipe(name string, rw ChunkReadWriter, hub *Hub) *Pipe {
	return &Pipe{Source: name, ReadWriter: rw, Hub: hub}
}

// Name implements fx.Named.
func (p *Pipe) Name() string {
	return "link:" + p.Source
}

// Run implements fx.Runnable. The end of input is not an error.
func (p *Pipe) Run(ctx context.Context) error {
	defer p.Close()
	if p.Hub != nil {
		p.Hub.Register(p.Source, p.ReadWriter)
		defer p.Hub.Unregister(p.Source)
	}
	loopCtl := fx.LoopCtlFrom(ctx)
	return fx.RunWithContextCancel(ctx, func() { p.Close() }, func() error {
		for {
			chunk, err := p.ReadWriter.ReadChunk()
			if len(chunk) > 0 {
				loopCtl.PostMessage(&InputMsg{Data: chunk, Source: p.Source})
				loopCtl.TriggerNext()
			}
			if err == io.EOF {
				glog.V(1).Infof("link %s: end of input", p.Source)
				return nil
			}
			if err != nil {
				return err
			}
		}
	})
}

// Close implements io.Closer.
func (p *Pipe) Close() (err error) {
	p.closeOnce.Do(func() {
		if closer, ok := p.ReadWriter.(io.Closer); ok {
			err = closer.Close()
		}
	})
	return
}

// AddToLoop implements fx.LoopAdder.
func (p *Pipe) AddToLoop(loop *fx.Loop) {
	if adder, ok := p.ReadWriter.(fx.LoopAdder); ok {
		loop.Add(adder)
	} else if runnable, ok := p.ReadWriter.(fx.Runnable); ok {
		loop.AddRunnable(runnable)
	}
	loop.AddRunnable(p)
}

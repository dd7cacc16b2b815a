// Package console provides an interactive operator shell as a link.
package console

import (
	"context"
	"io"
	"strings"
	"sync"

	"github.com/abiosoft/ishell"

	fx "github.com/robotalks/gservo/pkg/framework"
	"github.com/robotalks/gservo/pkg/link"
)

// Prompt is the shell prompt.
const Prompt = "gservo> "

// Console forwards typed lines to the loop and prints the replies.
type Console struct {
	Shell *ishell.Shell
	Hub   *link.Hub

	chunkCh chan []byte
	done    chan struct{}
	once    sync.Once
}

func newConsole(hub *link.Hub) *Console {
	return &Console{
		Hub:     hub,
		chunkCh: make(chan []byte, 4),
		done:    make(chan struct{}),
	}
}

// New creates a Console.
func New(hub *link.Hub) *Console {
	c := newConsole(hub)
	c.Shell = ishell.New()
	c.Shell.SetPrompt(Prompt)
	c.Shell.NotFound(func(ctx *ishell.Context) {
		c.forward(ctx.RawArgs)
	})
	c.Shell.AddCmd(&ishell.Cmd{
		Name: "raw",
		Help: "send the rest of the line as is",
		Func: func(ctx *ishell.Context) {
			c.forward(ctx.Args)
		},
	})
	return c
}

func (c *Console) forward(args []string) {
	line := []byte(strings.Join(args, " ") + "\n")
	select {
	case c.chunkCh <- line:
	case <-c.done:
	}
}

// ReadChunk implements link.ChunkReader.
func (c *Console) ReadChunk() ([]byte, error) {
	select {
	case chunk := <-c.chunkCh:
		return chunk, nil
	case <-c.done:
		return nil, io.EOF
	}
}

// Write implements io.Writer.
func (c *Console) Write(p []byte) (int, error) {
	c.Shell.Print(string(p))
	return len(p), nil
}

// Close implements io.Closer.
func (c *Console) Close() error {
	c.once.Do(func() { close(c.done) })
	return nil
}

// Name implements fx.Named.
func (c *Console) Name() string {
	return "console"
}

// Run implements fx.Runnable. It returns when the shell exits.
func (c *Console) Run(ctx context.Context) error {
	defer c.Close()
	return fx.RunWithContextCancel(ctx, func() { c.Shell.Close() }, func() error {
		c.Shell.Run()
		return nil
	})
}

// AddToLoop implements fx.LoopAdder.
func (c *Console) AddToLoop(loop *fx.Loop) {
	loop.AddRunnable(c, link.NewPipe("console", c, c.Hub))
}

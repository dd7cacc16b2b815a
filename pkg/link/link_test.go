package link

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"

	fx "github.com/robotalks/gservo/pkg/framework"
)

type recordingLoopCtl struct {
	lock     sync.Mutex
	msgs     []fx.Message
	triggers int
}

func (c *recordingLoopCtl) PostMessage(msg fx.Message) {
	c.lock.Lock()
	c.msgs = append(c.msgs, msg)
	c.lock.Unlock()
}

func (c *recordingLoopCtl) TriggerNext() {
	c.lock.Lock()
	c.triggers++
	c.lock.Unlock()
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) {
	return 0, errors.New("broken")
}

type chunks struct {
	bytes.Buffer
	in     [][]byte
	closed bool
	hub    *Hub
	seen   []string
}

func (c *chunks) ReadChunk() ([]byte, error) {
	if c.hub != nil {
		c.seen = c.hub.Names()
	}
	if len(c.in) == 0 {
		return nil, io.EOF
	}
	chunk := c.in[0]
	c.in = c.in[1:]
	return chunk, nil
}

func (c *chunks) Close() error {
	c.closed = true
	return nil
}

func TestTerminateLine(t *testing.T) {
	require.Equal(t, "?\n", string(TerminateLine([]byte("?"))))
	require.Equal(t, "?\n", string(TerminateLine([]byte("?\n"))))
	require.Equal(t, "\n", string(TerminateLine(nil)))
}

func TestHub(t *testing.T) {
	var hub Hub
	var a, b bytes.Buffer
	hub.Register("a", &a)
	hub.Register("bad", failingWriter{})
	hub.Register("b", &b)
	require.Equal(t, []string{"a", "bad", "b"}, hub.Names())

	n, err := hub.Write([]byte("Ok\n"))
	require.Equal(t, 3, n)
	require.Error(t, err)
	require.Len(t, multierr.Errors(err), 1)
	require.Contains(t, err.Error(), "bad")
	require.Equal(t, "Ok\n", a.String())
	require.Equal(t, "Ok\n", b.String())

	hub.Unregister("bad")
	_, err = hub.Write([]byte("x"))
	require.NoError(t, err)
	require.Equal(t, []string{"a", "b"}, hub.Names())
}

func TestPipe(t *testing.T) {
	hub := &Hub{}
	rw := &chunks{in: [][]byte{[]byte("?\n"), []byte("x1\n")}, hub: hub}
	ctl := &recordingLoopCtl{}
	p := NewPipe("test", rw, hub)
	require.Equal(t, "link:test", p.Name())

	require.NoError(t, p.Run(fx.WithLoopCtl(context.Background(), ctl)))
	require.Equal(t, []fx.Message{
		&InputMsg{Data: []byte("?\n"), Source: "test"},
		&InputMsg{Data: []byte("x1\n"), Source: "test"},
	}, ctl.msgs)
	require.Equal(t, 2, ctl.triggers)
	require.Equal(t, []string{"test"}, rw.seen)
	require.Empty(t, hub.Names())
	require.True(t, rw.closed)
	require.True(t, IsInput(ctl.msgs[0]))
	require.False(t, IsInput("x"))
}

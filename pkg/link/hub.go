package link

import (
	"io"
	"sync"

	"github.com/golang/glog"
	"github.com/pkg/errors"
	"go.uber.org/multierr"
)

type hubWriter struct {
	name string
	w    io.Writer
}

// Hub fans output out to every registered writer.
type Hub struct {
	lock    sync.RWMutex
	writers []hubWriter
}

// Register adds a writer under name, replacing an existing one.
func (h *Hub) Register(name string, w io.Writer) {
	h.lock.Lock()
	defer h.lock.Unlock()
	for i := range h.writers {
		if h.writers[i].name == name {
			h.writers[i].w = w
			return
		}
	}
	h.writers = append(h.writers, hubWriter{name: name, w: w})
	glog.V(1).Infof("link %s attached", name)
}

// Unregister removes the writer of name.
func (h *Hub) Unregister(name string) {
	h.lock.Lock()
	defer h.lock.Unlock()
	for i := range h.writers {
		if h.writers[i].name == name {
			h.writers = append(h.writers[:i], h.writers[i+1:]...)
			glog.V(1).Infof("link %s detached", name)
			return
		}
	}
}

// Names lists registered writers in registration order.
func (h *Hub) Names() []string {
	h.lock.RLock()
	defer h.lock.RUnlock()
	names := make([]string, len(h.writers))
	for i, w := range h.writers {
		names[i] = w.name
	}
	return names
}

// Write implements io.Writer. Every writer is written even if
// some fail, and the failures are combined.
func (h *Hub) Write(p []byte) (int, error) {
	h.lock.RLock()
	writers := append([]hubWriter(nil), h.writers...)
	h.lock.RUnlock()
	var err error
	for _, w := range writers {
		if _, e := w.w.Write(p); e != nil {
			glog.Warningf("link %s write: %v", w.name, e)
			err = multierr.Append(err, errors.Wrapf(e, "%s", w.name))
		}
	}
	return len(p), err
}

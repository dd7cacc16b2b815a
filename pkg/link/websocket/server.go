// Package websocket serves the line protocol over websocket connections.
package websocket

import (
	"context"
	"net/http"

	"github.com/golang/glog"
	"golang.org/x/net/websocket"

	fx "github.com/robotalks/gservo/pkg/framework"
	"github.com/robotalks/gservo/pkg/link"
)

// DefaultPath is used when Server.Path is empty.
const DefaultPath = "/gservo"

// ReadWriter implements link.ChunkReadWriter. One message is one chunk.
type ReadWriter websocket.Conn

// New wraps websocket.Conn.
func New(conn *websocket.Conn) *ReadWriter {
	return (*ReadWriter)(conn)
}

// ReadChunk implements link.ChunkReader.
func (c *ReadWriter) ReadChunk() (chunk []byte, err error) {
	if err = websocket.Message.Receive((*websocket.Conn)(c), &chunk); err == nil {
		chunk = link.TerminateLine(chunk)
	}
	return
}

// Write implements io.Writer, sending p as a text frame.
func (c *ReadWriter) Write(p []byte) (int, error) {
	if err := websocket.Message.Send((*websocket.Conn)(c), string(p)); err != nil {
		return 0, err
	}
	return len(p), nil
}

// Close implements io.Closer.
func (c *ReadWriter) Close() error {
	return (*websocket.Conn)(c).Close()
}

// Server accepts websocket connections, each as a link.Pipe.
type Server struct {
	Addr string
	Path string
	Hub  *link.Hub
}

// Handler creates the http.Handler posting to the loop of ctx.
func (s *Server) Handler(ctx context.Context) http.Handler {
	return websocket.Handler(func(conn *websocket.Conn) {
		name := "ws:" + conn.Request().RemoteAddr
		if err := link.NewPipe(name, New(conn), s.Hub).Run(ctx); err != nil {
			glog.V(1).Infof("%s: %v", name, err)
		}
	})
}

// Name implements fx.Named.
func (s *Server) Name() string {
	return "websocket"
}

// Run implements fx.Runnable.
func (s *Server) Run(ctx context.Context) error {
	path := s.Path
	if path == "" {
		path = DefaultPath
	}
	mux := http.NewServeMux()
	mux.Handle(path, s.Handler(ctx))
	srv := &http.Server{Addr: s.Addr, Handler: mux}
	glog.Infof("websocket: listening on %s%s", s.Addr, path)
	return fx.RunWithContextCancel(ctx, func() { srv.Close() }, srv.ListenAndServe)
}

// AddToLoop implements fx.LoopAdder.
func (s *Server) AddToLoop(loop *fx.Loop) {
	loop.AddRunnable(s)
}

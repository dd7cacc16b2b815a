package mqtt

import (
	"context"
	"io"
	"strings"
	"sync"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/golang/glog"
	"github.com/pkg/errors"

	fx "github.com/robotalks/gservo/pkg/framework"
	"github.com/robotalks/gservo/pkg/link"
)

// Topic suffixes under <prefix><name>/.
const (
	TopicCmd   = "cmd"
	TopicMsg   = "msg"
	TopicState = "state"
)

// Payloads of the retained state topic.
var (
	StateOnline  = []byte("online")
	StateOffline = []byte("offline")
)

// ConnectTimeout bounds the initial connect.
const ConnectTimeout = 10 * time.Second

// Link subscribes to commands and publishes replies for one device.
// It implements link.ChunkReadWriter.
type Link struct {
	Queue  *Queue
	Device string
	Hub    *link.Hub

	chunkCh   chan []byte
	done      chan struct{}
	closeOnce sync.Once
}

func clientOptions(brokerURL, name string) (*paho.ClientOptions, string, error) {
	opts, prefix, err := ClientOptionsFromURL(brokerURL)
	if err != nil {
		return nil, "", errors.Wrapf(err, "mqtt url %q", brokerURL)
	}
	if opts.ClientID == "" {
		opts.SetClientID("gservo-" + strings.Replace(name, "/", "-", -1))
	}
	opts.SetBinaryWill(prefix+Topic(name, TopicState), StateOffline, 1, true)
	return opts, prefix, nil
}

// New creates a Link for device name on the broker.
func New(brokerURL, name string, hub *link.Hub) (*Link, error) {
	opts, prefix, err := clientOptions(brokerURL, name)
	if err != nil {
		return nil, err
	}
	l := &Link{
		Device:  name,
		Hub:     hub,
		chunkCh: make(chan []byte, 4),
		done:    make(chan struct{}),
	}
	l.Queue = NewQueue(opts, prefix)
	l.Queue.OnConnect = func(q *Queue) {
		q.PubWith(Topic(name, TopicState), StateOnline, 1, true)
	}
	return l, nil
}

// Topic returns the topic of the device, without the queue prefix.
func Topic(name, suffix string) string {
	return name + "/" + suffix
}

// ReadChunk implements link.ChunkReader.
func (l *Link) ReadChunk() ([]byte, error) {
	select {
	case chunk := <-l.chunkCh:
		return chunk, nil
	case <-l.done:
		return nil, io.EOF
	}
}

// Write implements io.Writer.
func (l *Link) Write(p []byte) (int, error) {
	token := l.Queue.Pub(Topic(l.Device, TopicMsg), p)
	token.Wait()
	if err := token.Error(); err != nil {
		return 0, err
	}
	return len(p), nil
}

// Close implements io.Closer.
func (l *Link) Close() error {
	l.closeOnce.Do(func() { close(l.done) })
	return nil
}

func (l *Link) handleCmd(_ string, payload []byte) {
	chunk := link.TerminateLine(append([]byte(nil), payload...))
	select {
	case l.chunkCh <- chunk:
	case <-l.done:
	}
}

// Run implements fx.Runnable. It keeps the connection until ctx is done.
func (l *Link) Run(ctx context.Context) error {
	token := l.Queue.Connect()
	if !token.WaitTimeout(ConnectTimeout) {
		return errors.New("mqtt: connect timeout")
	}
	if err := token.Error(); err != nil {
		return errors.Wrap(err, "mqtt connect")
	}
	defer l.Queue.Close()
	sub := l.Queue.Sub(Topic(l.Device, TopicCmd), l.handleCmd)
	defer sub.Close()

	glog.Infof("mqtt: serving %s", l.Queue.TopicPrefix+l.Device)
	select {
	case <-ctx.Done():
	case <-l.done:
	}
	l.Queue.PubWith(Topic(l.Device, TopicState), StateOffline, 1, true).WaitTimeout(time.Second)
	return nil
}

// Name implements fx.Named.
func (l *Link) Name() string {
	return "mqtt:" + l.Device
}

// AddToLoop implements fx.LoopAdder.
func (l *Link) AddToLoop(loop *fx.Loop) {
	loop.AddRunnable(l)
	loop.AddRunnable(link.NewPipe("mqtt", l, l.Hub))
}

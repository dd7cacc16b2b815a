// Package link connects host transports to the firmware loop.
package link

import (
	"io"

	fx "github.com/robotalks/gservo/pkg/framework"
)

// ChunkReader reads one line or one message.
type ChunkReader interface {
	ReadChunk() ([]byte, error)
}

// ChunkReadWriter reads chunks and accepts output.
type ChunkReadWriter interface {
	ChunkReader
	io.Writer
}

// InputMsg is posted to the loop for every chunk received.
type InputMsg struct {
	Data   []byte
	Source string
}

// IsInput matches InputMsg in a fx.MessageStore.
func IsInput(msg fx.Message) bool {
	_, ok := msg.(*InputMsg)
	return ok
}

// TerminateLine appends a newline if data doesn't end with one.
func TerminateLine(data []byte) []byte {
	if n := len(data); n > 0 && data[n-1] == '\n' {
		return data
	}
	return append(data, '\n')
}

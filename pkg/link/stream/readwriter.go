// Package stream carries newline-delimited commands over a byte stream.
package stream

import (
	"bufio"
	"io"
)

// ReadWriter implements link.ChunkReadWriter over a byte stream.
// Each chunk is a line including its terminator; a final
// unterminated fragment is returned together with io.EOF.
type ReadWriter struct {
	reader *bufio.Reader
	writer io.Writer
	closer io.Closer
}

// New creates a ReadWriter with io.ReadWriter.
func New(s io.ReadWriter) *ReadWriter {
	rw := NewWith(s, s)
	if closer, ok := s.(io.Closer); ok {
		rw.closer = closer
	}
	return rw
}

// NewWith creates a ReadWriter from separated reader and writer,
// e.g. stdin and stdout.
func NewWith(r io.Reader, w io.Writer) *ReadWriter {
	return &ReadWriter{reader: bufio.NewReader(r), writer: w}
}

// ReadChunk implements link.ChunkReader.
func (s *ReadWriter) ReadChunk() ([]byte, error) {
	return s.reader.ReadBytes('\n')
}

// Write implements io.Writer.
func (s *ReadWriter) Write(p []byte) (int, error) {
	return s.writer.Write(p)
}

// Close implements io.Closer.
func (s *ReadWriter) Close() error {
	if s.closer != nil {
		return s.closer.Close()
	}
	return nil
}

// Package eeprom provides byte-addressed stores for persisted settings.
package eeprom

import (
	"sync"

	"github.com/pkg/errors"
)

// Erased is the value of a byte never written.
const Erased byte = 0xff

// ErrOutOfRange indicates an access beyond the store size.
var ErrOutOfRange = errors.New("eeprom address out of range")

// Memory is an in-memory store behaving like an erased EEPROM.
type Memory struct {
	lock   sync.Mutex
	data   []byte
	writes int
}

// NewMemory creates a Memory of size bytes, all erased.
func NewMemory(size int) *Memory {
	m := &Memory{data: make([]byte, size)}
	for i := range m.data {
		m.data[i] = Erased
	}
	return m
}

// Get implements settings.Store.
func (m *Memory) Get(addr int, buf []byte) error {
	m.lock.Lock()
	defer m.lock.Unlock()
	if addr < 0 || addr+len(buf) > len(m.data) {
		return errors.Wrapf(ErrOutOfRange, "get %d+%d", addr, len(buf))
	}
	copy(buf, m.data[addr:])
	return nil
}

// Put implements settings.Store.
func (m *Memory) Put(addr int, data []byte) error {
	m.lock.Lock()
	defer m.lock.Unlock()
	if addr < 0 || addr+len(data) > len(m.data) {
		return errors.Wrapf(ErrOutOfRange, "put %d+%d", addr, len(data))
	}
	copy(m.data[addr:], data)
	m.writes++
	return nil
}

// Writes counts successful Put calls.
func (m *Memory) Writes() int {
	m.lock.Lock()
	defer m.lock.Unlock()
	return m.writes
}

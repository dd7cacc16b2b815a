package eeprom

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

func TestMemory(t *testing.T) {
	m := NewMemory(8)
	buf := make([]byte, 4)
	require.NoError(t, m.Get(2, buf))
	require.Equal(t, []byte{Erased, Erased, Erased, Erased}, buf)

	require.NoError(t, m.Put(2, []byte{1, 2, 3}))
	require.NoError(t, m.Get(1, buf))
	require.Equal(t, []byte{Erased, 1, 2, 3}, buf)
	require.Equal(t, 1, m.Writes())

	require.Equal(t, ErrOutOfRange, errors.Cause(m.Get(6, buf)))
	require.Equal(t, ErrOutOfRange, errors.Cause(m.Put(-1, buf)))
	require.Equal(t, ErrOutOfRange, errors.Cause(m.Put(7, []byte{1, 2})))
	require.Equal(t, 1, m.Writes())
}

func TestStorm(t *testing.T) {
	dir, err := ioutil.TempDir("", "gservo-eeprom")
	require.NoError(t, err)
	defer os.RemoveAll(dir)
	path := filepath.Join(dir, "eeprom.db")

	s, err := OpenStorm(path)
	require.NoError(t, err)
	buf := make([]byte, 4)
	require.NoError(t, s.Get(0, buf))
	require.Equal(t, []byte{Erased, Erased, Erased, Erased}, buf)

	require.NoError(t, s.Put(0, []byte{9, 8}))
	require.NoError(t, s.Close())

	s, err = OpenStorm(path)
	require.NoError(t, err)
	defer s.Close()
	require.NoError(t, s.Get(0, buf))
	require.Equal(t, []byte{9, 8, Erased, Erased}, buf)
}

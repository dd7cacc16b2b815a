package settings

import (
	"github.com/pkg/errors"
)

// RecordAddress is where the Record image lives in the store.
const RecordAddress = 0

// Store is a byte-addressed persistent store.
type Store interface {
	// Get fills buf with the bytes at addr.
	Get(addr int, buf []byte) error
	// Put writes data at addr.
	Put(addr int, data []byte) error
}

// Load reads rec from the store. On failure rec is left Unset.
func Load(s Store, rec *Record) error {
	buf := make([]byte, ImageSize)
	if err := s.Get(RecordAddress, buf); err != nil {
		*rec = Unset()
		return errors.Wrap(err, "read settings")
	}
	return rec.UnmarshalBinary(buf)
}

// Save writes rec to the store.
func Save(s Store, rec *Record) error {
	data, err := rec.MarshalBinary()
	if err != nil {
		return err
	}
	return errors.Wrap(s.Put(RecordAddress, data), "write settings")
}

package eeprom

import (
	"strconv"

	"github.com/asdine/storm"
	"github.com/golang/glog"
	"github.com/pkg/errors"
)

const stormBucket = "eeprom"

// Storm persists blobs by address in a storm (bolt) database.
type Storm struct {
	DB *storm.DB
}

// OpenStorm opens or creates the database file at path.
func OpenStorm(path string) (*Storm, error) {
	db, err := storm.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "open eeprom %s", path)
	}
	glog.Infof("eeprom: %s", path)
	return &Storm{DB: db}, nil
}

// Get implements settings.Store. Missing addresses read as erased.
func (s *Storm) Get(addr int, buf []byte) error {
	var data []byte
	err := s.DB.Get(stormBucket, strconv.Itoa(addr), &data)
	if err != nil && err != storm.ErrNotFound {
		return errors.Wrapf(err, "eeprom get %d", addr)
	}
	n := copy(buf, data)
	for i := n; i < len(buf); i++ {
		buf[i] = Erased
	}
	return nil
}

// Put implements settings.Store.
func (s *Storm) Put(addr int, data []byte) error {
	if addr < 0 {
		return errors.Wrapf(ErrOutOfRange, "put %d", addr)
	}
	return errors.Wrapf(s.DB.Set(stormBucket, strconv.Itoa(addr), data), "eeprom put %d", addr)
}

// Close implements io.Closer.
func (s *Storm) Close() error {
	return s.DB.Close()
}

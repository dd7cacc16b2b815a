// Package settings holds the tunable configuration record, its
// register table and its persisted image.
package settings

import (
	"bytes"
	"encoding/binary"
	"math"

	"github.com/pkg/errors"

	"github.com/robotalks/gservo/pkg/axis"
)

// Record is the configuration record. Every field is float32 so the
// NaN sentinel marks values never configured.
type Record struct {
	HomingPullOff float32
	Speed         axis.Vec
	Accel         axis.Vec
	Zero          axis.Vec
	P             axis.Vec
	I             axis.Vec
	D             axis.Vec
	Punch         axis.Vec
	Torque        axis.Vec
}

// Persisted image header.
const (
	ImageMagic    uint16 = 0x7367
	SchemaVersion uint16 = 1
)

// ImageSize is the byte size of a persisted Record.
const ImageSize = 4 + 4*(1+8*axis.Axes)

// ErrSchemaMismatch indicates a persisted image from another layout
// or an erased store.
var ErrSchemaMismatch = errors.New("settings image schema mismatch")

// Defaults returns the compiled-in defaults.
func Defaults() Record {
	return Record{
		Speed:  axis.Const(0),
		Accel:  axis.Const(0),
		Zero:   axis.Const(0),
		P:      axis.Const(0.1),
		I:      axis.Const(0),
		D:      axis.Const(0.05),
		Punch:  axis.Const(0),
		Torque: axis.Const(1),
	}
}

// Unset returns a Record with every field unset.
func Unset() Record {
	nan := float32(math.NaN())
	return Record{
		HomingPullOff: nan,
		Speed:         axis.Unset(),
		Accel:         axis.Unset(),
		Zero:          axis.Unset(),
		P:             axis.Unset(),
		I:             axis.Unset(),
		D:             axis.Unset(),
		Punch:         axis.Unset(),
		Torque:        axis.Unset(),
	}
}

type image struct {
	Magic   uint16
	Version uint16
	Record  Record
}

// MarshalBinary encodes the persisted image.
func (r *Record) MarshalBinary() ([]byte, error) {
	var buf bytes.Buffer
	buf.Grow(ImageSize)
	err := binary.Write(&buf, binary.LittleEndian, &image{Magic: ImageMagic, Version: SchemaVersion, Record: *r})
	return buf.Bytes(), err
}

// UnmarshalBinary decodes the persisted image. On a short image or a
// header mismatch the record becomes Unset and ErrSchemaMismatch is
// returned.
func (r *Record) UnmarshalBinary(data []byte) error {
	var img image
	if len(data) < ImageSize {
		*r = Unset()
		return ErrSchemaMismatch
	}
	if err := binary.Read(bytes.NewReader(data[:ImageSize]), binary.LittleEndian, &img); err != nil {
		*r = Unset()
		return errors.Wrap(err, "decode settings image")
	}
	if img.Magic != ImageMagic || img.Version != SchemaVersion {
		*r = Unset()
		return ErrSchemaMismatch
	}
	*r = img.Record
	return nil
}

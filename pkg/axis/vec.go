// Package axis provides fixed-size per-axis vectors.
package axis

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Axes is the number of controlled axes.
const Axes = 2

// Names are the axis letters used by the line protocol.
var Names = [Axes]byte{'x', 'y'}

// Vec holds one engineering-unit value per axis.
// A NaN element means the axis is unspecified.
type Vec [Axes]float32

// Ticks holds one device-unit value per axis.
type Ticks [Axes]int32

// Const broadcasts val to all axes.
func Const(val float32) (v Vec) {
	for i := range v {
		v[i] = val
	}
	return
}

// Unset returns a Vec with all axes unspecified.
func Unset() Vec {
	return Const(float32(math.NaN()))
}

// Has tells whether axis i is specified.
func (v Vec) Has(i int) bool {
	return !isNaN(v[i])
}

// Any tells whether at least one axis is specified.
func (v Vec) Any() bool {
	for i := range v {
		if v.Has(i) {
			return true
		}
	}
	return false
}

// All tells whether every axis is specified.
func (v Vec) All() bool {
	for i := range v {
		if !v.Has(i) {
			return false
		}
	}
	return true
}

// Min returns the smallest specified element, +Inf if none.
func (v Vec) Min() float32 {
	m := float32(math.Inf(1))
	for _, c := range v {
		if !isNaN(c) && c < m {
			m = c
		}
	}
	return m
}

// Max returns the largest specified element, -Inf if none.
func (v Vec) Max() float32 {
	m := float32(math.Inf(-1))
	for _, c := range v {
		if !isNaN(c) && c > m {
			m = c
		}
	}
	return m
}

// Add adds elementwise.
func (v Vec) Add(o Vec) Vec {
	for i := range v {
		v[i] += o[i]
	}
	return v
}

// Sub subtracts elementwise.
func (v Vec) Sub(o Vec) Vec {
	for i := range v {
		v[i] -= o[i]
	}
	return v
}

// Mul multiplies elementwise.
func (v Vec) Mul(o Vec) Vec {
	for i := range v {
		v[i] *= o[i]
	}
	return v
}

// Div divides elementwise.
func (v Vec) Div(o Vec) Vec {
	for i := range v {
		v[i] /= o[i]
	}
	return v
}

// Scale multiplies every element by s.
func (v Vec) Scale(s float32) Vec {
	return v.Mul(Const(s))
}

// Offset adds s to every element.
func (v Vec) Offset(s float32) Vec {
	return v.Add(Const(s))
}

// Neg negates every element.
func (v Vec) Neg() Vec {
	for i := range v {
		v[i] = -v[i]
	}
	return v
}

// Clamp limits every element into [lo, hi]. NaN stays NaN.
func (v Vec) Clamp(lo, hi float32) Vec {
	for i, c := range v {
		if !isNaN(c) {
			v[i] = mgl32.Clamp(c, lo, hi)
		}
	}
	return v
}

// Round rounds to the nearest integer, half away from zero.
// Unspecified axes become 0.
func (v Vec) Round() (t Ticks) {
	for i, c := range v {
		if !isNaN(c) {
			t[i] = int32(mgl32.Round(c, 0))
		}
	}
	return
}

// Float converts device units to floating point.
func (t Ticks) Float() (v Vec) {
	for i, c := range t {
		v[i] = float32(c)
	}
	return
}

// Clamp limits every element into [lo, hi].
func (t Ticks) Clamp(lo, hi int32) Ticks {
	for i, c := range t {
		if c < lo {
			t[i] = lo
		} else if c > hi {
			t[i] = hi
		}
	}
	return t
}

func isNaN(f float32) bool {
	return math.IsNaN(float64(f))
}

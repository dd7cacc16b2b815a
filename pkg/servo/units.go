// Package servo drives one servo per axis and converts between
// engineering and device units.
package servo

import (
	"github.com/robotalks/gservo/pkg/axis"
)

// Units describes the device unit scales of a servo family.
type Units struct {
	Name string

	// Deg is degrees per position tick.
	Deg, DegInv float32
	// Speed is degrees per minute per speed unit.
	Speed, SpeedInv float32
	// Accel is degrees/s² per unit, 0 when unsupported.
	Accel, AccelInv float32

	MaxPos   int32
	MaxSpeed int32
	MaxAccel int32
}

func newUnits(name string, rpm, deg, accel float32, maxPos, maxSpeed, maxAccel int32) Units {
	u := Units{
		Name:     name,
		Deg:      deg,
		DegInv:   1 / deg,
		Speed:    rpm * 360,
		SpeedInv: 1 / (rpm * 360),
		Accel:    accel,
		MaxPos:   maxPos,
		MaxSpeed: maxSpeed,
		MaxAccel: maxAccel,
	}
	if accel != 0 {
		u.AccelInv = 1 / accel
	}
	return u
}

// Unit tables of the supported families.
var (
	AX = newUnits("ax", 0.111, 300.0/1023.0, 0, 1023, 1023, 0)
	MX = newUnits("mx", 0.916, 0.088, 8.583, 4095, 1023, 254)
)

// MaxSpeedDegPerMin is the fastest speed in degrees per minute.
func (u *Units) MaxSpeedDegPerMin() float32 {
	return float32(u.MaxSpeed) * u.Speed
}

// PosToDevice converts degrees to ticks, rounding.
func (u *Units) PosToDevice(v axis.Vec) axis.Ticks {
	return v.Scale(u.DegInv).Round()
}

// PosFromDevice converts ticks to degrees.
func (u *Units) PosFromDevice(t axis.Ticks) axis.Vec {
	return t.Float().Scale(u.Deg)
}

// SpeedToDevice converts degrees per minute to speed units, rounding.
func (u *Units) SpeedToDevice(v axis.Vec) axis.Ticks {
	return v.Scale(u.SpeedInv).Round()
}

// SpeedFromDevice converts speed units to degrees per minute.
func (u *Units) SpeedFromDevice(t axis.Ticks) axis.Vec {
	return t.Float().Scale(u.Speed)
}

package settings

import (
	"math"

	"github.com/robotalks/gservo/pkg/axis"
)

// Capacity is the fixed number of registry slots.
const Capacity = 32

// Register IDs exposed as $<id>. Per-axis IDs add the axis index.
const (
	IDHomingPullOff uint = 27
	IDSpeed         uint = 110
	IDAccel         uint = 120
	IDZero          uint = 140
	IDP             uint = 200
	IDI             uint = 210
	IDD             uint = 220
	IDPunch         uint = 230
	IDTorque        uint = 240
)

type entry struct {
	id  uint
	val *float32
}

// Registry binds register IDs to the fields of one Record.
// ID 0 marks an unused slot.
type Registry struct {
	entries [Capacity]entry
	count   int
}

// NewRegistry builds the table over rec. The table refers to the
// fields of rec, which must outlive it.
func NewRegistry(rec *Record) *Registry {
	r := &Registry{}
	r.add(IDHomingPullOff, &rec.HomingPullOff)
	for i := 0; i < axis.Axes; i++ {
		ax := uint(i)
		r.add(IDSpeed+ax, &rec.Speed[i])
		r.add(IDAccel+ax, &rec.Accel[i])
		r.add(IDZero+ax, &rec.Zero[i])
		r.add(IDP+ax, &rec.P[i])
		r.add(IDI+ax, &rec.I[i])
		r.add(IDD+ax, &rec.D[i])
		r.add(IDPunch+ax, &rec.Punch[i])
		r.add(IDTorque+ax, &rec.Torque[i])
	}
	r.sort()
	return r
}

func (r *Registry) add(id uint, val *float32) {
	if r.count >= Capacity {
		panic("settings registry full")
	}
	r.entries[r.count] = entry{id: id, val: val}
	r.count++
}

// Get returns the value of id, NaN if unknown.
func (r *Registry) Get(id uint) float32 {
	for _, e := range r.entries {
		if e.id == id && e.val != nil {
			return *e.val
		}
	}
	return float32(math.NaN())
}

// Set writes val to every entry of id. Unknown IDs are ignored.
func (r *Registry) Set(id uint, val float32) {
	for _, e := range r.entries {
		if e.id == id && e.val != nil {
			*e.val = val
		}
	}
}

// AnyUnset tells whether any managed field holds NaN.
func (r *Registry) AnyUnset() bool {
	for _, e := range r.entries {
		if e.val != nil && math.IsNaN(float64(*e.val)) {
			return true
		}
	}
	return false
}

// Enumerate calls fn with each entry in ascending ID order.
func (r *Registry) Enumerate(fn func(id uint, val float32)) {
	r.sort()
	for _, e := range r.entries {
		if e.id == 0 {
			return
		}
		fn(e.id, *e.val)
	}
}

// IDs lists the registered IDs in ascending order.
func (r *Registry) IDs() []uint {
	ids := make([]uint, 0, r.count)
	r.Enumerate(func(id uint, _ float32) {
		ids = append(ids, id)
	})
	return ids
}

func (r *Registry) used() int {
	for i, e := range r.entries {
		if e.id == 0 {
			return i
		}
	}
	return len(r.entries)
}

// sort is a stable insertion sort over the used slots.
func (r *Registry) sort() {
	n := r.used()
	for i := 1; i < n; i++ {
		for j := i; j > 0 && r.entries[j-1].id > r.entries[j].id; j-- {
			r.entries[j], r.entries[j-1] = r.entries[j-1], r.entries[j]
		}
	}
}

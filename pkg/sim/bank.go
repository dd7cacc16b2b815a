// Package sim simulates a bank of servos behind the bus contract.
package sim

import (
	"encoding/binary"
	"math"
	"sync"
	"time"

	"github.com/golang/glog"

	dxl "github.com/robotalks/gservo/pkg/dynamixel"
	fx "github.com/robotalks/gservo/pkg/framework"
)

// Defaults of a simulated servo, matching an MX-28.
const (
	DefaultModel      uint16  = 29
	DefaultPosition   uint16  = 2048
	DefaultMaxPos     uint16  = 4095
	DefaultSpeedScale float64 = 0.916 * 4096 / 60
)

// WriteRecord is one write observed by the Bank.
type WriteRecord struct {
	ID    dxl.ID
	Addr  byte
	Value uint16
}

type servo struct {
	table [dxl.ControlTableSize]byte
	pos   float64
}

func (s *servo) word(addr byte) uint16 {
	return binary.LittleEndian.Uint16(s.table[addr:])
}

func (s *servo) setWord(addr byte, v uint16) {
	binary.LittleEndian.PutUint16(s.table[addr:], v)
}

// Bank is a set of simulated servos. It implements dxl.Bus.
type Bank struct {
	// SpeedScale is the number of ticks per second moved per
	// moving speed unit.
	SpeedScale float64

	lock   sync.Mutex
	servos map[dxl.ID]*servo
	fails  map[dxl.ID]dxl.Status
	log    []WriteRecord
	last   time.Time
}

// NewBank creates a Bank with servos of the given ids.
func NewBank(ids ...dxl.ID) *Bank {
	b := &Bank{
		SpeedScale: DefaultSpeedScale,
		servos:     make(map[dxl.ID]*servo),
		fails:      make(map[dxl.ID]dxl.Status),
	}
	for _, id := range ids {
		s := &servo{pos: float64(DefaultPosition)}
		s.setWord(dxl.RegModelNumber, DefaultModel)
		s.table[dxl.RegID] = byte(id)
		s.table[dxl.RegBaudRate] = dxl.BaudFast
		s.setWord(dxl.RegCCWAngleLimit, DefaultMaxPos)
		s.setWord(dxl.RegMaxTorque, 1023)
		s.setWord(dxl.RegTorqueLimit, 1023)
		s.setWord(dxl.RegGoalPosition, DefaultPosition)
		s.setWord(dxl.RegPresentPosition, DefaultPosition)
		b.servos[id] = s
	}
	return b
}

// Ping implements dxl.Pinger.
func (b *Bank) Ping(id dxl.ID) dxl.Status {
	b.lock.Lock()
	defer b.lock.Unlock()
	_, st := b.lookup(id)
	return st
}

func (b *Bank) lookup(id dxl.ID) (*servo, dxl.Status) {
	s := b.servos[id]
	if s == nil {
		return nil, dxl.ComError | dxl.Timeout
	}
	return s, b.fails[id]
}

// Read implements dxl.Bus.
func (b *Bank) Read(id dxl.ID, addr byte, buf []byte) dxl.Status {
	b.lock.Lock()
	defer b.lock.Unlock()
	s, st := b.lookup(id)
	if s == nil || !st.OK() {
		return st
	}
	if int(addr)+len(buf) > len(s.table) {
		return dxl.RangeError
	}
	copy(buf, s.table[addr:])
	return dxl.StatusOK
}

// Write implements dxl.Bus. A broadcast write applies to every servo,
// except an ID change which is ignored.
func (b *Bank) Write(id dxl.ID, addr byte, data []byte) dxl.Status {
	b.lock.Lock()
	defer b.lock.Unlock()
	b.record(id, addr, data)
	if id == dxl.BroadcastID {
		if int(addr) <= int(dxl.RegID) && int(addr)+len(data) > int(dxl.RegID) {
			glog.Warningf("sim: broadcast id change ignored")
			return dxl.StatusOK
		}
		for sid, s := range b.servos {
			if b.fails[sid].OK() {
				b.store(sid, s, addr, data)
			}
		}
		return dxl.StatusOK
	}
	s, st := b.lookup(id)
	if s == nil || !st.OK() {
		return st
	}
	if int(addr)+len(data) > len(s.table) {
		return dxl.RangeError
	}
	b.store(id, s, addr, data)
	return dxl.StatusOK
}

func (b *Bank) record(id dxl.ID, addr byte, data []byte) {
	rec := WriteRecord{ID: id, Addr: addr}
	if len(data) == 1 {
		rec.Value = uint16(data[0])
	} else if len(data) >= 2 {
		rec.Value = binary.LittleEndian.Uint16(data)
	}
	b.log = append(b.log, rec)
}

func (b *Bank) store(id dxl.ID, s *servo, addr byte, data []byte) {
	if int(addr)+len(data) > len(s.table) {
		return
	}
	copy(s.table[addr:], data)
	end := int(addr) + len(data)
	// a new goal turns the torque on like real servos do
	if int(addr) <= int(dxl.RegGoalPosition) && end > int(dxl.RegGoalPosition) {
		s.table[dxl.RegTorqueEnable] = 1
	}
	if newID := dxl.ID(s.table[dxl.RegID]); newID != id {
		glog.V(1).Infof("sim: servo %d becomes %d", id, newID)
		delete(b.servos, id)
		b.servos[newID] = s
	}
}

// Fail makes every access to id return st until Fail(id, StatusOK).
func (b *Bank) Fail(id dxl.ID, st dxl.Status) {
	b.lock.Lock()
	defer b.lock.Unlock()
	if st.OK() {
		delete(b.fails, id)
	} else {
		b.fails[id] = st
	}
}

// SetPosition places the servo at ticks, goal included.
func (b *Bank) SetPosition(id dxl.ID, ticks uint16) {
	b.lock.Lock()
	defer b.lock.Unlock()
	if s := b.servos[id]; s != nil {
		s.pos = float64(ticks)
		s.setWord(dxl.RegPresentPosition, ticks)
		s.setWord(dxl.RegGoalPosition, ticks)
	}
}

// Register returns the raw table value of the servo at addr.
func (b *Bank) Register(id dxl.ID, addr byte, size int) uint16 {
	b.lock.Lock()
	defer b.lock.Unlock()
	s := b.servos[id]
	if s == nil {
		return 0
	}
	if size == 1 {
		return uint16(s.table[addr])
	}
	return s.word(addr)
}

// Log returns the writes recorded since the last ResetLog.
func (b *Bank) Log() []WriteRecord {
	b.lock.Lock()
	defer b.lock.Unlock()
	return append([]WriteRecord(nil), b.log...)
}

// ResetLog clears recorded writes.
func (b *Bank) ResetLog() {
	b.lock.Lock()
	b.log = nil
	b.lock.Unlock()
}

// Advance moves every servo toward its goal for dt.
func (b *Bank) Advance(dt time.Duration) {
	b.lock.Lock()
	defer b.lock.Unlock()
	for _, s := range b.servos {
		if s.table[dxl.RegTorqueEnable] == 0 {
			continue
		}
		goal := float64(s.word(dxl.RegGoalPosition))
		speed := float64(s.word(dxl.RegMovingSpeed) & 0x3ff)
		if speed == 0 {
			s.pos = goal
		} else {
			step := b.SpeedScale * speed * dt.Seconds()
			if d := goal - s.pos; math.Abs(d) <= step {
				s.pos = goal
			} else {
				s.pos += math.Copysign(step, d)
			}
		}
		s.setWord(dxl.RegPresentPosition, uint16(math.Round(s.pos)))
		if s.pos != goal {
			s.table[dxl.RegMoving] = 1
		} else {
			s.table[dxl.RegMoving] = 0
		}
	}
}

// Control implements fx.Controller, advancing by loop time.
func (b *Bank) Control(cc fx.ControlContext) error {
	now := cc.Time()
	if !b.last.IsZero() {
		b.Advance(now.Sub(b.last))
	}
	b.last = now
	return nil
}

// AddToLoop implements fx.LoopAdder.
func (b *Bank) AddToLoop(l *fx.Loop) {
	l.AddController(fx.PrLvActuate, b)
}

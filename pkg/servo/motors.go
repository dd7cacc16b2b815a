package servo

import (
	"github.com/golang/glog"

	"github.com/robotalks/gservo/pkg/axis"
	dxl "github.com/robotalks/gservo/pkg/dynamixel"
	"github.com/robotalks/gservo/pkg/settings"
)

// Motors drives one servo per axis.
type Motors struct {
	Bus   dxl.Bus
	Units Units

	motors [axis.Axes]*dxl.Motor
	goal   axis.Ticks
	curr   axis.Ticks
	status dxl.Status
}

// DefaultIDs assigns servo IDs 1..Axes.
func DefaultIDs() (ids [axis.Axes]dxl.ID) {
	for i := range ids {
		ids[i] = dxl.ID(i + 1)
	}
	return
}

// NewMotors creates Motors with the servo of axis i at ids[i].
func NewMotors(bus dxl.Bus, units Units, ids [axis.Axes]dxl.ID) *Motors {
	m := &Motors{Bus: bus, Units: units}
	for i, id := range ids {
		m.motors[i] = dxl.NewMotor(bus, id)
	}
	return m
}

// Init probes every servo, puts it into joint mode and takes the
// present positions as the goal.
func (m *Motors) Init() dxl.Status {
	m.status = dxl.StatusOK
	for i, mot := range m.motors {
		m.status |= mot.Init()
		mot.JointMode(0, uint16(m.Units.MaxPos))
		glog.V(1).Infof("servo %c: id %d model %d status %q", axis.Names[i], mot.ID, mot.Model(), mot.Status().Error())
	}
	m.curr = m.currentTicks()
	m.goal = m.curr
	return m.status
}

func toU16(t axis.Ticks, i int) uint16 {
	return uint16(t[i])
}

// ApplySettings writes the tunables of rec to every servo.
func (m *Motors) ApplySettings(rec *settings.Record) dxl.Status {
	u := &m.Units
	acc := rec.Accel.Scale(u.AccelInv).Clamp(0, float32(u.MaxAccel)).Round()
	p := rec.P.Scale(254).Clamp(0, 254).Round()
	ig := rec.I.Scale(254).Clamp(0, 254).Round()
	d := rec.D.Scale(254).Clamp(0, 254).Round()
	punch := rec.Punch.Scale(1023).Clamp(0, 1023).Round()
	torque := rec.Torque.Scale(1023).Clamp(0, 1023).Round()

	m.status = dxl.StatusOK
	for i, mot := range m.motors {
		m.status |= mot.Write16(dxl.RegMovingSpeed, 0)
		m.status |= mot.Write8(dxl.RegGoalAccel, byte(acc[i]))
		m.status |= mot.Write8(dxl.RegDGain, byte(d[i]))
		m.status |= mot.Write8(dxl.RegIGain, byte(ig[i]))
		m.status |= mot.Write8(dxl.RegPGain, byte(p[i]))
		m.status |= mot.Write16(dxl.RegPunch, toU16(punch, i))
		m.status |= mot.Write16(dxl.RegTorqueLimit, toU16(torque, i))
		m.status |= mot.Write16(dxl.RegMaxTorque, toU16(torque, i))
	}
	return m.status
}

// Enable switches torque on all servos (ax < 0) or a single axis.
func (m *Motors) Enable(on bool, ax int) dxl.Status {
	if ax >= axis.Axes {
		m.status = dxl.InternalError
		return m.status
	}
	if ax < 0 {
		var v byte
		if on {
			v = 1
		}
		m.status = dxl.WriteByte8(m.Bus, dxl.BroadcastID, dxl.RegTorqueEnable, v)
		return m.status
	}
	m.status = m.motors[ax].EnableTorque(on)
	return m.status
}

// Loop refreshes the present positions.
func (m *Motors) Loop() {
	m.curr = m.currentTicks()
}

// Move sets the speed in degrees/minute and the goal in degrees.
func (m *Motors) Move(goal, speed axis.Vec) dxl.Status {
	u := &m.Units
	ms := speed.Clamp(0, u.MaxSpeedDegPerMin()).Scale(u.SpeedInv).Clamp(0, float32(u.MaxSpeed)).Round()
	for i, mot := range m.motors {
		mot.Speed(toU16(ms, i))
	}
	m.goal = goal.Scale(u.DegInv).Clamp(0, float32(u.MaxPos)).Round()
	return m.sendGoal()
}

// Stop holds the servos at their present positions.
func (m *Motors) Stop() dxl.Status {
	m.goal = m.curr
	return m.sendGoal()
}

// IsMoving tells whether the last refreshed position differs from the goal.
func (m *Motors) IsMoving() bool {
	return m.goal != m.curr
}

// CurrentPos reads the present positions in degrees.
func (m *Motors) CurrentPos() axis.Vec {
	return m.Units.PosFromDevice(m.currentTicks())
}

// ChangeID rewrites the ID register of a servo.
func (m *Motors) ChangeID(id, newID dxl.ID) dxl.Status {
	m.status = dxl.WriteByte8(m.Bus, id, dxl.RegID, byte(newID))
	return m.status
}

// GetID reads the ID register, 0xff on failure.
func (m *Motors) GetID(id dxl.ID) dxl.ID {
	v, s := dxl.ReadByte8(m.Bus, id, dxl.RegID)
	if m.status = s; !s.OK() {
		return 0xff
	}
	return dxl.ID(v)
}

// LED switches the LED of a servo.
func (m *Motors) LED(on bool, id dxl.ID) dxl.Status {
	var v byte
	if on {
		v = 1
	}
	m.status = dxl.WriteByte8(m.Bus, id, dxl.RegLED, v)
	return m.status
}

// ChangeBaud switches a servo between 1 Mbps and 9600 bps.
func (m *Motors) ChangeBaud(fast bool, id dxl.ID) dxl.Status {
	v := dxl.BaudSlow
	if fast {
		v = dxl.BaudFast
	}
	m.status = dxl.WriteByte8(m.Bus, id, dxl.RegBaudRate, v)
	return m.status
}

// Read reads a word register, 0xffff on failure.
func (m *Motors) Read(addr byte, id dxl.ID) uint16 {
	v, s := dxl.ReadWord(m.Bus, id, addr)
	if m.status = s; !s.OK() {
		return 0xffff
	}
	return v
}

// Status is the composite status of the last operation.
func (m *Motors) Status() dxl.Status {
	return m.status
}

func (m *Motors) currentTicks() (t axis.Ticks) {
	for i, mot := range m.motors {
		t[i] = int32(mot.CurrentPosition())
	}
	return
}

func (m *Motors) sendGoal() dxl.Status {
	for i, mot := range m.motors {
		mot.GoalPosition(toU16(m.goal, i))
	}
	m.status = dxl.StatusOK
	for _, mot := range m.motors {
		if s := mot.Status(); !s.OK() {
			m.status = s
			break
		}
	}
	return m.status
}

package dynamixel

// Motor is a handle of one servo on a Bus.
type Motor struct {
	Bus Bus
	ID  ID

	model  uint16
	pos    uint16
	status Status
}

// NewMotor creates a Motor.
func NewMotor(bus Bus, id ID) *Motor {
	return &Motor{Bus: bus, ID: id}
}

// Init pings the servo and reads its model number.
func (m *Motor) Init() Status {
	if m.status = Ping(m.Bus, m.ID); m.status.OK() {
		m.model, m.status = ReadWord(m.Bus, m.ID, RegModelNumber)
	}
	return m.status
}

// Model is the model number read by Init.
func (m *Motor) Model() uint16 {
	return m.model
}

// JointMode sets the angle limits, enabling position control.
func (m *Motor) JointMode(min, max uint16) Status {
	m.status = WriteWord(m.Bus, m.ID, RegCWAngleLimit, min) |
		WriteWord(m.Bus, m.ID, RegCCWAngleLimit, max)
	return m.status
}

// Speed sets the moving speed in device units.
func (m *Motor) Speed(v uint16) Status {
	return m.Write16(RegMovingSpeed, v)
}

// GoalPosition sets the goal position in ticks.
func (m *Motor) GoalPosition(v uint16) Status {
	return m.Write16(RegGoalPosition, v)
}

// CurrentPosition reads the present position in ticks. On failure
// the last successfully read position is returned.
func (m *Motor) CurrentPosition() uint16 {
	v, s := ReadWord(m.Bus, m.ID, RegPresentPosition)
	if m.status = s; s.OK() {
		m.pos = v
	}
	return m.pos
}

// EnableTorque switches the torque on or off.
func (m *Motor) EnableTorque(on bool) Status {
	var v byte
	if on {
		v = 1
	}
	return m.Write8(RegTorqueEnable, v)
}

// Write8 writes a byte register.
func (m *Motor) Write8(addr, v byte) Status {
	m.status = WriteByte8(m.Bus, m.ID, addr, v)
	return m.status
}

// Write16 writes a word register.
func (m *Motor) Write16(addr byte, v uint16) Status {
	m.status = WriteWord(m.Bus, m.ID, addr, v)
	return m.status
}

// Read8 reads a byte register.
func (m *Motor) Read8(addr byte) (byte, Status) {
	var v byte
	v, m.status = ReadByte8(m.Bus, m.ID, addr)
	return v, m.status
}

// Read16 reads a word register.
func (m *Motor) Read16(addr byte) (uint16, Status) {
	var v uint16
	v, m.status = ReadWord(m.Bus, m.ID, addr)
	return v, m.status
}

// Status is the result of the last operation.
func (m *Motor) Status() Status {
	return m.status
}

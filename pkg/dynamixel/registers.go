package dynamixel

// Control table addresses.
const (
	RegModelNumber     byte = 0x00
	RegID              byte = 0x03
	RegBaudRate        byte = 0x04
	RegCWAngleLimit    byte = 0x06
	RegCCWAngleLimit   byte = 0x08
	RegMaxTorque       byte = 0x0E
	RegTorqueEnable    byte = 0x18
	RegLED             byte = 0x19
	RegDGain           byte = 0x1A
	RegIGain           byte = 0x1B
	RegPGain           byte = 0x1C
	RegGoalPosition    byte = 0x1E
	RegMovingSpeed     byte = 0x20
	RegTorqueLimit     byte = 0x22
	RegPresentPosition byte = 0x24
	RegPresentSpeed    byte = 0x26
	RegMoving          byte = 0x2E
	RegPunch           byte = 0x30
	RegGoalAccel       byte = 0x49
)

// ControlTableSize covers every address above.
const ControlTableSize = 0x50

// Baud rate register values.
const (
	BaudFast byte = 1   // 1 Mbps
	BaudSlow byte = 207 // 9600 bps
)

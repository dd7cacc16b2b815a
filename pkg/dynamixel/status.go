// Package dynamixel implements the servo bus contract and the
// Dynamixel protocol 1.0 transport.
package dynamixel

// Status is the bitmask result of a bus operation.
type Status byte

// Device error bits reported in the status packet.
const (
	StatusOK          Status = 0
	InputVoltageError Status = 1 << 0
	AngleLimitError   Status = 1 << 1
	OverheatingError  Status = 1 << 2
	RangeError        Status = 1 << 3
	ChecksumError     Status = 1 << 4
	OverloadError     Status = 1 << 5
	InstructionError  Status = 1 << 6

	// ComError marks a transport failure. Combined with it,
	// Timeout and ChecksumError describe the response.
	ComError Status = 1 << 7
	Timeout  Status = 1 << 0

	// InternalError is reported for invalid call parameters.
	InternalError Status = 0xff
)

var deviceErrors = []struct {
	bit Status
	msg string
}{
	{InputVoltageError, "invalid input voltage"},
	{AngleLimitError, "angle limit error"},
	{OverheatingError, "overheating"},
	{RangeError, "out of range value"},
	{ChecksumError, "invalid command checksum"},
	{OverloadError, "overload"},
	{InstructionError, "invalid instruction"},
}

// OK tells whether no error bit is set.
func (s Status) OK() bool {
	return s == StatusOK
}

// Error implements error.
func (s Status) Error() string {
	switch {
	case s == StatusOK:
		return ""
	case s == InternalError:
		return "Invalid command parameters"
	case s&ComError != 0:
		if s&Timeout != 0 {
			return "communication error, timeout"
		}
		if s&ChecksumError != 0 {
			return "communication error, invalid response checksum"
		}
		return "communication error"
	}
	for _, e := range deviceErrors {
		if s&e.bit != 0 {
			return e.msg
		}
	}
	return "unknown error"
}

// Err returns nil for StatusOK, otherwise the status itself.
func (s Status) Err() error {
	if s == StatusOK {
		return nil
	}
	return s
}

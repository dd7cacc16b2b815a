// Package protocol parses the G-code-like line protocol.
package protocol

import (
	"github.com/robotalks/gservo/pkg/axis"
)

// Mode is the motion mode selected by a g-word.
type Mode uint

// Known modes. Other values are passed through.
const (
	ModeFast   Mode = 0
	ModeNormal Mode = 1
)

// Callbacks receives parsed commands.
type Callbacks interface {
	EOL()
	Homing()
	Stop()
	SetMode(Mode)
	SetSpeed(float32)
	Move(pos axis.Vec, report bool)
	ReportCurrentPos()
	SetSetting(id uint, val float32, hasVal bool)
	ShowSetting(id uint)
	ShowSettings()
	ServoID(cmd uint, id, val int)
	Help()
	Error(msg string)
	ErrorPos(c byte, pos int)
}

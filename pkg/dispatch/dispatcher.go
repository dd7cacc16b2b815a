// Package dispatch executes parsed commands against the actuator
// and the settings.
package dispatch

import (
	"bytes"
	"fmt"
	"io"
	"math"
	"strconv"

	"github.com/golang/glog"

	"github.com/robotalks/gservo/pkg/axis"
	dxl "github.com/robotalks/gservo/pkg/dynamixel"
	"github.com/robotalks/gservo/pkg/protocol"
	"github.com/robotalks/gservo/pkg/settings"
)

// Pseudo settings handled by the dispatcher.
const (
	IDEnableAll  uint = 1
	IDEnableAxis uint = 250
)

// Admin commands of %<cmd>.
const (
	AdminID   uint = 0
	AdminLED  uint = 1
	AdminRead uint = 2
)

// Actuator moves the axes. It is implemented by servo.Motors.
type Actuator interface {
	Init() dxl.Status
	ApplySettings(*settings.Record) dxl.Status
	Enable(on bool, ax int) dxl.Status
	Loop()
	Move(goal, speed axis.Vec) dxl.Status
	Stop() dxl.Status
	IsMoving() bool
	CurrentPos() axis.Vec
	ChangeID(id, newID dxl.ID) dxl.Status
	GetID(id dxl.ID) dxl.ID
	LED(on bool, id dxl.ID) dxl.Status
	Read(addr byte, id dxl.ID) uint16
	Status() dxl.Status
}

// Dispatcher implements protocol.Callbacks.
type Dispatcher struct {
	act   Actuator
	store settings.Store
	out   io.Writer

	rec settings.Record
	reg *settings.Registry

	report   bool
	fast     bool
	override float32
}

var _ protocol.Callbacks = (*Dispatcher)(nil)

// New creates a Dispatcher writing responses to out.
func New(act Actuator, store settings.Store, out io.Writer) *Dispatcher {
	d := &Dispatcher{act: act, store: store, out: out, rec: settings.Defaults()}
	d.reg = settings.NewRegistry(&d.rec)
	return d
}

// Record returns a copy of the settings in effect.
func (d *Dispatcher) Record() settings.Record {
	return d.rec
}

// Begin initializes the actuator and loads the settings.
func (d *Dispatcher) Begin() {
	d.act.Init()
	d.EOL()
	if err := settings.Load(d.store, &d.rec); err != nil {
		glog.Warningf("load settings: %v", err)
	}
	if d.reg.AnyUnset() {
		glog.Info("settings: using defaults")
		d.rec = settings.Defaults()
	}
	d.act.ApplySettings(&d.rec)
}

// Loop refreshes the actuator and reports a finished move.
func (d *Dispatcher) Loop() {
	was := d.act.IsMoving()
	d.act.Loop()
	if was && !d.act.IsMoving() {
		d.stopped()
	}
}

func (d *Dispatcher) stopped() {
	if d.report {
		d.ReportCurrentPos()
		d.report = false
	}
}

func (d *Dispatcher) print(args ...interface{}) {
	fmt.Fprint(d.out, args...)
}

func formatFloat(v float32) string {
	switch f := float64(v); {
	case math.IsNaN(f):
		return "nan"
	case math.IsInf(f, 1):
		return "inf"
	case math.IsInf(f, -1):
		return "-inf"
	default:
		return strconv.FormatFloat(f, 'f', 2, 32)
	}
}

// EOL implements protocol.Callbacks.
func (d *Dispatcher) EOL() {
	if s := d.act.Status(); !s.OK() {
		d.print("Error: ", s.Error(), "\n")
	}
}

// Help implements protocol.Callbacks.
func (d *Dispatcher) Help() {
	writeHelp(d.out)
}

// Error implements protocol.Callbacks.
func (d *Dispatcher) Error(msg string) {
	d.print(msg, "; ")
}

// ErrorPos implements protocol.Callbacks.
func (d *Dispatcher) ErrorPos(c byte, pos int) {
	fmt.Fprintf(d.out, " char %c at %d; ", c, pos)
}

// ReportCurrentPos implements protocol.Callbacks.
func (d *Dispatcher) ReportCurrentPos() {
	pos := d.act.CurrentPos().Sub(d.rec.Zero)
	var buf bytes.Buffer
	buf.WriteString("MPos:")
	for _, v := range pos {
		buf.WriteString(formatFloat(v))
		buf.WriteByte(',')
	}
	buf.WriteString("0\n")
	d.out.Write(buf.Bytes())
}

// Homing implements protocol.Callbacks.
func (d *Dispatcher) Homing() {
	d.Move(axis.Const(d.rec.HomingPullOff), false)
}

// SetMode implements protocol.Callbacks.
func (d *Dispatcher) SetMode(m protocol.Mode) {
	d.fast = m == protocol.ModeFast
}

// SetSpeed implements protocol.Callbacks. The override stays
// until changed.
func (d *Dispatcher) SetSpeed(v float32) {
	d.override = v
}

// Move implements protocol.Callbacks.
func (d *Dispatcher) Move(pos axis.Vec, report bool) {
	d.report = report
	goal := d.act.CurrentPos()
	for i := range pos {
		if pos.Has(i) {
			goal[i] = pos[i] + d.rec.Zero[i]
		}
	}
	speed := d.rec.Speed
	if !d.fast && d.override > 0 {
		speed = axis.Const(d.override)
	}
	d.act.Move(goal, speed)
}

// Stop implements protocol.Callbacks.
func (d *Dispatcher) Stop() {
	d.act.Stop()
}

// SetSetting implements protocol.Callbacks. Unknown IDs are
// acknowledged without effect.
func (d *Dispatcher) SetSetting(id uint, val float32, hasVal bool) {
	switch {
	case id == IDEnableAll:
		d.act.Enable(val == 255, -1)
	case id >= IDEnableAxis && id < IDEnableAxis+axis.Axes:
		d.act.Enable(hasVal && val > 0, int(id-IDEnableAxis))
	default:
		before := d.image()
		if !hasVal {
			def := settings.Defaults()
			val = settings.NewRegistry(&def).Get(id)
		}
		d.reg.Set(id, val)
		d.act.ApplySettings(&d.rec)
		if after := d.image(); before == nil || after == nil || !bytes.Equal(before, after) {
			if err := settings.Save(d.store, &d.rec); err != nil {
				glog.Errorf("save settings: %v", err)
			}
		}
	}
	d.print("Ok\n")
}

// image is the persisted form of the settings, nil if it can't be
// encoded, in which case the settings are always saved.
func (d *Dispatcher) image() []byte {
	data, err := d.rec.MarshalBinary()
	if err != nil {
		glog.Warningf("encode settings: %v", err)
		return nil
	}
	return data
}

// ShowSetting implements protocol.Callbacks.
func (d *Dispatcher) ShowSetting(id uint) {
	d.printSetting(id, d.reg.Get(id))
}

// ShowSettings implements protocol.Callbacks.
func (d *Dispatcher) ShowSettings() {
	d.reg.Enumerate(d.printSetting)
}

func (d *Dispatcher) printSetting(id uint, val float32) {
	d.print("$", id, "=", formatFloat(val), "\n")
}

// ServoID implements protocol.Callbacks.
func (d *Dispatcher) ServoID(cmd uint, id, val int) {
	target := dxl.BroadcastID
	if id >= 0 {
		target = dxl.ID(id)
	}
	switch cmd {
	case AdminID:
		if val >= 0 {
			d.act.ChangeID(target, dxl.ID(val))
		} else {
			d.print(uint(d.act.GetID(target)), "\n")
		}
	case AdminLED:
		d.act.LED(val > 0, target)
	case AdminRead:
		if id >= 0 && val >= 0 {
			d.print(d.act.Read(byte(val), target), "\n")
		}
	default:
		d.print("Wrong command ", cmd, "\n")
	}
}

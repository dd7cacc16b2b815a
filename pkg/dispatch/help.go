package dispatch

import (
	"fmt"
	"io"
	"strings"

	"github.com/robotalks/gservo/pkg/axis"
	"github.com/robotalks/gservo/pkg/settings"
)

type helpLine struct {
	usage, desc string
}

type axisSetting struct {
	base uint
	def  string
	desc string
}

var axisSettings = []axisSetting{
	{settings.IDSpeed, "0", "set speed deg/min %c, zero is full speed"},
	{settings.IDAccel, "0", "set acceleration deg/s^2 %c, zero is full acceleration"},
	{settings.IDZero, "0", "set zero position deg %c"},
	{settings.IDP, "0.1", "set proportional gain %c, from 0 to 1"},
	{settings.IDI, "0", "set integral gain %c, from 0 to 1"},
	{settings.IDD, "0.05", "set derivative gain %c, from 0 to 1"},
	{settings.IDPunch, "0", "set punch %c, from 0 to 1"},
	{settings.IDTorque, "1", "set torque %c, from 0 to 1"},
	{IDEnableAxis, "1", "set enable %c, 1 or 0"},
}

func helpLines() []helpLine {
	x := axis.Names[0]
	lines := []helpLine{
		{"$h", "homing to zero position"},
		{"g0 x%.2f y%.2f", "generic movement"},
		{"g1 x%.2f y%.2f f%.2f", "generic movement with given speed"},
		{"g0 x%.2f m2", "x axis only movement and report position after move"},
		{fmt.Sprintf("%c%%.2f", x), "x axis only movement"},
		{"?", "ask current position"},
		{"!", "stop at current position"},
		{"", ""},
		{"%0 id newId", "set servo id use id=254 to broadcast"},
		{"%1 id bool", "turn servo led to 1=on, 0=off"},
		{"%2 id val", "generic read"},
		{"%%", "show help"},
		{"", ""},
		{"$$", "show setting"},
		{"$1=255", "set enable all axes, any other value disables"},
		{fmt.Sprintf("$%d=0", settings.IDHomingPullOff), "homing pull off, deg"},
	}
	for _, s := range axisSettings {
		for i, n := range axis.Names {
			lines = append(lines, helpLine{
				usage: fmt.Sprintf("$%d=%s", s.base+uint(i), s.def),
				desc:  fmt.Sprintf(s.desc, n),
			})
		}
	}
	return lines
}

var helpText = func() string {
	var sb strings.Builder
	sb.WriteString("\n Application:\n")
	for _, l := range helpLines() {
		if l.usage == "" {
			sb.WriteString("\n")
			continue
		}
		fmt.Fprintf(&sb, "%-24s | %s\n", l.usage, l.desc)
	}
	return sb.String()
}()

func writeHelp(w io.Writer) {
	io.WriteString(w, helpText)
}

package firmware

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/require"

	dxl "github.com/robotalks/gservo/pkg/dynamixel"
	"github.com/robotalks/gservo/pkg/eeprom"
	fx "github.com/robotalks/gservo/pkg/framework"
	"github.com/robotalks/gservo/pkg/link"
	"github.com/robotalks/gservo/pkg/servo"
	"github.com/robotalks/gservo/pkg/sim"
)

type countingWriter struct {
	bytes.Buffer
	writes int
}

func (w *countingWriter) Write(p []byte) (int, error) {
	w.writes++
	return w.Buffer.Write(p)
}

type brokenWriter struct{}

func (brokenWriter) Write([]byte) (int, error) {
	return 0, errors.New("gone")
}

func newFirmware(out io.Writer) (*Firmware, *sim.Bank) {
	bank := sim.NewBank(1, 2)
	motors := servo.NewMotors(bank, servo.MX, servo.DefaultIDs())
	return New(motors, eeprom.NewMemory(256), out), bank
}

func TestFeedAndTick(t *testing.T) {
	out := &countingWriter{}
	f, _ := newFirmware(out)
	f.Feed([]byte("?\n$110\n"))
	require.Zero(t, out.writes)
	require.NoError(t, f.Tick())
	require.Equal(t, 1, out.writes)
	require.Equal(t, "MPos:180.22,180.22,0\n$110=0.00\n", out.String())

	require.NoError(t, f.Tick())
	require.Equal(t, 1, out.writes, "nothing to flush")
}

func TestBeginReportsFault(t *testing.T) {
	out := &countingWriter{}
	bank := sim.NewBank(1)
	f := New(servo.NewMotors(bank, servo.MX, servo.DefaultIDs()), eeprom.NewMemory(256), out)
	require.NoError(t, f.Tick())
	require.Equal(t, "Error: communication error, timeout\n", out.String())
}

func TestLoop(t *testing.T) {
	out := &countingWriter{}
	f, bank := newFirmware(out)
	loop := fx.NewLoop()
	loop.Add(f, bank)
	ctx := context.Background()

	loop.PostMessage(&link.InputMsg{Data: []byte("?\n"), Source: "test"})
	loop.PostMessage("other")
	loop.RunIteration(ctx)
	require.Equal(t, "MPos:180.22,180.22,0\n", out.String())

	out.Reset()
	loop.PostMessage(&link.InputMsg{Data: []byte("g0 x10 m2\n"), Source: "test"})
	loop.RunIteration(ctx)
	require.Empty(t, out.String())
	require.Equal(t, uint16(114), bank.Register(1, dxl.RegGoalPosition, 2))

	loop.RunIteration(ctx)
	require.Equal(t, "MPos:10.03,180.22,0\n", out.String())
	loop.RunIteration(ctx)
	require.Equal(t, "MPos:10.03,180.22,0\n", out.String())
}

func TestWriteError(t *testing.T) {
	f, _ := newFirmware(brokenWriter{})
	f.Feed([]byte("?\n"))
	require.Error(t, f.Tick())

	require.NoError(t, f.Tick(), "failed reply is dropped")

	loop := fx.NewLoop().Add(f)
	loop.PostMessage(&link.InputMsg{Data: []byte("?\n")})
	loop.RunIteration(context.Background())
	require.NoError(t, f.Tick())
}

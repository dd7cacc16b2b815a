package sim

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	dxl "github.com/robotalks/gservo/pkg/dynamixel"
)

func TestBankReadWrite(t *testing.T) {
	b := NewBank(1, 2)
	model, s := dxl.ReadWord(b, 1, dxl.RegModelNumber)
	require.Equal(t, dxl.StatusOK, s)
	require.Equal(t, DefaultModel, model)

	require.Equal(t, dxl.StatusOK, dxl.WriteWord(b, 2, dxl.RegPunch, 300))
	v, s := dxl.ReadWord(b, 2, dxl.RegPunch)
	require.Equal(t, dxl.StatusOK, s)
	require.Equal(t, uint16(300), v)

	require.Equal(t, dxl.ComError|dxl.Timeout, dxl.WriteByte8(b, 9, dxl.RegLED, 1))
	_, s = dxl.ReadByte8(b, 9, dxl.RegID)
	require.Equal(t, dxl.ComError|dxl.Timeout, s)
	require.Equal(t, dxl.RangeError, b.Read(1, dxl.ControlTableSize-1, make([]byte, 2)))

	require.Equal(t, []WriteRecord{
		{ID: 2, Addr: dxl.RegPunch, Value: 300},
		{ID: 9, Addr: dxl.RegLED, Value: 1},
	}, b.Log())
	b.ResetLog()
	require.Empty(t, b.Log())
}

func TestBankBroadcast(t *testing.T) {
	b := NewBank(1, 2)
	require.Equal(t, dxl.StatusOK, dxl.WriteByte8(b, dxl.BroadcastID, dxl.RegTorqueEnable, 1))
	require.Equal(t, uint16(1), b.Register(1, dxl.RegTorqueEnable, 1))
	require.Equal(t, uint16(1), b.Register(2, dxl.RegTorqueEnable, 1))
}

func TestBankChangeID(t *testing.T) {
	b := NewBank(1)
	require.Equal(t, dxl.StatusOK, dxl.WriteByte8(b, 1, dxl.RegID, 5))
	require.Equal(t, dxl.ComError|dxl.Timeout, dxl.Ping(b, 1))
	id, s := dxl.ReadByte8(b, 5, dxl.RegID)
	require.Equal(t, dxl.StatusOK, s)
	require.Equal(t, byte(5), id)
}

func TestBankBroadcastChangeID(t *testing.T) {
	b := NewBank(1, 2)
	require.Equal(t, dxl.StatusOK, dxl.WriteByte8(b, dxl.BroadcastID, dxl.RegID, 7))
	for _, id := range []dxl.ID{1, 2} {
		require.Equal(t, dxl.StatusOK, dxl.Ping(b, id))
	}
	require.Equal(t, dxl.ComError|dxl.Timeout, dxl.Ping(b, 7))
}

func TestBankFail(t *testing.T) {
	b := NewBank(1)
	b.Fail(1, dxl.OverheatingError)
	require.Equal(t, dxl.OverheatingError, dxl.Ping(b, 1))
	require.Equal(t, dxl.OverheatingError, dxl.WriteWord(b, 1, dxl.RegGoalPosition, 10))
	b.Fail(1, dxl.StatusOK)
	require.Equal(t, dxl.StatusOK, dxl.Ping(b, 1))
}

func TestBankAdvance(t *testing.T) {
	b := NewBank(1)
	b.SpeedScale = 10
	b.SetPosition(1, 100)

	// torque off: nothing moves
	b.Advance(time.Second)
	require.Equal(t, uint16(100), b.Register(1, dxl.RegPresentPosition, 2))

	require.Equal(t, dxl.StatusOK, dxl.WriteWord(b, 1, dxl.RegMovingSpeed, 5))
	require.Equal(t, dxl.StatusOK, dxl.WriteWord(b, 1, dxl.RegGoalPosition, 200))
	require.Equal(t, uint16(1), b.Register(1, dxl.RegTorqueEnable, 1))

	b.Advance(time.Second)
	require.Equal(t, uint16(150), b.Register(1, dxl.RegPresentPosition, 2))
	require.Equal(t, uint16(1), b.Register(1, dxl.RegMoving, 1))
	b.Advance(2 * time.Second)
	require.Equal(t, uint16(200), b.Register(1, dxl.RegPresentPosition, 2))
	require.Equal(t, uint16(0), b.Register(1, dxl.RegMoving, 1))

	// speed 0 jumps to the goal
	require.Equal(t, dxl.StatusOK, dxl.WriteWord(b, 1, dxl.RegMovingSpeed, 0))
	require.Equal(t, dxl.StatusOK, dxl.WriteWord(b, 1, dxl.RegGoalPosition, 10))
	b.Advance(time.Millisecond)
	require.Equal(t, uint16(10), b.Register(1, dxl.RegPresentPosition, 2))

	require.Equal(t, dxl.StatusOK, dxl.WriteByte8(b, 1, dxl.RegTorqueEnable, 0))
	require.Equal(t, dxl.StatusOK, dxl.WriteWord(b, 1, dxl.RegGoalPosition, 20))
	require.Equal(t, dxl.StatusOK, dxl.WriteByte8(b, 1, dxl.RegTorqueEnable, 0))
	b.Advance(time.Second)
	require.Equal(t, uint16(10), b.Register(1, dxl.RegPresentPosition, 2))
}

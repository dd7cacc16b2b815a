package dynamixel

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStatusError(t *testing.T) {
	testCases := []struct {
		status Status
		msg    string
	}{
		{InternalError, "Invalid command parameters"},
		{ComError | Timeout, "communication error, timeout"},
		{ComError | Timeout | ChecksumError, "communication error, timeout"},
		{ComError | ChecksumError, "communication error, invalid response checksum"},
		{ComError, "communication error"},
		{InputVoltageError | OverloadError, "invalid input voltage"},
		{AngleLimitError, "angle limit error"},
		{OverheatingError, "overheating"},
		{RangeError | InstructionError, "out of range value"},
		{ChecksumError, "invalid command checksum"},
		{OverloadError, "overload"},
		{InstructionError, "invalid instruction"},
	}
	for _, tc := range testCases {
		t.Run(tc.msg, func(t *testing.T) {
			require.Equal(t, tc.msg, tc.status.Error())
			require.Equal(t, tc.status, tc.status.Err())
			require.False(t, tc.status.OK())
		})
	}
	require.NoError(t, StatusOK.Err())
	require.True(t, StatusOK.OK())
}

func TestPacket(t *testing.T) {
	testCases := []struct {
		name   string
		packet Packet
		expect []byte
	}{
		{"ping", Packet{ID: 1, Instruction: InstPing}, []byte{0xff, 0xff, 1, 2, 1, 0xfb}},
		{"read", Packet{ID: 1, Instruction: InstRead, Params: []byte{0x24, 2}}, []byte{0xff, 0xff, 1, 4, 2, 0x24, 2, 0xd2}},
		{"broadcast write", Packet{ID: BroadcastID, Instruction: InstWrite, Params: []byte{0x18, 1}}, []byte{0xff, 0xff, 0xfe, 4, 3, 0x18, 1, 0xe1}},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.expect, tc.packet.Bytes())
			var buf bytes.Buffer
			n, err := tc.packet.WriteTo(&buf)
			require.NoError(t, err)
			require.Equal(t, tc.expect, buf.Bytes())
			require.EqualValues(t, len(tc.expect), n)
		})
	}
}

func parseAll(p *Parser, in []byte) (pkts []*StatusPacket, badSums int) {
	for _, b := range in {
		pr := p.Parse(b)
		if pr.Packet != nil {
			pkts = append(pkts, pr.Packet)
		}
		if pr.BadChecksum {
			badSums++
		}
	}
	return
}

func TestParser(t *testing.T) {
	word := &StatusPacket{ID: 1, Error: StatusOK, Params: []byte{0x20, 0}}
	empty := &StatusPacket{ID: 1, Error: StatusOK, Params: []byte{}}
	testCases := []struct {
		name    string
		in      []byte
		pkts    []*StatusPacket
		badSums int
	}{
		{"word", []byte{0xff, 0xff, 1, 4, 0, 0x20, 0, 0xda}, []*StatusPacket{word}, 0},
		{"empty", []byte{0xff, 0xff, 1, 2, 0, 0xfc}, []*StatusPacket{empty}, 0},
		{"garbage before", []byte{0x12, 0xff, 0x34, 0xff, 0xff, 1, 2, 0, 0xfc}, []*StatusPacket{empty}, 0},
		{"extra header", []byte{0xff, 0xff, 0xff, 1, 2, 0, 0xfc}, []*StatusPacket{empty}, 0},
		{"bad length", []byte{0xff, 0xff, 1, 1, 0xff, 0xff, 1, 2, 0, 0xfc}, []*StatusPacket{empty}, 0},
		{"bad checksum", []byte{0xff, 0xff, 1, 2, 0, 0xfd, 0xff, 0xff, 1, 2, 0, 0xfc}, []*StatusPacket{empty}, 1},
		{"two", []byte{0xff, 0xff, 1, 2, 0, 0xfc, 0xff, 0xff, 1, 4, 0, 0x20, 0, 0xda}, []*StatusPacket{empty, word}, 0},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var p Parser
			pkts, bad := parseAll(&p, tc.in)
			require.Equal(t, tc.pkts, pkts)
			require.Equal(t, tc.badSums, bad)
			require.False(t, p.Receiving())
		})
	}
}

func TestParserStatusBytes(t *testing.T) {
	pkt := &StatusPacket{ID: 7, Error: OverloadError, Params: []byte{1, 2, 3}}
	var p Parser
	pkts, bad := parseAll(&p, pkt.Bytes())
	require.Zero(t, bad)
	require.Equal(t, []*StatusPacket{pkt}, pkts)
}

// fakePort answers each request with the next queued reply.
type fakePort struct {
	sent    [][]byte
	replies [][]byte
	in      bytes.Buffer
}

func (p *fakePort) Write(b []byte) (int, error) {
	p.sent = append(p.sent, append([]byte(nil), b...))
	if len(p.replies) > 0 {
		p.in.Write(p.replies[0])
		p.replies = p.replies[1:]
	}
	return len(b), nil
}

func (p *fakePort) Read(b []byte) (int, error) {
	return p.in.Read(b)
}

func TestPortBus(t *testing.T) {
	t.Run("read word", func(t *testing.T) {
		port := &fakePort{replies: [][]byte{{0xff, 0xff, 1, 4, 0, 0x20, 0, 0xda}}}
		bus := NewPortBus(port)
		v, s := ReadWord(bus, 1, RegPresentPosition)
		require.Equal(t, StatusOK, s)
		require.Equal(t, uint16(0x20), v)
		require.Equal(t, [][]byte{{0xff, 0xff, 1, 4, 2, 0x24, 2, 0xd2}}, port.sent)
	})
	t.Run("device error", func(t *testing.T) {
		reply := (&StatusPacket{ID: 2, Error: OverheatingError}).Bytes()
		port := &fakePort{replies: [][]byte{reply}}
		require.Equal(t, OverheatingError, WriteByte8(NewPortBus(port), 2, RegLED, 1))
	})
	t.Run("ping", func(t *testing.T) {
		port := &fakePort{replies: [][]byte{{0xff, 0xff, 1, 2, 0, 0xfc}}}
		require.Equal(t, StatusOK, Ping(NewPortBus(port), 1))
		require.Equal(t, [][]byte{{0xff, 0xff, 1, 2, 1, 0xfb}}, port.sent)
	})
	t.Run("timeout", func(t *testing.T) {
		port := &fakePort{}
		require.Equal(t, ComError|Timeout, WriteWord(NewPortBus(port), 1, RegGoalPosition, 100))
	})
	t.Run("bad checksum", func(t *testing.T) {
		port := &fakePort{replies: [][]byte{{0xff, 0xff, 1, 2, 0, 0x00}}}
		require.Equal(t, ComError|ChecksumError, WriteWord(NewPortBus(port), 1, RegGoalPosition, 100))
	})
	t.Run("wrong id", func(t *testing.T) {
		reply := (&StatusPacket{ID: 3}).Bytes()
		port := &fakePort{replies: [][]byte{reply}}
		require.Equal(t, ComError, WriteWord(NewPortBus(port), 1, RegGoalPosition, 100))
	})
	t.Run("broadcast", func(t *testing.T) {
		port := &fakePort{}
		require.Equal(t, StatusOK, WriteByte8(NewPortBus(port), BroadcastID, RegTorqueEnable, 1))
		require.Len(t, port.sent, 1)
		require.Equal(t, InternalError, NewPortBus(port).Read(BroadcastID, RegID, make([]byte, 1)))
	})
}

func TestMotor(t *testing.T) {
	pos := (&StatusPacket{ID: 1, Params: []byte{0x00, 0x08}}).Bytes()
	port := &fakePort{replies: [][]byte{pos}}
	m := NewMotor(NewPortBus(port), 1)
	require.Equal(t, uint16(0x800), m.CurrentPosition())
	require.Equal(t, StatusOK, m.Status())
	// no reply: the last good position is kept
	require.Equal(t, uint16(0x800), m.CurrentPosition())
	require.Equal(t, ComError|Timeout, m.Status())
}

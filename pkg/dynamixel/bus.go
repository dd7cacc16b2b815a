package dynamixel

import (
	"encoding/binary"
	"io"
	"sync"
	"time"

	"github.com/golang/glog"
)

// Bus is a half-duplex servo bus.
type Bus interface {
	// Read fills buf from the control table of id starting at addr.
	Read(id ID, addr byte, buf []byte) Status
	// Write stores data into the control table of id at addr.
	Write(id ID, addr byte, data []byte) Status
}

// Pinger is implemented by buses supporting the ping instruction.
type Pinger interface {
	Ping(id ID) Status
}

// Ping checks the presence of id. Buses without Pinger are
// probed by reading the ID register.
func Ping(bus Bus, id ID) Status {
	if p, ok := bus.(Pinger); ok {
		return p.Ping(id)
	}
	_, s := ReadByte8(bus, id, RegID)
	return s
}

// ReadByte8 reads a single byte register.
func ReadByte8(bus Bus, id ID, addr byte) (byte, Status) {
	var b [1]byte
	s := bus.Read(id, addr, b[:])
	return b[0], s
}

// ReadWord reads a little-endian 16-bit register.
func ReadWord(bus Bus, id ID, addr byte) (uint16, Status) {
	var b [2]byte
	s := bus.Read(id, addr, b[:])
	return binary.LittleEndian.Uint16(b[:]), s
}

// WriteByte8 writes a single byte register.
func WriteByte8(bus Bus, id ID, addr byte, val byte) Status {
	return bus.Write(id, addr, []byte{val})
}

// WriteWord writes a little-endian 16-bit register.
func WriteWord(bus Bus, id ID, addr byte, val uint16) Status {
	var b [2]byte
	binary.LittleEndian.PutUint16(b[:], val)
	return bus.Write(id, addr, b[:])
}

// DefaultTimeout is used when PortBus.Timeout is zero.
const DefaultTimeout = 20 * time.Millisecond

// PortBus speaks protocol 1.0 over a byte stream.
// Port reads are expected to return (0, nil) or io.EOF when no data
// is available, like a serial port opened with a read timeout.
type PortBus struct {
	Port    io.ReadWriter
	Timeout time.Duration

	lock   sync.Mutex
	parser Parser
	rbuf   [64]byte
}

// NewPortBus creates a PortBus over port.
func NewPortBus(port io.ReadWriter) *PortBus {
	return &PortBus{Port: port, Timeout: DefaultTimeout}
}

// Ping implements Pinger.
func (b *PortBus) Ping(id ID) Status {
	_, s := b.transact(&Packet{ID: id, Instruction: InstPing}, 0)
	return s
}

// Read implements Bus.
func (b *PortBus) Read(id ID, addr byte, buf []byte) Status {
	if id == BroadcastID || len(buf) == 0 || len(buf) > 0xff {
		return InternalError
	}
	pkt, s := b.transact(&Packet{
		ID:          id,
		Instruction: InstRead,
		Params:      []byte{addr, byte(len(buf))},
	}, len(buf))
	if pkt != nil {
		copy(buf, pkt.Params)
	}
	return s
}

// Write implements Bus.
func (b *PortBus) Write(id ID, addr byte, data []byte) Status {
	if len(data) == 0 {
		return InternalError
	}
	params := make([]byte, 0, len(data)+1)
	params = append(params, addr)
	_, s := b.transact(&Packet{
		ID:          id,
		Instruction: InstWrite,
		Params:      append(params, data...),
	}, 0)
	return s
}

func (b *PortBus) transact(req *Packet, replyLen int) (*StatusPacket, Status) {
	b.lock.Lock()
	defer b.lock.Unlock()

	if _, err := req.WriteTo(b.Port); err != nil {
		glog.V(1).Infof("bus write id %d: %v", req.ID, err)
		return nil, ComError
	}
	if req.ID == BroadcastID {
		return nil, StatusOK
	}

	timeout := b.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	deadline := time.Now().Add(timeout)
	b.parser.Reset()
	for {
		n, err := b.Port.Read(b.rbuf[:])
		for _, c := range b.rbuf[:n] {
			pr := b.parser.Parse(c)
			if pr.BadChecksum {
				return nil, ComError | ChecksumError
			}
			if pkt := pr.Packet; pkt != nil {
				if pkt.ID != req.ID || len(pkt.Params) != replyLen {
					glog.V(1).Infof("bus unexpected reply id %d len %d", pkt.ID, len(pkt.Params))
					return nil, ComError
				}
				return pkt, pkt.Error
			}
		}
		if err == io.EOF {
			return nil, ComError | Timeout
		}
		if err != nil {
			glog.V(1).Infof("bus read id %d: %v", req.ID, err)
			return nil, ComError
		}
		if time.Now().After(deadline) {
			return nil, ComError | Timeout
		}
	}
}

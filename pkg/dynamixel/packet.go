package dynamixel

import (
	"io"
)

// ID addresses a servo on the bus.
type ID byte

// BroadcastID addresses every servo; it is never answered.
const BroadcastID ID = 254

// Instruction is the instruction code of a request.
type Instruction byte

// Instructions used by this package.
const (
	InstPing  Instruction = 1
	InstRead  Instruction = 2
	InstWrite Instruction = 3
)

const header byte = 0xff

// Packet is an instruction packet.
type Packet struct {
	ID          ID
	Instruction Instruction
	Params      []byte
}

// StatusPacket is a reply from a servo.
type StatusPacket struct {
	ID     ID
	Error  Status
	Params []byte
}

func checksum(id ID, length, code byte, params []byte) byte {
	sum := byte(id) + length + code
	for _, b := range params {
		sum += b
	}
	return ^sum
}

// Bytes returns encoded bytes for sending.
func (p *Packet) Bytes() []byte {
	l := byte(len(p.Params) + 2)
	b := make([]byte, 0, len(p.Params)+6)
	b = append(b, header, header, byte(p.ID), l, byte(p.Instruction))
	b = append(b, p.Params...)
	return append(b, checksum(p.ID, l, byte(p.Instruction), p.Params))
}

// WriteTo implements io.WriterTo.
func (p *Packet) WriteTo(w io.Writer) (int64, error) {
	n, err := w.Write(p.Bytes())
	return int64(n), err
}

// Bytes encodes the status packet, as a servo would send it.
func (p *StatusPacket) Bytes() []byte {
	l := byte(len(p.Params) + 2)
	b := make([]byte, 0, len(p.Params)+6)
	b = append(b, header, header, byte(p.ID), l, byte(p.Error))
	b = append(b, p.Params...)
	return append(b, checksum(p.ID, l, byte(p.Error), p.Params))
}

package dynamixel

// Parser parses status packets byte by byte.
type Parser struct {
	state   parseState
	packet  *StatusPacket
	length  byte
	recvLen int
}

// ParseResult indicates the result after one parsing step.
type ParseResult struct {
	// Packet is set when a complete, valid packet is received.
	Packet *StatusPacket
	// BadChecksum is set when a complete packet failed the checksum.
	BadChecksum bool
}

type parseState int

const (
	stateHeader1 parseState = iota // waiting for first 0xff
	stateHeader2                   // waiting for second 0xff
	stateID                        // waiting for servo ID
	stateLen                       // waiting for length
	stateErr                       // waiting for error byte
	stateParams                    // waiting for params
	stateChecksum                  // waiting for checksum
)

// Reset drops any partially received packet.
func (p *Parser) Reset() {
	p.state, p.packet = stateHeader1, nil
}

// Receiving tells whether a packet is partially received.
func (p *Parser) Receiving() bool {
	return p.state != stateHeader1
}

// Parse consumes one byte.
func (p *Parser) Parse(b byte) (pr ParseResult) {
	switch p.state {
	case stateHeader1:
		if b == header {
			p.state = stateHeader2
		}
	case stateHeader2:
		if b == header {
			p.state = stateID
		} else {
			p.Reset()
		}
	case stateID:
		if b == header {
			// tolerate extra header bytes
			return
		}
		p.packet = &StatusPacket{ID: ID(b)}
		p.state = stateLen
	case stateLen:
		if b < 2 {
			p.Reset()
			return
		}
		p.length = b
		p.packet.Params, p.recvLen = make([]byte, b-2), 0
		p.state = stateErr
	case stateErr:
		p.packet.Error = Status(b)
		if len(p.packet.Params) == 0 {
			p.state = stateChecksum
		} else {
			p.state = stateParams
		}
	case stateParams:
		p.packet.Params[p.recvLen] = b
		p.recvLen++
		if p.recvLen >= len(p.packet.Params) {
			p.state = stateChecksum
		}
	case stateChecksum:
		pkt := p.packet
		p.Reset()
		if checksum(pkt.ID, p.length, byte(pkt.Error), pkt.Params) != b {
			pr.BadChecksum = true
			return
		}
		pr.Packet = pkt
	}
	return
}

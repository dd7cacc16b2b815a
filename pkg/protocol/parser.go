package protocol

import (
	"github.com/robotalks/gservo/pkg/axis"
)

// Parser dispatches commands from a buffer of lines to Callbacks.
type Parser struct {
	cb  Callbacks
	buf []byte
	pos int
}

// NewParser creates a Parser.
func NewParser(cb Callbacks) *Parser {
	return &Parser{cb: cb}
}

// Parse processes every line in buf. A NUL byte ends the buffer.
// A failed line is reported and skipped; effects already dispatched
// from it are kept.
func (p *Parser) Parse(buf []byte) {
	p.buf, p.pos = buf, 0
	for p.pos < len(p.buf) && p.curr() != 0 {
		p.skip()
		if !p.parseLine() {
			p.cb.ErrorPos(p.curr(), p.pos)
			p.cb.EOL()
			p.skipLine()
		}
	}
	p.buf = nil
}

func (p *Parser) parseLine() bool {
	switch {
	case p.consume('?', true):
		p.cb.ReportCurrentPos()
	case p.consume('!', true):
		p.cb.Stop()
	case p.checkAxis() >= 0:
		if !p.parseMove() {
			return p.fail("expect move")
		}
	case p.consume('g', true):
		code, ok := p.parseUnsigned()
		if !ok {
			return p.fail("expect unsigned integer")
		}
		p.cb.SetMode(Mode(code))
		if !p.parseMove() {
			return p.fail("expect move")
		}
	case p.consume('$', true):
		switch {
		case p.consume('$', true):
			p.cb.ShowSettings()
		case p.consume('h', true):
			p.cb.Homing()
		case !p.parseSetSetting():
			return p.fail("expect set setting")
		}
	case p.consume('%', true):
		if p.consume('%', true) {
			p.cb.Help()
			break
		}
		cmd, ok := p.parseUnsigned()
		if !ok {
			return p.fail("expect unsigned number")
		}
		id, val := -1, -1
		if v, ok := p.parseUnsigned(); ok {
			id = int(v)
			if v, ok := p.parseUnsigned(); ok {
				val = int(v)
			}
		}
		p.cb.ServoID(cmd, id, val)
	}
	return p.requireEOL()
}

func (p *Parser) parseMove() bool {
	var speed float32
	hasSpeed := false
	if p.check('f') {
		v, ok := p.parseSpeed()
		if !ok {
			return p.fail("expect convSpeed")
		}
		speed, hasSpeed = v, true
	}
	pos := axis.Unset()
	for i := p.checkAxis(); i >= 0; i = p.checkAxis() {
		p.next(true)
		v, ok := p.parseFloat()
		if !ok {
			p.cb.Error("expect floating point")
			return p.fail("expect position")
		}
		pos[i] = v
	}
	if !hasSpeed && p.check('f') {
		v, ok := p.parseSpeed()
		if !ok {
			return p.fail("expect convSpeed")
		}
		speed, hasSpeed = v, true
	}
	report := false
	if pos.Any() && p.consume('m', true) {
		if !p.consume('2', false) {
			return p.fail("expect m2")
		}
		report = true
	}
	if hasSpeed {
		p.cb.SetSpeed(speed)
	}
	if pos.Any() {
		p.cb.Move(pos, report)
	}
	return true
}

func (p *Parser) parseSpeed() (float32, bool) {
	p.consume('f', true)
	v, ok := p.parseFloat()
	if !ok {
		return 0, p.fail("expect floating point after f")
	}
	return v, true
}

func (p *Parser) parseSetSetting() bool {
	id, ok := p.parseUnsigned()
	if !ok {
		return p.fail("expect setting number")
	}
	if !p.consume('=', true) {
		p.cb.ShowSetting(id)
		return true
	}
	var val float32
	hasVal := false
	if p.checkFloat() {
		if val, ok = p.parseFloat(); !ok {
			return p.fail("expect floating point")
		}
		hasVal = true
	}
	p.cb.SetSetting(id, val, hasVal)
	return true
}

func (p *Parser) checkAxis() int {
	c := p.curr()
	for i, n := range axis.Names {
		if c == n {
			return i
		}
	}
	return -1
}

func (p *Parser) checkFloat() bool {
	return p.check('-') || p.check('.') || p.isDigit()
}

func (p *Parser) parseFloat() (float32, bool) {
	if !p.checkFloat() {
		return 0, false
	}
	negative := p.consume('-', true)
	fractional := false
	var value int64
	fraction := float32(1)
	for {
		if p.consume('.', false) {
			if fractional {
				return 0, p.fail("unexpected dot")
			}
			fractional = true
		} else if d, ok := p.consumeDigit(); ok {
			value = value*10 + int64(d)
			if fractional {
				fraction *= 0.1
			}
		} else {
			return 0, p.fail("expect digit or fraction separator")
		}
		if !p.isDigit() && !(p.check('.') && !fractional) {
			break
		}
	}
	if negative {
		value = -value
	}
	v := float32(value)
	if fractional {
		v *= fraction
	}
	p.skip()
	return v, true
}

func (p *Parser) parseUnsigned() (uint, bool) {
	d, ok := p.consumeDigit()
	if !ok {
		return 0, false
	}
	var n uint
	for ok {
		n = n*10 + d
		d, ok = p.consumeDigit()
	}
	p.skip()
	return n, true
}

func (p *Parser) isDigit() bool {
	c := p.curr()
	return c >= '0' && c <= '9'
}

func (p *Parser) consumeDigit() (uint, bool) {
	if !p.isDigit() {
		return 0, false
	}
	d := uint(p.curr() - '0')
	p.next(false)
	return d, true
}

func (p *Parser) requireEOL() bool {
	p.consume('\r', true)
	if !p.consume('\n', true) {
		return p.fail("expect end of line")
	}
	p.cb.EOL()
	return true
}

func (p *Parser) skipLine() {
	for c := p.curr(); c != 0 && c != '\n' && c != '\r'; c = p.curr() {
		p.next(false)
	}
	p.consume('\r', false)
	p.consume('\n', false)
}

func (p *Parser) fail(msg string) bool {
	p.cb.Error(msg)
	return false
}

func (p *Parser) curr() byte {
	if p.pos < len(p.buf) {
		return p.buf[p.pos]
	}
	return 0
}

func (p *Parser) check(c byte) bool {
	return p.curr() == c
}

func (p *Parser) skip() {
	for p.check(' ') {
		p.pos++
	}
}

func (p *Parser) next(skipAfter bool) {
	p.pos++
	if skipAfter {
		p.skip()
	}
}

func (p *Parser) consume(c byte, skipAfter bool) bool {
	if p.check(c) {
		p.next(skipAfter)
		return true
	}
	return false
}

// Package streamparse implements the resumable streaming parser that
// turns a growing byte buffer into a decoded Msg, accepting messages
// delivered in arbitrary-sized chunks.
package streamparse

import (
	"errors"
	"fmt"

	"github.com/openbuttnakedgang/ellocopo2/wire"
)

// Direction tells the parser which code enumeration an incoming message's
// code byte must belong to. A device parses Requests; a host parses
// Answers.
type Direction uint8

const (
	// Requests decodes the Parser's input as inbound requests (code must
	// be wire.Read or wire.Write).
	Requests Direction = iota

	// Answers decodes the Parser's input as inbound answers (code must be
	// one of the eight wire.AnswerCode values).
	Answers
)

// State is one of the four parser states.
type State uint8

const (
	ParsingHeader State = iota
	ParsingPath
	ParsingValue
	Done
)

func (s State) String() string {
	switch s {
	case ParsingHeader:
		return "ParsingHeader"
	case ParsingPath:
		return "ParsingPath"
	case ParsingValue:
		return "ParsingValue"
	case Done:
		return "Done"
	default:
		return "State(?)"
	}
}

// ParserError is the parser's error type: NeedMoreData is backpressure,
// not a failure; all the others are terminal for the current message.
type ParserError struct {
	msg string
}

func (e *ParserError) Error() string { return e.msg }

var (
	// ErrNeedMoreData means the supplied prefix does not yet contain a
	// complete message; call Parse again once more bytes have arrived.
	ErrNeedMoreData = &ParserError{"streamparse: need more data"}

	// ErrBadPathSz means the header's path_sz exceeds wire.MaxPathSize.
	ErrBadPathSz = &ParserError{"streamparse: path_sz exceeds limit"}

	// ErrBadPayloadSz means the header's payload_sz exceeds
	// wire.MaxPayloadSize.
	ErrBadPayloadSz = &ParserError{"streamparse: payload_sz exceeds limit"}

	// ErrBadCode means the header's code byte is not valid for the
	// parser's Direction.
	ErrBadCode = &ParserError{"streamparse: code not valid for this direction"}

	// ErrBadTypeID means the header's payload_ty byte does not name one
	// of the ten defined value types.
	ErrBadTypeID = &ParserError{"streamparse: unknown payload type tag"}

	// ErrBadValue means the payload bytes don't fit the declared type
	// (e.g. a BOOL payload of length 0).
	ErrBadValue = &ParserError{"streamparse: payload does not match its declared type"}

	// ErrBadSign means the message's signature byte was not wire.Sign. A
	// wrong sign byte almost certainly means stream desync, so the parser
	// rejects it rather than resyncing on garbage.
	ErrBadSign = &ParserError{"streamparse: bad signature/protocol version byte"}
)

var errUsedAfterDone = errors.New("streamparse: Parse called again after a completed message without Reset")

// Msg is a decoded (code, path, value) triple. Path and Value.Str/Bytes
// borrow the buffer passed to Parse; they are valid only until the next
// call to Parse or Reset.
type Msg struct {
	Code  byte
	Path  string
	Value wire.Value
}

// AsAnswerCode interprets Code as a wire.AnswerCode. Only meaningful for a
// Parser constructed with Answers.
func (m Msg) AsAnswerCode() wire.AnswerCode { return wire.AnswerCode(m.Code) }

// AsRequestCode interprets Code as a wire.RequestCode. Only meaningful for
// a Parser constructed with Requests.
func (m Msg) AsRequestCode() wire.RequestCode { return wire.RequestCode(m.Code) }

// Parser is a long-lived, single-message streaming decoder. One instance
// must be used per in-flight message; it is not reentrant. Each call to
// Parse is given the same prefix-growing buffer containing every byte
// received so far for the current message -- the parser advances a
// position into it but never copies or consumes it.
type Parser struct {
	dir   Direction
	state State

	header  wire.Header
	pathLo  int
	pathHi  int
	valueLo int
	valueHi int
	pos     int
}

// New returns a Parser ready to decode messages in the given direction.
func New(dir Direction) *Parser {
	return &Parser{dir: dir, state: ParsingHeader}
}

// State reports the parser's current state.
func (p *Parser) State() State { return p.state }

// Reset returns the parser to ParsingHeader so it can accept the next
// message. Parse calls this automatically on success; callers must call
// it explicitly after an error if they want to discard the in-flight
// message and start over.
func (p *Parser) Reset() {
	p.pos = 0
	p.state = ParsingHeader
	p.header = wire.Header{}
	p.pathLo, p.pathHi = 0, 0
	p.valueLo, p.valueHi = 0, 0
}

// Parse advances the parser using buf, which must contain every byte of
// the in-flight message received so far (not just the newly-arrived
// bytes). It returns ErrNeedMoreData if buf is not yet long enough to
// make progress, a decoded Msg on success (after which the parser has
// reset to ParsingHeader), or any other *ParserError on a malformed
// message, in which case the parser's state is left intact so the caller
// may inspect it or call Reset.
func (p *Parser) Parse(buf []byte) (Msg, error) {
	for {
		switch p.state {
		case ParsingHeader:
			if len(buf) < wire.HeaderSize {
				return Msg{}, ErrNeedMoreData
			}
			h, err := wire.DecodeHeader(buf)
			if err != nil {
				return Msg{}, ErrNeedMoreData
			}
			if h.Sign != wire.Sign {
				return Msg{}, ErrBadSign
			}
			if int(h.PathSize) > wire.MaxPathSize {
				return Msg{}, ErrBadPathSz
			}
			if int(h.PayloadSize) > wire.MaxPayloadSize {
				return Msg{}, ErrBadPayloadSz
			}
			p.header = h
			p.pos += wire.HeaderSize
			p.state = ParsingPath

		case ParsingPath:
			need := int(p.header.PathSize)
			if len(buf)-p.pos < need {
				return Msg{}, ErrNeedMoreData
			}
			p.pathLo, p.pathHi = p.pos, p.pos+need
			p.pos += need
			p.state = ParsingValue

		case ParsingValue:
			need := int(p.header.PayloadSize)
			if len(buf)-p.pos < need {
				return Msg{}, ErrNeedMoreData
			}
			p.valueLo, p.valueHi = p.pos, p.pos+need
			p.state = Done

			if !codeValidForDirection(p.dir, p.header.Code) {
				return Msg{}, ErrBadCode
			}
			value, err := wire.DecodePayload(wire.TypeTag(p.header.PayloadType), buf[p.valueLo:p.valueHi])
			if err != nil {
				if errors.Is(err, wire.ErrBadTypeID) {
					return Msg{}, ErrBadTypeID
				}
				return Msg{}, ErrBadValue
			}
			path := wire.BorrowString(buf[p.pathLo:p.pathHi])
			msg := Msg{Code: p.header.Code, Path: path, Value: value}
			p.Reset()
			return msg, nil

		case Done:
			panic(errUsedAfterDone)

		default:
			panic(fmt.Sprintf("streamparse: unreachable state %v", p.state))
		}
	}
}

func codeValidForDirection(dir Direction, code byte) bool {
	switch dir {
	case Requests:
		return wire.RequestCode(code).Valid()
	case Answers:
		return wire.AnswerCode(code).Valid()
	default:
		return false
	}
}

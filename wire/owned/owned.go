// Package owned provides heap-owned mirrors of wire.Value and a decoded
// message, for tools that need to hold a message across the lifetime of
// the buffer it was parsed from.
// The borrowed and owned forms are interconvertible by copy.
package owned

import "github.com/openbuttnakedgang/ellocopo2/wire"

// Value is wire.Value with STR/BYTES copied onto the heap instead of
// borrowed from a parser buffer.
type Value struct {
	Tag   wire.TypeTag
	Bool  bool
	I32   int32
	I16   int16
	I8    int8
	U32   uint32
	U16   uint16
	U8    uint8
	Str   string
	Bytes []byte
}

// FromBorrowed copies a borrowed wire.Value into an owned Value. Both Str
// and Bytes are copied: a parsed Str may alias the parser's input buffer
// just as a []byte slice aliases its backing array.
func FromBorrowed(v wire.Value) Value {
	out := Value{
		Tag: v.Tag, Bool: v.Bool, I32: v.I32, I16: v.I16, I8: v.I8,
		U32: v.U32, U16: v.U16, U8: v.U8,
	}
	if v.Str != "" {
		// the parser builds STR values by aliasing its input buffer
		// (wire.bytesToString); round-tripping through []byte forces a
		// real copy onto the heap instead of keeping that alias alive.
		out.Str = string([]byte(v.Str))
	}
	if v.Bytes != nil {
		out.Bytes = append([]byte(nil), v.Bytes...)
	}
	return out
}

// Borrow converts an owned Value back to a wire.Value. The result borrows
// o's own backing storage, which is safe for as long as o is reachable.
func (o Value) Borrow() wire.Value {
	return wire.Value{
		Tag: o.Tag, Bool: o.Bool, I32: o.I32, I16: o.I16, I8: o.I8,
		U32: o.U32, U16: o.U16, U8: o.U8, Str: o.Str, Bytes: o.Bytes,
	}
}

// Msg is the owned mirror of a decoded (code, path, value) triple.
type Msg struct {
	Code  wire.AnswerCode
	Path  string
	Value Value
}

// FromBorrowedMsg copies code/path/value, none of which may keep
// referencing the source buffer once it is reused.
func FromBorrowedMsg(code wire.AnswerCode, path string, value wire.Value) Msg {
	// the parser borrows the path out of its input buffer the same way it
	// borrows STR payloads; force a real copy here too.
	return Msg{Code: code, Path: string([]byte(path)), Value: FromBorrowed(value)}
}

package httpbridge

import "github.com/openbuttnakedgang/ellocopo2/wire"

// HumanValue is a JSON-friendly rendering of a wire.Value: one struct
// carrying every possible payload shape plus a Tag discriminator, so a
// caller can decode a value of unknown kind from a JSON body.
type HumanValue struct {
	Tag   string `json:"tag"`
	Bool  bool   `json:"bool,omitempty"`
	I32   int32  `json:"i32,omitempty"`
	I16   int16  `json:"i16,omitempty"`
	I8    int8   `json:"i8,omitempty"`
	U32   uint32 `json:"u32,omitempty"`
	U16   uint16 `json:"u16,omitempty"`
	U8    uint8  `json:"u8,omitempty"`
	Str   string `json:"str,omitempty"`
	Bytes []byte `json:"bytes,omitempty"`
}

func fromWireValue(v wire.Value) HumanValue {
	h := HumanValue{Tag: v.Tag.String()}
	switch v.Tag {
	case wire.TagBool:
		h.Bool = v.Bool
	case wire.TagI32:
		h.I32 = v.I32
	case wire.TagI16:
		h.I16 = v.I16
	case wire.TagI8:
		h.I8 = v.I8
	case wire.TagU32:
		h.U32 = v.U32
	case wire.TagU16:
		h.U16 = v.U16
	case wire.TagU8:
		h.U8 = v.U8
	case wire.TagStr:
		h.Str = v.Str
	case wire.TagBytes:
		h.Bytes = v.Bytes
	}
	return h
}

// toWireValue converts a HumanValue back to a wire.Value, keyed by Tag. An
// empty Tag defaults to UNIT, the same value a READ request's body is
// never expected to carry a payload for.
func (h HumanValue) toWireValue() (wire.Value, error) {
	switch h.Tag {
	case "", "UNIT":
		return wire.Unit(), nil
	case "BOOL":
		return wire.BoolValue(h.Bool), nil
	case "I32":
		return wire.I32Value(h.I32), nil
	case "I16":
		return wire.I16Value(h.I16), nil
	case "I8":
		return wire.I8Value(h.I8), nil
	case "U32":
		return wire.U32Value(h.U32), nil
	case "U16":
		return wire.U16Value(h.U16), nil
	case "U8":
		return wire.U8Value(h.U8), nil
	case "STR":
		return wire.StrValue(h.Str), nil
	case "BYTES":
		return wire.BytesValue(h.Bytes), nil
	default:
		return wire.Value{}, wire.ErrBadTypeID
	}
}

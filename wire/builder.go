package wire

import "errors"

// Builder errors. These are programming errors: a well-behaved caller
// never lets them reach the wire.
var (
	// ErrMissingField is returned by Build when a required field (code or
	// path) was never supplied.
	ErrMissingField = errors.New("wire: required field not set")

	// ErrOversize is returned by Build when the path or payload exceeds
	// its bound (MaxPathSize / MaxPayloadSize).
	ErrOversize = errors.New("wire: path or payload exceeds wire limit")

	// ErrBufferTooSmall is returned by Build when the destination buffer
	// cannot hold the encoded message.
	ErrBufferTooSmall = errors.New("wire: destination buffer too small")
)

// RequestBuilder assembles a request message in-place into a
// caller-provided buffer. The zero value is not ready to use; construct
// one with NewRequestBuilder.
type RequestBuilder struct {
	buf     []byte
	path    string
	havePth bool
	payload Value
	code    RequestCode
	haveCde bool
}

// NewRequestBuilder returns a builder that will write into buf. buf must
// be at least HeaderSize+MaxPathSize+MaxPayloadSize bytes to accommodate
// any legal message; Build reports ErrBufferTooSmall otherwise.
func NewRequestBuilder(buf []byte) *RequestBuilder {
	return &RequestBuilder{buf: buf, payload: Unit()}
}

// Path sets the request path. It must be called before Build.
func (b *RequestBuilder) Path(path string) *RequestBuilder {
	b.path = path
	b.havePth = true
	return b
}

// Payload sets the request's value. If never called, the request carries
// UNIT, as a READ normally would.
func (b *RequestBuilder) Payload(v Value) *RequestBuilder {
	b.payload = v
	return b
}

// Code sets the request code (READ or WRITE). It must be called before
// Build.
func (b *RequestBuilder) Code(code RequestCode) *RequestBuilder {
	b.code = code
	b.haveCde = true
	return b
}

// Build writes the header, path, and payload into the builder's buffer and
// returns the number of bytes written.
func (b *RequestBuilder) Build() (int, error) {
	if !b.haveCde {
		return 0, ErrMissingField
	}
	if !b.havePth {
		return 0, ErrMissingField
	}
	if len(b.path) > MaxPathSize {
		return 0, ErrOversize
	}
	payloadLen := b.payload.encodedLen()
	if payloadLen > MaxPayloadSize {
		return 0, ErrOversize
	}

	total := HeaderSize + len(b.path) + payloadLen
	if len(b.buf) < total {
		return 0, ErrBufferTooSmall
	}

	h := Header{
		Sign:        Sign,
		PathSize:    byte(len(b.path)),
		PayloadSize: byte(payloadLen),
		Code:        byte(b.code),
		PayloadType: byte(b.payload.Tag),
	}
	h.EncodeInto(b.buf)

	pathEnd := HeaderSize + len(b.path)
	copy(b.buf[HeaderSize:pathEnd], b.path)
	b.payload.encodeInto(b.buf[pathEnd:total])

	return total, nil
}

// AnswerBuilder assembles an answer message. In the common case it
// operates on a fresh buffer like RequestBuilder; it may also operate on a
// buffer that already holds the inbound request's header and path (the
// "in-place reply" mode device handlers use), in which case only the
// code, payload type, payload size, and any new payload bytes are
// rewritten -- the path already in the buffer is left untouched.
type AnswerBuilder struct {
	buf      []byte
	code     AnswerCode
	haveCode bool
	payload  Value
	reply    bool // true once InPlace has primed path_sz from an existing header
	pathSize byte
	path     string
}

// NewAnswerBuilder returns a builder that will write a complete message
// (header, path, payload) into buf, starting from scratch.
func NewAnswerBuilder(buf []byte) *AnswerBuilder {
	return &AnswerBuilder{buf: buf, payload: Unit()}
}

// NewAnswerInPlace returns a builder that reuses the header+path already
// present in buf (as written by a just-parsed request) and only rewrites
// the code, payload type/size, and payload bytes. reqPathSize must be the
// path_sz this buffer was built or parsed with.
func NewAnswerInPlace(buf []byte, reqPathSize byte) *AnswerBuilder {
	return &AnswerBuilder{buf: buf, payload: Unit(), reply: true, pathSize: reqPathSize}
}

// Code sets the answer code.
func (b *AnswerBuilder) Code(code AnswerCode) *AnswerBuilder {
	b.code = code
	b.haveCode = true
	return b
}

// Path sets the answer's path. Only meaningful when building from
// scratch (NewAnswerBuilder); ignored in in-place reply mode, where the
// path already in the buffer is preserved.
func (b *AnswerBuilder) Path(path string) *AnswerBuilder {
	if !b.reply {
		b.pathSize = byte(len(path))
		b.path = path
	}
	return b
}

// Payload sets the answer's value.
func (b *AnswerBuilder) Payload(v Value) *AnswerBuilder {
	b.payload = v
	return b
}

// Build writes the answer into the builder's buffer and returns the total
// number of bytes written.
func (b *AnswerBuilder) Build() (int, error) {
	if !b.haveCode {
		return 0, ErrMissingField
	}
	if !b.reply && len(b.path) > MaxPathSize {
		return 0, ErrOversize
	}

	// a UNIT payload forces payload_sz = 0 and payload_ty = UNIT
	// regardless of any previously supplied buffer contents.
	var payloadLen int
	var payloadTag TypeTag
	if b.payload.Tag == TagUnit {
		payloadLen = 0
		payloadTag = TagUnit
	} else {
		payloadLen = b.payload.encodedLen()
		payloadTag = b.payload.Tag
	}
	if payloadLen > MaxPayloadSize {
		return 0, ErrOversize
	}

	total := HeaderSize + int(b.pathSize) + payloadLen
	if len(b.buf) < total {
		return 0, ErrBufferTooSmall
	}

	h := Header{
		Sign:        Sign,
		PathSize:    b.pathSize,
		PayloadSize: byte(payloadLen),
		Code:        byte(b.code),
		PayloadType: byte(payloadTag),
	}
	h.EncodeInto(b.buf)

	pathEnd := HeaderSize + int(b.pathSize)
	if !b.reply {
		copy(b.buf[HeaderSize:pathEnd], b.path)
	}
	if payloadLen > 0 {
		b.payload.encodeInto(b.buf[pathEnd:total])
	}

	return total, nil
}

// Package integrity adds an optional CRC-16/XMODEM checksum over a wire
// message, for transports that want end-to-end corruption detection on top
// of the register protocol itself (the wire format proper has no checksum
// field; this is additive framing only, not a wire-format change).
package integrity

import (
	"encoding/binary"
	"errors"

	"github.com/snksoft/crc"
)

var table = crc.NewTable(crc.XMODEM)

// ErrMismatch is returned by Check when the trailing CRC does not match the
// message bytes that precede it.
var ErrMismatch = errors.New("integrity: CRC mismatch")

// Append computes the CRC-16/XMODEM of msg and returns msg with the two
// checksum bytes (big-endian) appended.
func Append(msg []byte) []byte {
	sum := checksum(msg)
	out := make([]byte, len(msg)+2)
	copy(out, msg)
	binary.BigEndian.PutUint16(out[len(msg):], sum)
	return out
}

// Check verifies that framed's trailing two bytes are the CRC-16/XMODEM of
// the bytes preceding them, returning the message with the checksum
// stripped off. It fails closed: any length or checksum mismatch is
// ErrMismatch.
func Check(framed []byte) ([]byte, error) {
	if len(framed) < 2 {
		return nil, ErrMismatch
	}
	msg := framed[:len(framed)-2]
	want := binary.BigEndian.Uint16(framed[len(framed)-2:])
	if checksum(msg) != want {
		return nil, ErrMismatch
	}
	return msg, nil
}

func checksum(buf []byte) uint16 {
	c := table.InitCrc()
	c = table.UpdateCrc(c, buf)
	return table.CRC16(c)
}

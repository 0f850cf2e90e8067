package owned

import (
	"testing"

	"github.com/openbuttnakedgang/ellocopo2/wire"
)

func TestRoundTrip(t *testing.T) {
	v := wire.BytesValue([]byte{1, 2, 3})
	o := FromBorrowed(v)

	back := o.Borrow()
	if len(back.Bytes) != 3 || back.Bytes[0] != 1 {
		t.Fatalf("Borrow() = %+v", back)
	}
}

func TestBytesAreCopiedNotAliased(t *testing.T) {
	src := []byte{1, 2, 3}
	o := FromBorrowed(wire.BytesValue(src))
	src[0] = 0xFF
	if o.Bytes[0] != 1 {
		t.Fatalf("owned Bytes changed after mutating source: %v", o.Bytes)
	}
}

func TestFromBorrowedMsg(t *testing.T) {
	m := FromBorrowedMsg(wire.OkRead, "/a/b", wire.U32Value(7))
	if m.Path != "/a/b" || m.Value.U32 != 7 || m.Code != wire.OkRead {
		t.Fatalf("unexpected msg: %+v", m)
	}
}

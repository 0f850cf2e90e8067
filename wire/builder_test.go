package wire

import "testing"

func TestRequestBuilderReadNoPayload(t *testing.T) {
	buf := make([]byte, MaxMsgSize)
	n, err := NewRequestBuilder(buf).Code(Read).Path("/ctrl/vis").Build()
	if err != nil {
		t.Fatal(err)
	}
	// path_sz equals len(path): 9 bytes for "/ctrl/vis".
	want := []byte{0x8E, 0x09, 0x00, 0x00, 0x00, '/', 'c', 't', 'r', 'l', '/', 'v', 'i', 's'}
	if string(buf[:n]) != string(want) {
		t.Fatalf("got % x, want % x", buf[:n], want)
	}
}

func TestRequestBuilderWriteBool(t *testing.T) {
	buf := make([]byte, MaxMsgSize)
	n, err := NewRequestBuilder(buf).Code(Write).Path("/ctrl/vis").Payload(BoolValue(true)).Build()
	if err != nil {
		t.Fatal(err)
	}
	want := []byte{0x8E, 0x09, 0x01, 0x01, 0x01, '/', 'c', 't', 'r', 'l', '/', 'v', 'i', 's', 0x01}
	if string(buf[:n]) != string(want) {
		t.Fatalf("got % x, want % x", buf[:n], want)
	}
}

func TestRequestBuilderU32LittleEndian(t *testing.T) {
	buf := make([]byte, MaxMsgSize)
	n, err := NewRequestBuilder(buf).Code(Read).Path("path/name").Payload(U32Value(0xDEADBEAF)).Build()
	if err != nil {
		t.Fatal(err)
	}
	want := []byte{
		0x8E, 0x09, 0x04, 0x00, 0x05,
		'p', 'a', 't', 'h', '/', 'n', 'a', 'm', 'e',
		0xAF, 0xBE, 0xAD, 0xDE,
	}
	if string(buf[:n]) != string(want) {
		t.Fatalf("got % x, want % x", buf[:n], want)
	}
}

func TestRequestBuilderMissingField(t *testing.T) {
	buf := make([]byte, MaxMsgSize)
	if _, err := NewRequestBuilder(buf).Path("/x").Build(); err != ErrMissingField {
		t.Fatalf("missing code: got %v", err)
	}
	if _, err := NewRequestBuilder(buf).Code(Read).Build(); err != ErrMissingField {
		t.Fatalf("missing path: got %v", err)
	}
}

func TestRequestBuilderOversize(t *testing.T) {
	buf := make([]byte, MaxMsgSize)
	longPath := make([]byte, MaxPathSize+1)
	for i := range longPath {
		longPath[i] = 'a'
	}
	_, err := NewRequestBuilder(buf).Code(Read).Path(string(longPath)).Build()
	if err != ErrOversize {
		t.Fatalf("got %v, want ErrOversize", err)
	}
}

func TestRequestBuilderBufferTooSmall(t *testing.T) {
	buf := make([]byte, 4)
	_, err := NewRequestBuilder(buf).Code(Read).Path("/x").Build()
	if err != ErrBufferTooSmall {
		t.Fatalf("got %v, want ErrBufferTooSmall", err)
	}
}

func TestRequestBuilderNeverWritesPastBuffer(t *testing.T) {
	exact := HeaderSize + len("/x") + 4
	buf := make([]byte, exact+8)
	sentinel := byte(0xCC)
	for i := exact; i < len(buf); i++ {
		buf[i] = sentinel
	}
	n, err := NewRequestBuilder(buf).Code(Write).Path("/x").Payload(I32Value(1)).Build()
	if err != nil {
		t.Fatal(err)
	}
	if n != exact {
		t.Fatalf("wrote %d bytes, want %d", n, exact)
	}
	for i := exact; i < len(buf); i++ {
		if buf[i] != sentinel {
			t.Fatalf("byte %d clobbered past end of written message", i)
		}
	}
}

func TestAnswerBuilderFreshAndInPlace(t *testing.T) {
	buf := make([]byte, MaxMsgSize)
	_, err := NewRequestBuilder(buf).Code(Read).Path("path").Build()
	if err != nil {
		t.Fatal(err)
	}
	n, err := NewAnswerInPlace(buf, 4).Code(OkRead).Payload(U8Value(0xAD)).Build()
	if err != nil {
		t.Fatal(err)
	}
	want := []byte{0x8E, 0x04, 0x01, 0x00, 0x07, 'p', 'a', 't', 'h', 0xAD}
	if string(buf[:n]) != string(want) {
		t.Fatalf("got % x, want % x", buf[:n], want)
	}
}

func TestAnswerBuilderUnitForcesEmptyPayload(t *testing.T) {
	buf := make([]byte, MaxMsgSize)
	_, err := NewRequestBuilder(buf).Code(Write).Path("path").Payload(U32Value(0xFFFFFFFF)).Build()
	if err != nil {
		t.Fatal(err)
	}
	n, err := NewAnswerInPlace(buf, 4).Code(OkWrite).Payload(Unit()).Build()
	if err != nil {
		t.Fatal(err)
	}
	want := []byte{0x8E, 0x04, 0x00, 0x01, 0x00, 'p', 'a', 't', 'h'}
	if string(buf[:n]) != string(want) {
		t.Fatalf("got % x, want % x", buf[:n], want)
	}
}

func TestAnswerBuilderFreshBuild(t *testing.T) {
	buf := make([]byte, MaxMsgSize)
	n, err := NewAnswerBuilder(buf).Code(ErrLock).Path("boooom/baaaaaam").Build()
	if err != nil {
		t.Fatal(err)
	}
	if buf[3] != byte(ErrLock) || int(buf[1]) != len("boooom/baaaaaam") {
		t.Fatalf("bad header in fresh answer build: % x", buf[:n])
	}
}

func TestBoolCanonicalizesOnEncode(t *testing.T) {
	buf := make([]byte, MaxMsgSize)
	// a BOOL value constructed with Bool: true always encodes to 0x01,
	// there is no way to construct a non-canonical true through the
	// public API.
	n, err := NewRequestBuilder(buf).Code(Write).Path("/x").Payload(BoolValue(true)).Build()
	if err != nil {
		t.Fatal(err)
	}
	if buf[n-1] != 0x01 {
		t.Fatalf("bool byte = %x, want 0x01", buf[n-1])
	}
}

package integrity

import "testing"

func TestAppendCheckRoundTrip(t *testing.T) {
	msg := []byte{0x8E, 0x01, 0x00, 0x00, 0x00, 'x'}
	framed := Append(msg)
	if len(framed) != len(msg)+2 {
		t.Fatalf("framed length = %d", len(framed))
	}
	got, err := Check(framed)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != string(msg) {
		t.Fatalf("got %v, want %v", got, msg)
	}
}

func TestCheckDetectsCorruption(t *testing.T) {
	msg := []byte{0x8E, 0x01, 0x00, 0x00, 0x00, 'x'}
	framed := Append(msg)
	framed[2] ^= 0xFF
	if _, err := Check(framed); err != ErrMismatch {
		t.Fatalf("got %v, want ErrMismatch", err)
	}
}

func TestCheckTooShort(t *testing.T) {
	if _, err := Check([]byte{0x01}); err != ErrMismatch {
		t.Fatalf("got %v, want ErrMismatch", err)
	}
}

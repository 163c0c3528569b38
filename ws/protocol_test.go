package ws

import "testing"

func TestComputeAcceptKeyRFC6455Vector(t *testing.T) {
	got := ComputeAcceptKey("dGhlIHNhbXBsZSBub25jZQ==")
	want := "s3pPLMBiTxaQ9kYGzzhZRbK+xOo="
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestIsValidCloseCode(t *testing.T) {
	cases := map[uint16]bool{
		1000: true,
		1001: true,
		1004: false,
		1005: false,
		1006: false,
		1008: true,
		1015: false,
		2999: false,
		3000: true,
		4999: true,
		5000: false,
	}
	for code, want := range cases {
		if got := isValidCloseCode(code); got != want {
			t.Errorf("isValidCloseCode(%d) = %v, want %v", code, got, want)
		}
	}
}

func TestMaskBytesRoundTrip(t *testing.T) {
	key := [4]byte{0x11, 0x22, 0x33, 0x44}
	data := []byte("round trip me")
	orig := append([]byte(nil), data...)

	maskBytes(key, 0, data)
	if string(data) == string(orig) {
		t.Fatal("masking did not change the data")
	}
	maskBytes(key, 0, data)
	if string(data) != string(orig) {
		t.Fatalf("unmasking did not restore original: got %q", data)
	}
}

package pathparam

import (
	"testing"

	"github.com/google/uuid"
)

func TestParseInt32ExactDecimal(t *testing.T) {
	cases := []struct {
		in      string
		wantErr bool
	}{
		{"0", false},
		{"-2147483648", false},
		{"2147483647", false},
		{"2147483648", true}, // overflow
		{"abc", true},
		{"1.5", true},
		{"", true},
	}
	for _, c := range cases {
		_, err := ParseInt32(c.in)
		if (err != nil) != c.wantErr {
			t.Errorf("ParseInt32(%q) error = %v, wantErr %v", c.in, err, c.wantErr)
		}
	}
}

func TestParseUUIDCaseInsensitive(t *testing.T) {
	want := uuid.New()
	v, err := ParseUUID(want.String())
	if err != nil {
		t.Fatalf("ParseUUID lower: %v", err)
	}
	got, err := AsUUID(v)
	if err != nil || got != want {
		t.Fatalf("AsUUID = %v, %v; want %v", got, err, want)
	}

	upper := want.String()
	v2, err := ParseUUID(upperCase(upper))
	if err != nil {
		t.Fatalf("ParseUUID upper: %v", err)
	}
	got2, _ := AsUUID(v2)
	if got2 != want {
		t.Errorf("uppercase uuid round-trip mismatch: %v != %v", got2, want)
	}
}

func upperCase(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'a' && c <= 'f' {
			b[i] = c - 32
		}
	}
	return string(b)
}

func TestWideningAllowedNarrowingRejected(t *testing.T) {
	i32 := Int32(42)
	if got, err := AsInt64(i32); err != nil || got != 42 {
		t.Fatalf("widen int32->int64 failed: %v %v", got, err)
	}

	i64 := Int64(1 << 40)
	if _, err := AsInt32(i64); err == nil {
		t.Fatal("expected narrowing int64->int32 to be rejected")
	}

	u64 := Uint64(1 << 40)
	if _, err := AsUint32(u64); err == nil {
		t.Fatal("expected narrowing uint64->uint32 to be rejected")
	}

	str := String(OwnedStr("hello"))
	if _, err := AsInt64(str); err == nil {
		t.Fatal("expected string variant to reject integer conversion")
	}
}

func TestStrBorrowedIsZeroCopyOfSameBackingArray(t *testing.T) {
	buf := NewSharedBuffer("users/42/edit")
	s := BorrowedStr(buf, 0, 5)
	if s.String() != "users" {
		t.Fatalf("got %q", s.String())
	}
	if !s.IsBorrowed() {
		t.Fatal("expected borrowed Str")
	}
}

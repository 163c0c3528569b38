package pathparam

// sharedBuffer is the reference-counted-by-GC backing store a request's
// path is parsed into. It is never mutated after the request's path is
// split; every Str borrow just keeps the byte slice alive by holding a
// pointer to it, so the buffer outlives any slice taken from it.
type sharedBuffer struct {
	data string
}

// NewSharedBuffer wraps a request path so that route-tree matches can
// hand out zero-copy slices of it instead of allocating per segment.
func NewSharedBuffer(path string) *sharedBuffer {
	return &sharedBuffer{data: path}
}

// Str is a path-parameter string that is either owned outright or
// borrowed as a half-open byte range into a shared buffer. Both cases
// satisfy fmt.Stringer without allocating in the owned case and without
// allocating in the borrowed case either, since Go string slicing of a
// string is already a zero-copy operation sharing the backing array.
type Str struct {
	owned    string
	buf      *sharedBuffer
	start    int
	end      int
	borrowed bool
}

// OwnedStr returns a Str that owns its data outright.
func OwnedStr(s string) Str {
	return Str{owned: s}
}

// BorrowedStr returns a Str that is a [start:end) slice of buf's data.
// The caller is responsible for ensuring start and end fall on valid
// rune boundaries of buf — the route tree only ever derives these
// ranges from '/'-delimited segment boundaries of a path it owns, so
// the invariant always holds by construction.
func BorrowedStr(buf *sharedBuffer, start, end int) Str {
	return Str{buf: buf, start: start, end: end, borrowed: true}
}

// String returns the string value, whether owned or borrowed. Slicing a
// Go string never copies the underlying bytes, so this remains
// zero-copy for the borrowed case.
func (s Str) String() string {
	if s.borrowed {
		return s.buf.data[s.start:s.end]
	}
	return s.owned
}

// IsBorrowed reports whether this Str is a slice into a shared buffer
// rather than an owned string.
func (s Str) IsBorrowed() bool {
	return s.borrowed
}

package pathparam

import "strings"

// Splitter turns a request path into an ordered list of zero-copy
// segment slices backed by a single shared buffer: the routing engine
// produces sub-slices that point into that buffer, which is stored on
// the request so its lifetime covers all borrowed slices.
type Splitter struct {
	buf *sharedBuffer
}

// NewSplitter creates a splitter over path, allocating the single
// shared buffer every segment Str below will borrow from.
func NewSplitter(path string) *Splitter {
	return &Splitter{buf: NewSharedBuffer(path)}
}

// Buffer exposes the underlying shared buffer so a Request can retain
// it alongside any path parameters derived from it.
func (s *Splitter) Buffer() *sharedBuffer { return s.buf }

// Segments splits the path into '/'-delimited, non-empty segments,
// returning each as a Str borrowed from the shared buffer. A leading
// slash produces no empty leading segment; consecutive slashes
// collapse the same way.
func (s *Splitter) Segments() []Str {
	path := s.buf.data
	if len(path) > 0 && path[0] == '/' {
		path = path[1:]
	}
	if path == "" {
		return nil
	}
	parts := strings.Split(path, "/")
	// Recompute offsets against the original buffer rather than the
	// trimmed local copy, since Str ranges are relative to s.buf.data.
	segments := make([]Str, 0, len(parts))
	offset := len(s.buf.data) - len(path)
	for _, part := range parts {
		start := offset
		end := offset + len(part)
		if part != "" {
			segments = append(segments, BorrowedStr(s.buf, start, end))
		}
		offset = end + 1 // +1 for the delimiting slash
	}
	return segments
}

// Remainder returns the full remaining path (no leading slash) starting
// at the given segment index, used by the `**`/full_path placeholder
// which captures everything including embedded slashes.
func (s *Splitter) Remainder(fromSegment int, segments []Str) Str {
	if fromSegment >= len(segments) {
		return OwnedStr("")
	}
	start := segments[fromSegment].start
	end := len(s.buf.data)
	return BorrowedStr(s.buf, start, end)
}

package pulsar

import (
	"bytes"
	"io"
	"mime"
)

// parseMediaType thinly wraps mime.ParseMediaType so request.go doesn't
// need a direct "mime" import alongside "mime/multipart" at every call
// site; kept as a tiny indirection point in case a future content-type
// quirk needs patching in one place.
func parseMediaType(contentType string) (string, map[string]string, error) {
	return mime.ParseMediaType(contentType)
}

// newByteReader adapts a []byte into the io.ReaderAt multipart.NewReader
// needs by way of io.Reader — bytes.NewReader already implements both.
func newByteReader(b []byte) io.Reader {
	return bytes.NewReader(b)
}

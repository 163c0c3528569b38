package pulsar

import (
	"net/http"

	jsoniter "github.com/goccy/go-json"

	"github.com/yourusername/pulsar/body"
)

// Response aggregates HTTP status, protocol version, header multimap,
// body, extension map, and configuration map.
type Response struct {
	Status  int
	Version string
	Header  http.Header
	Body    body.ResponseBody

	extensions *Extensions
	configs    *Configs
}

func newResponse(status int, body body.ResponseBody) *Response {
	return &Response{
		Status:     status,
		Header:     http.Header{},
		Body:       body,
		extensions: NewExtensions(),
		configs:    NewConfigs(),
	}
}

// Extensions returns the response's heterogeneous extension map,
// writable by middleware running after the endpoint returns.
func (r *Response) Extensions() *Extensions { return r.extensions }

// Configs returns the response's per-request configuration map.
func (r *Response) Configs() *Configs { return r.configs }

// Empty builds a 200 response with no body.
func Empty() *Response {
	return newResponse(http.StatusOK, body.NoneBody{})
}

// Text builds a 200 response with a text/plain body.
func Text(s string) *Response {
	r := newResponse(http.StatusOK, body.NewBytesResponseBody([]byte(s)))
	r.Header.Set("Content-Type", "text/plain; charset=utf-8")
	return r
}

// HTML builds a 200 response with an text/html body.
func HTML(s string) *Response {
	r := newResponse(http.StatusOK, body.NewBytesResponseBody([]byte(s)))
	r.Header.Set("Content-Type", "text/html; charset=utf-8")
	return r
}

// JSON builds a 200 response by encoding v as application/json using
// goccy/go-json.
func JSON(v any) (*Response, error) {
	raw, err := jsoniter.Marshal(v)
	if err != nil {
		return nil, ErrInternal.WithCause(err)
	}
	r := newResponse(http.StatusOK, body.NewBytesResponseBody(raw))
	r.Header.Set("Content-Type", "application/json")
	return r, nil
}

// MustJSON is JSON without an error return, for handlers that know v is
// always marshalable (e.g. a plain struct of strings/numbers).
func MustJSON(v any) *Response {
	r, err := JSON(v)
	if err != nil {
		panic(err)
	}
	return r
}

// Redirect builds a 301 response with a Location header.
func Redirect(url string) *Response {
	r := newResponse(http.StatusMovedPermanently, body.NoneBody{})
	r.Header.Set("Location", url)
	return r
}

// WithStatus overrides the status code, returning the response for
// chaining (e.g. Text(s).WithStatus(201)).
func (r *Response) WithStatus(status int) *Response {
	r.Status = status
	return r
}

// SetCookie appends a Set-Cookie header. Cookie attribute policy
// (signing, SameSite defaults) is the external cookie middleware's
// concern.
func (r *Response) SetCookie(c *http.Cookie) {
	r.Header.Add("Set-Cookie", c.String())
}

// responseFromError maps an *Error to a Response: the status line
// reflects the mapped code, the body carries the error's message as
// text/plain.
func responseFromError(err *Error) *Response {
	r := newResponse(err.Status, body.NewBytesResponseBody([]byte(err.Error())))
	r.Header.Set("Content-Type", "text/plain; charset=utf-8")
	return r
}

// ErrorResponse converts any error into a Response the way the outer
// edge of the pipeline does: errors that are already an *Error keep
// their mapped status, anything else becomes a 500. Extractors that
// hand back a Response on failure (rather than an error) use this to
// do so without duplicating the mapping.
func ErrorResponse(err error) *Response {
	return responseFromError(AsError(err))
}

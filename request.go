package pulsar

import (
	"context"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"sync"

	jsoniter "github.com/goccy/go-json"

	"github.com/yourusername/pulsar/body"
	"github.com/yourusername/pulsar/pathparam"
)

// Request aggregates method, URI, protocol version, header multimap,
// extension map, path-parameter map, parsed query map, body, the
// shared path source backing zero-copy path-param slices, and a
// per-request configuration map, plus the lazily computed caches
// (JSON value, urlencoded-body raw bytes, parsed multipart form).
type Request struct {
	Method  string
	URI     *url.URL
	Version string
	Header  http.Header

	extensions *Extensions
	configs    *Configs

	pathParams map[string]pathparam.Value
	pathSource *pathparam.Splitter

	queryOnce   sync.Once
	query       url.Values

	body body.RequestBody

	jsonCache     any
	jsonCacheErr  error
	jsonCacheOnce bool

	urlencodedCache    []byte
	urlencodedCacheSet bool

	multipartCache    *multipart.Form
	multipartCacheSet bool

	ctx context.Context
}

// NewRequest constructs a Request the way a protocol bridge does once
// it has decoded a request head.
func NewRequest(method string, uri *url.URL, version string, header http.Header, b body.RequestBody) *Request {
	if header == nil {
		header = http.Header{}
	}
	if b == nil {
		b = body.EmptyBody{}
	}
	return &Request{
		Method:     method,
		URI:        uri,
		Version:    version,
		Header:     header,
		extensions: NewExtensions(),
		configs:    NewConfigs(),
		pathParams: make(map[string]pathparam.Value),
		body:       b,
	}
}

// Extensions returns the request's heterogeneous extension map.
func (r *Request) Extensions() *Extensions { return r.extensions }

// Configs returns the request's per-request configuration map.
func (r *Request) Configs() *Configs { return r.configs }

// SetPathSource records the shared buffer the routing tree split this
// request's path from, so it outlives any borrowed Str path params.
func (r *Request) SetPathSource(s *pathparam.Splitter) { r.pathSource = s }

// PathSource returns the shared path-splitting buffer, if any was set.
func (r *Request) PathSource() *pathparam.Splitter { return r.pathSource }

// SetPathParam records a typed path parameter under name, called by the
// routing tree while matching a special segment.
func (r *Request) SetPathParam(name string, v pathparam.Value) {
	r.pathParams[name] = v
}

// PathParam returns the typed path parameter stored under name.
func (r *Request) PathParam(name string) (pathparam.Value, bool) {
	v, ok := r.pathParams[name]
	return v, ok
}

// PathParams returns the full path-parameter map. Callers must not
// mutate the returned map.
func (r *Request) PathParams() map[string]pathparam.Value { return r.pathParams }

// Query lazily parses the URI's query string using
// application/x-www-form-urlencoded semantics and caches the result
// for the lifetime of the request.
func (r *Request) Query() url.Values {
	r.queryOnce.Do(func() {
		if r.URI == nil {
			r.query = url.Values{}
			return
		}
		r.query, _ = url.ParseQuery(r.URI.RawQuery)
	})
	return r.query
}

// QueryParam returns the first value of the named query parameter.
func (r *Request) QueryParam(name string) string {
	return r.Query().Get(name)
}

// TakeBody consumes the request body exactly once: a consumer takes
// ownership, and the request retains an empty placeholder afterward.
// Subsequent calls observe the empty placeholder.
func (r *Request) TakeBody() body.RequestBody {
	b := r.body
	r.body = body.EmptyBody{}
	return b
}

// Body returns the current body without taking ownership — most
// callers that only want to peek at Len should use this; parsers that
// consume bytes should go through TakeBody or the cached JSON/Form/
// Multipart helpers below, which already implement the take-once
// contract over a single internal read.
func (r *Request) Body() body.RequestBody { return r.body }

// rawBodyBytes reads the full body exactly once across the lifetime of
// the request, regardless of how many different parsers ask for it
// (JSON, Form, raw). Each parser's own cache (jsonCache,
// urlencodedCache, multipartCache) is keyed independently: a second
// call to the same parser reuses the cache, while a call to a
// different parser on the same request is independent.
func (r *Request) rawBodyBytes() ([]byte, error) {
	if r.urlencodedCacheSet {
		return r.urlencodedCache, nil
	}
	b, err := r.body.Bytes()
	if err != nil {
		return nil, err
	}
	r.urlencodedCache = b
	r.urlencodedCacheSet = true
	return b, nil
}

// JSON parses the body as JSON into v, using goccy/go-json for speed.
// The raw bytes are validated and cached on first call so a second
// call re-decodes from memory rather than re-reading the wire; callers
// must consistently request the same shape.
func (r *Request) JSON(v any) error {
	if !r.jsonCacheOnce {
		raw, err := r.rawBodyBytes()
		if err != nil {
			r.jsonCacheErr = err
		} else if len(raw) == 0 {
			r.jsonCacheErr = ErrEmptyBody
		} else {
			var generic any
			if err := jsoniter.Unmarshal(raw, &generic); err != nil {
				r.jsonCacheErr = ErrBadRequest.WithCause(err)
			} else {
				r.jsonCache = raw
			}
		}
		r.jsonCacheOnce = true
	}
	if r.jsonCacheErr != nil {
		return r.jsonCacheErr
	}
	raw, _ := r.jsonCache.([]byte)
	return jsoniter.Unmarshal(raw, v)
}

// ParseForm parses the body as application/x-www-form-urlencoded or
// multipart/form-data depending on Content-Type. The urlencoded path
// caches raw bytes; the multipart path caches the parsed
// *multipart.Form.
func (r *Request) ParseForm() (url.Values, error) {
	ct := r.Header.Get("Content-Type")
	mediaType, _, _ := parseMediaType(ct)
	switch {
	case mediaType == "application/x-www-form-urlencoded":
		raw, err := r.rawBodyBytes()
		if err != nil {
			return nil, err
		}
		return url.ParseQuery(string(raw))
	case strings.HasPrefix(mediaType, "multipart/"):
		form, err := r.ParseMultipartForm(32 << 20)
		if err != nil {
			return nil, err
		}
		return url.Values(form.Value), nil
	default:
		return nil, ErrUnsupportedMedia
	}
}

// ParseMultipartForm parses a multipart/form-data body, caching the
// result so repeated calls are free.
func (r *Request) ParseMultipartForm(maxMemory int64) (*multipart.Form, error) {
	if r.multipartCacheSet {
		return r.multipartCache, nil
	}
	_, params, err := parseMediaType(r.Header.Get("Content-Type"))
	if err != nil {
		return nil, ErrBadRequest.WithCause(err)
	}
	boundary, ok := params["boundary"]
	if !ok {
		return nil, ErrBadRequest
	}
	raw, err := r.rawBodyBytes()
	if err != nil {
		return nil, err
	}
	mr := multipart.NewReader(newByteReader(raw), boundary)
	form, err := mr.ReadForm(maxMemory)
	if err != nil {
		return nil, ErrBadRequest.WithCause(err)
	}
	r.multipartCache = form
	r.multipartCacheSet = true
	return form, nil
}

// FormValue returns a single form field, parsing the body on first use.
func (r *Request) FormValue(name string) (string, bool) {
	values, err := r.ParseForm()
	if err != nil {
		return "", false
	}
	vs, ok := values[name]
	if !ok || len(vs) == 0 {
		return "", false
	}
	return vs[0], true
}

// FormFile returns a single uploaded file by field name.
func (r *Request) FormFile(name string) (multipart.File, *multipart.FileHeader, error) {
	form, err := r.ParseMultipartForm(32 << 20)
	if err != nil {
		return nil, nil, err
	}
	headers := form.File[name]
	if len(headers) == 0 {
		return nil, nil, ErrBadRequest
	}
	f, err := headers[0].Open()
	if err != nil {
		return nil, nil, ErrBadRequest.WithCause(err)
	}
	return f, headers[0], nil
}

// Cookie returns the named cookie's value. Cookie signing/session
// policy stays in the external cookie middleware, but both handlers
// and that middleware need this accessor.
func (r *Request) Cookie(name string) (string, bool) {
	header := &http.Request{Header: r.Header}
	c, err := header.Cookie(name)
	if err != nil {
		return "", false
	}
	return c.Value, true
}

// SetRealPeerAddr implements the peer-address derivation precedence: a
// preexisting, parseable X-Real-IP wins; otherwise the first
// X-Forwarded-For entry is promoted into X-Real-IP; otherwise the
// transport-level peer address is written there.
func (r *Request) SetRealPeerAddr(transportPeer PeerAddr) {
	if existing := r.Header.Get("X-Real-IP"); existing != "" {
		if _, err := ParsePeerAddr(existing); err == nil {
			return
		}
	}
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		first := strings.TrimSpace(strings.SplitN(fwd, ",", 2)[0])
		if first != "" {
			r.Header.Set("X-Real-IP", first)
			return
		}
	}
	r.Header.Set("X-Real-IP", transportPeer.String())
}

// RealPeerAddr parses the X-Real-IP header set by SetRealPeerAddr.
func (r *Request) RealPeerAddr() (PeerAddr, error) {
	return ParsePeerAddr(r.Header.Get("X-Real-IP"))
}

// Context returns the request's context, the one the connection
// service derived from the server's shutdown context for this
// connection. It is never nil: a Request constructed without an
// explicit WithContext call carries context.Background().
func (r *Request) Context() context.Context {
	if r.ctx == nil {
		return context.Background()
	}
	return r.ctx
}

// WithContext returns a shallow copy of r with its context replaced,
// the way net/http.Request.WithContext works. Handler and middleware
// timeouts are threaded in this way rather than by mutating the
// request the connection service owns.
func (r *Request) WithContext(ctx context.Context) *Request {
	if ctx == nil {
		panic("pulsar: nil context")
	}
	r2 := *r
	r2.ctx = ctx
	return &r2
}

package extract

import "github.com/yourusername/pulsar"

// Json decodes the request body as JSON into T. It shares
// Request.JSON's caching, so a second call against the same request
// decodes from the cached bytes instead of re-reading the body.
func Json[T any](req *pulsar.Request) (T, error) {
	var out T
	if err := req.JSON(&out); err != nil {
		return out, err
	}
	return out, nil
}

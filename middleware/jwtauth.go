package middleware

import (
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/yourusername/pulsar"
)

// Claims is the decoded token payload stashed on request extensions,
// retrievable with ClaimsFromRequest. Bound to jwt.MapClaims directly
// rather than a typed struct, matching bolt/middleware/jwt.JWTWithConfig's
// own choice to hand handlers the raw claim map.
type Claims jwt.MapClaims

// JWTConfig configures JWTAuth, grounded on
// bolt/middleware/jwt/jwt.go's JWTConfig: a shared secret, the expected
// signing algorithm, and the paths authentication is skipped for.
type JWTConfig struct {
	Secret    []byte
	Algorithm string
	SkipPaths []string
}

// JWTAuth validates a Bearer token from the Authorization header
// against config and stashes its claims on request extensions,
// grounded on bolt/middleware/jwt/jwt.go's JWTWithConfig — minus that
// file's token cache, which is a throughput optimization orthogonal to
// the auth check itself.
func JWTAuth(config JWTConfig) pulsar.Middleware {
	if config.Algorithm == "" {
		config.Algorithm = "HS256"
	}
	skip := make(map[string]bool, len(config.SkipPaths))
	for _, p := range config.SkipPaths {
		skip[p] = true
	}

	return pulsar.MiddlewareFunc(func(req *pulsar.Request, next *pulsar.Next) (*pulsar.Response, error) {
		path := ""
		if req.URI != nil {
			path = req.URI.Path
		}
		if skip[path] {
			return next.Call(req)
		}

		auth := req.Header.Get("Authorization")
		scheme, token, ok := strings.Cut(auth, " ")
		if !ok || scheme != "Bearer" || token == "" {
			return nil, pulsar.NewError(401, "missing or malformed bearer token")
		}

		parsed, err := jwt.Parse(token, func(t *jwt.Token) (any, error) {
			if t.Method.Alg() != config.Algorithm {
				return nil, pulsar.NewError(401, "unexpected signing method")
			}
			return config.Secret, nil
		})
		if err != nil || !parsed.Valid {
			return nil, pulsar.NewError(401, "invalid token").WithCause(err)
		}

		claims, ok := parsed.Claims.(jwt.MapClaims)
		if !ok {
			return nil, pulsar.NewError(401, "invalid token claims")
		}

		pulsar.Set(req.Extensions(), Claims(claims))
		return next.Call(req)
	})
}

// ClaimsFromRequest retrieves the claims JWTAuth stashed on req.
func ClaimsFromRequest(req *pulsar.Request) (Claims, bool) {
	return pulsar.Get[Claims](req.Extensions())
}

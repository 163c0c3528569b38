package middleware

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"net/http"
	"sync"

	"github.com/yourusername/pulsar"
)

// Session is a per-visitor value bag keyed by an opaque ID round-tripped
// through a cookie. Expiry, rolling renewal, and backing-store choice
// are a SessionStore implementation's concern — this type only carries
// the ID and values, mirroring async_session::Session's role in
// silent/src/session/middleware.rs before any store-specific policy is
// applied.
type Session struct {
	ID     string
	Values map[string]any
}

// SessionStore loads and persists Sessions by ID. A real deployment
// backs this with Redis, a database, or a signed-cookie codec; it is an
// external collaborator per spec.md's exclusion of session middleware
// bodies from the core.
type SessionStore interface {
	New(ctx context.Context) (Session, error)
	Load(ctx context.Context, id string) (Session, bool, error)
	Save(ctx context.Context, s Session) error
}

// MemoryStore is a minimal, process-local SessionStore with no expiry
// or eviction, the in-process reference equivalent of async_session's
// MemoryStore that silent/src/session/middleware.rs defaults to. It
// exists so Sessions is exercisable without a real backing store wired
// up; production deployments supply their own SessionStore.
type MemoryStore struct {
	mu       sync.Mutex
	sessions map[string]Session
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[string]Session)}
}

func (m *MemoryStore) New(context.Context) (Session, error) {
	id, err := randomSessionID()
	if err != nil {
		return Session{}, pulsar.ErrInternal.WithCause(err)
	}
	s := Session{ID: id, Values: make(map[string]any)}
	m.mu.Lock()
	m.sessions[id] = s
	m.mu.Unlock()
	return s, nil
}

func (m *MemoryStore) Load(_ context.Context, id string) (Session, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	return s, ok, nil
}

func (m *MemoryStore) Save(_ context.Context, s Session) error {
	m.mu.Lock()
	m.sessions[s.ID] = s
	m.mu.Unlock()
	return nil
}

func randomSessionID() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

// DefaultSessionCookie is the cookie name silent's SessionMiddleware
// uses ("silent-web-session"), generalized to this package's own name.
const DefaultSessionCookie = "pulsar-session"

// Sessions reads the session cookie, loads the matching Session from
// store or creates a new one when absent or stale, stashes it on the
// request's extensions, and writes the session cookie back on the
// response if it was newly minted — the same load-or-create-then-
// round-trip flow as silent/src/session/middleware.rs's
// SessionMiddleware::handle, minus that file's cookie-signing step
// (left to an external codec per the cookie-policy non-goal).
func Sessions(store SessionStore, cookieName string) pulsar.Middleware {
	if cookieName == "" {
		cookieName = DefaultSessionCookie
	}
	return pulsar.MiddlewareFunc(func(req *pulsar.Request, next *pulsar.Next) (*pulsar.Response, error) {
		ctx := req.Context()
		isNew := false

		var session Session
		if id, ok := req.Cookie(cookieName); ok {
			if loaded, found, err := store.Load(ctx, id); err == nil && found {
				session = loaded
			}
		}
		if session.ID == "" {
			created, err := store.New(ctx)
			if err != nil {
				return nil, err
			}
			session = created
			isNew = true
		}

		pulsar.Set(req.Extensions(), session)
		resp, err := next.Call(req)
		if resp == nil {
			return resp, err
		}

		if final, ok := pulsar.Get[Session](resp.Extensions()); ok {
			session = final
		}
		if saveErr := store.Save(ctx, session); saveErr != nil && err == nil {
			err = saveErr
		}
		if isNew {
			resp.SetCookie(&http.Cookie{Name: cookieName, Value: session.ID, HttpOnly: true, Secure: true})
		}
		return resp, err
	})
}

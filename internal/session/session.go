// Package session holds the process-wide bearer credential. The token is
// read by every outgoing request and written only by the login flow and
// the 401 handler; those two writers are mutually exclusive by construction.
package session

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims is the displayable subset of the bearer token's JWT claims.
// Decoded without signature verification; the server remains authoritative.
type Claims struct {
	Subject   string
	ExpiresAt time.Time
}

// Session is the credential store. The zero value is unusable; construct
// with New or Load.
type Session struct {
	mu    sync.RWMutex
	token string
	path  string
	subs  []func()
}

// New returns an empty session that persists its token at path.
func New(path string) *Session {
	return &Session{path: path}
}

// Load restores a previously persisted token, if any. A missing or
// unreadable token file yields an empty session, not an error: the user
// simply has to log in again.
func Load(path string) *Session {
	s := New(path)
	data, err := os.ReadFile(path)
	if err != nil {
		return s
	}
	s.token = strings.TrimSpace(string(data))
	return s
}

// DefaultPath returns the token file location under the user config dir.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = os.TempDir()
	}
	return filepath.Join(home, ".config", "vigil", "token")
}

// Token returns the current bearer token, or "" when logged out.
func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// Authenticated reports whether a token is present.
func (s *Session) Authenticated() bool {
	return s.Token() != ""
}

// Set stores and persists a freshly issued token.
func (s *Session) Set(token string) error {
	s.mu.Lock()
	s.token = token
	path := s.path
	s.mu.Unlock()

	if path == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(token), 0o600)
}

// Clear discards the token, removes the persisted copy, and notifies every
// subscriber. Called on explicit logout and on any 401 response.
func (s *Session) Clear() {
	s.mu.Lock()
	hadToken := s.token != ""
	s.token = ""
	path := s.path
	subs := make([]func(), len(s.subs))
	copy(subs, s.subs)
	s.mu.Unlock()

	if path != "" {
		_ = os.Remove(path)
	}
	if !hadToken {
		return
	}
	for _, fn := range subs {
		fn()
	}
}

// Subscribe registers fn to run whenever a held credential is cleared.
// This is the global-logout fan-out: the TUI uses it to drop back to the
// login view no matter which request hit the 401.
func (s *Session) Subscribe(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subs = append(s.subs, fn)
}

// Claims decodes the token's JWT claims without verifying the signature.
// Returns false when no token is held or the token is not a parseable JWT.
func (s *Session) Claims() (Claims, bool) {
	token := s.Token()
	if token == "" {
		return Claims{}, false
	}
	parser := jwt.NewParser()
	claims := jwt.MapClaims{}
	if _, _, err := parser.ParseUnverified(token, claims); err != nil {
		return Claims{}, false
	}
	out := Claims{}
	if sub, err := claims.GetSubject(); err == nil {
		out.Subject = sub
	}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		out.ExpiresAt = exp.Time
	}
	return out, true
}

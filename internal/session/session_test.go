package session

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestSession_SetPersistsToken(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token")
	s := New(path)

	if err := s.Set("tok-123"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("token file not written: %v", err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Errorf("token file mode should be 0600, got %o", info.Mode().Perm())
	}

	restored := Load(path)
	if restored.Token() != "tok-123" {
		t.Errorf("Load should restore the token, got %q", restored.Token())
	}
}

func TestSession_LoadMissingFile(t *testing.T) {
	s := Load(filepath.Join(t.TempDir(), "nope"))
	if s.Authenticated() {
		t.Error("missing token file should yield an unauthenticated session")
	}
}

func TestSession_ClearNotifiesOnlyWhenTokenHeld(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token")
	s := New(path)

	notified := 0
	s.Subscribe(func() { notified++ })

	// Clearing an empty session is a no-op for subscribers: a failed login
	// must not look like a global logout.
	s.Clear()
	if notified != 0 {
		t.Fatalf("clear without a token should not notify, got %d", notified)
	}

	if err := s.Set("tok"); err != nil {
		t.Fatal(err)
	}
	s.Clear()
	if notified != 1 {
		t.Errorf("clear with a token should notify once, got %d", notified)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("clear should remove the persisted token")
	}
	if s.Authenticated() {
		t.Error("session should be unauthenticated after clear")
	}
}

func TestSession_ClaimsFromJWT(t *testing.T) {
	exp := time.Now().Add(time.Hour).Truncate(time.Second)
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "operator1",
		"exp": exp.Unix(),
	}).SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatal(err)
	}

	s := New("")
	if err := s.Set(token); err != nil {
		t.Fatal(err)
	}

	claims, ok := s.Claims()
	if !ok {
		t.Fatal("claims should decode from a well-formed JWT")
	}
	if claims.Subject != "operator1" {
		t.Errorf("subject = %q, want operator1", claims.Subject)
	}
	if !claims.ExpiresAt.Equal(exp) {
		t.Errorf("expiry = %s, want %s", claims.ExpiresAt, exp)
	}
}

func TestSession_ClaimsFromOpaqueToken(t *testing.T) {
	s := New("")
	if err := s.Set("not-a-jwt"); err != nil {
		t.Fatal(err)
	}
	if _, ok := s.Claims(); ok {
		t.Error("opaque tokens should yield no claims, not an error")
	}
}

package session

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/five82/mmwdash/internal/auth"
)

type memCookie struct {
	token     string
	removeErr error
	removed   int
}

func (m *memCookie) Token() string { return m.token }

func (m *memCookie) SetToken(token string) error {
	m.token = token
	return nil
}

func (m *memCookie) RemoveToken() error {
	m.removed++
	if m.removeErr != nil {
		return m.removeErr
	}
	m.token = ""
	return nil
}

func TestNewStore_SeedsFromCookie(t *testing.T) {
	s := NewStore(&memCookie{token: "abc"})
	if got := s.Token(); got != "abc" {
		t.Fatalf("Token = %q, want abc", got)
	}
	if got := NewStore(&memCookie{}).Token(); got != "" {
		t.Fatalf("Token = %q, want empty", got)
	}
	if got := NewStore(nil).Token(); got != "" {
		t.Fatalf("Token with nil cookie = %q, want empty", got)
	}
}

func TestStore_SetAndResetToken(t *testing.T) {
	cookie := &memCookie{}
	s := NewStore(cookie)
	s.SetProfile(Profile{Name: "nurse", Roles: []string{"admin"}})

	if err := s.SetToken("t-1"); err != nil {
		t.Fatalf("SetToken returned error: %v", err)
	}
	if cookie.token != "t-1" {
		t.Fatalf("cookie token = %q, want t-1", cookie.token)
	}

	if err := s.ResetToken(); err != nil {
		t.Fatalf("ResetToken returned error: %v", err)
	}
	if s.Token() != "" || cookie.token != "" {
		t.Fatalf("token not cleared: store=%q cookie=%q", s.Token(), cookie.token)
	}
	p := s.Profile()
	if len(p.Roles) != 0 || p.Name != "nurse" {
		t.Fatalf("profile after reset = %#v, want roles cleared and name kept", p)
	}
}

func TestStore_ResetClearsMemoryWhenCookieFails(t *testing.T) {
	cookie := &memCookie{token: "t", removeErr: errors.New("disk gone")}
	s := NewStore(cookie)

	err := s.ResetToken()
	if err == nil {
		t.Fatalf("ResetToken returned nil error, want cookie failure")
	}
	if s.Token() != "" {
		t.Fatalf("Token = %q, want cleared", s.Token())
	}
}

func TestStore_WithJar(t *testing.T) {
	jar, err := auth.Open(filepath.Join(t.TempDir(), "cookies.toml"))
	if err != nil {
		t.Fatalf("auth.Open returned error: %v", err)
	}
	s := NewStore(jar)
	if err := s.SetToken("persisted"); err != nil {
		t.Fatalf("SetToken returned error: %v", err)
	}
	if got := NewStore(jar).Token(); got != "persisted" {
		t.Fatalf("new store token = %q, want persisted", got)
	}
	if err := s.ResetToken(); err != nil {
		t.Fatalf("ResetToken returned error: %v", err)
	}
	if got := jar.Token(); got != "" {
		t.Fatalf("jar token = %q, want empty", got)
	}
}

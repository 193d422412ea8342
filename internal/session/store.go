// Package session holds the signed-in user's token and profile.
package session

import (
	"fmt"
	"sync"
)

// TokenCookie is the persisted copy of the token.
type TokenCookie interface {
	Token() string
	SetToken(token string) error
	RemoveToken() error
}

// Profile is the user information kept next to the token.
type Profile struct {
	Name   string
	Avatar string
	Roles  []string
}

// Store holds the current bearer token and mirrors it into a cookie.
type Store struct {
	mu      sync.RWMutex
	token   string
	profile Profile
	cookie  TokenCookie
}

// NewStore seeds the token from cookie. A nil cookie or an absent token
// leaves the store unauthenticated.
func NewStore(cookie TokenCookie) *Store {
	s := &Store{cookie: cookie}
	if cookie != nil {
		s.token = cookie.Token()
	}
	return s
}

// Token returns the current token, "" when signed out.
func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// Profile returns a copy of the stored profile.
func (s *Store) Profile() Profile {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p := s.profile
	p.Roles = append([]string(nil), s.profile.Roles...)
	return p
}

// SetToken replaces the token and persists it.
func (s *Store) SetToken(token string) error {
	s.mu.Lock()
	s.token = token
	s.mu.Unlock()
	if s.cookie == nil {
		return nil
	}
	if err := s.cookie.SetToken(token); err != nil {
		return fmt.Errorf("persist token: %w", err)
	}
	return nil
}

// SetProfile replaces name, avatar and roles.
func (s *Store) SetProfile(p Profile) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profile = Profile{Name: p.Name, Avatar: p.Avatar, Roles: append([]string(nil), p.Roles...)}
}

// ResetToken clears the token and roles and removes the cookie. The
// in-memory state is cleared even when removing the cookie fails.
func (s *Store) ResetToken() error {
	s.mu.Lock()
	s.token = ""
	s.profile.Roles = nil
	s.mu.Unlock()
	if s.cookie == nil {
		return nil
	}
	if err := s.cookie.RemoveToken(); err != nil {
		return fmt.Errorf("remove token cookie: %w", err)
	}
	return nil
}

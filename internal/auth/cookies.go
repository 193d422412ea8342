// Package auth persists the session token the way the browser kept it: as a
// cookie under a fixed key, here in a small TOML jar on disk.
package auth

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	toml "github.com/pelletier/go-toml/v2"

	"github.com/five82/mmwdash/internal/config"
)

// TokenKey is the cookie name the token is stored under.
const TokenKey = "Admin-Token"

const defaultJarPath = "~/.local/share/mmwdash/cookies.toml"

// Jar is a file-backed cookie store.
type Jar struct {
	mu   sync.Mutex
	path string
}

type jarFile struct {
	Cookies map[string]string `toml:"cookies"`
}

// DefaultPath returns the default jar location.
func DefaultPath() string {
	return defaultJarPath
}

// Open returns a Jar at path, or at the default location when path is empty.
// The file is not touched until the first read or write.
func Open(path string) (*Jar, error) {
	if strings.TrimSpace(path) == "" {
		path = defaultJarPath
	}
	resolved, err := config.ExpandPath(path)
	if err != nil {
		return nil, err
	}
	return &Jar{path: resolved}, nil
}

// Path returns the resolved jar location.
func (j *Jar) Path() string {
	return j.path
}

// Token returns the stored token, or "" when the cookie or the file is absent.
func (j *Jar) Token() string {
	j.mu.Lock()
	defer j.mu.Unlock()
	cookies, err := j.read()
	if err != nil {
		return ""
	}
	return cookies[TokenKey]
}

// SetToken stores token under TokenKey.
func (j *Jar) SetToken(token string) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	cookies, err := j.read()
	if err != nil {
		cookies = map[string]string{}
	}
	cookies[TokenKey] = token
	return j.write(cookies)
}

// RemoveToken deletes the token cookie. Removing an absent cookie is not an error.
func (j *Jar) RemoveToken() error {
	j.mu.Lock()
	defer j.mu.Unlock()
	cookies, err := j.read()
	if err != nil {
		return nil
	}
	if _, ok := cookies[TokenKey]; !ok {
		return nil
	}
	delete(cookies, TokenKey)
	return j.write(cookies)
}

func (j *Jar) read() (map[string]string, error) {
	data, err := os.ReadFile(j.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("read cookie jar: %w", err)
	}
	var file jarFile
	if err := toml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse cookie jar: %w", err)
	}
	if file.Cookies == nil {
		file.Cookies = map[string]string{}
	}
	return file.Cookies, nil
}

func (j *Jar) write(cookies map[string]string) error {
	if err := os.MkdirAll(filepath.Dir(j.path), 0o700); err != nil {
		return fmt.Errorf("create cookie dir: %w", err)
	}
	data, err := toml.Marshal(jarFile{Cookies: cookies})
	if err != nil {
		return fmt.Errorf("marshal cookie jar: %w", err)
	}
	if err := os.WriteFile(j.path, data, 0o600); err != nil {
		return fmt.Errorf("write cookie jar: %w", err)
	}
	return nil
}

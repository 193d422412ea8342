package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, name := range []string{
		"MMW_BASE_API", "MMW_TIMEOUT_MS", "MMW_POLL_SECONDS", "MMW_LOG_FILE",
		"MMW_LOG_LEVEL", "MMW_COOKIE_FILE", "MMW_START_PATH",
	} {
		// Setenv registers the restore; envconfig treats a set-but-empty
		// number as invalid, so the variable must be absent.
		t.Setenv(name, "")
		_ = os.Unsetenv(name)
	}
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func TestLoad_MissingConfigFallsBackToDefaults(t *testing.T) {
	clearEnv(t)
	home := t.TempDir()
	t.Setenv("HOME", home)

	cfg, err := Load(filepath.Join(home, "does-not-exist.toml"))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.BaseAPI != "" {
		t.Fatalf("BaseAPI = %q, want empty", cfg.BaseAPI)
	}
	if cfg.Timeout != defaultTimeout || cfg.PollInterval != defaultPollInterval {
		t.Fatalf("Timeout/Poll = %v/%v, want %v/%v", cfg.Timeout, cfg.PollInterval, defaultTimeout, defaultPollInterval)
	}
	wantLog, err := expandPath(defaultLogFile)
	if err != nil {
		t.Fatalf("expandPath(defaultLogFile) returned error: %v", err)
	}
	if cfg.LogFile != wantLog {
		t.Fatalf("LogFile = %q, want %q", cfg.LogFile, wantLog)
	}
	if cfg.LogLevel != defaultLogLevel || cfg.StartPath != defaultStartPath {
		t.Fatalf("LogLevel/StartPath = %q/%q", cfg.LogLevel, cfg.StartPath)
	}
}

func TestLoad_ParsesAndTrimsConfig(t *testing.T) {
	clearEnv(t)
	home := t.TempDir()
	t.Setenv("HOME", home)

	path := writeConfig(t, `
base_api = "  http://10.0.0.5:9999/api/  "
timeout_ms = 1500
poll_seconds = 7
log_file = "  ~/logs/mmw.log  "
log_level = " DEBUG "
cookie_file = "~/cookies.toml"
start_path = "/monitor/4"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.BaseAPI != "http://10.0.0.5:9999/api" {
		t.Fatalf("BaseAPI = %q, want trimmed url", cfg.BaseAPI)
	}
	if cfg.Timeout != 1500*time.Millisecond || cfg.PollInterval != 7*time.Second {
		t.Fatalf("Timeout/Poll = %v/%v", cfg.Timeout, cfg.PollInterval)
	}
	if !strings.HasPrefix(cfg.LogFile, home) || !strings.HasPrefix(cfg.CookieFile, home) {
		t.Fatalf("LogFile/CookieFile = %q/%q, want them under HOME %q", cfg.LogFile, cfg.CookieFile, home)
	}
	if cfg.LogLevel != "debug" || cfg.StartPath != "/monitor/4" {
		t.Fatalf("LogLevel/StartPath = %q/%q", cfg.LogLevel, cfg.StartPath)
	}
}

func TestLoad_EnvironmentOverridesFile(t *testing.T) {
	clearEnv(t)
	t.Setenv("HOME", t.TempDir())
	path := writeConfig(t, `
base_api = "http://file"
poll_seconds = 9
`)
	t.Setenv("MMW_BASE_API", "http://env:8080")
	t.Setenv("MMW_TIMEOUT_MS", "250")
	t.Setenv("MMW_START_PATH", "/big_screen")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.BaseAPI != "http://env:8080" {
		t.Fatalf("BaseAPI = %q, want env override", cfg.BaseAPI)
	}
	if cfg.Timeout != 250*time.Millisecond {
		t.Fatalf("Timeout = %v, want 250ms", cfg.Timeout)
	}
	if cfg.PollInterval != 9*time.Second {
		t.Fatalf("PollInterval = %v, want file value 9s", cfg.PollInterval)
	}
	if cfg.StartPath != "/big_screen" {
		t.Fatalf("StartPath = %q, want env override", cfg.StartPath)
	}
}

func TestLoad_InvalidEnvironmentFails(t *testing.T) {
	clearEnv(t)
	t.Setenv("MMW_POLL_SECONDS", "often")
	_, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	if err == nil || !strings.Contains(err.Error(), "read environment") {
		t.Fatalf("Load error = %v, want read environment failure", err)
	}
}

func TestLoad_NonPositiveDurationsUseDefaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("HOME", t.TempDir())
	path := writeConfig(t, "timeout_ms = -1\npoll_seconds = 0\n")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Timeout != defaultTimeout || cfg.PollInterval != defaultPollInterval {
		t.Fatalf("Timeout/Poll = %v/%v, want defaults", cfg.Timeout, cfg.PollInterval)
	}
}

func TestLoad_InvalidTOMLFails(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `base_api = [`)
	_, err := Load(path)
	if err == nil {
		t.Fatalf("Load returned nil error, want parse error")
	}
	if !strings.Contains(err.Error(), "parse config") {
		t.Fatalf("Load error = %q, want it to mention parse config", err.Error())
	}
}

func TestExpandPath_ExpandsTildeAndReturnsAbs(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	got, err := ExpandPath("~/a/b")
	if err != nil {
		t.Fatalf("ExpandPath returned error: %v", err)
	}
	want := filepath.Join(home, "a/b")
	if got != want {
		t.Fatalf("ExpandPath = %q, want %q", got, want)
	}
}

func TestExpandPath_EmptyErrors(t *testing.T) {
	if _, err := expandPath("   "); err == nil {
		t.Fatalf("expandPath returned nil error, want error")
	}
}

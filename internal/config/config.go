package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	toml "github.com/pelletier/go-toml/v2"
)

// Config is the resolved mmwdash configuration.
type Config struct {
	BaseAPI      string
	Timeout      time.Duration
	PollInterval time.Duration
	LogFile      string
	LogLevel     string
	CookieFile   string
	StartPath    string
}

const (
	// EnvPrefix is prepended to every environment override (MMW_BASE_API, ...).
	EnvPrefix = "MMW"

	defaultConfigPath   = "~/.config/mmwdash/config.toml"
	defaultLogFile      = "~/.local/share/mmwdash/mmwdash.log"
	defaultLogLevel     = "info"
	defaultStartPath    = "/"
	defaultTimeout      = 5 * time.Second
	defaultPollInterval = 2 * time.Second
)

// fileConfig mirrors config.toml.
type fileConfig struct {
	BaseAPI     string `toml:"base_api"`
	TimeoutMS   int    `toml:"timeout_ms"`
	PollSeconds int    `toml:"poll_seconds"`
	LogFile     string `toml:"log_file"`
	LogLevel    string `toml:"log_level"`
	CookieFile  string `toml:"cookie_file"`
	StartPath   string `toml:"start_path"`
}

// envConfig holds overrides read from MMW_* variables. Zero values are unset.
type envConfig struct {
	BaseAPI     string `envconfig:"BASE_API"`
	TimeoutMS   int    `envconfig:"TIMEOUT_MS"`
	PollSeconds int    `envconfig:"POLL_SECONDS"`
	LogFile     string `envconfig:"LOG_FILE"`
	LogLevel    string `envconfig:"LOG_LEVEL"`
	CookieFile  string `envconfig:"COOKIE_FILE"`
	StartPath   string `envconfig:"START_PATH"`
}

// Load reads the config file, falling back to defaults when it is missing,
// then applies MMW_* environment overrides.
func Load(path string) (Config, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return Config{}, err
	}

	var raw fileConfig
	bytes, err := readFile(resolved)
	if err != nil {
		return Config{}, err
	}
	if bytes != nil {
		if err := toml.Unmarshal(bytes, &raw); err != nil {
			return Config{}, fmt.Errorf("parse config: %w", err)
		}
	}

	var env envConfig
	if err := envconfig.Process(EnvPrefix, &env); err != nil {
		return Config{}, fmt.Errorf("read environment: %w", err)
	}
	raw.override(env)

	return raw.resolve(), nil
}

func readFile(path string) ([]byte, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	bytes, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return bytes, nil
}

func (f *fileConfig) override(env envConfig) {
	if v := strings.TrimSpace(env.BaseAPI); v != "" {
		f.BaseAPI = v
	}
	if env.TimeoutMS > 0 {
		f.TimeoutMS = env.TimeoutMS
	}
	if env.PollSeconds > 0 {
		f.PollSeconds = env.PollSeconds
	}
	if v := strings.TrimSpace(env.LogFile); v != "" {
		f.LogFile = v
	}
	if v := strings.TrimSpace(env.LogLevel); v != "" {
		f.LogLevel = v
	}
	if v := strings.TrimSpace(env.CookieFile); v != "" {
		f.CookieFile = v
	}
	if v := strings.TrimSpace(env.StartPath); v != "" {
		f.StartPath = v
	}
}

func (f fileConfig) resolve() Config {
	cfg := Config{
		BaseAPI:      strings.TrimRight(strings.TrimSpace(f.BaseAPI), "/"),
		Timeout:      defaultTimeout,
		PollInterval: defaultPollInterval,
		LogFile:      strings.TrimSpace(f.LogFile),
		LogLevel:     strings.ToLower(strings.TrimSpace(f.LogLevel)),
		CookieFile:   strings.TrimSpace(f.CookieFile),
		StartPath:    strings.TrimSpace(f.StartPath),
	}
	if f.TimeoutMS > 0 {
		cfg.Timeout = time.Duration(f.TimeoutMS) * time.Millisecond
	}
	if f.PollSeconds > 0 {
		cfg.PollInterval = time.Duration(f.PollSeconds) * time.Second
	}
	if cfg.LogFile == "" {
		cfg.LogFile = defaultLogFile
	}
	cfg.LogFile = mustExpand(cfg.LogFile)
	if cfg.CookieFile != "" {
		cfg.CookieFile = mustExpand(cfg.CookieFile)
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = defaultLogLevel
	}
	if cfg.StartPath == "" {
		cfg.StartPath = defaultStartPath
	}
	return cfg
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return expandPath(defaultConfigPath)
	}
	return expandPath(path)
}

func mustExpand(path string) string {
	expanded, err := expandPath(path)
	if err != nil {
		return path
	}
	return expanded
}

// ExpandPath resolves a leading ~ and returns an absolute path.
func ExpandPath(path string) (string, error) {
	return expandPath(path)
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}

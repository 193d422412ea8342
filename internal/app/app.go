package app

import (
	"context"
	"errors"
	"fmt"
	"net/http/httptest"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/mmwdash/internal/auth"
	"github.com/five82/mmwdash/internal/config"
	"github.com/five82/mmwdash/internal/logging"
	"github.com/five82/mmwdash/internal/mockapi"
	"github.com/five82/mmwdash/internal/prefs"
	"github.com/five82/mmwdash/internal/request"
	"github.com/five82/mmwdash/internal/router"
	"github.com/five82/mmwdash/internal/session"
	"github.com/five82/mmwdash/internal/state"
	"github.com/five82/mmwdash/internal/ui"
	"github.com/five82/mmwdash/internal/vitals"
)

// ErrNoBackend is returned when neither a base API nor the mock backend is set.
var ErrNoBackend = errors.New("no backend: set base_api, MMW_BASE_API or run with -mock")

var _ ui.Refresher = (*Poller)(nil)

// Options configure the mmwdash application.
type Options struct {
	ConfigPath string
	PrefsPath  string // empty uses default ~/.config/mmwdash/prefs.toml
	PollEvery  int    // seconds; zero uses the config value
	StartPath  string // overrides the remembered path
	Mock       bool   // serve generated data from an in-process backend
}

// Run boots the dashboard until the context is cancelled or the user quits.
func Run(ctx context.Context, opts Options) error {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if opts.PollEvery > 0 {
		cfg.PollInterval = time.Duration(opts.PollEvery) * time.Second
	}

	logger, logCloser, err := logging.Open(cfg.LogFile, cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("open log: %w", err)
	}
	defer logCloser.Close()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	baseURL := cfg.BaseAPI
	if opts.Mock {
		srv := httptest.NewServer(mockapi.New(mockapi.WithLogger(logger)).Handler())
		defer srv.Close()
		baseURL = srv.URL
		logger.Info().Str("url", baseURL).Msg("mock backend started")
	}
	if strings.TrimSpace(baseURL) == "" {
		return ErrNoBackend
	}

	jar, err := auth.Open(cfg.CookieFile)
	if err != nil {
		return fmt.Errorf("open cookie jar: %w", err)
	}

	userPrefs, _ := prefs.Load(opts.PrefsPath)
	bridge := ui.NewBridge()

	client := request.New(request.Config{BaseURL: baseURL, Timeout: cfg.Timeout}, request.Deps{
		Session:   session.NewStore(jar),
		Notifier:  bridge,
		Confirmer: bridge,
		Reloader:  bridge,
		Logger:    &logger,
		Context:   ctx,
	})
	defer client.Wait()

	store := &state.Store{}
	poller := NewPoller(vitals.New(client), store, PollerOptions{
		Interval: cfg.PollInterval,
		Logger:   &logger,
	})
	poller.Start(ctx)

	logger.Info().
		Str("base_url", baseURL).
		Dur("poll", cfg.PollInterval).
		Bool("authenticated", client.Authenticated()).
		Msg("dashboard starting")

	err = ui.Run(ui.Options{
		Context:   ctx,
		Store:     store,
		Router:    router.New(),
		Refresher: poller,
		Bridge:    bridge,
		LogPath:   cfg.LogFile,
		StartPath: startPath(opts, cfg, userPrefs),
		ThemeName: userPrefs.Theme,
		PrefsPath: prefsPath(opts),
	})
	cancel()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		err = nil
	}
	logger.Info().Err(err).Msg("dashboard stopped")
	return err
}

// startPath picks the first of the -path flag, the remembered path and the
// configured start path.
func startPath(opts Options, cfg config.Config, p prefs.Prefs) string {
	for _, candidate := range []string{opts.StartPath, p.LastPath, cfg.StartPath} {
		if strings.TrimSpace(candidate) != "" {
			return candidate
		}
	}
	return router.HomePath
}

func prefsPath(opts Options) string {
	if opts.PrefsPath != "" {
		return opts.PrefsPath
	}
	return prefs.DefaultPath()
}

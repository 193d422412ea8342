package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/five82/mmwdash/internal/app"
)

func main() {
	os.Exit(run())
}

func run() int {
	configPath := flag.String("config", "", "config file path (optional, defaults to ~/.config/mmwdash/config.toml)")
	prefsPath := flag.String("prefs", "", "preferences file path (optional)")
	pollSeconds := flag.Int("poll", 0, "refresh interval in seconds (optional, defaults to 2s)")
	startPath := flag.String("path", "", "route to open first, e.g. /monitor/3 or /big_screen")
	mock := flag.Bool("mock", false, "serve generated data from a built-in backend")
	flag.Parse()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	opts := app.Options{
		ConfigPath: *configPath,
		PrefsPath:  *prefsPath,
		StartPath:  *startPath,
		Mock:       *mock,
	}
	if poll := *pollSeconds; poll > 0 {
		opts.PollEvery = poll
	}

	if err := app.Run(ctx, opts); err != nil {
		fmt.Fprintf(os.Stderr, "mmwdash: %v\n", err)
		return 1
	}
	return 0
}

// Package config loads the mmwdash configuration.
//
// # Resolution Order
//
//  1. Defaults
//  2. The TOML file (explicit path, or ~/.config/mmwdash/config.toml)
//  3. MMW_* environment variables
//
// A missing file is not an error; defaults are used instead. A file that
// exists but does not parse is an error.
//
// # Fields
//
//	base_api     = "https://vitals.example.com/dev-api"  # MMW_BASE_API
//	timeout_ms   = 5000                                  # MMW_TIMEOUT_MS
//	poll_seconds = 2                                     # MMW_POLL_SECONDS
//	log_file     = "~/.local/share/mmwdash/mmwdash.log"  # MMW_LOG_FILE
//	log_level    = "info"                                # MMW_LOG_LEVEL
//	cookie_file  = "~/.local/share/mmwdash/cookies.toml" # MMW_COOKIE_FILE
//	start_path   = "/"                                   # MMW_START_PATH
//
// base_api has no default. Without it the dashboard only runs against the
// built-in mock backend. Tilde paths are expanded and made absolute.
package config

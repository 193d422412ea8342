package ui

import "time"

// Terminal width thresholds for responsive layouts.
const (
	// LayoutCompactWidth is the threshold below which panels stack vertically.
	LayoutCompactWidth = 100

	// LayoutWideWidth is the width from which the big screen shows three columns.
	LayoutWideWidth = 150
)

// Log display limits.
const (
	// LogTailLines is how many log lines the logs view reads.
	LogTailLines = 500
)

// Timing constants.
const (
	// DefaultUIInterval is the default UI refresh interval.
	DefaultUIInterval = time.Second

	// ToastLifetime is how long a notification stays on screen.
	ToastLifetime = 5 * time.Second

	// MaxToasts caps the notification stack.
	MaxToasts = 4
)

// Package state provides thread-safe state management for mmwdash.
//
// # Overview
//
// Store is where the background poller and the UI meet. The poller merges
// each poll into the store; the UI reads value snapshots on its own tick.
//
//	Producer (Poller):              Consumer (UI):
//	┌──────────────────────┐       ┌──────────────────┐
//	│ api.Monitor(uid)     │       │                  │
//	│ api.BigScreen(n)     │       │                  │
//	│      ↓               │       │                  │
//	│ store.UpdateMonitor()│──────→│ store.Snapshot() │
//	│ store.UpdateBigScreen│(mutex)│      ↓           │
//	│      ↓               │       │  render view     │
//	│  repeat...           │       │                  │
//	└──────────────────────┘       └──────────────────┘
//
// # Update Semantics
//
// The vitals aggregators return partial results alongside a joined error.
// Updates merge: every field that arrived replaces the stored one, every
// field that failed keeps its previous value, and the error is recorded.
//
//	store.UpdateMonitor(m, nil)  → fields replaced, LastError = nil, failures = 0
//	store.UpdateMonitor(m, err)  → arrived fields replaced, LastError = err, failures++
//
// Snapshot.IsOffline reports two or more failures in a row.
//
// # Monitored User
//
// SetUID selects which user the monitor view follows. Switching users drops
// the stored monitor data, and a poll that finishes for the old user after
// the switch is discarded.
//
// # Concurrency Model
//
// Store uses a sync.RWMutex held only while copying. Slices owned by the
// snapshot are cloned on the way out; the payload structs the poller hands
// in are never mutated afterwards, so pointers to them are shared.
//
// The zero Store is ready to use.
package state

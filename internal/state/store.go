package state

import (
	"fmt"
	"sync"
	"time"

	"github.com/five82/mmwdash/internal/vitals"
)

// Snapshot represents the latest data available to the UI.
type Snapshot struct {
	UID                 string
	Monitor             vitals.Monitor
	HasMonitor          bool
	BigScreen           vitals.BigScreen
	HasBigScreen        bool
	LastUpdated         time.Time
	LastError           error
	ConsecutiveFailures int // Number of consecutive poll failures
}

// IsOffline returns true when the backend has failed for multiple polls.
func (s Snapshot) IsOffline() bool {
	return s.ConsecutiveFailures >= 2
}

// Store coordinates concurrent updates to the snapshot. Payloads handed to
// the store are treated as immutable once stored.
type Store struct {
	mu       sync.RWMutex
	snapshot Snapshot
}

// SetUID switches the monitored user. Monitor data for another user is dropped.
func (s *Store) SetUID(uid string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.snapshot.UID == uid {
		return
	}
	s.snapshot.UID = uid
	s.snapshot.Monitor = vitals.Monitor{}
	s.snapshot.HasMonitor = false
}

// UID returns the monitored user.
func (s *Store) UID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot.UID
}

// UpdateMonitor merges a monitor poll. Fields that arrived replace the stored
// ones and fields that failed keep their previous value. Results for a user
// other than the current one are ignored.
func (s *Store) UpdateMonitor(m vitals.Monitor, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if m.UID != s.snapshot.UID {
		return
	}
	s.snapshot.Monitor = mergeMonitor(s.snapshot.Monitor, m)
	s.snapshot.HasMonitor = s.snapshot.HasMonitor || hasAny(m)
	s.record(err)
}

// UpdateBigScreen merges a big-screen poll the same way as UpdateMonitor.
func (s *Store) UpdateBigScreen(b vitals.BigScreen, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur := &s.snapshot.BigScreen
	if b.Online != nil {
		cur.Online = b.Online
	}
	if b.WarningCount != nil {
		cur.WarningCount = b.WarningCount
	}
	if b.HasWarningList {
		cur.Warnings, cur.HasWarningList = cloneSlice(b.Warnings), true
	}
	if b.HasPerCity {
		cur.PerCity, cur.HasPerCity = cloneSlice(b.PerCity), true
	}
	if b.HasPerDate {
		cur.PerDate, cur.HasPerDate = cloneSlice(b.PerDate), true
	}
	s.snapshot.HasBigScreen = s.snapshot.HasBigScreen ||
		b.Online != nil || b.WarningCount != nil || b.HasWarningList || b.HasPerCity || b.HasPerDate
	s.record(err)
}

// Reset clears all data but keeps the monitored user.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshot = Snapshot{UID: s.snapshot.UID}
}

// Snapshot returns a copy of the current snapshot.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := s.snapshot
	snap.BigScreen.Warnings = cloneSlice(s.snapshot.BigScreen.Warnings)
	snap.BigScreen.PerCity = cloneSlice(s.snapshot.BigScreen.PerCity)
	snap.BigScreen.PerDate = cloneSlice(s.snapshot.BigScreen.PerDate)
	if s.snapshot.LastError != nil {
		snap.LastError = fmt.Errorf("%w", s.snapshot.LastError)
	}
	return snap
}

func (s *Store) record(err error) {
	s.snapshot.LastUpdated = time.Now()
	if err != nil {
		s.snapshot.LastError = err
		s.snapshot.ConsecutiveFailures++
		return
	}
	s.snapshot.LastError = nil
	s.snapshot.ConsecutiveFailures = 0
}

func mergeMonitor(cur, next vitals.Monitor) vitals.Monitor {
	cur.UID = next.UID
	if next.Breath != nil {
		cur.Breath = next.Breath
	}
	if next.Ring != nil {
		cur.Ring = next.Ring
	}
	if next.Warning != nil {
		cur.Warning = next.Warning
	}
	if next.Arrhythmia != nil {
		cur.Arrhythmia = next.Arrhythmia
	}
	if next.HeartRate != nil {
		cur.HeartRate = next.HeartRate
	}
	if next.Latest != nil {
		cur.Latest = next.Latest
	}
	if next.Stress != nil {
		cur.Stress = next.Stress
	}
	if next.HRV != nil {
		cur.HRV = next.HRV
	}
	return cur
}

func hasAny(m vitals.Monitor) bool {
	return m.Breath != nil || m.Ring != nil || m.Warning != nil || m.Arrhythmia != nil ||
		m.HeartRate != nil || m.Latest != nil || m.Stress != nil || m.HRV != nil
}

func cloneSlice[T any](items []T) []T {
	if len(items) == 0 {
		return nil
	}
	dup := make([]T, len(items))
	copy(dup, items)
	return dup
}

package app

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/five82/mmwdash/internal/request"
	"github.com/five82/mmwdash/internal/router"
	"github.com/five82/mmwdash/internal/state"
	"github.com/five82/mmwdash/internal/vitals"
)

type fakeFetcher struct {
	mu         sync.Mutex
	monitorErr error
	monitors   []string
	bigScreens int
}

func (f *fakeFetcher) Monitor(_ context.Context, uid string) (vitals.Monitor, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.monitors = append(f.monitors, uid)
	return vitals.Monitor{UID: uid, Stress: &vitals.Stress{StressIndex: 12}}, f.monitorErr
}

func (f *fakeFetcher) BigScreen(_ context.Context, warnings int) (vitals.BigScreen, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.bigScreens++
	return vitals.BigScreen{Online: &vitals.OnlineUserCount{Count: warnings}}, nil
}

func (f *fakeFetcher) counts() (int, int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.monitors), f.bigScreens
}

func TestPoller_RefreshFollowsWatchedView(t *testing.T) {
	fetcher := &fakeFetcher{}
	store := &state.Store{}
	store.SetUID("4")
	p := NewPoller(fetcher, store, PollerOptions{Warnings: 7})

	p.Refresh(context.Background())
	snap := store.Snapshot()
	if !snap.HasMonitor || snap.Monitor.Stress.StressIndex != 12 {
		t.Fatalf("monitor snapshot = %#v", snap.Monitor)
	}
	if fetcher.monitors[0] != "4" {
		t.Fatalf("polled uid = %q, want 4", fetcher.monitors[0])
	}

	p.Watch(router.ViewBigScreen)
	p.Refresh(context.Background())
	snap = store.Snapshot()
	if !snap.HasBigScreen || snap.BigScreen.Online.Count != 7 {
		t.Fatalf("big screen snapshot = %#v", snap.BigScreen)
	}

	p.Watch(router.ViewNotFound)
	p.Refresh(context.Background())
	if m, b := fetcher.counts(); m != 1 || b != 1 {
		t.Fatalf("calls = %d/%d, want 1/1 (not-found polls nothing)", m, b)
	}
}

func TestPoller_SessionExpirySuspendsUntilResume(t *testing.T) {
	fetcher := &fakeFetcher{monitorErr: &request.APIError{Code: request.CodeTokenExpired, Message: "Token expired"}}
	store := &state.Store{}
	p := NewPoller(fetcher, store, PollerOptions{})

	p.Refresh(context.Background())
	if !p.Suspended() {
		t.Fatalf("Suspended = false after session expiry")
	}
	p.Resume()
	if p.Suspended() {
		t.Fatalf("Suspended = true after Resume")
	}

	fetcher.monitorErr = errors.New("connection refused")
	p.Refresh(context.Background())
	if p.Suspended() {
		t.Fatalf("ordinary failures must not suspend polling")
	}
	if store.Snapshot().ConsecutiveFailures != 2 {
		t.Fatalf("ConsecutiveFailures = %d, want 2", store.Snapshot().ConsecutiveFailures)
	}
}

func TestPoller_TriggerIsRateLimited(t *testing.T) {
	p := NewPoller(&fakeFetcher{}, &state.Store{}, PollerOptions{})
	allowed := 0
	for i := 0; i < 5; i++ {
		if p.Trigger() {
			allowed++
		}
	}
	if allowed != triggerBurst {
		t.Fatalf("allowed triggers = %d, want %d", allowed, triggerBurst)
	}
}

func TestPoller_StartRefreshesOnTrigger(t *testing.T) {
	fetcher := &fakeFetcher{}
	p := NewPoller(fetcher, &state.Store{}, PollerOptions{Interval: time.Hour})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	p.Start(ctx)

	if !p.Trigger() {
		t.Fatalf("first Trigger was rate limited")
	}
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if m, _ := fetcher.counts(); m == 1 {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("poller did not refresh after Trigger")
}

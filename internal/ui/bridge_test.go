package ui

import (
	"context"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/mmwdash/internal/request"
)

func TestBridge_QueuesUntilAttached(t *testing.T) {
	b := NewBridge()
	b.Error("first")
	b.Info("second")

	got := make(chan tea.Msg, 4)
	b.attach(func(msg tea.Msg) { got <- msg })

	for _, want := range []toastMsg{{text: "first", level: toastError}, {text: "second", level: toastInfo}} {
		select {
		case msg := <-got:
			if msg != want {
				t.Fatalf("msg = %#v, want %#v", msg, want)
			}
		case <-time.After(time.Second):
			t.Fatalf("timed out waiting for %q", want.text)
		}
	}

	b.Reload()
	select {
	case msg := <-got:
		if _, ok := msg.(reloadMsg); !ok {
			t.Fatalf("msg = %#v, want reloadMsg", msg)
		}
	case <-time.After(time.Second):
		t.Fatalf("timed out waiting for reload")
	}
}

func TestBridge_QueuedMessagesStayAheadOfNewOnes(t *testing.T) {
	b := NewBridge()
	b.Error("queued 1")
	b.Error("queued 2")

	gate := make(chan struct{})
	got := make(chan string, 8)
	b.attach(func(msg tea.Msg) {
		<-gate
		got <- msg.(toastMsg).text
	})
	b.Error("after attach 1")
	b.Error("after attach 2")
	close(gate)

	want := []string{"queued 1", "queued 2", "after attach 1", "after attach 2"}
	for _, w := range want {
		select {
		case text := <-got:
			if text != w {
				t.Fatalf("toast = %q, want %q", text, w)
			}
		case <-time.After(time.Second):
			t.Fatalf("timed out waiting for %q", w)
		}
	}

	deadline := time.Now().Add(time.Second)
	for {
		b.mu.Lock()
		flushing, pending := b.flushing, len(b.pending)
		b.mu.Unlock()
		if !flushing && pending == 0 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("flushing = %v pending = %d, want direct delivery", flushing, pending)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestBridge_DetachQueuesAgain(t *testing.T) {
	b := NewBridge()
	sent := 0
	b.attach(func(tea.Msg) { sent++ })
	b.Info("a")
	b.Detach()
	b.Info("b")

	if sent != 1 {
		t.Fatalf("sent = %d, want 1", sent)
	}
	if len(b.pending) != 1 {
		t.Fatalf("pending = %d, want 1", len(b.pending))
	}
}

func TestBridge_ConfirmWaitsForAnswer(t *testing.T) {
	b := NewBridge()
	b.attach(func(msg tea.Msg) {
		c, ok := msg.(confirmMsg)
		if !ok {
			return
		}
		if c.prompt.Title != request.ReauthPrompt.Title {
			t.Errorf("prompt title = %q", c.prompt.Title)
		}
		c.reply <- true
	})

	if !b.Confirm(context.Background(), request.ReauthPrompt) {
		t.Fatalf("Confirm = false, want true")
	}
}

func TestBridge_ConfirmGivesUpWithContext(t *testing.T) {
	b := NewBridge()
	b.attach(func(tea.Msg) {})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if b.Confirm(ctx, request.ReauthPrompt) {
		t.Fatalf("Confirm = true after context ended, want false")
	}
}

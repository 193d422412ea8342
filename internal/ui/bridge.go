package ui

import (
	"context"
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/mmwdash/internal/request"
)

// Bridge lets code outside the Bubble Tea loop reach the UI. It implements
// request.Notifier, request.Confirmer and request.Reloader. Messages sent
// before a program is attached are queued and delivered on Attach, in order.
type Bridge struct {
	mu      sync.Mutex
	send    func(tea.Msg)
	pending []tea.Msg
	// flushing is set while the queue drains; new messages join the queue.
	flushing bool
	gen      uint64
}

var (
	_ request.Notifier  = (*Bridge)(nil)
	_ request.Confirmer = (*Bridge)(nil)
	_ request.Reloader  = (*Bridge)(nil)
)

// NewBridge returns a Bridge with no program attached.
func NewBridge() *Bridge {
	return &Bridge{}
}

// Attach routes messages to p and flushes anything queued.
func (b *Bridge) Attach(p *tea.Program) {
	b.attach(p.Send)
}

func (b *Bridge) attach(send func(tea.Msg)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.send = send
	b.gen++
	b.flushing = len(b.pending) > 0
	if b.flushing {
		// Program.Send blocks until the event loop is running.
		go b.flush(b.gen, send)
	}
}

// flush drains the queue until it stays empty, then hands delivery back to
// deliver. It stops early once the bridge is detached or re-attached.
func (b *Bridge) flush(gen uint64, send func(tea.Msg)) {
	for {
		b.mu.Lock()
		if b.gen != gen {
			b.mu.Unlock()
			return
		}
		batch := b.pending
		b.pending = nil
		if len(batch) == 0 {
			b.flushing = false
			b.mu.Unlock()
			return
		}
		b.mu.Unlock()

		for _, msg := range batch {
			send(msg)
		}
	}
}

// Detach stops delivery; later messages are queued again.
func (b *Bridge) Detach() {
	b.mu.Lock()
	b.send = nil
	b.gen++
	b.flushing = false
	b.mu.Unlock()
}

func (b *Bridge) deliver(msg tea.Msg) {
	b.mu.Lock()
	send := b.send
	if send == nil || b.flushing {
		b.pending = append(b.pending, msg)
		send = nil
	}
	b.mu.Unlock()
	if send != nil {
		send(msg)
	}
}

// Error shows message as an error toast.
func (b *Bridge) Error(message string) {
	b.deliver(toastMsg{text: message, level: toastError})
}

// Info shows message as an informational toast.
func (b *Bridge) Info(message string) {
	b.deliver(toastMsg{text: message, level: toastInfo})
}

// Confirm opens a confirm/cancel dialog and waits for the answer. It returns
// false when ctx ends first.
func (b *Bridge) Confirm(ctx context.Context, p request.Prompt) bool {
	reply := make(chan bool, 1)
	b.deliver(confirmMsg{prompt: p, reply: reply})
	select {
	case ok := <-reply:
		return ok
	case <-ctx.Done():
		return false
	}
}

// Reload asks the UI to restart from a clean state.
func (b *Bridge) Reload() {
	b.deliver(reloadMsg{})
}

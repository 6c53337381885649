package app

import (
	"sync"

	"github.com/ayusman/mudra/internal/panel"
)

// hub fans panel snapshots out to subscribers. Each subscriber channel holds
// at most one snapshot; a newer one replaces an unread older one.
type hub struct {
	mu     sync.Mutex
	next   int
	subs   map[int]chan panel.Snapshot
	closed bool
}

func newHub() *hub {
	return &hub{subs: make(map[int]chan panel.Snapshot)}
}

// subscribe registers a channel primed with initial.
func (h *hub) subscribe(initial panel.Snapshot) (chan panel.Snapshot, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	ch := make(chan panel.Snapshot, 1)
	if h.closed {
		close(ch)
		return ch, func() {}
	}
	ch <- initial

	id := h.next
	h.next++
	h.subs[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			if _, ok := h.subs[id]; ok {
				delete(h.subs, id)
				close(ch)
			}
		})
	}
}

func (h *hub) publish(s panel.Snapshot) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, ch := range h.subs {
		select {
		case ch <- s:
			continue
		default:
		}
		select {
		case <-ch:
		default:
		}
		ch <- s
	}
}

func (h *hub) close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	for id, ch := range h.subs {
		delete(h.subs, id)
		close(ch)
	}
}

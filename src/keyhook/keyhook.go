// Package keyhook multiplexes the process-wide gohook event stream so the
// hotkey listener and the confirmation tap can share one system hook.
package keyhook

import (
	"log"
	"sync"

	gohook "github.com/robotn/gohook"
)

// Event is a key transition.
type Event struct {
	Down    bool
	Keycode uint16
	Rawcode uint16
}

// Hub fans key events out to subscribers. The underlying hook runs only while
// at least one subscriber exists.
type Hub struct {
	start func() chan gohook.Event
	end   func()

	mu     sync.Mutex
	subs   map[int]chan Event
	nextID int
	done   chan struct{}
}

func NewHub(start func() chan gohook.Event, end func()) *Hub {
	return &Hub{start: start, end: end, subs: make(map[int]chan Event)}
}

var (
	defaultOnce sync.Once
	defaultHub  *Hub
)

// Default is the hub backed by the real gohook.
func Default() *Hub {
	defaultOnce.Do(func() {
		defaultHub = NewHub(gohook.Start, gohook.End)
	})
	return defaultHub
}

// Subscribe returns a channel of key events and a function that cancels the
// subscription. Events are dropped for subscribers whose buffer is full.
func (h *Hub) Subscribe(buffer int) (<-chan Event, func()) {
	ch := make(chan Event, buffer)

	h.mu.Lock()
	id := h.nextID
	h.nextID++
	h.subs[id] = ch
	if h.done == nil {
		h.done = make(chan struct{})
		src := h.start()
		if src == nil {
			log.Printf("keyhook: hook start returned nil channel")
		} else {
			log.Printf("keyhook: system hook started")
			go h.pump(src, h.done)
		}
	}
	h.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() { h.unsubscribe(id) })
	}
}

func (h *Hub) unsubscribe(id int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	ch, ok := h.subs[id]
	if !ok {
		return
	}
	delete(h.subs, id)
	close(ch)
	if len(h.subs) == 0 && h.done != nil {
		close(h.done)
		h.done = nil
		h.end()
		log.Printf("keyhook: system hook stopped")
	}
}

func (h *Hub) pump(src chan gohook.Event, done chan struct{}) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("PANIC in keyhook pump: %v", r)
		}
	}()
	for {
		select {
		case <-done:
			return
		case ev, ok := <-src:
			if !ok {
				return
			}
			var down bool
			switch ev.Kind {
			case gohook.KeyDown, gohook.KeyHold:
				down = true
			case gohook.KeyUp:
			default:
				continue
			}
			h.broadcast(done, Event{Down: down, Keycode: ev.Keycode, Rawcode: ev.Rawcode})
		}
	}
}

func (h *Hub) broadcast(done chan struct{}, ev Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.done != done {
		return
	}
	for _, ch := range h.subs {
		select {
		case ch <- ev:
		default:
		}
	}
}

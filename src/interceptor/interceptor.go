// Package interceptor turns confirmation key presses into confirm requests
// while a corrected response is awaiting approval.
package interceptor

import (
	"errors"
	"fmt"
	"log"
	"sync"
	"sync/atomic"

	"fixtext/src/keyhook"
	"fixtext/src/messages"
)

// Event is a key transition with its canonical key name.
type Event struct {
	Down bool
	Key  string
}

// Verdict tells the tap whether to consume an event.
type Verdict int

const (
	Pass Verdict = iota
	Swallow
)

type Filter func(Event) Verdict

// Tap installs a system-wide keyboard filter.
type Tap interface {
	Install(f Filter) (*Handle, error)
}

// Handle owns an installed filter. Release removes it exactly once.
type Handle struct {
	once    sync.Once
	release func() error
	err     error
}

func NewHandle(release func() error) *Handle {
	return &Handle{release: release}
}

func (h *Handle) Release() error {
	if h == nil {
		return nil
	}
	h.once.Do(func() {
		if h.release != nil {
			h.err = h.release()
		}
	})
	return h.err
}

var (
	ErrNoConfirmKeys     = errors.New("no confirmation keys configured")
	ErrUnknownConfirmKey = errors.New("unknown confirmation key")
)

// DefaultKeys are the confirmation keys when none are configured.
var DefaultKeys = []string{"enter", "numpadenter"}

// Interceptor posts messages.ConfirmRequested for confirmation keys while
// armed. Arm and Disarm are called from the coordinator goroutine only; the
// filter runs on the tap's thread.
type Interceptor struct {
	tap   Tap
	keys  map[string]bool
	inbox chan<- messages.Message

	handle *Handle
	armed  atomic.Bool

	mu       sync.Mutex
	heldDown map[string]bool
}

func New(tap Tap, keys []string, inbox chan<- messages.Message) (*Interceptor, error) {
	set := make(map[string]bool)
	for _, k := range keys {
		k = keyhook.Normalize(k)
		if k == "" {
			continue
		}
		if len(keyhook.Keycodes(k)) == 0 {
			return nil, fmt.Errorf("%w: %q", ErrUnknownConfirmKey, k)
		}
		set[k] = true
	}
	if len(set) == 0 {
		return nil, ErrNoConfirmKeys
	}
	return &Interceptor{tap: tap, keys: set, inbox: inbox, heldDown: make(map[string]bool)}, nil
}

// Arm installs the tap on first use and starts routing confirmation keys.
func (i *Interceptor) Arm() error {
	if i.handle == nil {
		h, err := i.tap.Install(i.filter)
		if err != nil {
			return err
		}
		i.handle = h
		log.Printf("interceptor: tap installed")
	}
	i.mu.Lock()
	clear(i.heldDown)
	i.mu.Unlock()
	i.armed.Store(true)
	return nil
}

// Disarm stops routing and removes the tap so no system-wide hook lingers
// between sessions.
func (i *Interceptor) Disarm() {
	i.armed.Store(false)
	if i.handle == nil {
		return
	}
	if err := i.handle.Release(); err != nil {
		log.Printf("interceptor: release tap: %v", err)
	}
	i.handle = nil
	log.Printf("interceptor: tap removed")
}

func (i *Interceptor) Armed() bool { return i.armed.Load() }

func (i *Interceptor) filter(ev Event) Verdict {
	if !i.keys[ev.Key] {
		return Pass
	}

	i.mu.Lock()
	defer i.mu.Unlock()

	if !ev.Down {
		// Consume the release that pairs with a consumed press.
		if i.heldDown[ev.Key] {
			delete(i.heldDown, ev.Key)
			return Swallow
		}
		return Pass
	}
	if i.heldDown[ev.Key] {
		// Auto-repeat of a key we already turned into a confirmation.
		return Swallow
	}
	if !i.armed.Load() {
		return Pass
	}

	i.heldDown[ev.Key] = true
	select {
	case i.inbox <- messages.ConfirmRequested{Source: "key"}:
	default:
		log.Printf("interceptor: inbox full, confirmation dropped")
	}
	return Swallow
}

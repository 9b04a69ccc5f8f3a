package hotkey

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"

	"fixtext/src/keyhook"
)

var ErrInvalidHotkey = errors.New("invalid hotkey")

var (
	listenersMu sync.Mutex
	listeners   []func()
)

// Listen registers combo on the shared key hook and calls callback once the
// full combination has been held and then released. Firing on release keeps
// the user's modifiers out of keystrokes the callback injects. The returned
// stop function unregisters it; calling it more than once is harmless.
func Listen(combo string, callback func()) (func(), error) {
	stop, err := listenOn(keyhook.Default(), combo, callback)
	if err != nil {
		return nil, err
	}
	listenersMu.Lock()
	listeners = append(listeners, stop)
	listenersMu.Unlock()
	return stop, nil
}

// Stop unregisters every hotkey registered through Listen.
func Stop() {
	listenersMu.Lock()
	stops := listeners
	listeners = nil
	listenersMu.Unlock()
	for _, stop := range stops {
		stop()
	}
}

func listenOn(hub *keyhook.Hub, combo string, callback func()) (func(), error) {
	m, err := newMatcher(combo)
	if err != nil {
		return nil, err
	}
	log.Printf("Hotkey listener configured for: %s", combo)

	events, unsubscribe := hub.Subscribe(32)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		defer func() {
			if r := recover(); r != nil {
				log.Printf("PANIC in hotkey goroutine: %v", r)
			}
		}()
		for ev := range events {
			if m.feed(ev) {
				log.Printf("Hotkey activated: %s", combo)
				if callback != nil {
					callback()
				}
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			unsubscribe()
			wg.Wait()
			log.Printf("Hotkey listener stopped: %s", combo)
		})
	}, nil
}

type keyState struct {
	name     string
	keycodes []uint16
	pressed  bool
}

// matcher tracks which keys of a combination are currently held. complete is
// set once all of them were down together and cleared when the chord fires.
type matcher struct {
	keys     []keyState
	complete bool
}

func newMatcher(combo string) (*matcher, error) {
	names := parseHotkey(combo)
	if len(names) == 0 {
		return nil, fmt.Errorf("%w: %q is empty", ErrInvalidHotkey, combo)
	}
	m := &matcher{}
	for _, name := range names {
		codes := keyhook.Keycodes(name)
		if len(codes) == 0 {
			return nil, fmt.Errorf("%w: unknown key %q in %q", ErrInvalidHotkey, name, combo)
		}
		m.keys = append(m.keys, keyState{name: name, keycodes: codes})
	}
	return m, nil
}

// feed applies a key event and reports whether the combination just fired,
// which happens on the release that leaves no key of a completed chord held.
func (m *matcher) feed(ev keyhook.Event) bool {
	ours := false
	for i := range m.keys {
		for _, code := range m.keys[i].keycodes {
			if ev.Keycode == code {
				m.keys[i].pressed = ev.Down
				ours = true
				break
			}
		}
	}
	if !ours {
		return false
	}
	if ev.Down {
		if m.all(true) {
			m.complete = true
		}
		return false
	}
	if !m.complete || !m.all(false) {
		return false
	}
	m.complete = false
	return true
}

func (m *matcher) all(pressed bool) bool {
	for i := range m.keys {
		if m.keys[i].pressed != pressed {
			return false
		}
	}
	return true
}

// parseHotkey converts a hotkey string like "Ctrl+Alt+u" to normalized key names
func parseHotkey(combo string) []string {
	var keys []string
	for _, part := range strings.Split(combo, "+") {
		part = keyhook.Normalize(part)
		if part == "" {
			continue
		}
		keys = append(keys, part)
	}
	return keys
}

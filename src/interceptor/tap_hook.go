//go:build !windows

package interceptor

import (
	"fmt"
	"log"
	"sync"

	"fixtext/src/keyhook"
)

// hookTap observes events through the shared gohook stream. gohook cannot
// consume events on this platform, so a Swallow verdict only suppresses the
// confirmation's side effects inside this process.
type hookTap struct {
	hub *keyhook.Hub
}

var warnOnce sync.Once

// NewSystemTap returns the platform tap.
func NewSystemTap() Tap { return hookTap{hub: keyhook.Default()} }

func (t hookTap) Install(f Filter) (*Handle, error) {
	warnOnce.Do(func() {
		log.Printf("interceptor: key events are observed, not consumed, on this platform")
	})
	events, unsubscribe := t.hub.Subscribe(16)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for ev := range events {
			f(Event{Down: ev.Down, Key: nameFor(ev.Keycode)})
		}
	}()
	return NewHandle(func() error {
		unsubscribe()
		<-done
		return nil
	}), nil
}

func nameFor(code uint16) string {
	if name := keyhook.Name(code); name != "" {
		return name
	}
	return fmt.Sprintf("kc:%d", code)
}

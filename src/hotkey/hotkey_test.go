package hotkey

import (
	"errors"
	"testing"
	"time"

	gohook "github.com/robotn/gohook"

	"fixtext/src/keyhook"
)

func TestParseHotkey(t *testing.T) {
	tests := []struct {
		input    string
		expected []string
	}{
		{"Ctrl+Alt+U", []string{"ctrl", "alt", "u"}},
		{"Ctrl+Shift+O", []string{"ctrl", "shift", "o"}},
		{"Alt+F4", []string{"alt", "f4"}},
		{"Ctrl+Win+E", []string{"ctrl", "cmd", "e"}},
		{"Super+Alt+T", []string{"cmd", "alt", "t"}},
		{"Cmd + Option + Return", []string{"cmd", "alt", "enter"}},
		{"", nil},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			result := parseHotkey(tt.input)
			if len(result) != len(tt.expected) {
				t.Fatalf("parseHotkey(%q) = %v, expected %v", tt.input, result, tt.expected)
			}
			for i := range result {
				if result[i] != tt.expected[i] {
					t.Errorf("parseHotkey(%q)[%d] = %q, expected %q",
						tt.input, i, result[i], tt.expected[i])
				}
			}
		})
	}
}

func TestNewMatcherRejectsUnknownKeys(t *testing.T) {
	for _, combo := range []string{"", "Ctrl+Hyper+U", "+"} {
		if _, err := newMatcher(combo); !errors.Is(err, ErrInvalidHotkey) {
			t.Errorf("newMatcher(%q) err = %v", combo, err)
		}
	}
}

func down(code uint16) keyhook.Event { return keyhook.Event{Down: true, Keycode: code} }
func up(code uint16) keyhook.Event   { return keyhook.Event{Keycode: code} }

func TestMatcherFiresOnChordRelease(t *testing.T) {
	m, err := newMatcher("Ctrl+Alt+U")
	if err != nil {
		t.Fatal(err)
	}
	const ctrlR, alt, u, x = 0x0E1D, 0x38, 0x16, 0x2D

	steps := []struct {
		ev   keyhook.Event
		want bool
	}{
		{down(ctrlR), false},
		{down(alt), false},
		// Completing the chord does not fire while modifiers are still held.
		{down(u), false},
		{down(u), false},
		{up(u), false},
		{up(alt), false},
		{up(ctrlR), true},
		// Releases in another order, with an unrelated key in between.
		{down(alt), false},
		{down(ctrlR), false},
		{down(u), false},
		{down(x), false},
		{up(ctrlR), false},
		{up(x), false},
		{up(alt), false},
		{up(u), true},
		// A partial chord never fires.
		{down(ctrlR), false},
		{down(u), false},
		{up(u), false},
		{up(ctrlR), false},
		// Stray releases after firing do nothing.
		{up(alt), false},
	}
	for i, s := range steps {
		if got := m.feed(s.ev); got != s.want {
			t.Errorf("step %d (%+v): fired = %v, want %v", i, s.ev, got, s.want)
		}
	}
}

func TestListenOnDeliversAndStops(t *testing.T) {
	var src chan gohook.Event
	ended := make(chan struct{}, 1)
	hub := keyhook.NewHub(func() chan gohook.Event {
		src = make(chan gohook.Event, 8)
		return src
	}, func() { ended <- struct{}{} })

	fired := make(chan struct{}, 1)
	stop, err := listenOn(hub, "Ctrl+U", func() { fired <- struct{}{} })
	if err != nil {
		t.Fatal(err)
	}

	src <- gohook.Event{Kind: gohook.KeyHold, Keycode: 0x1D}
	src <- gohook.Event{Kind: gohook.KeyHold, Keycode: 0x16}

	select {
	case <-fired:
		t.Fatal("callback invoked while the chord is still held")
	case <-time.After(50 * time.Millisecond):
	}

	src <- gohook.Event{Kind: gohook.KeyUp, Keycode: 0x16}
	src <- gohook.Event{Kind: gohook.KeyUp, Keycode: 0x1D}

	select {
	case <-fired:
	case <-time.After(time.Second):
		t.Fatal("callback not invoked")
	}

	stop()
	stop()
	select {
	case <-ended:
	case <-time.After(time.Second):
		t.Fatal("system hook not released after stop")
	}
}

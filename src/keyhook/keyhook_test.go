package keyhook

import (
	"testing"
	"time"

	gohook "github.com/robotn/gohook"
)

type fakeHook struct {
	ch     chan gohook.Event
	starts int
	ends   int
}

func (f *fakeHook) start() chan gohook.Event {
	f.starts++
	f.ch = make(chan gohook.Event, 8)
	return f.ch
}

func (f *fakeHook) end() { f.ends++ }

func recv(t *testing.T, ch <-chan Event) Event {
	t.Helper()
	select {
	case ev := <-ch:
		return ev
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for key event")
	}
	return Event{}
}

func TestHubFanOut(t *testing.T) {
	f := &fakeHook{}
	h := NewHub(f.start, f.end)

	a, cancelA := h.Subscribe(4)
	b, cancelB := h.Subscribe(4)
	if f.starts != 1 {
		t.Fatalf("hook started %d times, want 1", f.starts)
	}

	f.ch <- gohook.Event{Kind: gohook.KeyHold, Keycode: KeycodeEnter}
	f.ch <- gohook.Event{Kind: gohook.MouseMove}
	f.ch <- gohook.Event{Kind: gohook.KeyUp, Keycode: KeycodeEnter}

	for _, ch := range []<-chan Event{a, b} {
		if ev := recv(t, ch); !ev.Down || ev.Keycode != KeycodeEnter {
			t.Errorf("first event = %+v", ev)
		}
		if ev := recv(t, ch); ev.Down {
			t.Errorf("second event = %+v, want key up", ev)
		}
	}

	cancelA()
	if f.ends != 0 {
		t.Fatal("hook stopped while a subscriber remains")
	}
	cancelB()
	cancelB()
	if f.ends != 1 {
		t.Fatalf("hook stopped %d times, want 1", f.ends)
	}
	if _, ok := <-a; ok {
		t.Error("cancelled subscription channel should be closed")
	}
}

func TestHubRestartsAfterIdle(t *testing.T) {
	f := &fakeHook{}
	h := NewHub(f.start, f.end)
	_, cancel := h.Subscribe(1)
	cancel()
	_, cancel = h.Subscribe(1)
	defer cancel()
	if f.starts != 2 {
		t.Errorf("starts = %d, want 2", f.starts)
	}
}

func TestKeyNames(t *testing.T) {
	tests := []struct {
		name string
		want []uint16
	}{
		{"ctrl", []uint16{0x1D, 0x0E1D}},
		{"Control", []uint16{0x1D, 0x0E1D}},
		{"win", []uint16{0x0E5B, 0x0E5C}},
		{"u", []uint16{0x16}},
		{"F12", []uint16{0x58}},
		{"return", []uint16{KeycodeEnter}},
		{"kpenter", []uint16{KeycodeNumpadEnter}},
		{"nope", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Keycodes(tt.name)
			if len(got) != len(tt.want) {
				t.Fatalf("Keycodes(%q) = %v, want %v", tt.name, got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("Keycodes(%q)[%d] = %#x, want %#x", tt.name, i, got[i], tt.want[i])
				}
			}
		})
	}

	if Name(KeycodeNumpadEnter) != "numpadenter" {
		t.Errorf("Name(numpad enter) = %q", Name(KeycodeNumpadEnter))
	}
	if Name(0x0E1D) != "ctrl" {
		t.Errorf("Name(right ctrl) = %q", Name(0x0E1D))
	}
}

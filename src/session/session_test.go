package session

import (
	"bytes"
	"errors"
	"testing"

	"fixtext/src/clipboard"
)

func TestSlotTokenIsolation(t *testing.T) {
	var s Slot
	a, b := NewToken(), NewToken()

	var got []string
	s.Register(a, func(r Reply) bool { got = append(got, "a:"+r.Text); return true })
	// Session B supersedes A before A's reply arrives.
	s.Register(b, func(r Reply) bool { got = append(got, "b:"+r.Text); return true })

	if _, err := s.Deliver(a, Reply{Text: "late"}); !errors.Is(err, ErrStaleResponse) {
		t.Fatalf("expected stale response, got %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("stale reply reached a handler: %v", got)
	}
	if !s.Active() || s.Token() != b {
		t.Fatal("stale delivery must not disturb the live registration")
	}

	handled, err := s.Deliver(b, Reply{Text: "fresh"})
	if err != nil || !handled {
		t.Fatalf("Deliver(b) = %v, %v", handled, err)
	}
	if len(got) != 1 || got[0] != "b:fresh" {
		t.Errorf("got %v", got)
	}
}

func TestSlotFiresOnce(t *testing.T) {
	var s Slot
	tok := NewToken()
	calls := 0
	s.Register(tok, func(Reply) bool { calls++; return true })

	_, _ = s.Deliver(tok, Reply{})
	if _, err := s.Deliver(tok, Reply{}); !errors.Is(err, ErrStaleResponse) {
		t.Errorf("second delivery err = %v", err)
	}
	if calls != 1 {
		t.Errorf("handler called %d times", calls)
	}
	if s.Active() {
		t.Error("slot should be empty after firing")
	}
}

func TestSlotClear(t *testing.T) {
	var s Slot
	tok := NewToken()
	s.Register(tok, func(Reply) bool { t.Fatal("cleared handler invoked"); return true })
	s.Clear()
	if _, err := s.Deliver(tok, Reply{}); !errors.Is(err, ErrStaleResponse) {
		t.Errorf("err = %v", err)
	}
}

func TestNewTokenUnique(t *testing.T) {
	seen := map[Token]bool{}
	for i := 0; i < 100; i++ {
		tok := NewToken()
		if tok == "" || seen[tok] {
			t.Fatalf("duplicate or empty token %q", tok)
		}
		seen[tok] = true
	}
}

func TestStateString(t *testing.T) {
	if ResponseReady.String() != "response-ready" {
		t.Errorf("got %q", ResponseReady.String())
	}
	if State(42).String() != "unknown" {
		t.Errorf("got %q", State(42).String())
	}
}

func TestTargets(t *testing.T) {
	clip := clipboard.NewMemory()
	if err := (ClipboardTarget{Host: clip}).OnSuccess("fixed"); err != nil {
		t.Fatalf("ClipboardTarget: %v", err)
	}
	if clipboard.ReadText(clip) != "fixed" {
		t.Errorf("clipboard = %q", clipboard.ReadText(clip))
	}

	var buf bytes.Buffer
	if err := (StdoutTarget{Writer: &buf}).OnSuccess("out"); err != nil {
		t.Fatalf("StdoutTarget: %v", err)
	}
	if buf.String() != "out" {
		t.Errorf("stdout = %q", buf.String())
	}
}

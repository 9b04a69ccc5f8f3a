package notification

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestShowStatusTruncates(t *testing.T) {
	got := make(chan string, 1)
	notify = func(title, message string, icon any) error {
		got <- message
		return nil
	}
	t.Cleanup(func() { notify = nil })

	ShowStatus(strings.Repeat("é", 250))
	select {
	case msg := <-got:
		if r := []rune(msg); len(r) != 203 || !strings.HasSuffix(msg, "...") {
			t.Errorf("message length = %d runes", len(r))
		}
	case <-time.After(time.Second):
		t.Fatal("notification not sent")
	}
}

func TestShowBlockingErrorSurvivesFailure(t *testing.T) {
	called := false
	alert = func(title, message string, icon any) error {
		called = true
		return errors.New("no notification daemon")
	}
	t.Cleanup(func() { alert = nil })
	ShowBlockingError("LLM unavailable", "check key")
	if !called {
		t.Error("alert not invoked")
	}
}

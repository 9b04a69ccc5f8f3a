// Package popup is the presentation surface the coordinator talks to: the
// tool window when one exists, desktop notifications otherwise.
package popup

import (
	"log"
	"runtime"

	"fixtext/src/logutil"
	"fixtext/src/notification"
)

// Controller presents session progress to the user.
type Controller interface {
	ShowPrompt(text string)
	ShowResponse(text string, confirmable bool)
	ShowStatus(text string)
	Reset()
}

// Notifier presents through desktop notifications only.
type Notifier struct{}

func (Notifier) ShowPrompt(text string) {
	log.Printf("Popup.ShowPrompt with %d characters: %q", len(text), logutil.Preview(text, 50))
}

func (Notifier) ShowResponse(text string, confirmable bool) {
	log.Printf("Popup.ShowResponse with %d characters (confirmable=%v)", len(text), confirmable)
	notification.ShowStatus(text)
}

func (Notifier) ShowStatus(text string) {
	_, file, line, ok := runtime.Caller(1)
	if ok {
		log.Printf("Popup.ShowStatus called from %s:%d: %s", file, line, text)
	} else {
		log.Printf("Popup.ShowStatus: %s", text)
	}
	notification.ShowStatus(text)
}

func (Notifier) Reset() {}

// Tee forwards to a primary controller and mirrors status lines to a second
// one, typically a Notifier, while Hidden reports true.
type Tee struct {
	Primary Controller
	Status  Controller
	Hidden  func() bool
}

func (t Tee) ShowPrompt(text string) { t.Primary.ShowPrompt(text) }

func (t Tee) ShowResponse(text string, confirmable bool) { t.Primary.ShowResponse(text, confirmable) }

func (t Tee) ShowStatus(text string) {
	t.Primary.ShowStatus(text)
	if t.Status != nil && (t.Hidden == nil || t.Hidden()) {
		t.Status.ShowStatus(text)
	}
}

func (t Tee) Reset() { t.Primary.Reset() }

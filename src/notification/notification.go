// Package notification shows desktop notifications.
package notification

import (
	"log"

	"github.com/gen2brain/beeep"
)

const appName = "FixText"

var (
	notify = beeep.Notify
	alert  = beeep.Alert
)

// ShowStatus displays a transient notification, truncated to 200 characters.
func ShowStatus(text string) {
	displayText := text
	if r := []rune(text); len(r) > 200 {
		displayText = string(r[:200]) + "..."
	}
	go func() {
		if err := notify(appName, displayText, ""); err != nil {
			log.Printf("Failed to show notification: %v", err)
		}
	}()
}

// ShowBlockingError raises an alert for errors the user must see, such as a
// failed startup check.
func ShowBlockingError(title, message string) {
	if err := alert(title, message, ""); err != nil {
		log.Printf("%s: %s (alert failed: %v)", title, message, err)
	}
}

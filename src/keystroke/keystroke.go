// Package keystroke posts synthetic key combinations at the OS input layer.
package keystroke

import (
	"fmt"
	"runtime"
	"strings"

	"github.com/go-vgo/robotgo"
)

// Injector is the keystroke injection collaborator.
type Injector interface {
	PostKeyCombination(key string, modifiers ...string) error
}

// Robot injects through robotgo (CGEvent, SendInput or XTest).
type Robot struct{}

func (Robot) PostKeyCombination(key string, modifiers ...string) error {
	args := make([]interface{}, 0, len(modifiers))
	for _, m := range modifiers {
		args = append(args, m)
	}
	if err := robotgo.KeyTap(key, args...); err != nil {
		return fmt.Errorf("key tap %s: %w", Describe(key, modifiers...), err)
	}
	return nil
}

// ShortcutModifier is the platform's copy/paste modifier.
func ShortcutModifier() string {
	if runtime.GOOS == "darwin" {
		return "cmd"
	}
	return "ctrl"
}

// Copy posts the platform copy shortcut.
func Copy(inj Injector) error {
	return inj.PostKeyCombination("c", ShortcutModifier())
}

// Paste posts the platform paste shortcut.
func Paste(inj Injector) error {
	return inj.PostKeyCombination("v", ShortcutModifier())
}

// Describe renders a combination like "ctrl+v" for logs.
func Describe(key string, modifiers ...string) string {
	parts := append(append([]string{}, modifiers...), key)
	return strings.Join(parts, "+")
}

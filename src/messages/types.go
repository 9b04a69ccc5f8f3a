package messages

import (
	"fixtext/src/selection"
	"fixtext/src/session"
)

// Message is the base interface for everything posted to the coordinator inbox
type Message interface {
	Type() string
}

const (
	TypeHotkeyPressed    = "HotkeyPressed"
	TypeConfirmRequested = "ConfirmRequested"
	TypeWindowDismissed  = "WindowDismissed"
	TypeCaptureFinished  = "CaptureFinished"
	TypeResponseArrived  = "ResponseArrived"
	TypeApplyFinished    = "ApplyFinished"
	TypeQuit             = "Quit"
)

// HotkeyPressed - global hotkey, tray "Fix selection" or a delegated trigger
type HotkeyPressed struct {
	Combo string // e.g., "Ctrl+Alt+U", "tray", "trigger"
}

func (m HotkeyPressed) Type() string { return TypeHotkeyPressed }

// ConfirmRequested - confirm key intercepted or "Apply & Hide" clicked
type ConfirmRequested struct {
	Source string // "key" or "button"
}

func (m ConfirmRequested) Type() string { return TypeConfirmRequested }

// WindowDismissed - user closed or dismissed the tool window
type WindowDismissed struct{}

func (m WindowDismissed) Type() string { return TypeWindowDismissed }

// CaptureFinished - selection capture goroutine is done
type CaptureFinished struct {
	Token  session.Token
	Result *selection.CaptureResult
	Err    error
}

func (m CaptureFinished) Type() string { return TypeCaptureFinished }

// ResponseArrived - correction request completed for Token
type ResponseArrived struct {
	Token session.Token
	Text  string
	Err   error
}

func (m ResponseArrived) Type() string { return TypeResponseArrived }

// ApplyFinished - replacement attempt completed for Token
type ApplyFinished struct {
	Token session.Token
	Err   error
}

func (m ApplyFinished) Type() string { return TypeApplyFinished }

// Quit - tray "Quit" item
type Quit struct{}

func (m Quit) Type() string { return TypeQuit }

// Package gui is the tool window: prompt, response, status line and the
// Apply & Hide / Dismiss actions, plus the system tray menu.
package gui

import (
	"log"
	"sync/atomic"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"

	"fixtext/src/messages"
	"fixtext/src/tray"
)

const (
	title               = "FixText"
	responsePlaceholder = "Response will appear here."
)

// Window implements popup.Controller and focus.Window.
type Window struct {
	app   fyne.App
	win   fyne.Window
	inbox chan<- messages.Message

	prompt   *widget.Entry
	response *widget.Entry
	status   *widget.Label
	apply    *widget.Button
	dismiss  *widget.Button

	foreground atomic.Bool
	visible    atomic.Bool
}

func New(a fyne.App, inbox chan<- messages.Message) *Window {
	w := &Window{app: a, inbox: inbox}
	a.SetIcon(tray.Icon)

	w.prompt = widget.NewMultiLineEntry()
	w.prompt.Wrapping = fyne.TextWrapWord
	w.prompt.SetPlaceHolder("Selected text")
	w.prompt.Disable()

	w.response = widget.NewMultiLineEntry()
	w.response.Wrapping = fyne.TextWrapWord
	w.response.SetPlaceHolder(responsePlaceholder)
	w.response.Disable()

	w.status = widget.NewLabel("")
	w.status.Wrapping = fyne.TextWrapWord

	w.apply = widget.NewButton("Apply & Hide", func() {
		w.post(messages.ConfirmRequested{Source: "button"})
	})
	w.apply.Importance = widget.HighImportance
	w.apply.Disable()
	w.dismiss = widget.NewButton("Dismiss", func() {
		w.post(messages.WindowDismissed{})
	})

	w.win = a.NewWindow(title)
	w.win.SetContent(container.NewBorder(
		nil,
		container.NewVBox(w.status, container.NewHBox(w.dismiss, w.apply)),
		nil, nil,
		container.NewVSplit(w.prompt, w.response),
	))
	w.win.Resize(fyne.NewSize(520, 420))
	w.win.SetCloseIntercept(func() {
		w.post(messages.WindowDismissed{})
	})

	a.Lifecycle().SetOnEnteredForeground(func() { w.foreground.Store(true) })
	a.Lifecycle().SetOnExitedForeground(func() { w.foreground.Store(false) })

	if desk, ok := a.(desktop.App); ok {
		quit := fyne.NewMenuItem("Quit", func() {
			w.post(messages.Quit{})
			a.Quit()
		})
		quit.IsQuit = true
		desk.SetSystemTrayMenu(fyne.NewMenu(title,
			fyne.NewMenuItem("Fix selection", func() {
				w.post(messages.HotkeyPressed{Combo: "tray"})
			}),
			fyne.NewMenuItem("Show window", w.Show),
			fyne.NewMenuItemSeparator(),
			quit,
		))
		desk.SetSystemTrayIcon(tray.Icon)
	}
	return w
}

func (w *Window) post(m messages.Message) {
	select {
	case w.inbox <- m:
	default:
		log.Printf("gui: inbox full, dropped %s", m.Type())
	}
}

// IsForeground reports whether the window is shown and the app is active.
func (w *Window) IsForeground() bool {
	return w.visible.Load() && w.foreground.Load()
}

func (w *Window) Visible() bool { return w.visible.Load() }

func (w *Window) Show() {
	w.visible.Store(true)
	fyne.Do(w.win.Show)
}

func (w *Window) Hide() {
	w.visible.Store(false)
	fyne.Do(w.win.Hide)
}

func (w *Window) ShowPrompt(text string) {
	fyne.Do(func() { w.setPrompt(text) })
}

func (w *Window) ShowResponse(text string, confirmable bool) {
	fyne.Do(func() { w.setResponse(text, confirmable) })
}

func (w *Window) ShowStatus(text string) {
	fyne.Do(func() { w.status.SetText(text) })
}

func (w *Window) Reset() {
	fyne.Do(w.reset)
}

func (w *Window) setPrompt(text string) {
	w.prompt.SetText(text)
	w.response.SetText("")
	w.apply.Disable()
}

func (w *Window) setResponse(text string, confirmable bool) {
	w.response.SetText(text)
	if confirmable {
		w.apply.Enable()
	} else {
		w.apply.Disable()
	}
}

func (w *Window) reset() {
	w.prompt.SetText("")
	w.response.SetText("")
	w.status.SetText("")
	w.apply.Disable()
}

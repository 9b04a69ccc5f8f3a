// Package focus arbitrates foreground focus between the tool's own window
// and the application the user was working in.
package focus

import (
	"fmt"
	"log"
	"os"

	"github.com/go-vgo/robotgo"
)

// AppHandle identifies an external application by process.
type AppHandle struct {
	PID   int
	Title string
}

func (h AppHandle) Valid() bool { return h.PID > 0 }

func (h AppHandle) String() string {
	if h.Title == "" {
		return fmt.Sprintf("pid %d", h.PID)
	}
	return fmt.Sprintf("%q (pid %d)", h.Title, h.PID)
}

// Host is the window/focus collaborator.
type Host interface {
	IsOwnWindowForeground() bool
	BringOwnWindowToFront()
	HideOwnWindow()
	ActivateExternalApplication(h AppHandle) bool
	FrontmostApplication() AppHandle
}

// Window is the tool's own window as seen by the focus host.
type Window interface {
	IsForeground() bool
	Show()
	Hide()
}

// Robot answers focus queries about other applications through robotgo and
// delegates own-window operations to Window.
type Robot struct {
	Window Window
	pid    int

	activePID func() int
	title     func() string
	activate  func(pid int) error
}

func NewRobot(w Window) *Robot {
	return &Robot{
		Window:    w,
		pid:       os.Getpid(),
		activePID: robotgo.GetPID,
		title:     func() string { return robotgo.GetTitle() },
		activate:  func(pid int) error { return robotgo.ActivePid(pid) },
	}
}

// IsOwnWindowForeground reports whether the active window belongs to this
// process. The fyne lifecycle flag covers platforms where the active-window
// query is unavailable.
func (r *Robot) IsOwnWindowForeground() bool {
	if r.Window != nil && r.Window.IsForeground() {
		return true
	}
	return r.activePID() == r.pid
}

func (r *Robot) BringOwnWindowToFront() {
	if r.Window != nil {
		r.Window.Show()
	}
}

func (r *Robot) HideOwnWindow() {
	if r.Window != nil {
		r.Window.Hide()
	}
}

func (r *Robot) ActivateExternalApplication(h AppHandle) bool {
	if !h.Valid() || h.PID == r.pid {
		return false
	}
	if err := r.activate(h.PID); err != nil {
		log.Printf("focus: activate %s failed: %v", h, err)
		return false
	}
	return true
}

// FrontmostApplication returns the owner of the active window, or the zero
// handle when that is this process or unknown.
func (r *Robot) FrontmostApplication() AppHandle {
	pid := r.activePID()
	if pid <= 0 || pid == r.pid {
		return AppHandle{}
	}
	return AppHandle{PID: pid, Title: r.title()}
}

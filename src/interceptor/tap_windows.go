//go:build windows

package interceptor

import (
	"errors"
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"
	"unsafe"

	"golang.org/x/sys/windows"
)

const (
	whKeyboardLL = 13
	wmKeyDown    = 0x0100
	wmKeyUp      = 0x0101
	wmSysKeyDown = 0x0104
	wmSysKeyUp   = 0x0105
	wmQuit       = 0x0012

	llkhfInjected = 0x10
)

var (
	user32                  = windows.NewLazySystemDLL("user32.dll")
	procSetWindowsHookExW   = user32.NewProc("SetWindowsHookExW")
	procUnhookWindowsHookEx = user32.NewProc("UnhookWindowsHookEx")
	procCallNextHookEx      = user32.NewProc("CallNextHookEx")
	procGetMessageW         = user32.NewProc("GetMessageW")
	procPostThreadMessageW  = user32.NewProc("PostThreadMessageW")
)

type kbdllhookstruct struct {
	VkCode      uint32
	ScanCode    uint32
	Flags       uint32
	Time        uint32
	DwExtraInfo uintptr
}

type msg struct {
	Hwnd    uintptr
	Message uint32
	WParam  uintptr
	LParam  uintptr
	Time    uint32
	Pt      struct{ X, Y int32 }
}

var (
	activeFilter atomic.Pointer[Filter]
	hookProcOnce sync.Once
	hookProc     uintptr
)

func lowLevelKeyboardProc(nCode uintptr, wParam uintptr, lParam uintptr) uintptr {
	if int32(nCode) >= 0 && filterKey(wParam, lParam) == Swallow {
		return 1
	}
	ret, _, _ := procCallNextHookEx.Call(0, nCode, wParam, lParam)
	return ret
}

func filterKey(wParam uintptr, lParam uintptr) Verdict {
	f := activeFilter.Load()
	if f == nil {
		return Pass
	}
	kb := (*kbdllhookstruct)(unsafe.Pointer(lParam))
	if kb.Flags&llkhfInjected != 0 {
		return Pass
	}
	ev := Event{Key: vkName(kb.VkCode, kb.Flags)}
	switch wParam {
	case wmKeyDown, wmSysKeyDown:
		ev.Down = true
	case wmKeyUp, wmSysKeyUp:
	default:
		return Pass
	}
	return (*f)(ev)
}

// lowLevelTap consumes events through a WH_KEYBOARD_LL hook. Injected events
// are never filtered so the replacer's own keystrokes pass through.
type lowLevelTap struct{}

// NewSystemTap returns the platform tap.
func NewSystemTap() Tap { return lowLevelTap{} }

func (lowLevelTap) Install(f Filter) (*Handle, error) {
	hookProcOnce.Do(func() {
		hookProc = windows.NewCallback(lowLevelKeyboardProc)
	})

	type installed struct {
		threadID uint32
		err      error
	}
	ready := make(chan installed, 1)
	done := make(chan struct{})

	go func() {
		runtime.LockOSThread()
		defer runtime.UnlockOSThread()
		defer close(done)

		hook, _, callErr := procSetWindowsHookExW.Call(whKeyboardLL, hookProc, 0, 0)
		if hook == 0 {
			ready <- installed{err: fmt.Errorf("SetWindowsHookExW: %w", callErr)}
			return
		}
		activeFilter.Store(&f)
		ready <- installed{threadID: windows.GetCurrentThreadId()}

		var m msg
		for {
			r, _, _ := procGetMessageW.Call(uintptr(unsafe.Pointer(&m)), 0, 0, 0)
			if int32(r) <= 0 {
				break
			}
		}
		activeFilter.Store(nil)
		procUnhookWindowsHookEx.Call(hook)
	}()

	res := <-ready
	if res.err != nil {
		return nil, res.err
	}
	return NewHandle(func() error {
		r, _, callErr := procPostThreadMessageW.Call(uintptr(res.threadID), wmQuit, 0, 0)
		if r == 0 {
			return errors.Join(errors.New("PostThreadMessageW failed"), callErr)
		}
		<-done
		return nil
	}), nil
}

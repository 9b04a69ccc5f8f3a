//go:build windows

package clipboard

import "golang.org/x/sys/windows"

var (
	user32                      = windows.NewLazySystemDLL("user32.dll")
	getClipboardSequenceNumber = user32.NewProc("GetClipboardSequenceNumber")
)

type sequencer struct{}

func newSequencer() sequencer { return sequencer{} }

func (sequencer) count() int64 {
	r, _, _ := getClipboardSequenceNumber.Call()
	return int64(r)
}

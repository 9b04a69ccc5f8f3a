//go:build darwin

package clipboard

// #cgo CFLAGS: -x objective-c
// #cgo LDFLAGS: -framework Cocoa
// #import <Cocoa/Cocoa.h>
//
// NSInteger fixtext_changeCount() {
//     return [[NSPasteboard generalPasteboard] changeCount];
// }
import "C"

type sequencer struct{}

func newSequencer() sequencer { return sequencer{} }

func (sequencer) count() int64 { return int64(C.fixtext_changeCount()) }

// Package selection extracts and replaces the foreground application's text
// selection by simulating copy and paste at the OS input layer.
package selection

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"fixtext/src/clipboard"
	"fixtext/src/keystroke"
)

var (
	// ErrCaptureTimeout means the clipboard did not change before the deadline.
	ErrCaptureTimeout = errors.New("selection capture timed out")
	// ErrEmptyCapture means the copy happened but produced no text.
	ErrEmptyCapture = errors.New("selection capture yielded no text")
	// ErrInjectionFailed means the OS refused the synthetic keystrokes.
	ErrInjectionFailed = errors.New("keystroke injection failed")
	// ErrEmptyText is returned by ReplaceSelection for empty input.
	ErrEmptyText = errors.New("replacement text is empty")
)

const (
	DefaultTimeout     = 600 * time.Millisecond
	DefaultPollEvery   = 50 * time.Millisecond
	DefaultPasteSettle = 150 * time.Millisecond
)

// CaptureResult is a captured selection plus the pending restoration of the
// clipboard as it was before the simulated copy.
type CaptureResult struct {
	Text string

	once sync.Once
	snap clipboard.Snapshot
	host clipboard.Host
}

// Restore puts the pre-capture clipboard back. Only the first call has an
// effect.
func (r *CaptureResult) Restore() {
	if r == nil {
		return
	}
	r.once.Do(func() {
		r.snap.Restore(r.host)
	})
}

// Engine captures the current selection.
type Engine struct {
	clip      clipboard.Host
	keys      keystroke.Injector
	pollEvery time.Duration
}

func NewEngine(clip clipboard.Host, keys keystroke.Injector) *Engine {
	return &Engine{clip: clip, keys: keys, pollEvery: DefaultPollEvery}
}

// SetPollInterval overrides the clipboard polling granularity.
func (e *Engine) SetPollInterval(d time.Duration) {
	if d > 0 {
		e.pollEvery = d
	}
}

// CaptureSelectedText copies the selection and returns it without restoring
// the clipboard; the caller restores through the result once done with it.
// On any failure the clipboard is restored before returning.
func (e *Engine) CaptureSelectedText(ctx context.Context, timeout time.Duration) (*CaptureResult, error) {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	snap := clipboard.Capture(e.clip)
	initial := e.clip.ChangeCount()

	if err := keystroke.Copy(e.keys); err != nil {
		snap.Restore(e.clip)
		return nil, fmt.Errorf("%w: %v", ErrInjectionFailed, err)
	}

	if err := e.waitForChange(ctx, initial, timeout); err != nil {
		snap.Restore(e.clip)
		return nil, err
	}

	text := clipboard.ReadText(e.clip)
	if text == "" {
		snap.Restore(e.clip)
		return nil, ErrEmptyCapture
	}

	log.Printf("selection: captured %d chars (clipboard snapshot: %d items)", len(text), snap.Len())
	return &CaptureResult{Text: text, snap: snap, host: e.clip}, nil
}

func (e *Engine) waitForChange(ctx context.Context, initial int64, timeout time.Duration) error {
	deadline := time.NewTimer(timeout)
	defer deadline.Stop()
	tick := time.NewTicker(e.pollEvery)
	defer tick.Stop()

	for {
		if e.clip.ChangeCount() != initial {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-deadline.C:
			if e.clip.ChangeCount() != initial {
				return nil
			}
			return ErrCaptureTimeout
		case <-tick.C:
		}
	}
}

// Replacer pastes text over the current selection.
type Replacer struct {
	clip   clipboard.Host
	keys   keystroke.Injector
	settle time.Duration
}

func NewReplacer(clip clipboard.Host, keys keystroke.Injector) *Replacer {
	return &Replacer{clip: clip, keys: keys, settle: DefaultPasteSettle}
}

// SetSettleDelay overrides the wait after the paste keystroke.
func (r *Replacer) SetSettleDelay(d time.Duration) {
	if d >= 0 {
		r.settle = d
	}
}

// ReplaceSelection writes text to the clipboard and posts paste. A nil
// error only means the paste was injected; the target may still ignore it.
func (r *Replacer) ReplaceSelection(ctx context.Context, text string) error {
	if text == "" {
		return ErrEmptyText
	}
	if err := clipboard.WriteText(r.clip, text); err != nil {
		return fmt.Errorf("write replacement to clipboard: %w", err)
	}
	if err := keystroke.Paste(r.keys); err != nil {
		return fmt.Errorf("%w: %v", ErrInjectionFailed, err)
	}

	t := time.NewTimer(r.settle)
	defer t.Stop()
	select {
	case <-t.C:
	case <-ctx.Done():
	}
	return nil
}

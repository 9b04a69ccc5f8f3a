package session

import (
	"fmt"
	"io"
	"os"

	"fixtext/src/clipboard"
)

// ResultTarget receives the final text of a request that does not replace a
// selection.
type ResultTarget interface {
	OnSuccess(text string) error
	OnFailure(err error) error
}

// ClipboardTarget copies the reply to the clipboard as a terminal action.
type ClipboardTarget struct {
	Host clipboard.Host
}

func (t ClipboardTarget) OnSuccess(text string) error {
	if err := clipboard.WriteText(t.Host, text); err != nil {
		return fmt.Errorf("clipboard error: %w", err)
	}
	return nil
}

func (ClipboardTarget) OnFailure(err error) error {
	return nil
}

type StdoutTarget struct {
	Writer io.Writer
}

func (t StdoutTarget) OnSuccess(text string) error {
	w := t.Writer
	if w == nil {
		w = os.Stdout
	}
	_, err := fmt.Fprint(w, text)
	return err
}

func (StdoutTarget) OnFailure(err error) error {
	return nil
}

// Package clipboard models the system clipboard as ordered items of typed
// representations and provides snapshot/restore around simulated copy/paste.
package clipboard

import (
	"errors"
	"log"
)

// Representation types understood by every Host.
const (
	TypeText  = "text/plain"
	TypeImage = "image/png"
)

var (
	ErrUnsupportedType       = errors.New("unsupported clipboard type")
	ErrDroppedRepresentation = errors.New("clipboard representation dropped")
)

// Item is one clipboard entry with one or more representations.
// Types preserves the order in which representations were reported.
type Item struct {
	Types []string
	Data  map[string][]byte
}

// TextItem builds a single-representation text item.
func TextItem(text string) Item {
	it := Item{}
	it.Set(TypeText, []byte(text))
	return it
}

// Set adds or replaces a representation, keeping first-seen order.
func (it *Item) Set(typ string, data []byte) {
	if it.Data == nil {
		it.Data = make(map[string][]byte)
	}
	if _, ok := it.Data[typ]; !ok {
		it.Types = append(it.Types, typ)
	}
	it.Data[typ] = append([]byte(nil), data...)
}

func (it Item) clone() Item {
	out := Item{Types: append([]string(nil), it.Types...)}
	if it.Data != nil {
		out.Data = make(map[string][]byte, len(it.Data))
		for k, v := range it.Data {
			out.Data[k] = append([]byte(nil), v...)
		}
	}
	return out
}

// Host is the clipboard collaborator. Implementations must return deep
// copies from ReadAllItems and replace the whole clipboard on WriteItems.
type Host interface {
	ReadAllItems() ([]Item, error)
	WriteItems(items []Item) error
	// ChangeCount increases every time the clipboard content changes.
	ChangeCount() int64
}

// Text returns the first plain-text representation found in items.
func Text(items []Item) string {
	for _, it := range items {
		if b, ok := it.Data[TypeText]; ok && len(b) > 0 {
			return string(b)
		}
	}
	return ""
}

// ReadText reads the current plain-text content, "" when none.
func ReadText(h Host) string {
	items, err := h.ReadAllItems()
	if err != nil {
		log.Printf("clipboard: read failed: %v", err)
		return ""
	}
	return Text(items)
}

// WriteText replaces the clipboard with a single text item.
func WriteText(h Host, text string) error {
	return h.WriteItems([]Item{TextItem(text)})
}

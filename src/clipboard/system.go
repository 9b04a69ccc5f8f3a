package clipboard

import (
	"errors"
	"fmt"
	"log"
	"sync"

	"golang.design/x/clipboard"
)

// System is the OS clipboard via golang.design/x/clipboard. The platform
// library exposes one text and one image slot, so a snapshot holds at most
// one item carrying up to two representations.
type System struct {
	writeMu sync.Mutex
	seq     sequencer
}

// NewSystem initialises the OS clipboard. Without a display it falls back to
// an in-memory clipboard so the rest of the tool keeps working.
func NewSystem() Host {
	if err := clipboard.Init(); err != nil {
		log.Printf("clipboard unavailable, running headless: %v", err)
		return NewMemory()
	}
	return &System{seq: newSequencer()}
}

func (s *System) ReadAllItems() ([]Item, error) {
	var it Item
	if text := clipboard.Read(clipboard.FmtText); text != nil {
		it.Set(TypeText, text)
	}
	if img := clipboard.Read(clipboard.FmtImage); img != nil {
		it.Set(TypeImage, img)
	}
	if len(it.Types) == 0 {
		return nil, nil
	}
	return []Item{it}, nil
}

// WriteItems performs a mutex-guarded write. The platform library replaces
// the whole clipboard on every write, so only one representation survives:
// text when present, since that is what paste needs. Everything else is
// reported through the returned error.
func (s *System) WriteItems(items []Item) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	p, err := planWrite(items)
	clipboard.Write(p.format, p.data)
	return err
}

type writePlan struct {
	format clipboard.Format
	data   []byte
}

func planWrite(items []Item) (writePlan, error) {
	if len(items) == 0 {
		return writePlan{format: clipboard.FmtText, data: []byte{}}, nil
	}
	var errs []error
	if len(items) > 1 {
		errs = append(errs, fmt.Errorf("%w: %d items, only the first is kept", ErrDroppedRepresentation, len(items)))
	}
	it := items[0]
	p := writePlan{format: clipboard.FmtText, data: []byte{}}
	switch text, hasText := it.Data[TypeText]; {
	case hasText:
		p.data = text
		if _, ok := it.Data[TypeImage]; ok {
			errs = append(errs, fmt.Errorf("%w: %s", ErrDroppedRepresentation, TypeImage))
		}
	default:
		if img, ok := it.Data[TypeImage]; ok {
			p = writePlan{format: clipboard.FmtImage, data: img}
		}
	}
	for _, typ := range it.Types {
		if typ != TypeText && typ != TypeImage {
			errs = append(errs, fmt.Errorf("%w: %s", ErrUnsupportedType, typ))
		}
	}
	return p, errors.Join(errs...)
}

func (s *System) ChangeCount() int64 { return s.seq.count() }

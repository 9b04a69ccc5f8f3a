package clipboard

import "log"

// Snapshot is an immutable deep copy of the clipboard taken before a
// simulated copy. It holds no reference to OS clipboard state.
type Snapshot struct {
	items []Item
}

// Capture reads every representation of every item currently on the
// clipboard. A read failure yields an empty snapshot.
func Capture(h Host) Snapshot {
	items, err := h.ReadAllItems()
	if err != nil {
		log.Printf("clipboard: snapshot read failed, treating as empty: %v", err)
		return Snapshot{}
	}
	out := make([]Item, 0, len(items))
	for _, it := range items {
		if len(it.Types) == 0 {
			continue
		}
		out = append(out, it.clone())
	}
	return Snapshot{items: out}
}

// Len reports the number of captured items.
func (s Snapshot) Len() int { return len(s.items) }

// Items returns a copy of the captured items.
func (s Snapshot) Items() []Item {
	out := make([]Item, len(s.items))
	for i, it := range s.items {
		out[i] = it.clone()
	}
	return out
}

// Restore clears the clipboard and rewrites exactly the captured items.
// It is best effort: failures are logged and never returned.
func (s Snapshot) Restore(h Host) {
	if err := h.WriteItems(s.Items()); err != nil {
		log.Printf("clipboard: restore incomplete (%d items): %v", len(s.items), err)
	}
}

package clipboard

import (
	"errors"
	"reflect"
	"testing"
)

func multiTypeItem(text string, img []byte) Item {
	var it Item
	it.Set(TypeText, []byte(text))
	it.Set(TypeImage, img)
	it.Set("application/rtf", []byte(`{\rtf1 `+text+`}`))
	return it
}

func TestSnapshotRoundTrip(t *testing.T) {
	tests := []struct {
		name  string
		items []Item
	}{
		{"empty", nil},
		{"single text", []Item{TextItem("hello")}},
		{"multi type", []Item{multiTypeItem("hi", []byte{0x89, 'P', 'N', 'G'})}},
		{"multi item", []Item{TextItem("one"), multiTypeItem("two", []byte{1, 2, 3})}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewMemory(tt.items...)
			before, _ := h.ReadAllItems()

			snap := Capture(h)
			if err := WriteText(h, "clobbered by copy"); err != nil {
				t.Fatalf("WriteText: %v", err)
			}
			snap.Restore(h)

			after, _ := h.ReadAllItems()
			if len(before) == 0 && len(after) == 0 {
				return
			}
			if !reflect.DeepEqual(before, after) {
				t.Errorf("clipboard after restore = %+v, want %+v", after, before)
			}
		})
	}
}

func TestSnapshotIsDeepCopy(t *testing.T) {
	h := NewMemory(TextItem("original"))
	snap := Capture(h)

	items, _ := h.ReadAllItems()
	items[0].Data[TypeText][0] = 'X'
	_ = h.WriteItems(items)

	got := snap.Items()
	if string(got[0].Data[TypeText]) != "original" {
		t.Errorf("snapshot changed with clipboard: %q", got[0].Data[TypeText])
	}
}

func TestRestoreEmptySnapshotClears(t *testing.T) {
	h := NewMemory()
	snap := Capture(h)
	if snap.Len() != 0 {
		t.Fatalf("expected empty snapshot, got %d items", snap.Len())
	}
	_ = WriteText(h, "copied selection")
	snap.Restore(h)
	if got := ReadText(h); got != "" {
		t.Errorf("expected empty clipboard, got %q", got)
	}
}

func TestRestoreIsBestEffort(t *testing.T) {
	h := NewMemory(TextItem("keep"))
	snap := Capture(h)
	h.FailWrites = errors.New("pasteboard locked")
	// Must not panic or propagate.
	snap.Restore(h)
	if got := ReadText(h); got != "keep" {
		t.Errorf("content changed on failed write: %q", got)
	}
}

func TestItemSetKeepsOrder(t *testing.T) {
	var it Item
	it.Set("b", []byte("1"))
	it.Set("a", []byte("2"))
	it.Set("b", []byte("3"))
	if !reflect.DeepEqual(it.Types, []string{"b", "a"}) {
		t.Errorf("Types = %v", it.Types)
	}
	if string(it.Data["b"]) != "3" {
		t.Errorf("Data[b] = %q", it.Data["b"])
	}
}

func TestMemoryChangeCount(t *testing.T) {
	h := NewMemory()
	start := h.ChangeCount()
	_ = WriteText(h, "x")
	if h.ChangeCount() == start {
		t.Error("expected change count to move after write")
	}
}

func TestText(t *testing.T) {
	img := Item{}
	img.Set(TypeImage, []byte{1})
	if got := Text([]Item{img, TextItem("second")}); got != "second" {
		t.Errorf("Text = %q", got)
	}
	if got := Text(nil); got != "" {
		t.Errorf("Text(nil) = %q", got)
	}
}

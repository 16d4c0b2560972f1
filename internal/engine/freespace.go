package engine

import "github.com/piwi3910/BinPack/internal/model"

// NewFreeSpace returns the initial free space of an empty bin. A bin with a
// zero dimension has no free space at all.
func NewFreeSpace(bin model.Bin) []model.FreeRect {
	if bin.Width <= 0 || bin.Length <= 0 {
		return nil
	}
	return []model.FreeRect{{X: 0, Y: 0, Width: bin.Width, Length: bin.Length}}
}

// PlaceItem places an item of size w x l into the first free rectangle, in
// scan order, that admits it either as-is or rotated 90 degrees. The item
// goes in the top-left corner of that rectangle, which is then replaced by
// a guillotine split into the space right of the item and the space below it.
//
// When nothing admits the item, ok is false and the returned slice holds the
// same rectangles as free. The input slice is never modified.
func PlaceItem(free []model.FreeRect, w, l int64) (updated []model.FreeRect, place model.Placement, ok bool) {
	idx := -1
	for i, r := range free {
		if fitsNormal(r, w, l) {
			place = model.Placement{X: r.X, Y: r.Y, Width: w, Length: l}
			idx = i
			break
		}
		if fitsRotated(r, w, l) {
			place = model.Placement{X: r.X, Y: r.Y, Width: l, Length: w}
			idx = i
			break
		}
	}

	if idx < 0 {
		return append([]model.FreeRect(nil), free...), model.Placement{}, false
	}

	updated = make([]model.FreeRect, 0, len(free)+1)
	updated = append(updated, free[:idx]...)
	updated = append(updated, splitGuillotine(free[idx], place)...)
	updated = append(updated, free[idx+1:]...)
	return updated, place, true
}

func fitsNormal(r model.FreeRect, w, l int64) bool {
	return w <= r.Width && l <= r.Length
}

func fitsRotated(r model.FreeRect, w, l int64) bool {
	return w <= r.Length && l <= r.Width
}

// splitGuillotine cuts r around a placement in its top-left corner. The first
// remainder spans the placement's length to its right, the second spans the
// full width of r below it. Degenerate remainders are dropped.
func splitGuillotine(r model.FreeRect, p model.Placement) []model.FreeRect {
	out := make([]model.FreeRect, 0, 2)

	right := model.FreeRect{
		X:      p.X + p.Width,
		Y:      r.Y,
		Width:  r.Width - p.Width,
		Length: p.Length,
	}
	if right.Width > 0 && right.Length > 0 {
		out = append(out, right)
	}

	below := model.FreeRect{
		X:      r.X,
		Y:      p.Y + p.Length,
		Width:  r.Width,
		Length: r.Length - p.Length,
	}
	if below.Width > 0 && below.Length > 0 {
		out = append(out, below)
	}
	return out
}

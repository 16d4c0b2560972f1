package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MaxSafeInteger is the largest integer that survives a round trip through a
// JSON number in every client. It is the default bin weight limit, which
// effectively means "unconstrained".
const MaxSafeInteger int64 = 1<<53 - 1

// Item is a rectangle to be packed. Its identity is its position in
// Request.Items; Label and ID are for humans only.
type Item struct {
	ID     string `json:"id,omitempty"`
	Label  string `json:"label,omitempty"`
	Width  int64  `json:"width"`
	Length int64  `json:"length"`
	Weight int64  `json:"weight"`
	Cost   int64  `json:"cost"`
}

func NewItem(label string, w, l int64) Item {
	return Item{
		ID:     uuid.New().String()[:8],
		Label:  label,
		Width:  w,
		Length: l,
	}
}

// Area returns width x length. The product of two safe integers does not
// fit in an int64, so it is exact rather than machine arithmetic.
func (it Item) Area() decimal.Decimal {
	return rectArea(it.Width, it.Length)
}

func rectArea(w, l int64) decimal.Decimal {
	return decimal.NewFromInt(w).Mul(decimal.NewFromInt(l))
}

// Bin is the single container items are packed into.
type Bin struct {
	Width         int64 `json:"width"`
	Length        int64 `json:"length"`
	MaximumWeight int64 `json:"maximumWeight"`
}

func NewBin(w, l int64) Bin {
	return Bin{Width: w, Length: l, MaximumWeight: MaxSafeInteger}
}

// Area returns the bin area.
func (b Bin) Area() decimal.Decimal {
	return rectArea(b.Width, b.Length)
}

// Request is a validated packing problem.
type Request struct {
	Items []Item `json:"items"`
	Bin   Bin    `json:"bin"`
}

// TotalCost sums the cost of every item in the request.
func (r Request) TotalCost() int64 {
	var total int64
	for _, it := range r.Items {
		total += it.Cost
	}
	return total
}

// TotalWeight sums the weight of every item in the request.
func (r Request) TotalWeight() int64 {
	var total int64
	for _, it := range r.Items {
		total += it.Weight
	}
	return total
}

// FreeRect is an unoccupied axis-aligned region of the bin.
// X and Y are the top-left corner.
type FreeRect struct {
	X      int64 `json:"x"`
	Y      int64 `json:"y"`
	Width  int64 `json:"width"`
	Length int64 `json:"length"`
}

// Placement is where an item ended up. Width and Length are swapped relative
// to the item when it had to be rotated to fit.
type Placement struct {
	X      int64 `json:"x"`
	Y      int64 `json:"y"`
	Width  int64 `json:"width"`
	Length int64 `json:"length"`
}

// Overlaps reports whether two placements share any area. Touching edges do
// not count.
func (p Placement) Overlaps(o Placement) bool {
	if p.Width == 0 || p.Length == 0 || o.Width == 0 || o.Length == 0 {
		return false
	}
	return p.X < o.X+o.Width && o.X < p.X+p.Width &&
		p.Y < o.Y+o.Length && o.Y < p.Y+p.Length
}

// RotatedFor reports whether the placement is the item turned 90 degrees.
func (p Placement) RotatedFor(it Item) bool {
	return it.Width != it.Length && p.Width == it.Length && p.Length == it.Width
}

// PackedItem links an item index to its placement.
type PackedItem struct {
	Index int       `json:"index"`
	Place Placement `json:"place"`
}

// PackingResult is the outcome of one packing run.
type PackingResult struct {
	RunID                string        `json:"runId,omitempty"`
	PackedItems          []PackedItem  `json:"packedItems"`
	PackedItemsCost      int64         `json:"packedItemsCost"`
	PackedItemsWeight    int64         `json:"packedItemsWeight"`
	RemainingItems       []int         `json:"remainingItems"`
	RemainingItemsCost   int64         `json:"remainingItemsCost"`
	RemainingItemsWeight int64         `json:"remainingItemsWeight"`
	Strategy             Strategy      `json:"strategy"`
	TimeTakenMs          int64         `json:"timeTakenInMs"`
	Elapsed              time.Duration `json:"-"`
}

// UsedArea returns the area covered by packed items.
func (r PackingResult) UsedArea() decimal.Decimal {
	total := decimal.Zero
	for _, p := range r.PackedItems {
		total = total.Add(rectArea(p.Place.Width, p.Place.Length))
	}
	return total
}

// Efficiency returns the bin area usage percentage.
func (r PackingResult) Efficiency(bin Bin) float64 {
	area := bin.Area()
	if area.IsZero() {
		return 0
	}
	return r.UsedArea().Div(area).Mul(decimal.NewFromInt(100)).InexactFloat64()
}

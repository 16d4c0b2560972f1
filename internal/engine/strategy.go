package engine

import (
	"sort"

	"github.com/piwi3910/BinPack/internal/model"
	"github.com/shopspring/decimal"
)

// IndexedItem pairs an item with its position in the original request.
type IndexedItem struct {
	Index int
	Item  model.Item
}

// OrderFunc produces a placement order. It must return a new slice and leave
// its input untouched.
type OrderFunc func([]IndexedItem) []IndexedItem

// Enumerate tags every item with its original index.
func Enumerate(items []model.Item) []IndexedItem {
	out := make([]IndexedItem, len(items))
	for i, it := range items {
		out[i] = IndexedItem{Index: i, Item: it}
	}
	return out
}

// OrderByLargestArea orders items by descending width x length.
func OrderByLargestArea(items []IndexedItem) []IndexedItem {
	return sortedCopy(items, func(a, b model.Item) bool {
		return a.Area().GreaterThan(b.Area())
	})
}

// OrderByCostPerArea orders items by descending cost / (width x length).
// A zero-area item with a cost ranks above every finite ratio; a zero-area
// item without a cost has ratio 0.
func OrderByCostPerArea(items []IndexedItem) []IndexedItem {
	return sortedCopy(items, func(a, b model.Item) bool {
		return ratioGreater(a.Cost, a.Area(), b.Cost, b.Area())
	})
}

// OrderByCostPerWeight orders items by descending cost / weight. Weightless
// items follow the same rules as zero-area items in OrderByCostPerArea.
func OrderByCostPerWeight(items []IndexedItem) []IndexedItem {
	return sortedCopy(items, func(a, b model.Item) bool {
		return ratioGreater(a.Cost, decimal.NewFromInt(a.Weight), b.Cost, decimal.NewFromInt(b.Weight))
	})
}

// orderFor returns the ordering behind a heuristic strategy.
func orderFor(s model.Strategy) (OrderFunc, bool) {
	switch s {
	case model.StrategyCostPerArea:
		return OrderByCostPerArea, true
	case model.StrategyCostPerWeight:
		return OrderByCostPerWeight, true
	case model.StrategyLargestArea:
		return OrderByLargestArea, true
	default:
		return nil, false
	}
}

// sortedCopy stable-sorts a copy of items so equal keys keep request order.
func sortedCopy(items []IndexedItem, less func(a, b model.Item) bool) []IndexedItem {
	out := make([]IndexedItem, len(items))
	copy(out, items)
	sort.SliceStable(out, func(i, j int) bool {
		return less(out[i].Item, out[j].Item)
	})
	return out
}

// ratioGreater reports whether na/da > nb/db. Denominators arrive exact and
// products are formed in arbitrary precision so nothing can overflow.
func ratioGreater(na int64, da decimal.Decimal, nb int64, db decimal.Decimal) bool {
	infA := da.IsZero() && na > 0
	infB := db.IsZero() && nb > 0
	switch {
	case infA || infB:
		return infA && !infB
	case da.IsZero() && db.IsZero():
		return false
	case da.IsZero():
		// a is 0/0, defined as 0; b is finite and non-negative
		return false
	case db.IsZero():
		return na > 0
	}

	left := decimal.NewFromInt(na).Mul(db)
	right := decimal.NewFromInt(nb).Mul(da)
	return left.GreaterThan(right)
}

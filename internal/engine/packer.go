package engine

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/piwi3910/BinPack/internal/model"
)

// Packer runs the single-bin packing heuristics.
type Packer struct {
	Settings model.Settings
	Logger   *slog.Logger
}

func New(settings model.Settings) *Packer {
	return &Packer{Settings: settings}
}

// WithLogger sets the logger used for per-strategy diagnostics.
func (p *Packer) WithLogger(logger *slog.Logger) *Packer {
	p.Logger = logger
	return p
}

func (p *Packer) log() *slog.Logger {
	if p.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return p.Logger
}

// Pack validates the request, runs every ordering strategy against its own
// free space and returns the result with the lowest remaining cost. Ties go
// to the strategy listed first in model.Strategies. The returned result
// carries the wall-clock time of the whole computation.
func (p *Packer) Pack(req model.Request) (model.PackingResult, error) {
	start := time.Now()
	if err := req.Validate(); err != nil {
		return model.PackingResult{}, fmt.Errorf("pack: %w", err)
	}

	results := p.runStrategies(req)
	best := selectBest(results)

	if p.Settings.Algorithm == model.AlgorithmGenetic {
		seed := orderOf(best)
		refined := newGeneticSearch(p.Settings, req, seed).run()
		p.log().Debug("genetic search finished",
			"remaining_cost", refined.RemainingItemsCost,
			"heuristic_remaining_cost", best.RemainingItemsCost)
		if refined.RemainingItemsCost < best.RemainingItemsCost {
			best = refined
		}
	}

	best.Elapsed = time.Since(start)
	best.TimeTakenMs = best.Elapsed.Milliseconds()
	best.RunID = uuid.New().String()

	p.log().Info("packing complete",
		"run_id", best.RunID,
		"strategy", string(best.Strategy),
		"items", len(req.Items),
		"packed", len(best.PackedItems),
		"remaining", len(best.RemainingItems),
		"remaining_cost", best.RemainingItemsCost,
		"elapsed", best.Elapsed)
	return best, nil
}

// runStrategies evaluates each heuristic strategy. Results are indexed by
// priority so parallel and sequential runs select identically.
func (p *Packer) runStrategies(req model.Request) []model.PackingResult {
	results := make([]model.PackingResult, len(model.Strategies))

	if p.Settings.Parallel {
		var wg sync.WaitGroup
		for i, s := range model.Strategies {
			wg.Add(1)
			go func(i int, s model.Strategy) {
				defer wg.Done()
				results[i] = RunStrategy(req, s)
			}(i, s)
		}
		wg.Wait()
	} else {
		for i, s := range model.Strategies {
			results[i] = RunStrategy(req, s)
		}
	}

	for _, r := range results {
		p.log().Debug("strategy evaluated",
			"strategy", string(r.Strategy),
			"packed", len(r.PackedItems),
			"remaining_cost", r.RemainingItemsCost,
			"remaining_weight", r.RemainingItemsWeight)
	}
	return results
}

// selectBest returns the first result with the minimum remaining cost.
func selectBest(results []model.PackingResult) model.PackingResult {
	best := results[0]
	for _, r := range results[1:] {
		if r.RemainingItemsCost < best.RemainingItemsCost {
			best = r
		}
	}
	return best
}

// RunStrategy performs one greedy pass over the request in the order given by
// strategy s. It panics on a strategy without an ordering, which is a
// programming error.
func RunStrategy(req model.Request, s model.Strategy) model.PackingResult {
	order, ok := orderFor(s)
	if !ok {
		panic(fmt.Sprintf("engine: no ordering for strategy %q", s))
	}
	return packOrdered(req, order(Enumerate(req.Items)), s)
}

// packOrdered places items in the given order into a fresh bin. An item is
// rejected when it would push the packed weight over the bin limit or when
// no free rectangle admits it; a rejected item leaves the free space as it was.
func packOrdered(req model.Request, ordered []IndexedItem, s model.Strategy) model.PackingResult {
	free := NewFreeSpace(req.Bin)
	result := model.PackingResult{
		PackedItems:    []model.PackedItem{},
		RemainingItems: []int{},
		Strategy:       s,
	}

	for _, ii := range ordered {
		item := ii.Item
		wouldOverload := item.Weight > req.Bin.MaximumWeight-result.PackedItemsWeight
		updated, place, placed := PlaceItem(free, item.Width, item.Length)

		if wouldOverload || !placed {
			result.RemainingItems = append(result.RemainingItems, ii.Index)
			result.RemainingItemsCost += item.Cost
			result.RemainingItemsWeight += item.Weight
			continue
		}

		free = updated
		result.PackedItems = append(result.PackedItems, model.PackedItem{Index: ii.Index, Place: place})
		result.PackedItemsCost += item.Cost
		result.PackedItemsWeight += item.Weight
	}
	return result
}

// orderOf recovers the item order a result was produced with: packed items
// first, then remaining ones. Replaying it reproduces the same result.
func orderOf(r model.PackingResult) []int {
	order := make([]int, 0, len(r.PackedItems)+len(r.RemainingItems))
	for _, p := range r.PackedItems {
		order = append(order, p.Index)
	}
	return append(order, r.RemainingItems...)
}

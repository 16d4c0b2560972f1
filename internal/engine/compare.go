package engine

import (
	"fmt"

	"github.com/piwi3910/BinPack/internal/model"
)

// StrategyReport holds one strategy's result and the statistics shown when
// strategies are compared side by side.
type StrategyReport struct {
	Strategy       model.Strategy
	Result         model.PackingResult
	PackedCount    int
	RemainingCount int
	Efficiency     float64
	Selected       bool // Whether Pack would return this result
}

// CompareStrategies runs every heuristic strategy and reports each in
// priority order, marking the one Pack selects.
func CompareStrategies(req model.Request) ([]StrategyReport, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("compare strategies: %w", err)
	}

	results := make([]model.PackingResult, 0, len(model.Strategies))
	for _, s := range model.Strategies {
		results = append(results, RunStrategy(req, s))
	}
	best := selectBest(results)

	reports := make([]StrategyReport, 0, len(results))
	for _, r := range results {
		reports = append(reports, StrategyReport{
			Strategy:       r.Strategy,
			Result:         r,
			PackedCount:    len(r.PackedItems),
			RemainingCount: len(r.RemainingItems),
			Efficiency:     r.Efficiency(req.Bin),
			Selected:       r.Strategy == best.Strategy,
		})
	}
	return reports, nil
}

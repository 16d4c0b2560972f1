package model

// Strategy names the item ordering used for a packing pass.
type Strategy string

const (
	StrategyCostPerArea   Strategy = "highestCostPerAreaFirst"
	StrategyCostPerWeight Strategy = "highestCostPerWeightFirst"
	StrategyLargestArea   Strategy = "biggestAreaFirst"
	StrategyGenetic       Strategy = "genetic"
)

// Strategies lists the heuristic orderings in tie-break priority order.
var Strategies = []Strategy{
	StrategyCostPerArea,
	StrategyCostPerWeight,
	StrategyLargestArea,
}

func (s Strategy) String() string {
	switch s {
	case StrategyCostPerArea:
		return "Highest cost per area"
	case StrategyCostPerWeight:
		return "Highest cost per weight"
	case StrategyLargestArea:
		return "Largest area"
	case StrategyGenetic:
		return "Genetic search"
	default:
		return string(s)
	}
}

// Algorithm selects how far the packer searches.
type Algorithm string

const (
	AlgorithmGreedy  Algorithm = "greedy"  // The three ordering strategies (fast)
	AlgorithmGenetic Algorithm = "genetic" // Greedy followed by a genetic search over orderings
)

// ParseAlgorithm maps a user supplied name to an Algorithm.
func ParseAlgorithm(s string) (Algorithm, bool) {
	switch Algorithm(s) {
	case AlgorithmGreedy, "":
		return AlgorithmGreedy, true
	case AlgorithmGenetic:
		return AlgorithmGenetic, true
	default:
		return AlgorithmGreedy, false
	}
}

// Settings holds packer configuration.
type Settings struct {
	Algorithm Algorithm `json:"algorithm"`
	Parallel  bool      `json:"parallel"` // Run strategies on separate goroutines

	// Genetic search settings
	Population  int     `json:"population"`
	Generations int     `json:"generations"`
	Mutation    float64 `json:"mutation_rate"`
	Seed        int64   `json:"seed"`
}

func DefaultSettings() Settings {
	return Settings{
		Algorithm:   AlgorithmGreedy,
		Parallel:    false,
		Population:  40,
		Generations: 60,
		Mutation:    0.15,
		Seed:        1,
	}
}

package engine

import (
	"math/rand"
	"sort"

	"github.com/piwi3910/BinPack/internal/model"
)

// GeneticConfig holds parameters for the genetic ordering search.
type GeneticConfig struct {
	PopulationSize int
	Generations    int
	MutationRate   float64
	TournamentSize int
	EliteCount     int
}

// DefaultGeneticConfig returns sensible default parameters.
func DefaultGeneticConfig() GeneticConfig {
	return GeneticConfig{
		PopulationSize: 40,
		Generations:    60,
		MutationRate:   0.15,
		TournamentSize: 3,
		EliteCount:     2,
	}
}

// configFromSettings overlays non-zero settings on the defaults.
func configFromSettings(s model.Settings) GeneticConfig {
	cfg := DefaultGeneticConfig()
	if s.Population > 0 {
		cfg.PopulationSize = s.Population
	}
	if s.Generations > 0 {
		cfg.Generations = s.Generations
	}
	if s.Mutation > 0 {
		cfg.MutationRate = s.Mutation
	}
	return cfg
}

// chromosome is a candidate placement order over item indices.
type chromosome struct {
	order  []int
	result model.PackingResult
}

// better ranks by lower remaining cost, then by more packed area.
func (c chromosome) better(o chromosome) bool {
	if c.result.RemainingItemsCost != o.result.RemainingItemsCost {
		return c.result.RemainingItemsCost < o.result.RemainingItemsCost
	}
	return c.result.UsedArea().GreaterThan(o.result.UsedArea())
}

// geneticSearch evolves item orderings, each scored by a greedy pass.
type geneticSearch struct {
	config GeneticConfig
	req    model.Request
	seed   []int
	rng    *rand.Rand
}

func newGeneticSearch(settings model.Settings, req model.Request, seed []int) *geneticSearch {
	return &geneticSearch{
		config: configFromSettings(settings),
		req:    req,
		seed:   seed,
		rng:    rand.New(rand.NewSource(settings.Seed)),
	}
}

// run returns the best packing found. The seed ordering is part of the
// initial population and elitism keeps the best individual, so the result is
// never worse than the seed.
func (g *geneticSearch) run() model.PackingResult {
	if len(g.req.Items) < 2 {
		return g.evaluate(g.seed).result
	}

	population := g.initPopulation()
	g.sortPopulation(population)

	for gen := 0; gen < g.config.Generations; gen++ {
		newPop := make([]chromosome, 0, g.config.PopulationSize)

		eliteCount := min(g.config.EliteCount, len(population))
		newPop = append(newPop, population[:eliteCount]...)

		for len(newPop) < g.config.PopulationSize {
			parent1 := g.tournamentSelect(population)
			parent2 := g.tournamentSelect(population)

			child := g.orderCrossover(parent1, parent2)
			g.mutate(child)

			newPop = append(newPop, g.evaluate(child))
		}

		population = newPop
		g.sortPopulation(population)
	}

	return population[0].result
}

func (g *geneticSearch) sortPopulation(population []chromosome) {
	sort.SliceStable(population, func(i, j int) bool {
		return population[i].better(population[j])
	})
}

// initPopulation seeds one individual with the given ordering and fills the
// rest with random permutations.
func (g *geneticSearch) initPopulation() []chromosome {
	size := max(g.config.PopulationSize, 1)
	population := make([]chromosome, 0, size)
	population = append(population, g.evaluate(g.seed))

	n := len(g.req.Items)
	for len(population) < size {
		population = append(population, g.evaluate(g.rng.Perm(n)))
	}
	return population
}

func (g *geneticSearch) evaluate(order []int) chromosome {
	ordered := make([]IndexedItem, len(order))
	for i, idx := range order {
		ordered[i] = IndexedItem{Index: idx, Item: g.req.Items[idx]}
	}
	return chromosome{
		order:  order,
		result: packOrdered(g.req, ordered, model.StrategyGenetic),
	}
}

// tournamentSelect picks the best individual from a random tournament.
func (g *geneticSearch) tournamentSelect(population []chromosome) chromosome {
	best := population[g.rng.Intn(len(population))]
	for i := 1; i < g.config.TournamentSize; i++ {
		candidate := population[g.rng.Intn(len(population))]
		if candidate.better(best) {
			best = candidate
		}
	}
	return best
}

// orderCrossover implements Order Crossover (OX1): the child keeps a slice of
// parent1 in place and takes the remaining indices in parent2's order.
func (g *geneticSearch) orderCrossover(parent1, parent2 chromosome) []int {
	n := len(parent1.order)
	child := make([]int, n)
	if n <= 2 {
		copy(child, parent1.order)
		return child
	}

	point1 := g.rng.Intn(n)
	point2 := g.rng.Intn(n)
	if point1 > point2 {
		point1, point2 = point2, point1
	}

	inSegment := make(map[int]bool, point2-point1+1)
	for i := point1; i <= point2; i++ {
		child[i] = parent1.order[i]
		inSegment[parent1.order[i]] = true
	}

	childIdx := (point2 + 1) % n
	for _, idx := range parent2.order {
		if !inSegment[idx] {
			child[childIdx] = idx
			childIdx = (childIdx + 1) % n
		}
	}
	return child
}

// mutate applies swap and inversion mutations in place.
func (g *geneticSearch) mutate(order []int) {
	n := len(order)
	if n < 2 {
		return
	}

	if g.rng.Float64() < g.config.MutationRate {
		i := g.rng.Intn(n)
		j := g.rng.Intn(n)
		order[i], order[j] = order[j], order[i]
	}

	if g.rng.Float64() < g.config.MutationRate*0.5 {
		i := g.rng.Intn(n)
		j := g.rng.Intn(n)
		if i > j {
			i, j = j, i
		}
		for i < j {
			order[i], order[j] = order[j], order[i]
			i++
			j--
		}
	}
}

package engine

import (
	"bytes"
	"log/slog"
	"math/rand"
	"testing"

	"github.com/piwi3910/BinPack/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func square(side int64, n int) []model.Item {
	items := make([]model.Item, n)
	for i := range items {
		items[i] = model.Item{Width: side, Length: side}
	}
	return items
}

func packedAt(idx int, x, y, w, l int64) model.PackedItem {
	return model.PackedItem{Index: idx, Place: model.Placement{X: x, Y: y, Width: w, Length: l}}
}

// assertValidResult checks the invariants every packing result must hold.
func assertValidResult(t *testing.T, req model.Request, r model.PackingResult) {
	t.Helper()

	seen := make(map[int]int)
	for _, p := range r.PackedItems {
		seen[p.Index]++
	}
	for _, idx := range r.RemainingItems {
		seen[idx]++
	}
	require.Len(t, seen, len(req.Items), "every item must be accounted for")
	for idx, count := range seen {
		require.GreaterOrEqual(t, idx, 0)
		require.Less(t, idx, len(req.Items))
		require.Equal(t, 1, count, "item %d listed %d times", idx, count)
	}

	assert.Equal(t, req.TotalCost(), r.PackedItemsCost+r.RemainingItemsCost)
	assert.Equal(t, req.TotalWeight(), r.PackedItemsWeight+r.RemainingItemsWeight)
	assert.LessOrEqual(t, r.PackedItemsWeight, req.Bin.MaximumWeight)

	for i, a := range r.PackedItems {
		item := req.Items[a.Index]
		dims := [2]int64{a.Place.Width, a.Place.Length}
		assert.True(t, dims == [2]int64{item.Width, item.Length} || dims == [2]int64{item.Length, item.Width},
			"item %d placed with wrong size %v", a.Index, dims)

		assert.GreaterOrEqual(t, a.Place.X, int64(0))
		assert.GreaterOrEqual(t, a.Place.Y, int64(0))
		assert.LessOrEqual(t, a.Place.X+a.Place.Width, req.Bin.Width)
		assert.LessOrEqual(t, a.Place.Y+a.Place.Length, req.Bin.Length)

		for _, b := range r.PackedItems[i+1:] {
			assert.False(t, a.Place.Overlaps(b.Place), "items %d and %d overlap", a.Index, b.Index)
		}
	}
}

func TestPack_EmptyRequest(t *testing.T) {
	req := model.Request{Items: []model.Item{}, Bin: model.NewBin(100, 100)}

	result, err := New(model.DefaultSettings()).Pack(req)

	require.NoError(t, err)
	assert.Empty(t, result.PackedItems)
	assert.NotNil(t, result.PackedItems)
	assert.Empty(t, result.RemainingItems)
	assert.NotNil(t, result.RemainingItems)
	assert.Zero(t, result.PackedItemsCost)
	assert.Zero(t, result.PackedItemsWeight)
	assert.Zero(t, result.RemainingItemsCost)
	assert.Zero(t, result.RemainingItemsWeight)
}

func TestPack_StacksTwoItems(t *testing.T) {
	req := model.Request{Items: square(10, 2), Bin: model.NewBin(10, 20)}

	result, err := New(model.DefaultSettings()).Pack(req)

	require.NoError(t, err)
	assert.Equal(t, []model.PackedItem{
		packedAt(0, 0, 0, 10, 10),
		packedAt(1, 0, 10, 10, 10),
	}, result.PackedItems)
	assert.Empty(t, result.RemainingItems)
}

func TestPack_FillsAndOverflows(t *testing.T) {
	req := model.Request{Items: square(10, 5), Bin: model.NewBin(20, 20)}

	result, err := New(model.DefaultSettings()).Pack(req)

	require.NoError(t, err)
	assert.Equal(t, []model.PackedItem{
		packedAt(0, 0, 0, 10, 10),
		packedAt(1, 10, 0, 10, 10),
		packedAt(2, 0, 10, 10, 10),
		packedAt(3, 10, 10, 10, 10),
	}, result.PackedItems)
	assert.Equal(t, []int{4}, result.RemainingItems)
	assert.Zero(t, result.PackedItemsCost)
	assert.Zero(t, result.PackedItemsWeight)
	assert.Zero(t, result.RemainingItemsCost)
	assert.Zero(t, result.RemainingItemsWeight)
	assertValidResult(t, req, result)
}

func TestPack_TracksWeightAndCost(t *testing.T) {
	bin := model.NewBin(100, 100)
	bin.MaximumWeight = 10
	req := model.Request{
		Items: []model.Item{
			{Width: 10, Length: 10, Weight: 12},
			{Width: 10, Length: 10, Weight: 3},
			{Width: 10, Length: 10, Weight: 3},
		},
		Bin: bin,
	}

	result, err := New(model.DefaultSettings()).Pack(req)

	require.NoError(t, err)
	assert.Zero(t, result.PackedItemsCost)
	assert.Equal(t, int64(6), result.PackedItemsWeight)
	assert.Equal(t, []int{0}, result.RemainingItems)
	assert.Zero(t, result.RemainingItemsCost)
	assert.Equal(t, int64(12), result.RemainingItemsWeight)
}

func TestPack_OverweightItemDoesNotConsumeSpace(t *testing.T) {
	bin := model.NewBin(10, 10)
	bin.MaximumWeight = 5
	req := model.Request{
		Items: []model.Item{
			{Width: 10, Length: 10, Weight: 6},
			{Width: 10, Length: 10, Weight: 5},
		},
		Bin: bin,
	}

	result := RunStrategy(req, model.StrategyLargestArea)

	assert.Equal(t, []model.PackedItem{packedAt(1, 0, 0, 10, 10)}, result.PackedItems)
	assert.Equal(t, []int{0}, result.RemainingItems)
}

func TestPack_WeightLimitHoldsNearInt64Max(t *testing.T) {
	bin := model.NewBin(10, 10)
	bin.MaximumWeight = 9_000_000_000_000_000_000
	req := model.Request{
		Items: []model.Item{
			{Width: 1, Length: 1, Weight: 5_000_000_000_000_000_000},
			{Width: 1, Length: 1, Weight: 5_000_000_000_000_000_000},
		},
		Bin: bin,
	}

	result := RunStrategy(req, model.StrategyLargestArea)

	assert.Len(t, result.PackedItems, 1)
	assert.Equal(t, int64(5_000_000_000_000_000_000), result.PackedItemsWeight)
	assert.Equal(t, []int{1}, result.RemainingItems)

	_, err := New(model.DefaultSettings()).Pack(req)
	assert.ErrorIs(t, err, model.ErrInvalidRequest)
}

func TestPack_SmallerItemTriedAfterRejection(t *testing.T) {
	req := model.Request{
		Items: []model.Item{
			{Width: 15, Length: 15},
			{Width: 11, Length: 11},
			{Width: 5, Length: 5},
		},
		Bin: model.NewBin(20, 20),
	}

	result := RunStrategy(req, model.StrategyLargestArea)

	assert.Equal(t, []model.PackedItem{
		packedAt(0, 0, 0, 15, 15),
		packedAt(2, 15, 0, 5, 5),
	}, result.PackedItems)
	assert.Equal(t, []int{1}, result.RemainingItems)
}

func TestPack_ZeroSizedBin(t *testing.T) {
	req := model.Request{Items: []model.Item{{Width: 0, Length: 0, Cost: 3}}, Bin: model.NewBin(0, 10)}

	result, err := New(model.DefaultSettings()).Pack(req)

	require.NoError(t, err)
	assert.Empty(t, result.PackedItems)
	assert.Equal(t, []int{0}, result.RemainingItems)
	assert.Equal(t, int64(3), result.RemainingItemsCost)
}

func TestPack_TieGoesToCostPerArea(t *testing.T) {
	req := model.Request{Items: square(10, 3), Bin: model.NewBin(100, 100)}

	result, err := New(model.DefaultSettings()).Pack(req)

	require.NoError(t, err)
	assert.Equal(t, model.StrategyCostPerArea, result.Strategy)
}

func TestPack_CostPerWeightBeatsLargestAreaOnTie(t *testing.T) {
	bin := model.NewBin(10, 10)
	bin.MaximumWeight = 10
	req := model.Request{
		Items: []model.Item{
			{Width: 10, Length: 10, Weight: 1, Cost: 50},
			{Width: 1, Length: 1, Weight: 10, Cost: 10},
		},
		Bin: bin,
	}

	for _, s := range model.Strategies {
		t.Logf("%s: remaining cost %d", s, RunStrategy(req, s).RemainingItemsCost)
	}
	assert.Equal(t, int64(50), RunStrategy(req, model.StrategyCostPerArea).RemainingItemsCost)
	assert.Equal(t, int64(10), RunStrategy(req, model.StrategyCostPerWeight).RemainingItemsCost)
	assert.Equal(t, int64(10), RunStrategy(req, model.StrategyLargestArea).RemainingItemsCost)

	result, err := New(model.DefaultSettings()).Pack(req)
	require.NoError(t, err)
	assert.Equal(t, model.StrategyCostPerWeight, result.Strategy)
	assert.Equal(t, []int{1}, result.RemainingItems)
}

func TestPack_LargestAreaWinsWhenStrictlyBetter(t *testing.T) {
	req := model.Request{
		Items: []model.Item{
			{Width: 1, Length: 1, Weight: 1, Cost: 1},
			{Width: 10, Length: 10, Weight: 10, Cost: 10},
		},
		Bin: model.NewBin(10, 10),
	}

	result, err := New(model.DefaultSettings()).Pack(req)

	require.NoError(t, err)
	assert.Equal(t, model.StrategyLargestArea, result.Strategy)
	assert.Equal(t, []model.PackedItem{packedAt(1, 0, 0, 10, 10)}, result.PackedItems)
	assert.Equal(t, []int{0}, result.RemainingItems)
	assert.Equal(t, int64(1), result.RemainingItemsCost)
}

func TestPack_RejectsInvalidRequest(t *testing.T) {
	req := model.Request{Items: []model.Item{{Width: -1, Length: 1}}, Bin: model.NewBin(10, 10)}

	_, err := New(model.DefaultSettings()).Pack(req)

	require.Error(t, err)
	assert.ErrorIs(t, err, model.ErrInvalidRequest)
}

func TestPack_AttachesRunMetadata(t *testing.T) {
	req := model.Request{Items: square(10, 2), Bin: model.NewBin(10, 20)}

	result, err := New(model.DefaultSettings()).Pack(req)

	require.NoError(t, err)
	assert.NotEmpty(t, result.RunID)
	assert.NotEmpty(t, result.Strategy)
	assert.GreaterOrEqual(t, result.Elapsed.Nanoseconds(), int64(0))
	assert.Equal(t, result.Elapsed.Milliseconds(), result.TimeTakenMs)
}

func randomRequest(rng *rand.Rand) model.Request {
	bin := model.NewBin(rng.Int63n(80)+20, rng.Int63n(80)+20)
	if rng.Intn(2) == 0 {
		bin.MaximumWeight = rng.Int63n(200)
	}
	items := make([]model.Item, rng.Intn(40))
	for i := range items {
		items[i] = model.Item{
			Width:  rng.Int63n(40),
			Length: rng.Int63n(40),
			Weight: rng.Int63n(30),
			Cost:   rng.Int63n(100),
		}
	}
	return model.Request{Items: items, Bin: bin}
}

func TestPack_RandomRequestsHoldInvariants(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	packer := New(model.DefaultSettings())

	for i := 0; i < 200; i++ {
		req := randomRequest(rng)

		for _, s := range model.Strategies {
			assertValidResult(t, req, RunStrategy(req, s))
		}

		result, err := packer.Pack(req)
		require.NoError(t, err)
		assertValidResult(t, req, result)

		for _, s := range model.Strategies {
			assert.LessOrEqual(t, result.RemainingItemsCost, RunStrategy(req, s).RemainingItemsCost)
		}
	}
}

func TestPack_Deterministic(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	packer := New(model.DefaultSettings())

	for i := 0; i < 50; i++ {
		req := randomRequest(rng)
		req.Bin.MaximumWeight = model.MaxSafeInteger

		first, err := packer.Pack(req)
		require.NoError(t, err)
		second, err := packer.Pack(req)
		require.NoError(t, err)

		assert.Equal(t, first.PackedItems, second.PackedItems)
		assert.Equal(t, first.RemainingItems, second.RemainingItems)
		assert.Equal(t, first.Strategy, second.Strategy)
	}
}

func TestPack_ParallelMatchesSequential(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	sequential := New(model.DefaultSettings())
	settings := model.DefaultSettings()
	settings.Parallel = true
	parallel := New(settings)

	for i := 0; i < 50; i++ {
		req := randomRequest(rng)

		a, err := sequential.Pack(req)
		require.NoError(t, err)
		b, err := parallel.Pack(req)
		require.NoError(t, err)

		assert.Equal(t, a.Strategy, b.Strategy)
		assert.Equal(t, a.PackedItems, b.PackedItems)
		assert.Equal(t, a.RemainingItems, b.RemainingItems)
	}
}

func TestPack_DoesNotMutateRequest(t *testing.T) {
	req := model.Request{
		Items: []model.Item{{Width: 5, Length: 5, Cost: 1}, {Width: 9, Length: 9, Cost: 9}},
		Bin:   model.NewBin(10, 10),
	}
	before := append([]model.Item(nil), req.Items...)

	_, err := New(model.DefaultSettings()).Pack(req)

	require.NoError(t, err)
	assert.Equal(t, before, req.Items)
}

func TestPack_LogsOutcome(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	req := model.Request{Items: square(10, 2), Bin: model.NewBin(10, 20)}

	_, err := New(model.DefaultSettings()).WithLogger(logger).Pack(req)

	require.NoError(t, err)
	out := buf.String()
	assert.Contains(t, out, "strategy evaluated")
	assert.Contains(t, out, "packing complete")
	assert.Contains(t, out, string(model.StrategyLargestArea))
}

func TestRunStrategy_PanicsOnUnknownStrategy(t *testing.T) {
	req := model.Request{Bin: model.NewBin(1, 1)}
	assert.Panics(t, func() { RunStrategy(req, model.StrategyGenetic) })
}

func TestOrderOf_ReplaysSameResult(t *testing.T) {
	rng := rand.New(rand.NewSource(5))
	for i := 0; i < 50; i++ {
		req := randomRequest(rng)
		for _, s := range model.Strategies {
			original := RunStrategy(req, s)

			order := orderOf(original)
			ordered := make([]IndexedItem, len(order))
			for j, idx := range order {
				ordered[j] = IndexedItem{Index: idx, Item: req.Items[idx]}
			}
			replayed := packOrdered(req, ordered, s)

			assert.Equal(t, original.PackedItems, replayed.PackedItems)
			assert.Equal(t, original.RemainingItems, replayed.RemainingItems)
		}
	}
}

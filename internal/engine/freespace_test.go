package engine

import (
	"testing"

	"github.com/piwi3910/BinPack/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlaceItem_SplitsRightThenBelow(t *testing.T) {
	free := []model.FreeRect{{X: 0, Y: 0, Width: 100, Length: 100}}

	updated, place, ok := PlaceItem(free, 10, 10)

	require.True(t, ok)
	assert.Equal(t, model.Placement{X: 0, Y: 0, Width: 10, Length: 10}, place)
	assert.Equal(t, []model.FreeRect{
		{X: 10, Y: 0, Width: 90, Length: 10},
		{X: 0, Y: 10, Width: 100, Length: 90},
	}, updated)
}

func TestPlaceItem_RejectsOversizedItem(t *testing.T) {
	free := []model.FreeRect{{X: 0, Y: 0, Width: 100, Length: 100}}

	updated, place, ok := PlaceItem(free, 101, 10)

	assert.False(t, ok)
	assert.Equal(t, model.Placement{}, place)
	assert.Equal(t, free, updated)
}

func TestPlaceItem_ExactFitLeavesNoSpace(t *testing.T) {
	free := []model.FreeRect{{X: 0, Y: 0, Width: 100, Length: 100}}

	updated, place, ok := PlaceItem(free, 100, 100)

	require.True(t, ok)
	assert.Equal(t, model.Placement{X: 0, Y: 0, Width: 100, Length: 100}, place)
	assert.Empty(t, updated)
}

func TestPlaceItem_RotatesWhenNeeded(t *testing.T) {
	free := []model.FreeRect{{X: 0, Y: 0, Width: 100, Length: 10}}

	updated, place, ok := PlaceItem(free, 10, 100)

	require.True(t, ok)
	assert.Equal(t, model.Placement{X: 0, Y: 0, Width: 100, Length: 10}, place)
	assert.Empty(t, updated)
}

func TestPlaceItem_PrefersUnrotated(t *testing.T) {
	free := []model.FreeRect{{X: 0, Y: 0, Width: 100, Length: 100}}

	_, place, ok := PlaceItem(free, 10, 20)

	require.True(t, ok)
	assert.Equal(t, int64(10), place.Width)
	assert.Equal(t, int64(20), place.Length)
}

func TestPlaceItem_FirstFitNotBestFit(t *testing.T) {
	free := []model.FreeRect{
		{X: 0, Y: 0, Width: 50, Length: 50},
		{X: 50, Y: 0, Width: 10, Length: 10},
	}

	updated, place, ok := PlaceItem(free, 10, 10)

	require.True(t, ok)
	assert.Equal(t, model.Placement{X: 0, Y: 0, Width: 10, Length: 10}, place)
	assert.Equal(t, []model.FreeRect{
		{X: 10, Y: 0, Width: 40, Length: 10},
		{X: 0, Y: 10, Width: 50, Length: 40},
		{X: 50, Y: 0, Width: 10, Length: 10},
	}, updated)
}

func TestPlaceItem_RemaindersReplaceConsumedRectInPlace(t *testing.T) {
	free := []model.FreeRect{
		{X: 0, Y: 0, Width: 5, Length: 5},
		{X: 10, Y: 0, Width: 30, Length: 30},
		{X: 0, Y: 40, Width: 8, Length: 8},
	}
	before := append([]model.FreeRect(nil), free...)

	updated, place, ok := PlaceItem(free, 20, 10)

	require.True(t, ok)
	assert.Equal(t, model.Placement{X: 10, Y: 0, Width: 20, Length: 10}, place)
	assert.Equal(t, []model.FreeRect{
		{X: 0, Y: 0, Width: 5, Length: 5},
		{X: 30, Y: 0, Width: 10, Length: 10},
		{X: 10, Y: 10, Width: 30, Length: 20},
		{X: 0, Y: 40, Width: 8, Length: 8},
	}, updated)
	assert.Equal(t, before, free, "input must not be modified")
}

func TestPlaceItem_RotatedSplitUsesPlacedSize(t *testing.T) {
	free := []model.FreeRect{{X: 0, Y: 0, Width: 100, Length: 30}}

	updated, place, ok := PlaceItem(free, 20, 40)

	require.True(t, ok)
	assert.Equal(t, model.Placement{X: 0, Y: 0, Width: 40, Length: 20}, place)
	assert.Equal(t, []model.FreeRect{
		{X: 40, Y: 0, Width: 60, Length: 20},
		{X: 0, Y: 20, Width: 100, Length: 10},
	}, updated)
}

func TestPlaceItem_ZeroWidthItemSplitsWithoutLosingSpace(t *testing.T) {
	free := []model.FreeRect{{X: 0, Y: 0, Width: 100, Length: 100}}

	updated, place, ok := PlaceItem(free, 0, 10)

	require.True(t, ok)
	assert.Equal(t, model.Placement{X: 0, Y: 0, Width: 0, Length: 10}, place)
	assert.Equal(t, []model.FreeRect{
		{X: 0, Y: 0, Width: 100, Length: 10},
		{X: 0, Y: 10, Width: 100, Length: 90},
	}, updated)
}

func TestPlaceItem_EmptyFreeSpace(t *testing.T) {
	updated, _, ok := PlaceItem(nil, 0, 0)
	assert.False(t, ok)
	assert.Empty(t, updated)
}

func TestNewFreeSpace(t *testing.T) {
	assert.Equal(t, []model.FreeRect{{Width: 20, Length: 30}}, NewFreeSpace(model.NewBin(20, 30)))
	assert.Empty(t, NewFreeSpace(model.NewBin(0, 30)))
	assert.Empty(t, NewFreeSpace(model.NewBin(20, 0)))
}

func TestPlaceItem_FreeRectsNeverOverlapOrDegenerate(t *testing.T) {
	free := NewFreeSpace(model.NewBin(97, 61))
	sizes := [][2]int64{{13, 7}, {40, 2}, {5, 30}, {61, 9}, {1, 1}, {20, 20}, {7, 13}, {33, 3}, {2, 50}, {9, 9}}

	for round := 0; round < 4; round++ {
		for _, s := range sizes {
			free, _, _ = PlaceItem(free, s[0], s[1])
			for i, a := range free {
				require.Positive(t, a.Width)
				require.Positive(t, a.Length)
				for j, b := range free {
					if i == j {
						continue
					}
					pa := model.Placement(a)
					pb := model.Placement(b)
					require.False(t, pa.Overlaps(pb), "free rects %v and %v overlap", a, b)
				}
			}
		}
	}
}

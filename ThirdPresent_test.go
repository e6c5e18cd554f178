package enulog

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSelectionTransitions(t *testing.T) {
	sel := NewSelection([]string{"1", "2", "3"})
	assert.Equal(t, []string{"1", "2", "3"}, sel.Cycles())

	none := sel.None()
	assert.True(t, none.Empty())
	assert.Equal(t, []string{"1", "2", "3"}, sel.Cycles(), "transitions must not mutate the receiver")

	assert.Equal(t, []string{"1", "2", "3"}, none.All().Cycles())

	replaced := none.Replace([]string{"3", "9", "1"})
	assert.Equal(t, []string{"1", "3"}, replaced.Cycles())
	assert.True(t, replaced.Has("3"))
	assert.False(t, replaced.Has("9"))

	var zero Selection
	assert.True(t, zero.Empty())
}

func TestSelectionKnownIsCopy(t *testing.T) {
	ds := loadFixture(t)
	sel := NewSelection(ds.Cycles)

	known := sel.Known()
	known[0] = "mutated"
	assert.Equal(t, []string{"1", "2"}, ds.Cycles)
	assert.Equal(t, []string{"1", "2"}, sel.Known())
	assert.True(t, sel.Has("1"))
}

func TestRenderAllThenNone(t *testing.T) {
	ds := loadFixture(t)
	sel := NewSelection(ds.Cycles)

	all := Render(ds, sel.All(), DefaultStyle())
	assert.False(t, all.Placeholder)
	assert.Len(t, all.Series, 2)
	assert.Equal(t, "EN dispersion per cycle (2 cycles selected)", all.Title)

	none := Render(ds, sel.All().None(), DefaultStyle())
	assert.True(t, none.Placeholder)
	assert.Equal(t, PlaceholderText, none.Message)
	assert.Empty(t, none.Series)
	assert.Equal(t, "No cycles selected", none.Text)
}

func TestRenderSummary(t *testing.T) {
	ds := loadFixture(t)

	view := Render(ds, NewSelection(ds.Cycles).Replace([]string{"1"}), DefaultStyle())
	require.Len(t, view.Series, 1)

	series := view.Series[0]
	assert.Equal(t, "Cycle 1", series.Name)
	assert.Equal(t, DefaultPalette[0], series.Color)
	assert.Equal(t, 6, series.SymbolSize)
	assert.Equal(t, 0.6, series.Opacity)
	assert.Equal(t, []Point{{E: 0, N: 0}, {E: 2, N: 0}, {E: -2, N: 0}}, series.Points)

	assert.Equal(t, Summary{Cycles: []string{"1"}, TotalPoints: 3, RangeE: 4, RangeN: 0}, view.Summary)
	assert.Equal(t, "Selected cycles: 1 | Total points: 3 | E range: 4.00 cm | N range: 0.00 cm", view.Text)

	both := Render(ds, NewSelection(ds.Cycles), DefaultStyle())
	assert.Equal(t, 4, both.Summary.TotalPoints)
	assert.InDelta(t, 6, both.Summary.RangeE, 1e-9)
	assert.InDelta(t, 4, both.Summary.RangeN, 1e-9)
}

func TestRenderPaletteCycles(t *testing.T) {
	start := time.Date(2026, 10, 16, 0, 0, 0, 0, time.UTC)
	records := make([]Record, 0)
	for i := 1; i <= 12; i++ {
		records = append(records, record(fmt.Sprint(i), start.Add(time.Duration(i)*time.Second), float64(i), 0, 0))
	}
	ds := dataset(records...)

	view := Render(ds, NewSelection(ds.Cycles), DefaultStyle())
	require.Len(t, view.Series, 12)
	for i, s := range view.Series {
		assert.Equal(t, DefaultPalette[i%len(DefaultPalette)], s.Color, s.Name)
	}
	assert.Equal(t, view.Series[0].Color, view.Series[10].Color)

	// colors follow position in the selection, not the cycle id
	subset := Render(ds, NewSelection(ds.Cycles).Replace([]string{"5", "7"}), DefaultStyle())
	require.Len(t, subset.Series, 2)
	assert.Equal(t, DefaultPalette[0], subset.Series[0].Color)
	assert.Equal(t, DefaultPalette[1], subset.Series[1].Color)
}

func TestRenderIsPure(t *testing.T) {
	ds := loadFixture(t)
	sel := NewSelection(ds.Cycles)

	first := Render(ds, sel, DefaultStyle())
	second := Render(ds, sel, DefaultStyle())
	assert.Equal(t, first, second)
	assert.Equal(t, 4, ds.Len())
}

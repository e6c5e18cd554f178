package enulog

import (
	"fmt"
	"strings"

	"gonum.org/v1/gonum/floats"
)

// DefaultPalette is the fixed cycle color palette.
var DefaultPalette = []string{
	"#1f77b4", "#ff7f0e", "#2ca02c", "#d62728", "#9467bd",
	"#8c564b", "#e377c2", "#7f7f7f", "#bcbd22", "#17becf",
}

// PlaceholderText is shown instead of the chart when nothing is selected.
const PlaceholderText = "Select at least one cycle to display data"

// Style is the uniform marker styling of the scatter series.
type Style struct {
	Palette    []string
	SymbolSize int
	Opacity    float64
}

// DefaultStyle returns the default marker style.
func DefaultStyle() Style {
	return Style{Palette: DefaultPalette, SymbolSize: 6, Opacity: 0.6}
}

// Selection is the set of cycles chosen for display. The zero value selects
// nothing. Selections are values; every transition returns a new one.
type Selection struct {
	known  []string
	chosen map[string]bool
}

// NewSelection selects every known cycle.
func NewSelection(known []string) Selection {
	return Selection{known: known}.All()
}

// All selects every known cycle.
func (s Selection) All() Selection {
	return s.Replace(s.known)
}

// None clears the selection.
func (s Selection) None() Selection {
	return Selection{known: s.known, chosen: map[string]bool{}}
}

// Replace selects exactly ids; ids that are not known cycles are dropped.
func (s Selection) Replace(ids []string) Selection {
	want := make(map[string]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	chosen := make(map[string]bool, len(ids))
	for _, k := range s.known {
		if want[k] {
			chosen[k] = true
		}
	}
	return Selection{known: s.known, chosen: chosen}
}

// Cycles returns the selected ids in known-cycle order.
func (s Selection) Cycles() []string {
	out := make([]string, 0, len(s.chosen))
	for _, k := range s.known {
		if s.chosen[k] {
			out = append(out, k)
		}
	}
	return out
}

// Has reports whether id is selected.
func (s Selection) Has(id string) bool {
	return s.chosen[id]
}

// Empty reports whether no cycle is selected.
func (s Selection) Empty() bool {
	return len(s.chosen) == 0
}

// Known returns a copy of every selectable cycle id.
func (s Selection) Known() []string {
	out := make([]string, len(s.known))
	copy(out, s.known)
	return out
}

// Point is one East/North pair in cm.
type Point struct {
	E float64 `json:"e"`
	N float64 `json:"n"`
}

// PointSeries is the scatter series of one cycle.
type PointSeries struct {
	Cycle      string  `json:"cycle"`
	Name       string  `json:"name"`
	Color      string  `json:"color"`
	SymbolSize int     `json:"symbol_size"`
	Opacity    float64 `json:"opacity"`
	Points     []Point `json:"points"`
}

// Summary describes the selected subset.
type Summary struct {
	Cycles      []string `json:"cycles"`
	TotalPoints int      `json:"total_points"`
	RangeE      float64  `json:"range_E"`
	RangeN      float64  `json:"range_N"`
}

// String renders the info-box text.
func (s Summary) String() string {
	if len(s.Cycles) == 0 {
		return "No cycles selected"
	}
	return fmt.Sprintf("Selected cycles: %s | Total points: %d | E range: %.2f cm | N range: %.2f cm",
		strings.Join(s.Cycles, ", "), s.TotalPoints, s.RangeE, s.RangeN)
}

// View is everything a front end needs to draw one selection.
type View struct {
	Title       string        `json:"title"`
	Placeholder bool          `json:"placeholder"`
	Message     string        `json:"message,omitempty"`
	Series      []PointSeries `json:"series"`
	Summary     Summary       `json:"summary"`
	Text        string        `json:"text"`
}

// Render builds the chart series and summary for sel. It depends only on its
// arguments.
func Render(ds *Dataset, sel Selection, style Style) View {
	if len(style.Palette) == 0 {
		style.Palette = DefaultPalette
	}
	cycles := sel.Cycles()
	if len(cycles) == 0 || ds == nil {
		return View{
			Title:       "EN dispersion per cycle",
			Placeholder: true,
			Message:     PlaceholderText,
			Series:      []PointSeries{},
			Summary:     Summary{Cycles: []string{}},
			Text:        Summary{}.String(),
		}
	}

	byCycle := make(map[string][]Point, len(cycles))
	eAll := make([]float64, 0)
	nAll := make([]float64, 0)
	for i := 0; i < len(ds.Records); i++ {
		rec := ds.Records[i]
		if !sel.Has(rec.Cycle) {
			continue
		}
		byCycle[rec.Cycle] = append(byCycle[rec.Cycle], Point{E: rec.CoordinateNEZ.E, N: rec.CoordinateNEZ.N})
		eAll = append(eAll, rec.CoordinateNEZ.E)
		nAll = append(nAll, rec.CoordinateNEZ.N)
	}

	series := make([]PointSeries, 0, len(cycles))
	for i, cycle := range cycles {
		points := byCycle[cycle]
		if points == nil {
			points = []Point{}
		}
		series = append(series, PointSeries{
			Cycle:      cycle,
			Name:       "Cycle " + cycle,
			Color:      style.Palette[i%len(style.Palette)],
			SymbolSize: style.SymbolSize,
			Opacity:    style.Opacity,
			Points:     points,
		})
	}

	summary := Summary{Cycles: cycles, TotalPoints: len(eAll)}
	if len(eAll) > 0 {
		summary.RangeE = span(eAll)
		summary.RangeN = span(nAll)
	}
	return View{
		Title:   fmt.Sprintf("EN dispersion per cycle (%d cycles selected)", len(cycles)),
		Series:  series,
		Summary: summary,
		Text:    summary.String(),
	}
}

func span(values []float64) float64 {
	return floats.Max(values) - floats.Min(values)
}

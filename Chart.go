package enulog

import (
	"fmt"
	"image/color"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
)

// ChartOptions controls the HTML chart rendering.
type ChartOptions struct {
	AssetsHost string // echarts asset prefix, empty for the library default
	Width      string
	Height     string
}

func (o ChartOptions) initialization(pageTitle string) opts.Initialization {
	initOpts := opts.Initialization{PageTitle: pageTitle, Width: o.Width, Height: o.Height}
	if initOpts.Width == "" {
		initOpts.Width = "100%"
	}
	if initOpts.Height == "" {
		initOpts.Height = "640px"
	}
	if o.AssetsHost != "" {
		initOpts.AssetsHost = o.AssetsHost
	}
	return initOpts
}

// ScatterChart draws a rendered View: one series per selected cycle, or the
// placeholder title when nothing is selected.
func ScatterChart(view View, o ChartOptions) *charts.Scatter {
	scatter := charts.NewScatter()
	if view.Placeholder {
		scatter.SetGlobalOptions(
			charts.WithInitializationOpts(o.initialization(view.Title)),
			charts.WithTitleOpts(opts.Title{Title: view.Message, Subtitle: view.Title, Left: "center", Top: "middle"}),
			charts.WithXAxisOpts(opts.XAxis{Name: "East [cm]", NameLocation: "middle", NameGap: 25}),
			charts.WithYAxisOpts(opts.YAxis{Name: "North [cm]", NameLocation: "middle", NameGap: 30}),
		)
		return scatter
	}

	scatter.SetGlobalOptions(
		charts.WithInitializationOpts(o.initialization(view.Title)),
		charts.WithTitleOpts(opts.Title{Title: view.Title, Subtitle: view.Text}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true), Top: "bottom"}),
		charts.WithXAxisOpts(opts.XAxis{Name: "East [cm]", NameLocation: "middle", NameGap: 25}),
		charts.WithYAxisOpts(opts.YAxis{Name: "North [cm]", NameLocation: "middle", NameGap: 30}),
	)
	for _, s := range view.Series {
		data := make([]opts.ScatterData, 0, len(s.Points))
		for _, p := range s.Points {
			data = append(data, opts.ScatterData{Value: []interface{}{p.E, p.N}, SymbolSize: s.SymbolSize})
		}
		scatter.AddSeries(s.Name, data,
			charts.WithItemStyleOpts(opts.ItemStyle{Color: rgba(s.Color, s.Opacity)}),
		)
	}
	return scatter
}

// TimeSeriesChart draws E, N and U against the record datetime.
func TimeSeriesChart(ds *Dataset, o ChartOptions) *charts.Line {
	x := make([]string, 0, ds.Len())
	e := make([]opts.LineData, 0, ds.Len())
	n := make([]opts.LineData, 0, ds.Len())
	u := make([]opts.LineData, 0, ds.Len())
	for _, rec := range ds.Records {
		x = append(x, rec.GPST.Format(epochLayout))
		e = append(e, opts.LineData{Value: rec.CoordinateNEZ.E})
		n = append(n, opts.LineData{Value: rec.CoordinateNEZ.N})
		u = append(u, opts.LineData{Value: rec.CoordinateNEZ.Z})
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(o.initialization("ENU over time")),
		charts.WithTitleOpts(opts.Title{Title: "ENU over time"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true), Top: "bottom"}),
		charts.WithDataZoomOpts(opts.DataZoom{Type: "slider"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "[cm]"}),
	)
	line.SetXAxis(x).
		AddSeries(ColE, e).
		AddSeries(ColN, n).
		AddSeries(ColU, u)
	return line
}

// ConvergenceChart draws the running horizontal RMS.
func ConvergenceChart(conv []ConvergencePoint, o ChartOptions) *charts.Line {
	x := make([]string, 0, len(conv))
	y := make([]opts.LineData, 0, len(conv))
	for _, p := range conv {
		x = append(x, p.Time.Format(epochLayout))
		y = append(y, opts.LineData{Value: p.Rms})
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(o.initialization("Horizontal RMS convergence")),
		charts.WithTitleOpts(opts.Title{Title: "Horizontal RMS convergence"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithDataZoomOpts(opts.DataZoom{Type: "slider"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "r_cum_rms [cm]"}),
	)
	line.SetXAxis(x).AddSeries("r_cum_rms", y)
	return line
}

// TimingChart draws the first TTFF and TTSF of every cycle.
func TimingChart(timings []CycleTiming, o ChartOptions) *charts.Line {
	x := make([]string, 0, len(timings))
	ttff := make([]opts.LineData, 0, len(timings))
	ttsf := make([]opts.LineData, 0, len(timings))
	for _, t := range timings {
		x = append(x, t.Cycle)
		ttff = append(ttff, opts.LineData{Value: lineValue(t.TTFF)})
		ttsf = append(ttsf, opts.LineData{Value: lineValue(t.TTSF)})
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(o.initialization("TTFF and TTSF per cycle")),
		charts.WithTitleOpts(opts.Title{Title: "TTFF and TTSF per cycle"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true), Top: "bottom"}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Cycle", NameLocation: "middle", NameGap: 25}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Time [s]"}),
	)
	line.SetXAxis(x).
		AddSeries(ColTTFF, ttff).
		AddSeries(ColTTSF, ttsf)
	return line
}

// WriteChartPage renders the batch charts into one HTML page.
func WriteChartPage(w io.Writer, ds *Dataset, conv []ConvergencePoint, style Style, o ChartOptions) error {
	view := Render(ds, NewSelection(ds.Cycles), style)

	page := components.NewPage()
	page.PageTitle = "ENU log report"
	if o.AssetsHost != "" {
		page.SetAssetsHost(o.AssetsHost)
	}
	page.AddCharts(
		ScatterChart(view, o),
		ConvergenceChart(conv, o),
		TimeSeriesChart(ds, o),
	)
	if ds.HasTTFF {
		page.AddCharts(TimingChart(CycleTimings(ds), o))
	}
	return page.Render(w)
}

// echarts leaves gaps for "-"
func lineValue(v float64) interface{} {
	if math.IsNaN(v) {
		return "-"
	}
	return v
}

// parseHex converts "#rrggbb" to a color; malformed input yields black.
func parseHex(hex string) color.RGBA {
	hex = strings.TrimPrefix(hex, "#")
	if len(hex) != 6 {
		return color.RGBA{A: 255}
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return color.RGBA{A: 255}
	}
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 255}
}

func rgba(hex string, opacity float64) string {
	c := parseHex(hex)
	if opacity <= 0 || opacity > 1 {
		opacity = 1
	}
	return fmt.Sprintf("rgba(%d,%d,%d,%.2f)", c.R, c.G, c.B, opacity)
}

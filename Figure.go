package enulog

import (
	"errors"
	"fmt"
	"image/color"
	"math"
	"os"
	"path/filepath"
	"runtime"

	log "github.com/sirupsen/logrus"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// FigureOptions controls the static PNG figures.
type FigureOptions struct {
	Width  vg.Length
	Height vg.Length
	Style  Style
}

// DefaultFigureOptions returns 10x6 inch figures with the default style.
func DefaultFigureOptions() FigureOptions {
	return FigureOptions{Width: 10 * vg.Inch, Height: 6 * vg.Inch, Style: DefaultStyle()}
}

// DrawTask renders one figure to a PNG file.
type DrawTask struct {
	Name   string
	Path   string
	Width  vg.Length
	Height vg.Length
	build  func() (*plot.Plot, error)
}

func (t DrawTask) do() error {
	p, err := t.build()
	if err != nil {
		return fmt.Errorf("%s: %w", t.Name, err)
	}
	if err := p.Save(t.Width, t.Height, t.Path); err != nil {
		return fmt.Errorf("%s: save %s: %w", t.Name, t.Path, err)
	}
	log.Debug("figure written ", t.Path)
	return nil
}

// InitTask queues the tasks and closes the channel.
func InitTask(taskchan chan<- DrawTask, tasks []DrawTask) {
	for i := 0; i < len(tasks); i++ {
		taskchan <- tasks[i]
	}
	close(taskchan)
}

// DistributeTask starts the workers.
func DistributeTask(taskchan <-chan DrawTask, workers int, done chan<- error) {
	for i := 0; i < workers; i++ {
		go ProcessTask(taskchan, done)
	}
}

// ProcessTask drains the queue and reports its first error.
func ProcessTask(taskchan <-chan DrawTask, done chan<- error) {
	var first error
	for t := range taskchan {
		if err := t.do(); err != nil && first == nil {
			first = err
		}
	}
	done <- first
}

// CloseResult waits for every worker.
func CloseResult(done <-chan error, workers int) error {
	errs := make([]error, 0)
	for i := 0; i < workers; i++ {
		if err := <-done; err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// RunTasks renders tasks on a bounded pool and waits for all of them.
func RunTasks(tasks []DrawTask) error {
	if len(tasks) == 0 {
		return nil
	}
	workers := runtime.NumCPU() / 2
	if workers < 1 {
		workers = 1
	}
	if workers > len(tasks) {
		workers = len(tasks)
	}
	log.Debug("figure workers: ", workers)
	taskChan := make(chan DrawTask, workers)
	done := make(chan error, workers)
	go InitTask(taskChan, tasks)
	DistributeTask(taskChan, workers, done)
	return CloseResult(done, workers)
}

// SaveFigures writes scatter.png, convergence.png, enu_time.png and, when the
// log carries TTFF, ttff_ttsf.png into dir. It returns the written paths.
func SaveFigures(dir string, ds *Dataset, conv []ConvergencePoint, o FigureOptions) ([]string, error) {
	if ds == nil || ds.Len() == 0 {
		return nil, ErrEmptyDataset
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output dir: %w", err)
	}
	if len(o.Style.Palette) == 0 {
		o.Style.Palette = DefaultPalette
	}

	task := func(name string, build func() (*plot.Plot, error)) DrawTask {
		return DrawTask{Name: name, Path: filepath.Join(dir, name+".png"), Width: o.Width, Height: o.Height, build: build}
	}
	tasks := []DrawTask{
		task("scatter", func() (*plot.Plot, error) { return scatterPlot(ds, o.Style) }),
		task("convergence", func() (*plot.Plot, error) { return convergencePlot(conv) }),
		task("enu_time", func() (*plot.Plot, error) { return timeSeriesPlot(ds, o.Style) }),
	}
	if ds.HasTTFF {
		tasks = append(tasks, task("ttff_ttsf", func() (*plot.Plot, error) { return timingPlot(CycleTimings(ds), o.Style) }))
	} else {
		log.Warning("no TTFF column, skipping ttff_ttsf figure")
	}

	if err := RunTasks(tasks); err != nil {
		return nil, err
	}
	paths := make([]string, 0, len(tasks))
	for _, t := range tasks {
		paths = append(paths, t.Path)
	}
	log.Infof("%d figures written to %s", len(paths), dir)
	return paths, nil
}

func scatterPlot(ds *Dataset, style Style) (*plot.Plot, error) {
	view := Render(ds, NewSelection(ds.Cycles), style)
	p := plot.New()
	p.Title.Text = "EN dispersion per cycle"
	p.X.Label.Text = "East [cm]"
	p.Y.Label.Text = "North [cm]"
	p.Add(plotter.NewGrid())

	for _, s := range view.Series {
		pts := make(plotter.XYs, 0, len(s.Points))
		for _, pt := range s.Points {
			pts = append(pts, plotter.XY{X: pt.E, Y: pt.N})
		}
		sc, err := plotter.NewScatter(pts)
		if err != nil {
			return nil, err
		}
		c := parseHex(s.Color)
		sc.GlyphStyle.Color = color.NRGBA{R: c.R, G: c.G, B: c.B, A: uint8(math.Round(255 * style.opacity()))}
		sc.GlyphStyle.Radius = vg.Points(float64(style.SymbolSize) / 2)
		sc.GlyphStyle.Shape = draw.CircleGlyph{}
		p.Add(sc)
		p.Legend.Add(s.Name, sc)
	}
	p.Legend.Top = true
	return p, nil
}

func convergencePlot(conv []ConvergencePoint) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = "Horizontal RMS convergence"
	p.X.Label.Text = "datetime"
	p.Y.Label.Text = "r_cum_rms [cm]"
	p.X.Tick.Marker = plot.TimeTicks{Format: "15:04:05"}
	p.Add(plotter.NewGrid())

	pts := make(plotter.XYs, 0, len(conv))
	for _, c := range conv {
		pts = append(pts, plotter.XY{X: unixSeconds(c.Time.UnixNano()), Y: c.Rms})
	}
	line, err := plotter.NewLine(pts)
	if err != nil {
		return nil, err
	}
	line.Color = parseHex(DefaultPalette[0])
	line.Width = vg.Points(1)
	p.Add(line)
	return p, nil
}

func timeSeriesPlot(ds *Dataset, style Style) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = "ENU over time"
	p.X.Label.Text = "datetime"
	p.Y.Label.Text = "[cm]"
	p.X.Tick.Marker = plot.TimeTicks{Format: "15:04:05"}
	p.Add(plotter.NewGrid())

	axes := []struct {
		name  string
		value func(Record) float64
	}{
		{ColE, func(r Record) float64 { return r.CoordinateNEZ.E }},
		{ColN, func(r Record) float64 { return r.CoordinateNEZ.N }},
		{ColU, func(r Record) float64 { return r.CoordinateNEZ.Z }},
	}
	for i, axis := range axes {
		pts := make(plotter.XYs, 0, ds.Len())
		for _, rec := range ds.Records {
			pts = append(pts, plotter.XY{X: unixSeconds(rec.GPST.UnixNano()), Y: axis.value(rec)})
		}
		line, err := plotter.NewLine(pts)
		if err != nil {
			return nil, err
		}
		line.Color = parseHex(style.Palette[i%len(style.Palette)])
		line.Width = vg.Points(1)
		p.Add(line)
		p.Legend.Add(axis.name, line)
	}
	p.Legend.Top = true
	return p, nil
}

func timingPlot(timings []CycleTiming, style Style) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = "TTFF and TTSF per cycle"
	p.X.Label.Text = "Cycle"
	p.Y.Label.Text = "Time [s]"
	p.Add(plotter.NewGrid())

	ticks := make([]plot.Tick, 0, len(timings))
	for i, t := range timings {
		ticks = append(ticks, plot.Tick{Value: float64(i), Label: t.Cycle})
	}
	p.X.Tick.Marker = plot.ConstantTicks(ticks)

	series := []struct {
		name  string
		value func(CycleTiming) float64
	}{
		{ColTTFF, func(t CycleTiming) float64 { return t.TTFF }},
		{ColTTSF, func(t CycleTiming) float64 { return t.TTSF }},
	}
	for i, s := range series {
		pts := make(plotter.XYs, 0, len(timings))
		for j, t := range timings {
			if v := s.value(t); !math.IsNaN(v) {
				pts = append(pts, plotter.XY{X: float64(j), Y: v})
			}
		}
		if len(pts) == 0 {
			continue
		}
		line, points, err := plotter.NewLinePoints(pts)
		if err != nil {
			return nil, err
		}
		c := parseHex(style.Palette[i%len(style.Palette)])
		line.Color = c
		points.GlyphStyle.Color = c
		points.GlyphStyle.Shape = draw.CircleGlyph{}
		p.Add(line, points)
		p.Legend.Add(s.name, line, points)
	}
	p.Legend.Top = true
	return p, nil
}

func unixSeconds(nanos int64) float64 {
	return float64(nanos) / 1e9
}

func (s Style) opacity() float64 {
	if s.Opacity <= 0 || s.Opacity > 1 {
		return 1
	}
	return s.Opacity
}

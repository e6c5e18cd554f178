package enulog

import (
	log "github.com/sirupsen/logrus"
)

// Session holds everything built once at startup: the loaded log and the
// rendering settings. It is never mutated after NewSession returns, so it
// can be shared by request handlers without locking.
type Session struct {
	Dataset *Dataset
	Style   Style
	Chart   ChartOptions
	Log     *log.Entry
}

// NewSession loads the log at path.
func NewSession(path string, style Style, chart ChartOptions, opts ...LoadOption) (*Session, error) {
	ds, err := LoadFile(path, opts...)
	if err != nil {
		return nil, err
	}
	if len(style.Palette) == 0 {
		style.Palette = DefaultPalette
	}
	return &Session{
		Dataset: ds,
		Style:   style,
		Chart:   chart,
		Log:     log.WithField("file", path),
	}, nil
}

// Selection returns a selection of every cycle in the log.
func (s *Session) Selection() Selection {
	return NewSelection(s.Dataset.Cycles)
}

// Render draws sel over the session dataset.
func (s *Session) Render(sel Selection) View {
	return Render(s.Dataset, sel, s.Style)
}

// Metrics returns the per-cycle and global summaries.
func (s *Session) Metrics() ([]CycleMetrics, MetricsSummary, error) {
	perCycle, err := PerCycle(s.Dataset)
	if err != nil {
		return nil, MetricsSummary{}, err
	}
	global, err := Global(s.Dataset)
	if err != nil {
		return nil, MetricsSummary{}, err
	}
	return perCycle, global, nil
}

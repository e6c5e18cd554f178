package enulog

import (
	"fmt"
	"math"
	"sort"

	"github.com/15226124477/method"
	"github.com/montanaflynn/stats"
	log "github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/floats"
)

// PerCycle summarizes every cycle, each centered on its own mean.
func PerCycle(ds *Dataset) ([]CycleMetrics, error) {
	if ds == nil || ds.Len() == 0 {
		return nil, ErrEmptyDataset
	}
	result := make([]CycleMetrics, 0, len(ds.Cycles))
	for _, cycle := range ds.Cycles {
		summary, err := Summarize(ds.Group(cycle))
		if err != nil {
			return nil, fmt.Errorf("cycle %s: %w", cycle, err)
		}
		result = append(result, CycleMetrics{Cycle: cycle, MetricsSummary: summary})
	}
	log.Debugf("computed metrics for %d cycles", len(result))
	return result, nil
}

// Global summarizes the whole log centered on the whole-log mean, plus the
// mean TTSF.
func Global(ds *Dataset) (MetricsSummary, error) {
	if ds == nil || ds.Len() == 0 {
		return MetricsSummary{}, ErrEmptyDataset
	}
	summary, err := Summarize(ds.Records)
	if err != nil {
		return MetricsSummary{}, err
	}
	ttsf := make([]float64, 0, ds.Len())
	for i := 0; i < len(ds.Records); i++ {
		ttsf = append(ttsf, ds.Records[i].TTSF)
	}
	summary.MeanTTSF = method.Average(ttsf)
	return summary, nil
}

// Summarize computes the dispersion summary of records centered on their
// own mean E/N/U.
func Summarize(records []Record) (MetricsSummary, error) {
	if len(records) == 0 {
		return MetricsSummary{}, ErrEmptyDataset
	}
	eValue := make([]float64, 0, len(records))
	nValue := make([]float64, 0, len(records))
	uValue := make([]float64, 0, len(records))
	for i := 0; i < len(records); i++ {
		eValue = append(eValue, records[i].CoordinateNEZ.E)
		nValue = append(nValue, records[i].CoordinateNEZ.N)
		uValue = append(uValue, records[i].CoordinateNEZ.Z)
	}
	meanE := method.Average(eValue)
	meanN := method.Average(nValue)
	meanU := method.Average(uValue)

	uCentered := make([]float64, len(uValue))
	for i := range uValue {
		uCentered[i] = uValue[i] - meanU
	}
	stdU, err := stats.StandardDeviationPopulation(uCentered)
	if err != nil {
		return MetricsSummary{}, fmt.Errorf("std U: %w", err)
	}

	r := Radii(records, meanE, meanN)
	return MetricsSummary{
		Samples: len(records),
		MeanE:   meanE,
		MeanN:   meanN,
		MeanU:   meanU,
		CEP50:   Percentile(r, 50),
		CEP95:   Percentile(r, 95),
		RmsH:    rms(r),
		StdU:    stdU,
	}, nil
}

// Radii returns the horizontal distance of each record from (meanE, meanN).
func Radii(records []Record, meanE, meanN float64) []float64 {
	r := make([]float64, len(records))
	for i := 0; i < len(records); i++ {
		e := records[i].CoordinateNEZ.E - meanE
		n := records[i].CoordinateNEZ.N - meanN
		r[i] = math.Sqrt(e*e + n*n)
	}
	return r
}

// Percentile interpolates linearly between the closest ranks, with rank
// h = (n-1)*p/100. values is not modified.
func Percentile(values []float64, p float64) float64 {
	if len(values) == 0 {
		return math.NaN()
	}
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	h := float64(len(sorted)-1) * p / 100
	lo := int(math.Floor(h))
	if lo >= len(sorted)-1 {
		return sorted[len(sorted)-1]
	}
	if lo < 0 {
		return sorted[0]
	}
	return sorted[lo] + (h-float64(lo))*(sorted[lo+1]-sorted[lo])
}

func rms(r []float64) float64 {
	sq := make([]float64, len(r))
	for i := range r {
		sq[i] = r[i] * r[i]
	}
	return math.Sqrt(method.Average(sq))
}

// Convergence returns the running horizontal RMS over the log in load order,
// using radii centered on the whole-log mean.
func Convergence(ds *Dataset) ([]ConvergencePoint, error) {
	if ds == nil || ds.Len() == 0 {
		return nil, ErrEmptyDataset
	}
	eValue := make([]float64, 0, ds.Len())
	nValue := make([]float64, 0, ds.Len())
	for i := 0; i < len(ds.Records); i++ {
		eValue = append(eValue, ds.Records[i].CoordinateNEZ.E)
		nValue = append(nValue, ds.Records[i].CoordinateNEZ.N)
	}
	r := Radii(ds.Records, method.Average(eValue), method.Average(nValue))
	sq := make([]float64, len(r))
	for i := range r {
		sq[i] = r[i] * r[i]
	}
	cum := floats.CumSum(make([]float64, len(sq)), sq)

	points := make([]ConvergencePoint, len(cum))
	for i := range cum {
		points[i] = ConvergencePoint{
			Time: ds.Records[i].GPST,
			Rms:  math.Sqrt(cum[i] / float64(i+1)),
		}
	}
	return points, nil
}

// CycleTimings returns the first non-missing TTFF and TTSF of each cycle.
func CycleTimings(ds *Dataset) []CycleTiming {
	timings := make([]CycleTiming, 0, len(ds.Cycles))
	for _, cycle := range ds.Cycles {
		t := CycleTiming{Cycle: cycle, TTFF: math.NaN(), TTSF: math.NaN()}
		for _, rec := range ds.Group(cycle) {
			if math.IsNaN(t.TTFF) && !math.IsNaN(rec.TTFF) {
				t.TTFF = rec.TTFF
			}
			if math.IsNaN(t.TTSF) && !math.IsNaN(rec.TTSF) {
				t.TTSF = rec.TTSF
			}
		}
		timings = append(timings, t)
	}
	return timings
}

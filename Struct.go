package enulog

import (
	"time"

	"github.com/15226124477/coord"
)

// Column names of the ENU log header.
const (
	ColDate  = "date"
	ColUTC   = "UTC"
	ColCycle = "cycle"
	ColE     = "E[cm]"
	ColN     = "N[cm]"
	ColU     = "U[cm]"
	ColTTFF  = "TTFF[s]"
	ColTTSF  = "TTSF[s]"
)

// RequiredColumns is the column set every log must carry.
var RequiredColumns = []string{ColDate, ColUTC, ColCycle, ColE, ColN, ColU, ColTTSF}

// Record is one measurement row. Up is stored in CoordinateNEZ.Z.
type Record struct {
	coord.GpstTime   // date + UTC, parsed day-first
	coord.Coordinate // E/N/U offsets in cm

	Date  string  // raw date field
	UTC   string  // raw time-of-day field
	Cycle string  // cycle id
	TTFF  float64 // time to first fix, NaN when missing
	TTSF  float64 // time to subsequent fix
}

// Dataset is the loaded log in file order.
type Dataset struct {
	Path    string   // source file
	Records []Record // rows, file order
	HasTTFF bool     // TTFF[s] column present
	Cycles  []string // distinct cycle ids, sorted
}

// Len returns the number of records.
func (ds *Dataset) Len() int {
	return len(ds.Records)
}

// Group returns the records of one cycle in file order.
func (ds *Dataset) Group(cycle string) []Record {
	group := make([]Record, 0)
	for i := 0; i < len(ds.Records); i++ {
		if ds.Records[i].Cycle == cycle {
			group = append(group, ds.Records[i])
		}
	}
	return group
}

// MetricsSummary is the dispersion summary of a group or of the whole log.
type MetricsSummary struct {
	Samples  int     `json:"samples"`
	MeanE    float64 `json:"mean_E"`
	MeanN    float64 `json:"mean_N"`
	MeanU    float64 `json:"mean_U"`
	CEP50    float64 `json:"CEP50"`
	CEP95    float64 `json:"CEP95"`
	RmsH     float64 `json:"RMS_H"`
	StdU     float64 `json:"STD_U"`
	MeanTTSF float64 `json:"mean_TTSF,omitempty"` // global summary only
}

// CycleMetrics pairs a cycle id with its summary.
type CycleMetrics struct {
	Cycle string `json:"cycle"`
	MetricsSummary
}

// ConvergencePoint is one step of the running horizontal RMS.
type ConvergencePoint struct {
	Time time.Time `json:"time"`
	Rms  float64   `json:"rms"`
}

// CycleTiming is the first TTFF/TTSF value reported in a cycle.
type CycleTiming struct {
	Cycle string  `json:"cycle"`
	TTFF  float64 `json:"ttff"`
	TTSF  float64 `json:"ttsf"`
}

// SamplingInfo describes the time coverage of a log.
type SamplingInfo struct {
	Start     time.Time     // first epoch
	End       time.Time     // last epoch
	Duration  float64       // hours
	Epoch     int           // records
	Sample    float64       // dominant interval, s
	LostEpoch float64       // epochs missing at the dominant interval
	Duplicate int           // epochs repeating the previous timestamp
	Integrity float64       // percent
	Gaps      []SamplingGap // interval anomalies
}

// SamplingGap is one interval that differs from the dominant sample interval.
type SamplingGap struct {
	Key       int       // 1-based
	StartTime time.Time // epoch before the gap
	EndTime   time.Time // epoch after the gap
	LostCount float64   // missing epochs, negative for short or repeated intervals
}

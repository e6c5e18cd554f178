package enulog

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"sort"

	"github.com/15226124477/method"
	log "github.com/sirupsen/logrus"
)

const epochLayout = "2006-01-02 15:04:05.000"

// AnalyzeSampling finds the dominant epoch interval of the log and every
// interval that deviates from it, in load order.
func AnalyzeSampling(ds *Dataset) (SamplingInfo, error) {
	if ds == nil || ds.Len() == 0 {
		return SamplingInfo{}, ErrEmptyDataset
	}
	records := ds.Records
	info := SamplingInfo{
		Start:     records[0].GPST,
		End:       records[len(records)-1].GPST,
		Epoch:     len(records),
		Integrity: 100,
		Gaps:      make([]SamplingGap, 0),
	}
	info.Duration = method.Decimal(info.End.Sub(info.Start).Hours(), 2)
	if len(records) < 2 {
		return info, nil
	}

	intervals := make([]float64, 0, len(records)-1)
	counts := make(map[float64]int)
	for i := 1; i < len(records); i++ {
		interval := math.Round(records[i].GPST.Sub(records[i-1].GPST).Seconds()*1000) / 1000
		intervals = append(intervals, interval)
		counts[interval]++
	}
	keys := make([]float64, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Float64s(keys)
	maxCount := 0
	for _, k := range keys {
		log.Debug("interval:", k, "count:", counts[k])
		if counts[k] > maxCount {
			info.Sample = k
			maxCount = counts[k]
		}
	}
	if info.Sample <= 0 {
		log.Warning("no positive sample interval in ", ds.Path)
		return info, nil
	}

	lostSum := 0.0
	key := 1
	for i, interval := range intervals {
		if interval == info.Sample {
			continue
		}
		if interval <= 0 {
			info.Duplicate++
		}
		lost := (interval - info.Sample) / info.Sample
		if lost > 0 {
			lostSum += lost
		}
		info.Gaps = append(info.Gaps, SamplingGap{
			Key:       key,
			StartTime: records[i].GPST,
			EndTime:   records[i+1].GPST,
			LostCount: lost,
		})
		key++
	}
	info.LostEpoch = lostSum
	// duplicates and short intervals never count as recovered epochs
	unique := float64(info.Epoch - info.Duplicate)
	info.Integrity = method.Decimal(100*unique/(unique+lostSum), 2)
	log.Debug("sample interval:", info.Sample, "s integrity:", info.Integrity, "%")
	return info, nil
}

// WriteSamplingReport writes the sampling summary followed by one line per gap.
func WriteSamplingReport(w io.Writer, path string, info SamplingInfo) error {
	writer := bufio.NewWriter(w)
	header := fmt.Sprintf("************************************************************\n"+
		"File: %s\nStart: %s\nEnd: %s\nDuration: %.2fh\nEpochs: %d\nSample interval: %.4fs\n"+
		"Lost epochs: %.0f\nDuplicate epochs: %d\nIntegrity: %.2f%%\n"+
		"************************************************************\n",
		path,
		info.Start.Format(epochLayout),
		info.End.Format(epochLayout),
		info.Duration,
		info.Epoch,
		info.Sample,
		info.LostEpoch,
		info.Duplicate,
		info.Integrity,
	)
	if _, err := writer.WriteString(header); err != nil {
		return err
	}
	for _, gap := range info.Gaps {
		line := fmt.Sprintf("%d\t%s ~ %s #Epoch_LOST %.f\n",
			gap.Key,
			gap.StartTime.Format(epochLayout),
			gap.EndTime.Format(epochLayout),
			gap.LostCount,
		)
		if _, err := writer.WriteString(line); err != nil {
			return err
		}
	}
	return writer.Flush()
}

package enulog

import (
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

const fixtureLog = `date, UTC, cycle, E[cm], N[cm], U[cm], TTFF[s], TTSF[s]
16/10/2026, 10:00:00, 1, 0, 0, 1, 30, 5
16/10/2026, 10:00:01, 1, 2, 0, 3, , 6
16/10/2026, 10:00:02, 1, -2, 0, 2, , 7
16/10/2026, 10:00:03, 2, 4, 4, 0, 25, 4
`

func writeLog(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "enu_log.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func loadFixture(t *testing.T) *Dataset {
	t.Helper()
	ds, err := LoadFile(writeLog(t, fixtureLog))
	require.NoError(t, err)
	return ds
}

func record(cycle string, at time.Time, e, n, u float64) Record {
	r := Record{Cycle: cycle, TTFF: math.NaN()}
	r.GPST = at
	r.Coordinate.CoordinateNEZ.E = e
	r.Coordinate.CoordinateNEZ.N = n
	r.Coordinate.CoordinateNEZ.Z = u
	return r
}

func dataset(records ...Record) *Dataset {
	ds := &Dataset{Records: records}
	seen := map[string]bool{}
	for _, r := range records {
		if !seen[r.Cycle] {
			seen[r.Cycle] = true
			ds.Cycles = append(ds.Cycles, r.Cycle)
		}
	}
	sortCycles(ds.Cycles)
	return ds
}

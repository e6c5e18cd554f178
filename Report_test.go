package enulog

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func fixtureMetrics(t *testing.T) ([]CycleMetrics, MetricsSummary, []ConvergencePoint) {
	t.Helper()
	ds := loadFixture(t)
	perCycle, err := PerCycle(ds)
	require.NoError(t, err)
	global, err := Global(ds)
	require.NoError(t, err)
	conv, err := Convergence(ds)
	require.NoError(t, err)
	return perCycle, global, conv
}

func TestWriteReport(t *testing.T) {
	perCycle, global, _ := fixtureMetrics(t)

	var buf bytes.Buffer
	require.NoError(t, WriteReport(&buf, perCycle, global))
	out := buf.String()

	assert.Contains(t, out, "Metrics per cycle")
	assert.Contains(t, out, "Global metrics")
	assert.Contains(t, out, "CEP50")
	assert.Contains(t, out, "RMS_H: 2.828\n")
	assert.Contains(t, out, "samples: 4\n")
	assert.Contains(t, out, "mean_TTSF: 5.5\n")
	assert.Less(t, bytes.Index(buf.Bytes(), []byte("Metrics per cycle")), bytes.Index(buf.Bytes(), []byte("Global metrics")))
}

func TestExportWorkbook(t *testing.T) {
	perCycle, global, conv := fixtureMetrics(t)
	path := filepath.Join(t.TempDir(), "metrics.xlsx")

	require.NoError(t, ExportWorkbook(path, perCycle, global, conv))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"Cycles", "Global", "Convergence"}, f.GetSheetList())

	rows, err := f.GetRows("Cycles")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, cycleColumns, rows[0])
	assert.Equal(t, "1", rows[1][0])
	assert.Equal(t, "3", rows[1][1])

	label, err := f.GetCellValue("Global", "A7")
	require.NoError(t, err)
	assert.Equal(t, "RMS_H", label)

	convRows, err := f.GetRows("Convergence")
	require.NoError(t, err)
	assert.Len(t, convRows, len(conv)+1)
	assert.Equal(t, []string{"datetime", "r_cum_rms"}, convRows[0])
}

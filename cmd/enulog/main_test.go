package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/15226124477/enulog"
	"github.com/15226124477/enulog/config"
	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

const testLog = `date,UTC,cycle,E[cm],N[cm],U[cm],TTFF[s],TTSF[s]
16/10/2026,10:00:00,1,0,0,1,30,5
16/10/2026,10:00:01,1,2,0,3,,6
16/10/2026,10:00:02,2,-2,0,2,25,7
16/10/2026,10:00:04,2,4,4,0,,4
`

func writeLog(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "enu_log.csv")
	require.NoError(t, os.WriteFile(path, []byte(testLog), 0644))
	return path
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	defer log.SetLevel(log.GetLevel())

	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestFlagsOverrideEnvironment(t *testing.T) {
	csv := writeLog(t)
	t.Setenv("ENULOG_LOG_LEVEL", "verbose")
	t.Setenv("ENULOG_ENCODING", "latin1")
	t.Setenv("ENULOG_CSV_FILE", filepath.Join(t.TempDir(), "elsewhere.csv"))

	out, err := run(t, "report", "--csv", csv, "--encoding", "utf-8", "--log-level", "debug")
	require.NoError(t, err)
	assert.Contains(t, out, "Metrics per cycle")
	assert.Contains(t, out, "samples: 4\n")
}

func TestInvalidEnvironmentWithoutOverride(t *testing.T) {
	csv := writeLog(t)
	t.Setenv("ENULOG_LOG_LEVEL", "verbose")

	_, err := run(t, "report", "--csv", csv)
	assert.ErrorContains(t, err, "log_level")
}

func TestConfigFileThenFlags(t *testing.T) {
	csv := writeLog(t)
	cfgPath := filepath.Join(t.TempDir(), "enulog.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("csv_file: "+csv+"\nlog_level: loud\n"), 0644))

	_, err := run(t, "--config", cfgPath, "gaps")
	assert.ErrorContains(t, err, "log_level")

	out, err := run(t, "--config", cfgPath, "--log-level", "warning", "gaps")
	require.NoError(t, err)
	assert.Contains(t, out, "File: "+csv)
}

func TestMissingLog(t *testing.T) {
	_, err := run(t, "report", "--csv", filepath.Join(t.TempDir(), "missing.csv"))
	assert.True(t, errors.Is(err, enulog.ErrNotFound))
}

func TestReportOutputs(t *testing.T) {
	csv := writeLog(t)
	outDir := filepath.Join(t.TempDir(), "out")
	t.Setenv("ENULOG_OUT_DIR", outDir)

	_, err := run(t, "report", "--csv", csv, "--html", "--figures")
	require.NoError(t, err)
	for _, name := range []string{"enu_log.html", "scatter.png", "convergence.png", "enu_time.png", "ttff_ttsf.png"} {
		assert.FileExists(t, filepath.Join(outDir, name))
	}
}

func TestExport(t *testing.T) {
	csv := writeLog(t)
	outDir := filepath.Join(t.TempDir(), "out")
	t.Setenv("ENULOG_OUT_DIR", outDir)

	_, err := run(t, "export", "--csv", csv)
	require.NoError(t, err)
	f, err := excelize.OpenFile(filepath.Join(outDir, "enu_log.xlsx"))
	require.NoError(t, err)
	defer f.Close()
	assert.Equal(t, []string{"Cycles", "Global", "Convergence"}, f.GetSheetList())

	explicit := filepath.Join(t.TempDir(), "metrics.xlsx")
	_, err = run(t, "export", "--csv", csv, "-o", explicit)
	require.NoError(t, err)
	assert.FileExists(t, explicit)
}

func TestGaps(t *testing.T) {
	csv := writeLog(t)

	out, err := run(t, "gaps", "--csv", csv)
	require.NoError(t, err)
	assert.Contains(t, out, "Sample interval: 1.0000s")
	assert.Contains(t, out, "Lost epochs: 1\n")
	assert.Contains(t, out, "#Epoch_LOST 1\n")

	reportPath := filepath.Join(t.TempDir(), "gaps.txt")
	_, err = run(t, "gaps", "--csv", csv, "-o", reportPath)
	require.NoError(t, err)
	data, err := os.ReadFile(reportPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Integrity: 80.00%")
}

func TestOutPath(t *testing.T) {
	cfg := config.Default()
	cfg.CSVFile = filepath.Join("logs", "7_enu_log.csv")
	cfg.OutDir = "results"
	assert.Equal(t, filepath.Join("results", "7_enu_log.xlsx"), outPath(cfg, ".xlsx"))
}

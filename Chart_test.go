package enulog

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScatterChart(t *testing.T) {
	ds := loadFixture(t)
	sel := NewSelection(ds.Cycles)

	var buf bytes.Buffer
	view := Render(ds, sel, DefaultStyle())
	require.NoError(t, ScatterChart(view, ChartOptions{}).Render(&buf))
	assert.Contains(t, buf.String(), "Cycle 1")
	assert.Contains(t, buf.String(), "rgba(31,119,180,0.60)")

	buf.Reset()
	placeholder := Render(ds, sel.None(), DefaultStyle())
	require.NoError(t, ScatterChart(placeholder, ChartOptions{}).Render(&buf))
	assert.Contains(t, buf.String(), PlaceholderText)
	assert.NotContains(t, buf.String(), "Cycle 1")
}

func TestWriteChartPage(t *testing.T) {
	ds := loadFixture(t)
	conv, err := Convergence(ds)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteChartPage(&buf, ds, conv, DefaultStyle(), ChartOptions{Height: "480px"}))
	out := buf.String()
	assert.Contains(t, out, "ENU log report")
	assert.Contains(t, out, "Horizontal RMS convergence")
	assert.Contains(t, out, "ENU over time")
	assert.Contains(t, out, "TTFF and TTSF per cycle")
}

func TestRGBA(t *testing.T) {
	assert.Equal(t, "rgba(255,127,14,0.60)", rgba("#ff7f0e", 0.6))
	assert.Equal(t, "rgba(0,0,0,1.00)", rgba("bogus", 0))
}

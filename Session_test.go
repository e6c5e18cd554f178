package enulog

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSession(t *testing.T) {
	path := writeLog(t, fixtureLog)
	session, err := NewSession(path, Style{SymbolSize: 8, Opacity: 0.5}, ChartOptions{})
	require.NoError(t, err)

	assert.Equal(t, DefaultPalette, session.Style.Palette)
	assert.Equal(t, []string{"1", "2"}, session.Selection().Cycles())

	view := session.Render(session.Selection().Replace([]string{"2"}))
	require.Len(t, view.Series, 1)
	assert.Equal(t, 8, view.Series[0].SymbolSize)

	perCycle, global, err := session.Metrics()
	require.NoError(t, err)
	assert.Len(t, perCycle, 2)
	assert.Equal(t, 4, global.Samples)

	_, err = NewSession(filepath.Join(t.TempDir(), "nope.csv"), DefaultStyle(), ChartOptions{})
	assert.True(t, errors.Is(err, ErrNotFound))
}

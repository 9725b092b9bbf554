package obslog

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLogger_FiltersBelowMinLevel(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, LevelWarn)

	l.Debug("stage", "ignored")
	l.Info("stage", "ignored too")
	l.Warn("stage", "kept %d", 1)

	out := buf.String()
	assert.NotContains(t, out, "ignored")
	assert.Contains(t, out, "kept 1")
	assert.Contains(t, out, "[WARN]")
}

func TestLogger_QuietSuppressesEverything(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, LevelDebug)
	l.SetQuiet(true)

	l.Error("stage", "should not appear")

	assert.Empty(t, buf.String())
}

func TestLogger_IncludesStageTag(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, LevelDebug)

	l.Info("dag.build", "done")

	assert.True(t, strings.Contains(buf.String(), "dag.build: done"))
}

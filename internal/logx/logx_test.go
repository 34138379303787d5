package logx

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, LevelWarn)

	l.Info("should be filtered")
	l.Warn("should appear")

	out := buf.String()
	assert.NotContains(t, out, "should be filtered")
	assert.Contains(t, out, "should appear")
}

func TestKeyValuePairsRendered(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, LevelDebug)

	l.Info("scan complete", "goroutines", 3, "dropped", 0)

	out := buf.String()
	assert.True(t, strings.Contains(out, "goroutines=3"))
	assert.True(t, strings.Contains(out, "dropped=0"))
}

func TestWarnOnceSuppressesRepeats(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, LevelDebug)

	for i := 0; i < 5; i++ {
		l.WarnOnce("registry-exhausted", "registry exhausted")
	}

	out := buf.String()
	assert.Equal(t, 1, strings.Count(out, "registry exhausted"))
}

func TestDumpProducesNonEmptyOutput(t *testing.T) {
	type inner struct{ A, B int }
	assert.NotEmpty(t, Dump(inner{A: 1, B: 2}))
}

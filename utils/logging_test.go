package utils

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger("glue", "debug", &buf)
	l.Debug("comm info", "rank", 3)
	l.Trace("hidden")
	out := buf.String()
	assert.True(t, strings.Contains(out, "glue: comm info"), out)
	assert.True(t, strings.Contains(out, "rank=3"), out)
	assert.False(t, strings.Contains(out, "hidden"))

	buf.Reset()
	l = NewLogger("x", "nonsense", &buf)
	l.Debug("quiet")
	l.Info("loud")
	assert.False(t, strings.Contains(buf.String(), "quiet"))
	assert.True(t, strings.Contains(buf.String(), "loud"))
}

func TestOrNull(t *testing.T) {
	l := OrNull(nil)
	assert.NotNil(t, l)
	l.Info("discarded")
	var buf bytes.Buffer
	named := NewLogger("n", "", &buf)
	assert.Equal(t, named, OrNull(named))
}

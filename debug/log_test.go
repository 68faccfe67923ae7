package debug

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLog_DisabledWritesNothing(t *testing.T) {
	var buf bytes.Buffer
	EnableWriter(&buf)
	Disable()
	buf.Reset()

	Log("engine", "advance %d", 1)
	assert.False(t, Enabled())
	assert.Empty(t, buf.String())
}

func TestLog_WritesCategoryLine(t *testing.T) {
	var buf bytes.Buffer
	EnableWriter(&buf)
	defer Disable()

	Log("route", "ch=%d v=%.2f", 2, 3.5)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "started")
	assert.Contains(t, lines[1], "route")
	assert.True(t, strings.HasSuffix(lines[1], "ch=2 v=3.50"))
}

func TestLogEvery(t *testing.T) {
	var buf bytes.Buffer
	EnableWriter(&buf)
	defer Disable()

	for i := 0; i < 10; i++ {
		LogEvery(5, "input", "edge")
	}

	assert.Equal(t, 2, strings.Count(buf.String(), "edge (every 5"))
}

func TestEnable_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "debug.log")
	require.NoError(t, Enable(path))
	Log("config", "loaded")
	Disable()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "loaded")
}

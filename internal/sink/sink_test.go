package sink

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Geun-Oh/ufwlog/internal/entry"
	"github.com/Geun-Oh/ufwlog/internal/parse"
)

const blockLine = "Jan 1 00:00:00 host kernel: [UFW BLOCK] IN=eth0 OUT= SRC=203.0.113.9 DST=10.0.0.5 PROTO=TCP SPT=443 DPT=25565"

func parsedRecord(t *testing.T) *entry.Record {
	t.Helper()
	r, err := parse.Config{Year: 2024}.Parse(blockLine)
	require.NoError(t, err)
	return r
}

func TestTerminalSink(t *testing.T) {
	var buf strings.Builder
	s := NewTerminalSink(&buf, false)
	require.NoError(t, s.Write(parsedRecord(t)))

	out := buf.String()
	assert.Contains(t, out, "[BLOCK]")
	assert.Contains(t, out, "203.0.113.9:443 -> 10.0.0.5:25565")
	assert.Contains(t, out, "TCP")
	assert.NotContains(t, out, "\033[")
}

func TestTerminalSinkColor(t *testing.T) {
	var buf strings.Builder
	s := NewTerminalSink(&buf, true)
	require.NoError(t, s.Write(parsedRecord(t)))
	assert.Contains(t, buf.String(), colorRed)
}

func TestTerminalSinkRawFallback(t *testing.T) {
	r, err := parse.Parse("[UFW BLOCK] DPT=80")
	require.NoError(t, err)

	var buf strings.Builder
	s := NewTerminalSink(&buf, false)
	require.NoError(t, s.Write(r))
	assert.Equal(t, "[UFW BLOCK] DPT=80\n", buf.String())
}

func TestJSONSink(t *testing.T) {
	var buf strings.Builder
	s := NewJSONSink(&buf)
	require.NoError(t, s.Write(parsedRecord(t)))
	require.NoError(t, s.Write(parsedRecord(t)))

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 2)
	for _, line := range lines {
		back, err := parse.FromJSON([]byte(line))
		require.NoError(t, err)
		assert.Equal(t, blockLine, back.Raw())
	}
}

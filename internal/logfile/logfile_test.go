package logfile

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Geun-Oh/ufwlog/internal/parse"
	"github.com/Geun-Oh/ufwlog/internal/query"
)

var sampleLog = strings.Join([]string{
	"Jan 1 00:00:00 host kernel: [UFW BLOCK] IN=eth0 OUT= SRC=203.0.113.9 DST=10.0.0.5 PROTO=TCP SPT=443 DPT=25565",
	"Jan 1 00:00:01 host kernel: [UFW ALLOW] IN=eth0 OUT= SRC=192.168.1.5 DST=10.0.0.5 PROTO=TCP SPT=51234 DPT=22",
	"Jan 1 00:00:02 host kernel: [UFW BLOCK] IN=eth0 OUT= SRC=192.168.1.9 DST=10.0.0.5 PROTO=UDP SPT=9999 DPT=25565",
}, "\n") + "\n"

func sampleFile(t *testing.T) *File {
	t.Helper()
	f, err := FromReader(strings.NewReader(sampleLog), WithYear(2024))
	require.NoError(t, err)
	return f
}

func mustEq(t *testing.T, f query.Field, raw any) *query.Predicate {
	t.Helper()
	p, err := f.Eq(raw)
	require.NoError(t, err)
	return p
}

func TestFromReaderKeepsOrder(t *testing.T) {
	f := sampleFile(t)
	require.Equal(t, 3, f.Len())

	var ports []string
	for _, r := range f.Records() {
		v, ok := r.Get("SPT")
		require.True(t, ok)
		ports = append(ports, v.Text())
	}
	assert.Equal(t, []string{"443", "51234", "9999"}, ports)

	assert.Equal(t, uint64(3), f.Stats().Lines())
	assert.Equal(t, uint64(3), f.Stats().Parsed())
	assert.Equal(t, uint64(0), f.Stats().Skipped())
}

func TestSelect(t *testing.T) {
	f := sampleFile(t)

	blocked := mustEq(t, query.Action, "BLOCK")
	mc := mustEq(t, query.Dpt, 25565)
	tcp := mustEq(t, query.Proto, "TCP")

	got := f.Select(blocked)
	require.Equal(t, 2, got.Len())
	// Original order is preserved.
	assert.Same(t, f.At(0), got.At(0))
	assert.Same(t, f.At(2), got.At(1))

	// Chained selection narrows like a single AND.
	chained := f.Select(blocked).Select(tcp)
	combined := f.Select(blocked.And(tcp))
	require.Equal(t, 1, chained.Len())
	require.Equal(t, combined.Len(), chained.Len())
	assert.Same(t, combined.At(0), chained.At(0))

	// Selection never touches the source collection.
	assert.Equal(t, 3, f.Len())

	none := f.Select(mc.And(tcp).And(blocked.Not()))
	assert.Equal(t, 0, none.Len())
}

func TestSelectEndToEnd(t *testing.T) {
	f, err := FromReader(strings.NewReader(
		"Jan 1 00:00:00 host kernel: [UFW BLOCK] IN=eth0 OUT= SRC=203.0.113.9 DST=10.0.0.5 PROTO=TCP SPT=443 DPT=25565\n",
	), WithYear(2024))
	require.NoError(t, err)

	hit := f.Select(mustEq(t, query.Dpt, 25565))
	assert.Equal(t, 1, hit.Len())

	miss := f.Select(mustEq(t, query.Dpt, 80))
	assert.Equal(t, 0, miss.Len())
}

func TestMalformedPolicy(t *testing.T) {
	withJunk := "garbage line\n" + sampleLog + "\n"

	// Default is strict: the first bad line aborts construction.
	_, err := FromReader(strings.NewReader(withJunk))
	require.Error(t, err)
	var lineErr *parse.LineError
	assert.ErrorAs(t, err, &lineErr)

	// Skip-and-continue counts what it dropped (the junk line and the
	// trailing empty line).
	f, err := FromReader(strings.NewReader(withJunk), SkipMalformed(), WithYear(2024))
	require.NoError(t, err)
	assert.Equal(t, 3, f.Len())
	assert.Equal(t, uint64(5), f.Stats().Lines())
	assert.Equal(t, uint64(3), f.Stats().Parsed())
	assert.Equal(t, uint64(2), f.Stats().Skipped())
}

func TestOpenMissingSource(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "nope.log"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestOpenGzip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ufw.log.1.gz")

	out, err := os.Create(path)
	require.NoError(t, err)
	zw := gzip.NewWriter(out)
	_, err = zw.Write([]byte(sampleLog))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	require.NoError(t, out.Close())

	f, err := Open(path, WithYear(2024))
	require.NoError(t, err)
	assert.Equal(t, 3, f.Len())
	assert.Equal(t, path, f.Path())
}

func TestScannerWhere(t *testing.T) {
	sc := NewScanner(strings.NewReader(sampleLog), WithYear(2024)).
		Where(mustEq(t, query.Action, "BLOCK")).
		Where(mustEq(t, query.Proto, "TCP"))

	var srcs []string
	for sc.Scan() {
		v, ok := sc.Record().Get("SRC")
		require.True(t, ok)
		srcs = append(srcs, v.Text())
	}
	require.NoError(t, sc.Err())
	assert.Equal(t, []string{"203.0.113.9"}, srcs)
	assert.Equal(t, uint64(3), sc.Stats().Parsed())
}

func TestScannerStopsOnError(t *testing.T) {
	sc := NewScanner(strings.NewReader(sampleLog + "junk\n"))
	n := 0
	for sc.Scan() {
		n++
	}
	assert.Equal(t, 3, n)
	require.Error(t, sc.Err())
}

func TestWriteJSON(t *testing.T) {
	f := sampleFile(t)
	var buf strings.Builder
	require.NoError(t, f.Select(mustEq(t, query.Dpt, 22)).WriteJSON(&buf))
	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "["))
	assert.Contains(t, out, `"DPT":22`)
	assert.Contains(t, out, `"raw_line"`)

	buf.Reset()
	require.NoError(t, f.Select(mustEq(t, query.Dpt, 1)).WriteJSON(&buf))
	assert.Equal(t, "[]\n", buf.String())
}

func TestGlob(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"ufw.log", "ufw.log.1", "ufw.log.2.gz", "syslog"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), nil, 0o644))
	}

	paths, err := Glob(dir, "^ufw")
	require.NoError(t, err)
	assert.Len(t, paths, 3)

	_, err = Glob(dir, "(")
	assert.Error(t, err)
}

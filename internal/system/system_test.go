package system

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindLatest(t *testing.T) {
	dir := t.TempDir()
	older := filepath.Join(dir, "a.yaml")
	newer := filepath.Join(dir, "b.YML")
	require.NoError(t, os.WriteFile(older, nil, 0644))
	require.NoError(t, os.WriteFile(newer, nil, 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "c.txt"), nil, 0644))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "d.yaml"), 0755))

	past := time.Now().Add(-time.Hour)
	require.NoError(t, os.Chtimes(older, past, past))

	got, err := FindLatest(dir, ".yaml", ".yml")
	require.NoError(t, err)
	assert.Equal(t, newer, got, "extensions match case-insensitively")

	_, err = FindLatest(dir, ".svg")
	assert.ErrorContains(t, err, "no .svg files found")

	_, err = FindLatest(filepath.Join(dir, "missing"), ".yaml")
	assert.Error(t, err)
}

func TestBufferPool(t *testing.T) {
	p := NewBufferPool()
	b := p.Get()
	b.WriteString("stale")
	p.Put(b)

	again := p.Get()
	assert.Zero(t, again.Len(), "buffers come back empty")

	big := bytes.NewBuffer(make([]byte, 0, maxPooledBuffer+1))
	p.Put(big)
	p.Put(nil)

	shared := GetBuffer()
	shared.WriteString("x")
	PutBuffer(shared)
}

func TestNewLogger(t *testing.T) {
	var out bytes.Buffer
	log := NewLogger(&out, false)
	log.Debug().Msg("hidden")
	log.Info().Str("animation", "slide").Msg("shown")
	assert.NotContains(t, out.String(), "hidden")
	assert.Contains(t, out.String(), "shown")
	assert.Contains(t, out.String(), "animation=slide")

	out.Reset()
	verbose := NewLogger(&out, true)
	verbose.Debug().Msg("detail")
	assert.Contains(t, out.String(), "detail")
}

func TestStatsReport(t *testing.T) {
	s, err := CollectStats(time.Now().Add(-1500 * time.Millisecond))
	require.NoError(t, err)
	assert.GreaterOrEqual(t, s.Elapsed, 1500*time.Millisecond)

	report := Stats{Elapsed: 2 * time.Second, RSS: 3 << 20, CPUPercent: 12.5, Threads: 7}.String()
	assert.True(t, strings.HasPrefix(report, "--- [PERFORMANCE REPORT] ---"))
	assert.Contains(t, report, "Total Time: 2.00s")
	assert.Contains(t, report, "Memory (RSS): 3.0 MiB")
	assert.Contains(t, report, "Threads: 7")
}

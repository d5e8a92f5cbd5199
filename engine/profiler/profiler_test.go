package profiler

import (
	"bytes"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTickWaitsForInterval(t *testing.T) {
	var buf bytes.Buffer
	p := NewProfiler(WithUpdateInterval(time.Hour), WithLogger(slog.New(slog.NewTextHandler(&buf, nil))))

	assert.False(t, p.Tick(GridStats{}))
	assert.False(t, p.Tick(GridStats{}))
	assert.Empty(t, buf.String())
}

func TestTickLogsGridCounters(t *testing.T) {
	var buf bytes.Buffer
	p := NewProfiler(WithUpdateInterval(0), WithLogger(slog.New(slog.NewTextHandler(&buf, nil))))

	assert.True(t, p.Tick(GridStats{Layers: 2, Uploads: 5, SkippedEncodes: 40}))
	out := buf.String()
	assert.Contains(t, out, "msg=profiler")
	assert.Contains(t, out, "layers=2")
	assert.Contains(t, out, "uploads_per_s=")
	assert.Contains(t, out, "gc=")
}

func TestCounterDelta(t *testing.T) {
	assert.Equal(t, uint64(3), counterDelta(8, 5))
	assert.Equal(t, uint64(0), counterDelta(5, 5))
	// a removed layer drops the sum
	assert.Equal(t, uint64(2), counterDelta(2, 9))
}

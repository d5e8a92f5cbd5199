package profiler

import (
	"log/slog"
	"runtime"
	"time"
)

// GridStats are cumulative grid renderer counters summed over every layer.
type GridStats struct {
	Layers         int
	Uploads        uint64
	SkippedEncodes uint64
}

// Profiler tracks frame rate, grid uniform uploads and memory statistics.
// Outputs one log line per update interval.
type Profiler struct {
	logger         *slog.Logger
	frameCount     int
	lastTime       time.Time
	updateInterval time.Duration
	memStats       runtime.MemStats
	lastGCCount    uint32
	lastTotalAlloc uint64
	lastGrid       GridStats
}

// NewProfiler creates a new Profiler. The update interval defaults to 1 second and output goes to
// slog.Default.
//
// Parameters:
//   - options: functional options to configure the profiler
//
// Returns:
//   - *Profiler: the newly created profiler instance
func NewProfiler(options ...ProfilerBuilderOption) *Profiler {
	p := &Profiler{
		lastTime:       time.Now(),
		updateInterval: time.Second,
	}
	for _, opt := range options {
		opt(p)
	}
	if p.logger == nil {
		p.logger = slog.Default()
	}
	return p
}

// Tick should be called once per rendered frame with the current grid counters.
// Logs performance statistics when the update interval has elapsed: FPS, uniform uploads and
// skipped encodes per second, heap usage, allocation rate, GC count and pause times.
//
// Parameters:
//   - grid: the cumulative grid counters
//
// Returns:
//   - bool: true if stats were logged this tick, false otherwise
func (p *Profiler) Tick(grid GridStats) bool {
	p.frameCount++
	currentTime := time.Now()
	elapsed := currentTime.Sub(p.lastTime)
	if elapsed < p.updateInterval {
		return false
	}
	seconds := max(elapsed.Seconds(), 1e-9)

	runtime.ReadMemStats(&p.memStats)
	allocDelta := p.memStats.TotalAlloc - p.lastTotalAlloc

	// PauseNs is a circular buffer of the last 256 GC pauses
	gcCount := p.memStats.NumGC
	var lastPauseUs, maxPauseUs uint64
	if gcCount > 0 {
		lastPauseUs = p.memStats.PauseNs[(gcCount-1)%256] / 1000
		startIdx := p.lastGCCount
		if gcCount-startIdx > 256 {
			startIdx = gcCount - 256
		}
		for i := startIdx; i < gcCount; i++ {
			maxPauseUs = max(maxPauseUs, p.memStats.PauseNs[i%256]/1000)
		}
	}

	p.logger.Info("profiler",
		"fps", float64(p.frameCount)/seconds,
		"layers", grid.Layers,
		"uploads_per_s", float64(counterDelta(grid.Uploads, p.lastGrid.Uploads))/seconds,
		"skipped_per_s", float64(counterDelta(grid.SkippedEncodes, p.lastGrid.SkippedEncodes))/seconds,
		"heap_mb", float64(p.memStats.Alloc)/1024/1024,
		"alloc_mb_per_s", float64(allocDelta)/1024/1024/seconds,
		"gc", gcCount,
		"gc_last_us", lastPauseUs,
		"gc_max_us", maxPauseUs,
		"sys_mb", float64(p.memStats.Sys)/1024/1024,
	)

	p.frameCount = 0
	p.lastTime = currentTime
	p.lastGCCount = gcCount
	p.lastTotalAlloc = p.memStats.TotalAlloc
	p.lastGrid = grid
	return true
}

// counterDelta tolerates counters that went backwards, as happens when a layer is removed.
func counterDelta(now, last uint64) uint64 {
	if now < last {
		return now
	}
	return now - last
}

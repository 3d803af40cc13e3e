package profiler

import (
	"runtime"
	"time"

	"github.com/Carmen-Shannon/oxy-frames/common"
)

// Stats is one reporting window of frame and memory statistics.
type Stats struct {
	Frames    int
	FPS       float64
	AvgFrame  time.Duration
	MaxFrame  time.Duration
	HeapMB    float64
	AllocRate float64 // MB/s
	GCCount   uint32
	SysMB     float64
}

// Profiler tracks frame rate, frame time and memory statistics for performance monitoring.
// Reports to the package logger at a configurable interval.
type Profiler struct {
	now func() time.Time

	frameCount     int
	frameTotal     time.Duration
	frameMax       time.Duration
	lastTime       time.Time
	updateInterval time.Duration
	memStats       runtime.MemStats
	lastGCCount    uint32
	lastTotalAlloc uint64
	last           Stats
}

// NewProfiler creates a new Profiler. The report interval defaults to 1 second.
//
// Parameters:
//   - options: ProfilerOption functions
//
// Returns:
//   - *Profiler: the newly created profiler instance
func NewProfiler(options ...ProfilerOption) *Profiler {
	p := &Profiler{
		now:            time.Now,
		updateInterval: time.Second,
	}
	for _, opt := range options {
		opt(p)
	}
	p.lastTime = p.now()
	return p
}

// Tick should be called once per frame with the time the frame took. When the interval has
// elapsed it logs FPS, frame times, heap usage, allocation rate and GC count at info level.
//
// Parameters:
//   - frameTime: duration of the frame just completed
//
// Returns:
//   - bool: true if stats were logged this tick, false otherwise
func (p *Profiler) Tick(frameTime time.Duration) bool {
	p.frameCount++
	p.frameTotal += frameTime
	p.frameMax = max(p.frameMax, frameTime)

	currentTime := p.now()
	elapsed := currentTime.Sub(p.lastTime)
	if elapsed < p.updateInterval {
		return false
	}

	runtime.ReadMemStats(&p.memStats)
	allocDelta := p.memStats.TotalAlloc - p.lastTotalAlloc
	p.last = Stats{
		Frames:    p.frameCount,
		FPS:       float64(p.frameCount) / elapsed.Seconds(),
		AvgFrame:  p.frameTotal / time.Duration(p.frameCount),
		MaxFrame:  p.frameMax,
		HeapMB:    float64(p.memStats.Alloc) / 1024 / 1024,
		AllocRate: float64(allocDelta) / 1024 / 1024 / elapsed.Seconds(),
		GCCount:   p.memStats.NumGC - p.lastGCCount,
		SysMB:     float64(p.memStats.Sys) / 1024 / 1024,
	}

	common.Logger().Info("profiler",
		"fps", p.last.FPS,
		"avg_frame", p.last.AvgFrame,
		"max_frame", p.last.MaxFrame,
		"heap_mb", p.last.HeapMB,
		"alloc_mb_s", p.last.AllocRate,
		"gc", p.last.GCCount,
		"sys_mb", p.last.SysMB,
	)

	p.frameCount = 0
	p.frameTotal = 0
	p.frameMax = 0
	p.lastTime = currentTime
	p.lastGCCount = p.memStats.NumGC
	p.lastTotalAlloc = p.memStats.TotalAlloc
	return true
}

// Last returns the statistics of the most recent report.
//
// Returns:
//   - Stats: the last report, zero before the first one
func (p *Profiler) Last() Stats {
	return p.last
}

package engine

import (
	"math"
	"time"

	"github.com/tphakala/go-audio-filter/internal/filter"
	"github.com/tphakala/go-audio-filter/internal/simdops"
)

// Metrics accumulates block engine performance counters.
type Metrics struct {
	SamplesProcessed int64
	Blocks           int64
	ProcessingTime   time.Duration

	// AudioTime is the real-time duration of the processed audio.
	AudioTime time.Duration

	// OutputRMS is the level of the most recent block.
	OutputRMS float64
}

// Throughput returns samples processed per second of processing time.
func (m Metrics) Throughput() float64 {
	if m.ProcessingTime <= 0 {
		return 0
	}
	return float64(m.SamplesProcessed) / m.ProcessingTime.Seconds()
}

// CPUUsage returns processing time as a percentage of audio time.
func (m Metrics) CPUUsage() float64 {
	if m.AudioTime <= 0 {
		return 0
	}
	return 100 * m.ProcessingTime.Seconds() / m.AudioTime.Seconds()
}

func (e *HighPerformance[F]) record(buf []F, samples int, elapsed time.Duration) {
	e.metrics.SamplesProcessed += int64(samples)
	e.metrics.Blocks++
	e.metrics.ProcessingTime += elapsed
	e.metrics.AudioTime += time.Duration(float64(len(buf)) / e.sampleRate * float64(time.Second))
	if len(buf) > 0 {
		energy := float64(e.ops.DotProductUnsafe(buf, buf))
		e.metrics.OutputRMS = math.Sqrt(energy / float64(len(buf)))
	}
}

// Metrics returns a copy of the performance counters.
func (e *HighPerformance[F]) Metrics() Metrics {
	return e.metrics
}

// ResetMetrics clears the performance counters.
func (e *HighPerformance[F]) ResetMetrics() {
	e.metrics = Metrics{}
}

// Preset names a PerformanceConfig tuned for a use case.
type Preset int

const (
	// Minimal uses small scalar blocks.
	Minimal Preset = iota
	// Balanced uses medium vector blocks with smoothing.
	Balanced
	// Aggressive uses large vector blocks without smoothing.
	Aggressive
	// UltraLowLatency uses tiny vector blocks.
	UltraLowLatency
)

// Presets lists every performance preset.
var Presets = []Preset{Minimal, Balanced, Aggressive, UltraLowLatency}

func (p Preset) String() string {
	switch p {
	case Minimal:
		return "minimal"
	case Balanced:
		return "balanced"
	case Aggressive:
		return "aggressive"
	case UltraLowLatency:
		return "ultra-low-latency"
	default:
		return "unknown"
	}
}

// Config returns the PerformanceConfig for p.
func (p Preset) Config() PerformanceConfig {
	switch p {
	case Minimal:
		return PerformanceConfig{BlockSize: 64}
	case Aggressive:
		return PerformanceConfig{BlockSize: 1024, EnableSIMD: true}
	case UltraLowLatency:
		return PerformanceConfig{BlockSize: 16, EnableSIMD: true}
	default:
		return PerformanceConfig{BlockSize: 256, EnableSIMD: true, EnableSmoothing: true}
	}
}

// BenchmarkResult reports one preset's measured performance.
type BenchmarkResult struct {
	Preset     Preset
	Config     PerformanceConfig
	Samples    int64
	Throughput float64
	CPUUsage   float64
}

// Benchmark runs every preset over the same test signal filtered by c and
// reports throughput and CPU usage.
func Benchmark[F simdops.Float](c filter.Coefficients, sampleRate float64, samples int) ([]BenchmarkResult, error) {
	signal := make([]F, samples)
	for i := range signal {
		signal[i] = F(math.Sin(2 * math.Pi * 440 * float64(i) / sampleRate))
	}
	work := make([]F, samples)

	results := make([]BenchmarkResult, 0, len(Presets))
	for _, p := range Presets {
		e, err := NewHighPerformance[F](sampleRate, p.Config())
		if err != nil {
			return nil, err
		}
		e.SetCoefficients(c)

		copy(work, signal)
		for start := 0; start < len(work); start += e.cfg.BlockSize {
			end := min(start+e.cfg.BlockSize, len(work))
			e.ProcessBuffer(work[start:end])
		}

		m := e.Metrics()
		results = append(results, BenchmarkResult{
			Preset:     p,
			Config:     e.cfg,
			Samples:    m.SamplesProcessed,
			Throughput: m.Throughput(),
			CPUUsage:   m.CPUUsage(),
		})
	}
	return results, nil
}

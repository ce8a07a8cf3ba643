package engine

import (
	"fmt"
	"math"
	"time"

	"github.com/tphakala/go-audio-filter/internal/filter"
	"github.com/tphakala/go-audio-filter/internal/simdops"
)

// PerformanceConfig tunes the block engine.
type PerformanceConfig struct {
	// BlockSize is the largest block processed in one vector pass. Longer
	// buffers are split.
	BlockSize int

	// EnableSIMD selects the vector path for blocks of 4 or more samples.
	EnableSIMD bool

	// EnableSmoothing eases staged coefficients in over several refreshes
	// instead of switching at the next boundary.
	EnableSmoothing bool
}

// Validate checks the configuration.
func (c PerformanceConfig) Validate() error {
	if c.BlockSize < 1 {
		return fmt.Errorf("block size must be positive: %d", c.BlockSize)
	}
	return nil
}

type channelState[F simdops.Float] struct {
	x1, x2 F
	y1, y2 F
}

// HighPerformance is a stereo biquad engine with a SIMD feed-forward path.
//
// Type parameter F must be float32 or float64, controlling the precision
// of internal processing.
//
// The feed-forward half of the difference equation is computed with
// ConvolveValid over the block prefixed by two history samples; the
// recursive half then runs four samples per loop iteration.
type HighPerformance[F simdops.Float] struct {
	cfg        PerformanceConfig
	sampleRate float64
	ops        *simdops.Ops[F]

	coeffs     filter.Coefficients
	target     filter.Coefficients
	hasPending bool
	counter    int

	// Typed copies of coeffs for the hot path.
	kernel [3]F
	a1, a2 F

	channels [2]channelState[F]

	scratch []F // history + block
	ff      []F // feed-forward output

	metrics Metrics
}

// NewHighPerformance creates a block engine for the given sample rate.
func NewHighPerformance[F simdops.Float](sampleRate float64, cfg PerformanceConfig) (*HighPerformance[F], error) {
	if sampleRate <= 0 {
		return nil, fmt.Errorf("sample rate must be positive: %f", sampleRate)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	e := &HighPerformance[F]{
		cfg:        cfg,
		sampleRate: sampleRate,
		ops:        simdops.For[F](),
		scratch:    make([]F, cfg.BlockSize+biquadHistory),
		ff:         make([]F, cfg.BlockSize),
	}
	e.apply(filter.Identity())
	return e, nil
}

// Config returns the engine configuration.
func (e *HighPerformance[F]) Config() PerformanceConfig {
	return e.cfg
}

// SetCoefficients switches coefficients immediately, bypassing the
// refresh throttle.
func (e *HighPerformance[F]) SetCoefficients(c filter.Coefficients) {
	e.target = c
	e.hasPending = false
	e.apply(c)
}

// SetTarget stages c to be applied at the next UpdateInterval boundary.
func (e *HighPerformance[F]) SetTarget(c filter.Coefficients) {
	e.target = c
	e.hasPending = true
}

// Coefficients returns the coefficients currently in use.
func (e *HighPerformance[F]) Coefficients() filter.Coefficients {
	return e.coeffs
}

func (e *HighPerformance[F]) apply(c filter.Coefficients) {
	e.coeffs = c
	e.kernel = simdops.BiquadKernel[F](c.B0, c.B1, c.B2)
	e.a1 = F(c.A1)
	e.a2 = F(c.A2)
}

// refresh applies staged coefficients. Called at each interval boundary.
func (e *HighPerformance[F]) refresh() {
	if !e.hasPending {
		return
	}
	if !e.cfg.EnableSmoothing {
		e.apply(e.target)
		e.hasPending = false
		return
	}

	next := filter.Lerp(e.coeffs, e.target, smoothingFactor)
	if coefficientDistance(next, e.target) < smoothingTolerance {
		next = e.target
		e.hasPending = false
	}
	e.apply(next)
}

func coefficientDistance(a, b filter.Coefficients) float64 {
	ta, tb := a.Terms(), b.Terms()
	var d float64
	for i := range ta {
		d = max(d, math.Abs(ta[i]-tb[i]))
	}
	return d
}

// ProcessSample filters one sample on channel 0 with the scalar path.
func (e *HighPerformance[F]) ProcessSample(x F) F {
	if e.counter == 0 {
		e.refresh()
	}
	y := e.scalar(&e.channels[0], x)
	e.advance(1)
	e.metrics.SamplesProcessed++
	return y
}

// ProcessBuffer filters buf in place on channel 0.
func (e *HighPerformance[F]) ProcessBuffer(buf []F) {
	start := time.Now()
	e.process(buf, nil)
	e.record(buf, len(buf), time.Since(start))
}

// ProcessStereoBuffer filters left and right in place with independent
// channel state. Both slices must have the same length.
func (e *HighPerformance[F]) ProcessStereoBuffer(left, right []F) error {
	if len(left) != len(right) {
		return fmt.Errorf("channel length mismatch: left=%d right=%d", len(left), len(right))
	}
	start := time.Now()
	e.process(left, right)
	e.record(left, 2*len(left), time.Since(start))
	return nil
}

// process walks the buffers in chunks that never cross a refresh boundary
// or exceed the block size.
func (e *HighPerformance[F]) process(left, right []F) {
	for pos := 0; pos < len(left); {
		if e.counter == 0 {
			e.refresh()
		}
		n := min(len(left)-pos, UpdateInterval-e.counter, e.cfg.BlockSize)

		e.processChunk(&e.channels[0], left[pos:pos+n])
		if right != nil {
			e.processChunk(&e.channels[1], right[pos:pos+n])
		}

		e.advance(n)
		pos += n
	}
}

func (e *HighPerformance[F]) advance(n int) {
	e.counter += n
	if e.counter >= UpdateInterval {
		e.counter = 0
	}
}

func (e *HighPerformance[F]) processChunk(ch *channelState[F], buf []F) {
	if e.cfg.EnableSIMD && len(buf) >= minVectorBlock {
		e.vector(ch, buf)
	} else {
		for i, x := range buf {
			buf[i] = e.scalar(ch, x)
		}
	}

	if !finiteState(ch) {
		*ch = channelState[F]{}
		clear(buf)
	}
}

func (e *HighPerformance[F]) scalar(ch *channelState[F], x F) F {
	k := &e.kernel
	y := k[2]*x + k[1]*ch.x1 + k[0]*ch.x2 - e.a1*ch.y1 - e.a2*ch.y2
	ch.x2, ch.x1 = ch.x1, x
	ch.y2, ch.y1 = ch.y1, y
	return y
}

func (e *HighPerformance[F]) vector(ch *channelState[F], buf []F) {
	n := len(buf)
	sig := e.scratch[:n+biquadHistory]
	sig[0], sig[1] = ch.x2, ch.x1
	copy(sig[biquadHistory:], buf)

	ff := e.ff[:n]
	e.ops.ConvolveValid(ff, sig, e.kernel[:])

	a1, a2 := e.a1, e.a2
	y1, y2 := ch.y1, ch.y2

	i := 0
	for ; i+unrollLanes <= n; i += unrollLanes {
		y0 := ff[i] - a1*y1 - a2*y2
		yA := ff[i+1] - a1*y0 - a2*y1
		yB := ff[i+2] - a1*yA - a2*y0
		yC := ff[i+3] - a1*yB - a2*yA
		buf[i], buf[i+1], buf[i+2], buf[i+3] = y0, yA, yB, yC
		y2, y1 = yB, yC
	}
	for ; i < n; i++ {
		y := ff[i] - a1*y1 - a2*y2
		buf[i] = y
		y2, y1 = y1, y
	}

	ch.y1, ch.y2 = y1, y2
	ch.x1, ch.x2 = sig[n+1], sig[n]
}

func finiteState[F simdops.Float](ch *channelState[F]) bool {
	for _, v := range [4]F{ch.x1, ch.x2, ch.y1, ch.y2} {
		if f := float64(v); math.IsNaN(f) || math.IsInf(f, 0) {
			return false
		}
	}
	return true
}

// Reset zeroes both channels and the refresh counter. Metrics are kept.
func (e *HighPerformance[F]) Reset() {
	e.channels = [2]channelState[F]{}
	e.counter = 0
}

// State returns the delay registers of channel ch as float64.
func (e *HighPerformance[F]) State(ch int) BiquadState {
	s := e.channels[ch]
	return BiquadState{X1: float64(s.x1), X2: float64(s.x2), Y1: float64(s.y1), Y2: float64(s.y2)}
}

// SetState restores the delay registers of channel ch.
func (e *HighPerformance[F]) SetState(ch int, s BiquadState) error {
	if !s.IsFinite() {
		return ErrNonFiniteState
	}
	e.channels[ch] = channelState[F]{x1: F(s.X1), x2: F(s.X2), y1: F(s.Y1), y2: F(s.Y2)}
	return nil
}

// GetMemoryUsage returns approximate memory usage of the block buffers in
// bytes.
func (e *HighPerformance[F]) GetMemoryUsage() int64 {
	var zero F
	bytesPerElement := int64(bytesPerFloat32)
	if _, ok := any(zero).(float64); ok {
		bytesPerElement = bytesPerFloat64
	}
	return int64(cap(e.scratch)+cap(e.ff)) * bytesPerElement
}

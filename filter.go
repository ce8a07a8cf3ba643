package audiofilter

import (
	"fmt"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-audio/audio"

	"github.com/tphakala/go-audio-filter/internal/engine"
	"github.com/tphakala/go-audio-filter/internal/filter"
	"github.com/tphakala/go-audio-filter/internal/morph"
	"github.com/tphakala/go-audio-filter/internal/pipeline"
	"github.com/tphakala/go-audio-filter/internal/resonance"
	"github.com/tphakala/go-audio-filter/internal/simdops"
	"github.com/tphakala/go-audio-filter/internal/tracking"
)

// Metrics are the processing counters of a Filter.
type Metrics = engine.Metrics

// Filter is a multichannel real-time filter.
//
// One goroutine (the audio thread) calls Process and the other
// processing, status and state methods. One other goroutine (the control
// thread) may call SetParameter, LoadParameters and the MIDI methods
// concurrently; their updates reach the audio thread through a lock-free
// queue and take effect at the start of the next Process call.
type Filter struct {
	cfg Config

	active       atomic.Bool
	resetPending atomic.Bool

	// Control side.
	queue     *pipeline.ParamQueue
	requested [numParams]float64

	// Audio side.
	params   [numParams]float64
	tracker  *tracking.Engine
	morpher  *morph.Engine
	channels []channel

	schedule []chunk
	frames   []controlFrame
	current  controlFrame
	primed   bool
	phase    int

	planar [][]float64
	view   [][]float64
	ops    *simdops.Ops64

	metrics Metrics
	wg      sync.WaitGroup
}

// chunk is a run of samples between refresh boundaries. frame is the
// index into Filter.frames applied before the run, or -1.
type chunk struct {
	start, end int
	frame      int
}

// New creates a filter with the given configuration.
func New(config *Config) (*Filter, error) {
	if config == nil {
		return nil, fmt.Errorf("%w: config is nil", ErrInvalidConfig)
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}

	cfg := *config
	if cfg.Ladder.Oversampling == 0 {
		cfg.Ladder.Oversampling = 1
	}
	if cfg.Tracking.ReferenceNote == 0 {
		cfg.Tracking.ReferenceNote = tracking.DefaultReferenceNote
	}
	if cfg.MaxBlockFrames == 0 {
		cfg.MaxBlockFrames = defaultBlockFrames
	}

	channels, err := newChannels(&cfg)
	if err != nil {
		return nil, err
	}

	f := &Filter{
		cfg:       cfg,
		queue:     pipeline.NewParamQueue(pipeline.DefaultQueueCapacity),
		requested: defaultParams(),
		params:    defaultParams(),
		tracker:   newTracker(&cfg),
		morpher:   newMorpher(&cfg),
		channels:  channels,
		planar:    make([][]float64, cfg.Channels),
		view:      make([][]float64, cfg.Channels),
		ops:       simdops.Float64Ops(),
	}
	for ch := range f.planar {
		f.planar[ch] = make([]float64, cfg.MaxBlockFrames)
	}
	f.active.Store(true)

	return f, nil
}

func newTracker(cfg *Config) *tracking.Engine {
	tc := tracking.DefaultConfig()
	tc.SampleRate = cfg.SampleRate
	tc.ReferenceNote = cfg.Tracking.ReferenceNote
	tc.Curve = cfg.Tracking.Curve
	tc.Amount = 0
	tc.VelocitySensitivity = cfg.Tracking.VelocitySensitivity
	tc.Portamento = cfg.Tracking.Portamento
	if cfg.Tracking.GlideTime > 0 {
		tc.GlideTime = cfg.Tracking.GlideTime
	}
	return tracking.NewEngine(tc)
}

func newMorpher(cfg *Config) *morph.Engine {
	mc := morph.DefaultConfig()
	mc.Mode = cfg.MorphMode
	mc.UpdateRate = cfg.SampleRate / engine.UpdateInterval
	return morph.NewEngine(mc)
}

// Config returns the active configuration with defaults filled in.
func (f *Filter) Config() Config {
	return f.cfg
}

// Process filters an interleaved buffer in place. The buffer must carry
// the configured channel count, a whole number of frames and, when set,
// the configured sample rate. Shape errors are returned before any state
// changes.
func (f *Filter) Process(buf *audio.FloatBuffer) error {
	if buf == nil || buf.Format == nil {
		return fmt.Errorf("%w: buffer or format is nil", ErrInvalidBuffer)
	}
	if buf.Format.NumChannels != f.cfg.Channels {
		return fmt.Errorf("%w: buffer has %d channels, filter has %d",
			ErrInvalidBuffer, buf.Format.NumChannels, f.cfg.Channels)
	}
	if buf.Format.SampleRate != 0 && float64(buf.Format.SampleRate) != f.cfg.SampleRate {
		return fmt.Errorf("%w: buffer sample rate %d Hz, filter runs at %v Hz",
			ErrInvalidBuffer, buf.Format.SampleRate, f.cfg.SampleRate)
	}
	if len(buf.Data)%f.cfg.Channels != 0 {
		return fmt.Errorf("%w: %d samples is not a whole number of %d-channel frames",
			ErrInvalidBuffer, len(buf.Data), f.cfg.Channels)
	}

	f.processInterleaved(buf.Data)
	return nil
}

// ProcessInterleaved filters interleaved samples in place.
func (f *Filter) ProcessInterleaved(data []float64) error {
	if len(data)%f.cfg.Channels != 0 {
		return fmt.Errorf("%w: %d samples is not a whole number of %d-channel frames",
			ErrInvalidBuffer, len(data), f.cfg.Channels)
	}
	f.processInterleaved(data)
	return nil
}

// ProcessMono filters a single-channel buffer in place.
func (f *Filter) ProcessMono(buf []float64) error {
	if f.cfg.Channels != monoChannels {
		return fmt.Errorf("%w: mono buffer for a %d-channel filter", ErrInvalidBuffer, f.cfg.Channels)
	}
	f.view[0] = buf
	f.processPlanar(f.view, len(buf))
	f.view[0] = nil
	return nil
}

// ProcessStereo filters two channel buffers of equal length in place.
func (f *Filter) ProcessStereo(left, right []float64) error {
	if f.cfg.Channels != stereoChannels {
		return fmt.Errorf("%w: stereo buffers for a %d-channel filter", ErrInvalidBuffer, f.cfg.Channels)
	}
	if len(left) != len(right) {
		return fmt.Errorf("%w: channel lengths differ: %d vs %d", ErrInvalidBuffer, len(left), len(right))
	}
	f.view[0], f.view[1] = left, right
	f.processPlanar(f.view, len(left))
	f.view[0], f.view[1] = nil, nil
	return nil
}

func (f *Filter) processInterleaved(data []float64) {
	nch := f.cfg.Channels
	total := len(data) / nch

	if nch == monoChannels {
		f.view[0] = data
		f.processPlanar(f.view, total)
		f.view[0] = nil
		return
	}

	for pos := 0; pos < total; pos += f.cfg.MaxBlockFrames {
		n := min(total-pos, f.cfg.MaxBlockFrames)
		seg := data[pos*nch : (pos+n)*nch]

		for ch := range nch {
			dst := f.planar[ch][:n]
			for i := range dst {
				dst[i] = seg[i*nch+ch]
			}
			f.view[ch] = dst
		}

		f.processPlanar(f.view, n)

		if nch == stereoChannels {
			f.ops.Interleave2(seg, f.view[0], f.view[1])
			continue
		}
		for ch := range nch {
			for i, v := range f.view[ch] {
				seg[i*nch+ch] = v
			}
		}
	}
}

// processPlanar runs one pass over per-channel buffers of frames samples.
func (f *Filter) processPlanar(bufs [][]float64, frames int) {
	f.drain()

	if f.resetPending.Swap(false) {
		f.resetState()
	}
	if !f.active.Load() || frames == 0 {
		return
	}

	start := time.Now()
	f.plan(frames)

	if f.cfg.EnableParallel && len(f.channels) > 1 {
		for ch := range f.channels {
			f.wg.Go(func() {
				f.runChannel(ch, bufs[ch])
			})
		}
		f.wg.Wait()
	} else {
		for ch := range f.channels {
			f.runChannel(ch, bufs[ch])
		}
	}

	f.record(bufs[0][:frames], frames, time.Since(start))
}

// plan splits a pass at refresh boundaries and computes the control frame
// of every boundary it crosses.
func (f *Filter) plan(frames int) {
	f.schedule = f.schedule[:0]
	f.frames = f.frames[:0]

	for pos := 0; pos < frames; {
		n := min(frames-pos, engine.UpdateInterval-f.phase)
		idx := -1
		if f.phase == 0 {
			f.frames = append(f.frames, f.nextFrame())
			idx = len(f.frames) - 1
		}
		f.schedule = append(f.schedule, chunk{start: pos, end: pos + n, frame: idx})
		f.phase = (f.phase + n) % engine.UpdateInterval
		pos += n
	}
}

// runChannel processes one channel through the planned schedule. Only
// state owned by channel ch is written.
func (f *Filter) runChannel(ch int, buf []float64) {
	c := &f.channels[ch]
	res := f.resonanceParameters()
	for _, s := range f.schedule {
		if s.frame >= 0 {
			c.apply(&f.frames[s.frame], res, f.cfg.Resonance.Curve)
		}
		c.chain.Process(buf[s.start:s.end])
	}
}

// nextFrame advances the control state by one refresh interval.
func (f *Filter) nextFrame() controlFrame {
	f.tracker.SetAmount(f.params[ParamTracking])
	cutoff := f.tracker.Advance(f.params[ParamCutoff], engine.UpdateInterval)

	fr := controlFrame{
		cutoff:    cutoff,
		resonance: f.params[ParamResonance],
		drive:     f.params[ParamDrive],
		morph:     f.params[ParamMorph],
		immediate: !f.primed,
	}
	if f.cfg.Topology == Biquad {
		fr.coeffs = f.design(cutoff, true)
	}

	f.primed = true
	f.current = fr
	return fr
}

// design computes biquad coefficients for the current parameters. With
// advance false the morph smoother is left untouched.
func (f *Filter) design(cutoff float64, advance bool) filter.Coefficients {
	fc := filter.Config{
		SampleRate:  f.cfg.SampleRate,
		Cutoff:      cutoff,
		Resonance:   f.params[ParamResonance],
		GainDB:      f.params[ParamGain],
		KeyTracking: f.params[ParamTracking],
		MorphAmount: f.params[ParamMorph],
	}

	if !f.cfg.Morphing {
		return filter.Calculate(f.cfg.Type, fc)
	}

	p := morph.Parameters{
		Position:        f.params[ParamMorph],
		Shape:           f.params[ParamMorphShape],
		StabilityFactor: 1,
		BypassAmount:    f.params[ParamMorphBypass],
	}
	if advance {
		return f.morpher.Process(fc, p)
	}
	return f.morpher.Target(fc, p)
}

// resonanceParameters scales the resonance stage by the velocity of the
// held note. Without a held note the velocity is full scale.
func (f *Filter) resonanceParameters() resonance.Parameters {
	velocity := 1.0
	if info := f.tracker.Info(); info.NoteActive {
		velocity = float64(info.Velocity) / maxMIDIValue
	}
	return resonance.Parameters{
		Amount:                f.params[ParamResonance],
		Modulation:            f.params[ParamModulation],
		KeyTracking:           math.Abs(f.params[ParamTracking]) / maxTrack,
		Velocity:              velocity,
		FrequencyCompensation: f.cfg.Resonance.FrequencyCompensation,
	}
}

func (f *Filter) record(out []float64, frames int, elapsed time.Duration) {
	var sum float64
	for _, v := range out {
		sum += v * v
	}

	f.metrics.SamplesProcessed += int64(frames * f.cfg.Channels)
	f.metrics.Blocks++
	f.metrics.ProcessingTime += elapsed
	f.metrics.AudioTime += time.Duration(float64(frames) / f.cfg.SampleRate * float64(time.Second))
	f.metrics.OutputRMS = math.Sqrt(sum / float64(len(out)))
}

// Metrics returns the processing counters.
func (f *Filter) Metrics() Metrics {
	return f.metrics
}

// ResetMetrics zeroes the processing counters.
func (f *Filter) ResetMetrics() {
	f.metrics = Metrics{}
	for i := range f.channels {
		if b := f.channels[i].biquad; b != nil {
			b.ResetMetrics()
		}
	}
}

// Reset clears all filter state: channel histories, the tracked note,
// glide and morph smoothing. Parameters are kept.
func (f *Filter) Reset() {
	f.drain()
	f.resetPending.Store(false)
	f.resetState()
}

func (f *Filter) resetState() {
	for i := range f.channels {
		f.channels[i].chain.Reset()
	}
	f.tracker.Reset()
	f.morpher.Reset()
	f.phase = 0
	f.primed = false
}

// SetActive enables or bypasses processing. A bypassed filter leaves
// buffers untouched. Re-activating clears the filter state before the next
// block so stale history is not replayed. Safe to call from any goroutine.
func (f *Filter) SetActive(active bool) {
	if f.active.Swap(active) != active && active {
		f.resetPending.Store(true)
	}
}

// IsActive reports whether processing is enabled.
func (f *Filter) IsActive() bool {
	return f.active.Load()
}

// GetMemoryUsage returns the approximate memory held by the filter in
// bytes.
func (f *Filter) GetMemoryUsage() int64 {
	total := int64(f.cfg.Channels * f.cfg.MaxBlockFrames * bytesPerFloat64)
	for i := range f.channels {
		total += f.channels[i].chain.GetMemoryUsage()
	}
	return total
}

// drain applies queued control updates on the audio thread.
func (f *Filter) drain() {
	f.queue.Drain(f.applyUpdate)
}

func (f *Filter) applyUpdate(u pipeline.ParamUpdate) {
	if u.ID >= 0 && u.ID < int(numParams) {
		f.params[u.ID] = u.Value
		return
	}
	f.applyEvent(u)
}

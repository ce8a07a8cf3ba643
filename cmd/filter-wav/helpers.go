package main

import (
	"fmt"
	"log"
	"math"
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"

	audiofilter "github.com/tphakala/go-audio-filter"
)

// wavInputInfo holds validated input file information.
type wavInputInfo struct {
	file        *os.File
	decoder     *wav.Decoder
	rate        int
	channels    int
	bitDepth    int
	totalFrames int64
	format      *audio.Format
}

// openWAVInput opens and validates a WAV file, returning format information.
func openWAVInput(path string, verbose bool) (*wavInputInfo, error) {
	inputFile, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open input file: %w", err)
	}

	decoder := wav.NewDecoder(inputFile)
	if !decoder.IsValidFile() {
		_ = inputFile.Close()
		return nil, fmt.Errorf("invalid WAV file: %s", path)
	}

	format := decoder.Format()
	bitDepth := int(decoder.BitDepth)

	if verbose {
		log.Printf("Input format: %d Hz, %d channels, %d-bit", format.SampleRate, format.NumChannels, bitDepth)
	}

	// Duration is only used for progress reporting.
	duration, err := decoder.Duration()
	if err != nil {
		duration = 0
	}

	return &wavInputInfo{
		file:        inputFile,
		decoder:     decoder,
		rate:        format.SampleRate,
		channels:    format.NumChannels,
		bitDepth:    bitDepth,
		totalFrames: int64(duration.Seconds() * float64(format.SampleRate)),
		format:      format,
	}, nil
}

// Close closes the input file.
func (w *wavInputInfo) Close() error {
	return w.file.Close()
}

// wavOutputWriter wraps the output file and its encoder.
type wavOutputWriter struct {
	file    *os.File
	encoder *wav.Encoder
}

// createWAVOutput creates the output file and a PCM encoder.
func createWAVOutput(path string, sampleRate, bitDepth, channels int) (*wavOutputWriter, error) {
	outputFile, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create output file: %w", err)
	}

	return &wavOutputWriter{
		file:    outputFile,
		encoder: wav.NewEncoder(outputFile, sampleRate, bitDepth, channels, wavFormatPCM),
	}, nil
}

// Write encodes one buffer of samples.
func (w *wavOutputWriter) Write(buf *audio.IntBuffer) error {
	return w.encoder.Write(buf)
}

// Close finalizes the WAV header and closes the file.
func (w *wavOutputWriter) Close() error {
	if err := w.encoder.Close(); err != nil {
		_ = w.file.Close()
		return err
	}
	return w.file.Close()
}

// getMaxValue returns the maximum sample value for the given bit depth.
func getMaxValue(bitDepth int) float64 {
	switch bitDepth {
	case bitsPerSample8:
		return maxInt8
	case bitsPerSample16:
		return maxInt16
	case bitsPerSample24:
		return maxInt24
	case bitsPerSample32:
		return maxInt32
	default:
		return maxInt16
	}
}

// filterBuffers holds the preallocated buffers of the processing loop.
type filterBuffers struct {
	intBuffer   *audio.IntBuffer
	floatBuffer *audio.FloatBuffer
	invMaxVal   float64
	maxVal      float64
}

// newFilterBuffers preallocates an integer and a float buffer of
// bufferFrames frames.
func newFilterBuffers(channels, bitDepth int, format *audio.Format) *filterBuffers {
	maxVal := getMaxValue(bitDepth)
	return &filterBuffers{
		intBuffer: &audio.IntBuffer{
			Data:           make([]int, bufferFrames*channels),
			Format:         format,
			SourceBitDepth: bitDepth,
		},
		floatBuffer: &audio.FloatBuffer{
			Data:   make([]float64, bufferFrames*channels),
			Format: format,
		},
		invMaxVal: 1.0 / maxVal,
		maxVal:    maxVal,
	}
}

// toFloat normalizes the first n samples of the integer buffer into the
// float buffer.
func (b *filterBuffers) toFloat(n int) {
	b.floatBuffer.Data = b.floatBuffer.Data[:n]
	for i, v := range b.intBuffer.Data[:n] {
		b.floatBuffer.Data[i] = float64(v) * b.invMaxVal
	}
}

// toInt converts the float buffer back to integers, clamping to full
// scale.
func (b *filterBuffers) toInt() {
	n := len(b.floatBuffer.Data)
	b.intBuffer.Data = b.intBuffer.Data[:n]
	for i, v := range b.floatBuffer.Data {
		v = math.Max(-1, math.Min(1, v))
		b.intBuffer.Data[i] = int(math.Round(v * b.maxVal))
	}
}

// reset restores both buffers to full capacity for the next read.
func (b *filterBuffers) reset() {
	b.intBuffer.Data = b.intBuffer.Data[:cap(b.intBuffer.Data)]
	b.floatBuffer.Data = b.floatBuffer.Data[:cap(b.floatBuffer.Data)]
}

// progressTracker handles progress reporting.
type progressTracker struct {
	totalFrames  int64
	lastProgress int
	verbose      bool
}

// newProgressTracker creates a new progress tracker.
func newProgressTracker(totalFrames int64, verbose bool) *progressTracker {
	return &progressTracker{
		totalFrames: totalFrames,
		verbose:     verbose,
	}
}

// fraction returns the processed share in [0, 1], or 0 when the length
// is unknown.
func (p *progressTracker) fraction(currentFrames int64) float64 {
	if p.totalFrames == 0 {
		return 0
	}
	return math.Min(1, float64(currentFrames)/float64(p.totalFrames))
}

// reportIfNeeded reports progress if threshold crossed.
func (p *progressTracker) reportIfNeeded(currentFrames int64) {
	if !p.verbose || p.totalFrames == 0 {
		return
	}

	progress := int(p.fraction(currentFrames) * percentScale)
	if progress >= p.lastProgress+progressInterval {
		log.Printf("Progress: %d%%", progress)
		p.lastProgress = progress
	}
}

// filterOptions are the parsed command-line settings.
type filterOptions struct {
	topology   string
	filterType string
	morphMode  string
	preset     string
	curve      string
	cutoff     float64
	sweepTo    float64
	resonance  float64
	drive      float64
	morph      float64
	gain       float64
	oversample int
	resonator  bool
	selfOsc    bool
	fast       bool
	parallel   bool
}

// buildConfig turns options into a validated filter configuration.
func buildConfig(opts *filterOptions, sampleRate, channels int) (*audiofilter.Config, error) {
	cfg := audiofilter.DefaultConfig()
	cfg.SampleRate = float64(sampleRate)
	cfg.Channels = channels
	cfg.Float32 = opts.fast
	cfg.EnableParallel = opts.parallel
	cfg.Ladder.Oversampling = opts.oversample
	cfg.Resonance.Enabled = opts.resonator
	cfg.Resonance.SelfOscillation = opts.selfOsc

	var err error
	if cfg.Topology, err = audiofilter.ParseTopology(opts.topology); err != nil {
		return nil, err
	}
	if opts.morphMode != "" {
		cfg.Morphing = true
		if cfg.MorphMode, err = audiofilter.ParseMorphMode(opts.morphMode); err != nil {
			return nil, err
		}
	}
	if cfg.Type, err = audiofilter.ParseFilterType(opts.filterType); err != nil {
		return nil, err
	}
	if cfg.Performance, err = audiofilter.ParsePerformancePreset(opts.preset); err != nil {
		return nil, err
	}
	curve, err := audiofilter.ParseSaturationCurve(opts.curve)
	if err != nil {
		return nil, err
	}
	cfg.Resonance.Curve = curve
	cfg.Ladder.Curve = curve

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// parameterMap returns the initial filter parameters.
func parameterMap(opts *filterOptions) map[string]float64 {
	return map[string]float64{
		audiofilter.ParamCutoff.String():    opts.cutoff,
		audiofilter.ParamResonance.String(): opts.resonance,
		audiofilter.ParamDrive.String():     opts.drive,
		audiofilter.ParamMorph.String():     opts.morph,
		audiofilter.ParamGain.String():      opts.gain,
	}
}

// sweepCutoff returns the cutoff at position x in [0, 1] of a logarithmic
// sweep from start to end.
func sweepCutoff(start, end, x float64) float64 {
	return math.Exp(math.Log(start) + (math.Log(end)-math.Log(start))*x)
}

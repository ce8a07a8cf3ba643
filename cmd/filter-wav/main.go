// Command filter-wav runs WAV audio files through the real-time filter.
//
// Usage:
//
//	filter-wav -cutoff 800 -resonance 0.5 input.wav output.wav
//	filter-wav -topology ladder -drive 4 -oversample 4 input.wav output.wav
//	filter-wav -morph-mode lp-bp-hp -morph 0.5 input.wav output.wav
//	filter-wav -cutoff 200 -sweep-to 8000 input.wav sweep.wav   # logarithmic cutoff sweep
//	filter-wav -fast input.wav output.wav                       # float32 block engine
//
// Parallel processing is enabled by default for stereo and multichannel
// files.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"runtime/pprof"
	"time"

	audiofilter "github.com/tphakala/go-audio-filter"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	var opts filterOptions
	flag.StringVar(&opts.topology, "topology", defaultTopology, "Filter topology: biquad, svf, ladder")
	flag.StringVar(&opts.filterType, "type", defaultType, "Biquad response: lowpass, highpass, bandpass, notch, lowshelf, highshelf, peak, allpass")
	flag.StringVar(&opts.morphMode, "morph-mode", "", "Morph the biquad through lp-bp-hp, lp-hp, bp-notch, shelf-peak-shelf or allpass-bypass")
	flag.StringVar(&opts.preset, "preset", defaultPreset, "Performance preset: minimal, balanced, aggressive, ultra-low-latency")
	flag.StringVar(&opts.curve, "curve", defaultCurve, "Saturation curve: tanh, softclip, cubic, arctan, asymmetric, tube, blended-cubic")
	flag.Float64Var(&opts.cutoff, "cutoff", defaultCutoff, "Cutoff frequency in Hz")
	flag.Float64Var(&opts.sweepTo, "sweep-to", 0, "Sweep the cutoff logarithmically to this frequency over the file (0 disables)")
	flag.Float64Var(&opts.resonance, "resonance", 0, "Resonance, 0-1")
	flag.Float64Var(&opts.drive, "drive", defaultDrive, "Input drive, 0-10")
	flag.Float64Var(&opts.morph, "morph", 0, "Morph position, 0-1")
	flag.Float64Var(&opts.gain, "gain", 0, "Shelf and peak gain in dB")
	flag.IntVar(&opts.oversample, "oversample", 1, "Ladder oversampling factor: 1, 2, 4, 8")
	flag.BoolVar(&opts.resonator, "resonator", false, "Insert the resonance stage before the topology")
	flag.BoolVar(&opts.selfOsc, "self-osc", false, "Allow the resonance stage to self-oscillate")
	flag.BoolVar(&opts.fast, "fast", false, "Run the biquad block engine in float32")
	flag.BoolVar(&opts.parallel, "parallel", true, "Enable parallel channel processing (faster for stereo/multichannel)")
	verbose := flag.Bool("v", false, "Verbose output")
	cpuprofile := flag.String("cpuprofile", "", "Write CPU profile to file (for PGO)")
	flag.Parse()

	args := flag.Args()
	if len(args) < minRequiredArgs {
		fmt.Fprintf(os.Stderr, "Usage: %s [options] input.wav output.wav\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s -cutoff 800 in.wav out.wav                  # Lowpass at 800 Hz\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s -topology svf -morph 1 in.wav out.wav       # State-variable highpass\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s -cutoff 100 -sweep-to 10000 in.wav out.wav # Filter sweep\n", os.Args[0])
		return fmt.Errorf("insufficient arguments")
	}

	if *cpuprofile != "" {
		f, err := os.Create(*cpuprofile)
		if err != nil {
			return fmt.Errorf("could not create CPU profile: %w", err)
		}
		if err := pprof.StartCPUProfile(f); err != nil {
			_ = f.Close()
			return fmt.Errorf("could not start CPU profile: %w", err)
		}
		defer func() {
			pprof.StopCPUProfile()
			_ = f.Close()
		}()
	}

	inputPath := args[0]
	outputPath := args[1]

	if *verbose {
		log.Printf("Input: %s", inputPath)
		log.Printf("Output: %s", outputPath)
		log.Printf("Topology: %s", opts.topology)
		log.Printf("Cutoff: %.1f Hz, resonance %.2f, drive %.2f", opts.cutoff, opts.resonance, opts.drive)
		if opts.sweepTo > 0 {
			log.Printf("Sweep: %.1f Hz -> %.1f Hz", opts.cutoff, opts.sweepTo)
		}
		if opts.fast {
			log.Printf("Precision: float32 block engine (fast mode)")
		} else {
			log.Printf("Precision: float64 (high precision)")
		}
		if opts.parallel {
			log.Printf("Parallel: enabled (concurrent channel processing)")
		} else {
			log.Printf("Parallel: disabled (sequential processing)")
		}
	}

	start := time.Now()
	stats, err := filterWAV(inputPath, outputPath, &opts, *verbose)
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	fmt.Printf("Filtered %s -> %s\n", filepath.Base(inputPath), filepath.Base(outputPath))
	fmt.Printf("  %s at %d Hz (%d channels, %d-bit)\n",
		stats.topology, stats.rate, stats.channels, stats.bitDepth)
	fmt.Printf("  %d frames, output peak %.3f\n", stats.frames, stats.peak)
	fmt.Printf("  Duration: %.2fs, Speed: %.1fx realtime\n",
		elapsed.Seconds(),
		float64(stats.frames)/float64(stats.rate)/elapsed.Seconds())
	if *verbose {
		m := stats.metrics
		log.Printf("Filter: %.1f Msamples/s, %.2f%% CPU", m.Throughput()/1e6, m.CPUUsage())
	}

	return nil
}

type filterStats struct {
	topology audiofilter.Topology
	rate     int
	channels int
	bitDepth int
	frames   int64
	peak     float64
	metrics  audiofilter.Metrics
}

func filterWAV(inputPath, outputPath string, opts *filterOptions, verbose bool) (stats *filterStats, err error) {
	// 1. Open and validate input
	input, err := openWAVInput(inputPath, verbose)
	if err != nil {
		return nil, err
	}
	defer func() { _ = input.Close() }()

	// 2. Create the filter
	cfg, err := buildConfig(opts, input.rate, input.channels)
	if err != nil {
		return nil, err
	}
	f, err := audiofilter.New(cfg)
	if err != nil {
		return nil, err
	}
	if err := f.LoadParameters(parameterMap(opts)); err != nil {
		return nil, err
	}

	// 3. Create output writer
	output, err := createWAVOutput(outputPath, input.rate, input.bitDepth, input.channels)
	if err != nil {
		return nil, err
	}
	// Close output, capturing close errors on success path (important for WAV header updates)
	defer func() {
		if closeErr := output.Close(); err == nil {
			err = closeErr
		}
	}()

	// 4. Processing loop
	buffers := newFilterBuffers(input.channels, input.bitDepth, input.format)
	stats = &filterStats{
		topology: cfg.Topology,
		rate:     input.rate,
		channels: input.channels,
		bitDepth: input.bitDepth,
	}
	progress := newProgressTracker(input.totalFrames, verbose)

	for {
		n, err := input.decoder.PCMBuffer(buffers.intBuffer)
		if err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("failed to read audio data: %w", err)
		}
		n -= n % input.channels
		if n == 0 {
			break
		}

		if opts.sweepTo > 0 {
			cutoff := sweepCutoff(opts.cutoff, opts.sweepTo, progress.fraction(stats.frames))
			if err := f.SetParameter(audiofilter.ParamCutoff, cutoff); err != nil {
				return nil, err
			}
		}

		buffers.toFloat(n)
		if err := f.Process(buffers.floatBuffer); err != nil {
			return nil, fmt.Errorf("filtering failed: %w", err)
		}
		for _, v := range buffers.floatBuffer.Data {
			stats.peak = max(stats.peak, abs(v))
		}
		buffers.toInt()

		if err := output.Write(buffers.intBuffer); err != nil {
			return nil, fmt.Errorf("failed to write audio data: %w", err)
		}

		stats.frames += int64(n / input.channels)
		progress.reportIfNeeded(stats.frames)
		buffers.reset()
	}

	stats.metrics = f.Metrics()
	return stats, nil
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

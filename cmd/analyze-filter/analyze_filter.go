package main

import (
	"fmt"
	"math"

	"github.com/tphakala/go-audio-filter/internal/engine"
	"github.com/tphakala/go-audio-filter/internal/filter"
	"github.com/tphakala/go-audio-filter/internal/mathutil"
	"github.com/tphakala/go-audio-filter/internal/morph"
)

const (
	// Design parameters
	sampleRate       = 48000.0
	defaultCutoff    = 1000.0
	defaultResonance = 0.5
	defaultGainDB    = 6.0

	// Sweep limits
	sweepLow    = 20.0
	sweepHigh   = 20000.0
	sweepPoints = 11

	// Stability grid
	gridResonanceSteps = 5
	morphSteps         = 5

	// Ladder measurement
	impulseLength    = 8192
	impulseAmplitude = 1e-3 // Small enough to keep the input saturation linear
)

var gridCutoffs = []float64{20, 200, 2000, 10000, 20000, 23900}

func main() {
	fmt.Println("=== Analyzing Filter Responses ===")

	cfg := filter.Config{
		SampleRate: sampleRate,
		Cutoff:     defaultCutoff,
		Resonance:  defaultResonance,
		GainDB:     defaultGainDB,
	}
	freqs := filter.LogFrequencies(sweepLow, sweepHigh, sweepPoints)

	fmt.Printf("Sample rate %.0f Hz, cutoff %.0f Hz, resonance %.2f (Q %.3f)\n\n",
		sampleRate, defaultCutoff, defaultResonance, filter.Q(cfg))

	fmt.Printf("%-10s", "Hz")
	for _, f := range freqs {
		fmt.Printf("%8.0f", f)
	}
	fmt.Println()
	for _, t := range filter.Types {
		c := filter.Calculate(t, cfg)
		fmt.Printf("%-10s", t)
		for _, r := range filter.Sweep(c, freqs, sampleRate) {
			fmt.Printf("%8.1f", mathutil.GainToDB(r.Magnitude))
		}
		fmt.Printf("   pole radius %.4f\n", filter.PoleRadius(c))
	}

	// Every response must stay stable across the parameter range
	fmt.Println("\n=== Stability Grid (max pole radius) ===")
	fmt.Printf("%-10s", "cutoff")
	for i := range gridResonanceSteps {
		fmt.Printf("   res %.2f", float64(i)/float64(gridResonanceSteps-1))
	}
	fmt.Println()

	unstable := 0
	for _, fc := range gridCutoffs {
		fmt.Printf("%-10.0f", fc)
		for i := range gridResonanceSteps {
			grid := cfg
			grid.Cutoff = fc
			grid.Resonance = float64(i) / float64(gridResonanceSteps-1)

			var worst float64
			for _, t := range filter.Types {
				c := filter.Calculate(t, grid)
				if !filter.IsStable(c) {
					unstable++
				}
				worst = max(worst, filter.PoleRadius(c))
			}
			fmt.Printf("%11.5f", worst)
		}
		fmt.Println()
	}
	fmt.Printf("Unstable designs: %d\n", unstable)

	analyzeLadder(freqs)

	// Morph modes at evenly spaced positions
	fmt.Println("\n=== Morph Sweeps (dB at cutoff / 4, cutoff, cutoff * 4) ===")
	probe := []float64{defaultCutoff / 4, defaultCutoff, defaultCutoff * 4}
	for m := morph.LowpassBandpassHighpass; m <= morph.AllpassBypass; m++ {
		fmt.Printf("\n%s:\n", m)
		points := m.Points(cfg)
		for i := range morphSteps {
			x := float64(i) / float64(morphSteps-1)
			c := morph.Blend(points, x)
			fmt.Printf("  morph %.2f:", x)
			for _, r := range filter.Sweep(c, probe, sampleRate) {
				fmt.Printf("%8.1f", mathutil.GainToDB(r.Magnitude))
			}
			fmt.Printf("   stable %v\n", filter.IsStable(c))
		}
	}
}

// analyzeLadder compares the ladder's measured impulse response with its
// continuous-time estimate.
func analyzeLadder(freqs []float64) {
	fmt.Println("\n=== Ladder: measured vs estimated (dB) ===")

	cfg := engine.DefaultLadderConfig()
	cfg.SampleRate = sampleRate
	l, err := engine.NewLadder(cfg)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	l.SetCutoff(defaultCutoff)
	l.SetResonance(defaultResonance)

	impulse := make([]float64, impulseLength)
	impulse[0] = impulseAmplitude
	l.ProcessBlock(impulse)
	for i := range impulse {
		impulse[i] /= impulseAmplitude
	}
	bins := filter.MeasureResponse(impulse, sampleRate)

	for _, f := range freqs {
		k := int(math.Round(f / sampleRate * impulseLength))
		k = max(0, min(k, len(bins)-1))
		fmt.Printf("  %8.0f Hz: measured %7.1f  estimate %7.1f\n", f,
			mathutil.GainToDB(bins[k].Magnitude),
			mathutil.GainToDB(l.ResponseEstimate(f)))
	}
}

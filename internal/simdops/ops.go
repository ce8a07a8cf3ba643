// Package simdops is the table of SIMD kernels behind the filter's vector
// path: the biquad feed-forward convolution, block energy for metering and
// stereo interleaving. Each kernel exists for float32 and float64 so the
// block engine can be instantiated at either precision.
package simdops

import (
	"github.com/tphakala/simd/cpu"
	"github.com/tphakala/simd/f32"
	"github.com/tphakala/simd/f64"
)

// Float is the type constraint for supported floating-point types.
type Float interface {
	float32 | float64
}

// Ops holds the kernels for sample type F.
type Ops[F Float] struct {
	// ConvolveValid computes dst[i] = sum_k signal[i+k] * kernel[k].
	// len(dst) must be len(signal) - len(kernel) + 1.
	ConvolveValid func(dst, signal, kernel []F)

	// DotProductUnsafe computes the dot product of equal-length slices.
	// The metering path passes the same block twice for its energy.
	DotProductUnsafe func(a, b []F) F

	// Interleave2 writes dst[2i]=a[i], dst[2i+1]=b[i].
	Interleave2 func(dst, a, b []F)
}

var (
	ops32 = Ops[float32]{
		ConvolveValid:    f32.ConvolveValid,
		DotProductUnsafe: f32.DotProductUnsafe,
		Interleave2:      f32.Interleave2,
	}
	ops64 = Ops[float64]{
		ConvolveValid:    f64.ConvolveValid,
		DotProductUnsafe: f64.DotProductUnsafe,
		Interleave2:      f64.Interleave2,
	}
)

// For returns the kernels for type F. Engines resolve it once at
// construction.
func For[F Float]() *Ops[F] {
	var zero F
	switch any(zero).(type) {
	case float32:
		ops, ok := any(&ops32).(*Ops[F])
		if !ok {
			panic("simdops: type assertion failed for float32")
		}
		return ops
	case float64:
		ops, ok := any(&ops64).(*Ops[F])
		if !ok {
			panic("simdops: type assertion failed for float64")
		}
		return ops
	default:
		panic("simdops: unsupported float type")
	}
}

// Ops64 is the float64 table used by the root package.
type Ops64 = Ops[float64]

// Float32Ops returns the float32 kernels.
func Float32Ops() *Ops[float32] {
	return &ops32
}

// Float64Ops returns the float64 kernels.
func Float64Ops() *Ops[float64] {
	return &ops64
}

// BiquadKernel returns the feed-forward kernel for ConvolveValid over a
// signal prefixed with two history samples: [b2, b1, b0].
func BiquadKernel[F Float](b0, b1, b2 float64) [3]F {
	return [3]F{F(b2), F(b1), F(b0)}
}

// Info describes the SIMD features detected on this CPU.
func Info() string {
	return cpu.Info()
}

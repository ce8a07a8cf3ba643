package engine

import (
	"github.com/tphakala/go-audio-filter/internal/simdops"
)

// StageAdapter exposes channel 0 of a HighPerformance engine as a float64
// block stage. Samples are converted to F in chunks of the engine's block
// size.
type StageAdapter[F simdops.Float] struct {
	*HighPerformance[F]
	buf []F
}

// NewStageAdapter creates a StageAdapter wrapping the given engine.
func NewStageAdapter[F simdops.Float](e *HighPerformance[F]) *StageAdapter[F] {
	return &StageAdapter[F]{HighPerformance: e, buf: make([]F, e.cfg.BlockSize)}
}

// ProcessBlock filters buf in place on channel 0.
func (s *StageAdapter[F]) ProcessBlock(buf []float64) {
	for start := 0; start < len(buf); start += len(s.buf) {
		chunk := buf[start:min(start+len(s.buf), len(buf))]
		work := s.buf[:len(chunk)]
		for i, v := range chunk {
			work[i] = F(v)
		}
		s.ProcessBuffer(work)
		for i, v := range work {
			chunk[i] = float64(v)
		}
	}
}

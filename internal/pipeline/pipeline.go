// Package pipeline implements the per-channel processing chain and the
// queue that carries parameter changes from the control thread to the
// audio thread.
package pipeline

// Stage represents a single in-place processing stage in a channel chain.
type Stage interface {
	// ProcessBlock transforms buf in place.
	ProcessBlock(buf []float64)

	// Reset clears internal state.
	Reset()
}

// MemoryReporter is implemented by stages that own block buffers.
type MemoryReporter interface {
	// GetMemoryUsage returns approximate memory usage in bytes.
	GetMemoryUsage() int64
}

// Chain runs a fixed sequence of stages over one channel.
type Chain struct {
	stages []Stage
}

// NewChain creates a chain from the given stages, in processing order.
// Nil stages are skipped.
func NewChain(stages ...Stage) *Chain {
	c := &Chain{stages: make([]Stage, 0, max(len(stages), defaultStageCapacity))}
	for _, s := range stages {
		c.Append(s)
	}
	return c
}

// Append adds a stage to the end of the chain.
func (c *Chain) Append(s Stage) {
	if s != nil {
		c.stages = append(c.stages, s)
	}
}

// Process runs buf through every stage in order.
func (c *Chain) Process(buf []float64) {
	if len(buf) == 0 {
		return
	}
	for _, s := range c.stages {
		s.ProcessBlock(buf)
	}
}

// Reset resets every stage.
func (c *Chain) Reset() {
	for _, s := range c.stages {
		s.Reset()
	}
}

// Len returns the number of stages.
func (c *Chain) Len() int {
	return len(c.stages)
}

// Stages returns the stages in processing order.
func (c *Chain) Stages() []Stage {
	return c.stages
}

// GetMemoryUsage sums the memory reported by stages that track it.
func (c *Chain) GetMemoryUsage() int64 {
	var total int64
	for _, s := range c.stages {
		if m, ok := s.(MemoryReporter); ok {
			total += m.GetMemoryUsage()
		}
	}
	return total
}

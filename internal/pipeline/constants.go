package pipeline

// Chain sizing
const (
	defaultStageCapacity = 2 // Resonance stage plus topology
)

// Parameter queue sizing
const (
	// DefaultQueueCapacity holds a few blocks' worth of automation for
	// every parameter.
	DefaultQueueCapacity = 256

	minQueueCapacity = 2
)

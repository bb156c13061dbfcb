package pipeline

import "time"

// Layer names, also used as snapshot keys and metric labels.
const (
	LayerBronze = "bronze"
	LayerSilver = "silver"
	LayerGold   = "gold"
)

// RunState tracks the orchestrator's strictly sequential state machine.
type RunState string

const (
	StateIdle     RunState = "idle"
	StateBronze   RunState = "bronze"
	StateSilver   RunState = "silver"
	StateGold     RunState = "gold"
	StateComplete RunState = "complete"
	StateFailed   RunState = "failed"
)

// StepMetric is one per-layer, per-source sample of the run's metrics log.
// Valid/invalid counts are only populated for silver steps.
type StepMetric struct {
	Layer          string
	Source         string
	Records        int
	ValidRecords   int
	InvalidRecords int
	Duration       time.Duration
}

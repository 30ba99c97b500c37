// Package batch runs the pipeline for several entities in sequence,
// isolating failures: one entity failing never stops the others, and the
// batch counts as successful while at least one entity got through.
package batch

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/optistock/alegra-etl/internal/extract"
	"github.com/optistock/alegra-etl/internal/warehouse"
)

// Report collects what one entity's run produced.
type Report struct {
	Extraction *extract.Result
	Load       *warehouse.LoadResult
	// ArchivedAs is the GCS object name when archival is enabled.
	ArchivedAs string
}

// Processor runs the full pipeline for one entity.
type Processor interface {
	Process(ctx context.Context, e extract.Entity) (*Report, error)
}

// EntityOutcome is the per-entity result inside a batch summary. Exactly
// one of Report and Err is set.
type EntityOutcome struct {
	Entity string
	Report *Report
	Err    error
}

// Summary aggregates a whole batch.
type Summary struct {
	Outcomes []EntityOutcome
}

// Succeeded counts entities that finished without error.
func (s *Summary) Succeeded() int {
	n := 0
	for _, o := range s.Outcomes {
		if o.Err == nil {
			n++
		}
	}
	return n
}

// Failed counts entities that errored.
func (s *Summary) Failed() int {
	return len(s.Outcomes) - s.Succeeded()
}

// OK reports whether the batch counts as successful: at least one entity
// made it through.
func (s *Summary) OK() bool {
	return s.Succeeded() > 0
}

// Coordinator runs entities through a processor one at a time.
type Coordinator struct {
	proc Processor
	log  zerolog.Logger
}

func NewCoordinator(proc Processor, log zerolog.Logger) *Coordinator {
	return &Coordinator{proc: proc, log: log}
}

// Run processes every entity and returns the batch summary. Entity failures
// are recorded, logged and skipped over.
func (c *Coordinator) Run(ctx context.Context, entities []extract.Entity) *Summary {
	summary := &Summary{Outcomes: make([]EntityOutcome, 0, len(entities))}

	for _, e := range entities {
		report, err := c.proc.Process(ctx, e)
		if err != nil {
			c.log.Error().Err(err).Str("entity", e.Name).Msg("entity run failed")
			summary.Outcomes = append(summary.Outcomes, EntityOutcome{Entity: e.Name, Err: err})
			continue
		}
		summary.Outcomes = append(summary.Outcomes, EntityOutcome{Entity: e.Name, Report: report})
	}

	c.log.Info().
		Int("succeeded", summary.Succeeded()).
		Int("failed", summary.Failed()).
		Msg("batch finished")
	return summary
}

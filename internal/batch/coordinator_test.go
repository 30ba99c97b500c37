package batch

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"github.com/optistock/alegra-etl/internal/extract"
)

// fakeProcessor fails the entities named in failing and records call order.
type fakeProcessor struct {
	failing map[string]error
	seen    []string
}

func (p *fakeProcessor) Process(_ context.Context, e extract.Entity) (*Report, error) {
	p.seen = append(p.seen, e.Name)
	if err, ok := p.failing[e.Name]; ok {
		return nil, err
	}
	return &Report{Extraction: &extract.Result{Entity: e.Name, Rows: 10}}, nil
}

func entities(names ...string) []extract.Entity {
	out := make([]extract.Entity, len(names))
	for i, n := range names {
		out[i] = extract.Entity{Name: n}
	}
	return out
}

func TestRun_FailureDoesNotStopBatch(t *testing.T) {
	proc := &fakeProcessor{failing: map[string]error{"inventory": errors.New("boom")}}
	c := NewCoordinator(proc, zerolog.Nop())

	summary := c.Run(context.Background(), entities("movements", "inventory", "sales"))

	if len(proc.seen) != 3 {
		t.Errorf("processed %v, want all three entities", proc.seen)
	}
	if summary.Succeeded() != 2 || summary.Failed() != 1 {
		t.Errorf("succeeded/failed = %d/%d, want 2/1", summary.Succeeded(), summary.Failed())
	}
	if !summary.OK() {
		t.Error("OK() = false, want true with partial success")
	}
	if summary.Outcomes[1].Err == nil || summary.Outcomes[1].Report != nil {
		t.Errorf("inventory outcome = %+v, want error only", summary.Outcomes[1])
	}
	if summary.Outcomes[2].Err != nil || summary.Outcomes[2].Report == nil {
		t.Errorf("sales outcome = %+v, want report only", summary.Outcomes[2])
	}
}

func TestRun_AllFailedIsNotOK(t *testing.T) {
	proc := &fakeProcessor{failing: map[string]error{
		"movements": errors.New("a"),
		"inventory": errors.New("b"),
	}}
	c := NewCoordinator(proc, zerolog.Nop())

	summary := c.Run(context.Background(), entities("movements", "inventory"))
	if summary.OK() {
		t.Error("OK() = true, want false when every entity failed")
	}
	if summary.Failed() != 2 {
		t.Errorf("failed = %d, want 2", summary.Failed())
	}
}

func TestRun_NoEntities(t *testing.T) {
	c := NewCoordinator(&fakeProcessor{}, zerolog.Nop())
	summary := c.Run(context.Background(), nil)
	if summary.OK() {
		t.Error("OK() = true for an empty batch, want false")
	}
}

func TestRun_PreservesOrder(t *testing.T) {
	proc := &fakeProcessor{}
	c := NewCoordinator(proc, zerolog.Nop())

	names := []string{"movements", "inventory", "sales", "purchases"}
	summary := c.Run(context.Background(), entities(names...))
	for i, n := range names {
		if summary.Outcomes[i].Entity != n {
			t.Errorf("outcome %d = %q, want %q", i, summary.Outcomes[i].Entity, n)
		}
	}
}

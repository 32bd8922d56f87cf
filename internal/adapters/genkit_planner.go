package adapters

import (
	"context"
	"fmt"

	"github.com/firebase/genkit/go/core"
)

// PlannerInput is the payload handed to a Genkit planner flow: the sanitized
// question plus the schemas of the registered capabilities.
type PlannerInput struct {
	Question string                    `json:"question"`
	Schemas  map[string]map[string]any `json:"schemas"`
}

// SchemaSource yields the capability schemas to include in planner prompts.
type SchemaSource func() map[string]map[string]any

// GenkitPlannerAdapter runs a Genkit flow as the reasoning component. The
// flow returns raw plan text; interpretation happens downstream.
type GenkitPlannerAdapter struct {
	flow    *core.Flow[*PlannerInput, string, struct{}]
	schemas SchemaSource
}

// NewGenkitPlannerAdapter wraps a planner flow. schemas may be nil when the
// flow does not need capability schemas in its prompt.
func NewGenkitPlannerAdapter(flow *core.Flow[*PlannerInput, string, struct{}], schemas SchemaSource) *GenkitPlannerAdapter {
	return &GenkitPlannerAdapter{flow: flow, schemas: schemas}
}

// Plan implements loom.Planner.
func (a *GenkitPlannerAdapter) Plan(ctx context.Context, input string) (any, error) {
	payload := &PlannerInput{Question: input}
	if a.schemas != nil {
		payload.Schemas = a.schemas()
	}

	candidate, err := a.flow.Run(ctx, payload)
	if err != nil {
		return nil, fmt.Errorf("planner flow execution failed: %w", err)
	}
	if candidate == "" {
		return nil, fmt.Errorf("planner flow returned an empty plan")
	}
	return candidate, nil
}

package queries

import (
	"context"

	"omc/internal/types"
)

// QueryBesluiten reads decisions and their types.
type QueryBesluiten interface {
	GetDecision(ctx context.Context, uri string) (types.Decision, error)
	// GetDecisionType reads from the catalogue in OpenZaak.
	GetDecisionType(ctx context.Context, uri string) (types.DecisionType, error)
}

type besluitenV1 struct {
	base *Base
}

// NewBesluitenV1 creates the v1 adapter.
func NewBesluitenV1(base *Base) QueryBesluiten {
	return &besluitenV1{base: base}
}

func (q *besluitenV1) GetDecision(ctx context.Context, uri string) (types.Decision, error) {
	return ProcessGet[types.Decision](ctx, q.base, types.ClientBesluiten, uri, "failed to retrieve decision")
}

func (q *besluitenV1) GetDecisionType(ctx context.Context, uri string) (types.DecisionType, error) {
	return ProcessGet[types.DecisionType](ctx, q.base, types.ClientOpenZaak, uri, "failed to retrieve decision type")
}

package scenarios

import (
	"context"

	"golang.org/x/sync/errgroup"

	"omc/internal/queries"
	"omc/internal/types"
)

// decisionMade announces a decision taken on a case. A decision without a
// case cannot be delivered and fails.
type decisionMade struct {
	base
}

func (s *decisionMade) TryGetData(ctx context.Context, qc *queries.QueryContext) (PreparedData, error) {
	decision, err := qc.Decision(ctx, qc.Event().ResourceURI)
	if err != nil {
		return PreparedData{}, err
	}
	if decision.Case == "" {
		return PreparedData{}, types.NewAppErrorWithDetails(
			types.ErrCodeUpstreamMissingCase,
			"decision is not linked to a case",
			nil,
			map[string]any{"decision": decision.URI},
		)
	}

	var (
		b            caseBundle
		decisionType types.DecisionType
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		b, err = gatherCase(ctx, qc, decision.Case, s.whitelist)
		return err
	})
	g.Go(func() error {
		var err error
		decisionType, err = qc.DecisionType(gctx, decision.DecisionType)
		return err
	})
	if err := whitelistFirst(b.CaseType, s.whitelist, g.Wait()); err != nil {
		return PreparedData{}, err
	}

	values := caseValues(b.Case, b.CaseType)
	values[keyDecisionID] = decision.Identification
	values[keyDecisionDate] = decision.Date
	values[keyDecisionExplanation] = decision.Explanation
	values[keyDecisionEffective] = decision.EffectiveDate
	values[keyDecisionTypeName] = decisionType.Name

	return PreparedData{
		Party:           b.Party,
		CaseURI:         b.Case.URI,
		Personalization: values,
	}, nil
}

package scenarios

import (
	"context"

	"omc/internal/queries"
)

// caseCreated announces a newly registered case to its initiator.
type caseCreated struct {
	base
}

func (s *caseCreated) TryGetData(ctx context.Context, qc *queries.QueryContext) (PreparedData, error) {
	caseURI := qc.Event().MainObjectURI
	b, err := gatherCase(ctx, qc, caseURI, s.whitelist)
	if err != nil {
		return PreparedData{}, err
	}

	return PreparedData{
		Party:           b.Party,
		CaseURI:         b.Case.URI,
		Personalization: caseValues(b.Case, b.CaseType),
	}, nil
}

package scenarios

import (
	"context"

	"omc/internal/queries"
	"omc/internal/types"
)

// caseClosed announces the closure of a case. Updates of open cases are not
// announced.
type caseClosed struct {
	base
}

func (s *caseClosed) TryGetData(ctx context.Context, qc *queries.QueryContext) (PreparedData, error) {
	caseURI := qc.Event().MainObjectURI
	b, err := gatherCase(ctx, qc, caseURI, s.whitelist)
	if b.Case.URI != "" && !b.Case.IsClosed() {
		return PreparedData{}, types.NewAppErrorWithDetails(
			types.ErrCodeSkipCaseNotClosed,
			"case has no end date",
			nil,
			map[string]any{"case": b.Case.URI},
		)
	}
	if err != nil {
		return PreparedData{}, err
	}

	statuses, err := qc.CaseStatuses(ctx, b.Case.URI)
	if err != nil {
		return PreparedData{}, err
	}
	final, ok := statuses.Latest()
	if !ok {
		return PreparedData{}, types.NewAppErrorWithDetails(
			types.ErrCodeUpstreamMissingStatus,
			"closed case has no status",
			nil,
			map[string]any{"case": b.Case.URI},
		)
	}
	statusType, err := qc.StatusType(ctx, final.StatusType)
	if err != nil {
		return PreparedData{}, err
	}

	values := caseValues(b.Case, b.CaseType)
	values[keyCaseEndDate] = b.Case.EndDate
	values[keyStatusName] = statusType.Name
	values[keyStatusComment] = final.Comment

	return PreparedData{
		Party:           b.Party,
		CaseURI:         b.Case.URI,
		Personalization: values,
	}, nil
}

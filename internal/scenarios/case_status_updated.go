package scenarios

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"omc/internal/queries"
	"omc/internal/types"
)

// caseStatusUpdated announces a new status of a case. The event resource is
// the status; its status type decides whether the initiator is informed.
type caseStatusUpdated struct {
	base
}

func (s *caseStatusUpdated) TryGetData(ctx context.Context, qc *queries.QueryContext) (PreparedData, error) {
	event := qc.Event()

	var (
		b          caseBundle
		status     types.CaseStatus
		statusType types.CaseStatusType
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		b, err = gatherCase(ctx, qc, event.MainObjectURI, s.whitelist)
		return err
	})
	g.Go(func() error {
		var err error
		status, err = qc.CaseStatus(gctx, event.ResourceURI)
		if err != nil {
			return err
		}
		statusType, err = qc.StatusType(gctx, status.StatusType)
		return err
	})
	if err := whitelistFirst(b.CaseType, s.whitelist, g.Wait()); err != nil {
		return PreparedData{}, err
	}

	if !statusType.IsNotifiable {
		return PreparedData{}, types.NewAppErrorWithDetails(
			types.ErrCodeSkipNotExpected,
			fmt.Sprintf("status type %q does not inform the initiator", statusType.Name),
			nil,
			map[string]any{"status_type": statusType.URI},
		)
	}

	values := caseValues(b.Case, b.CaseType)
	values[keyStatusName] = statusType.Name
	values[keyStatusComment] = status.Comment

	return PreparedData{
		Party:           b.Party,
		CaseURI:         b.Case.URI,
		Personalization: values,
	}, nil
}

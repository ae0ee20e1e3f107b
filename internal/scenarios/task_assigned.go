package scenarios

import (
	"context"
	"fmt"
	"maps"
	"strings"

	"golang.org/x/sync/errgroup"

	"omc/internal/queries"
	"omc/internal/types"
)

// taskAssigned announces an open task. Tasks linked to a case are subject to
// the case-type whitelist.
type taskAssigned struct {
	base
}

func (s *taskAssigned) TryGetData(ctx context.Context, qc *queries.QueryContext) (PreparedData, error) {
	obj, err := qc.Object(ctx, qc.Event().ResourceURI)
	if err != nil {
		return PreparedData{}, err
	}
	task, err := queries.ObjectData[types.TaskData](obj)
	if err != nil {
		return PreparedData{}, err
	}
	if !strings.EqualFold(task.Status, types.TaskStatusOpen) {
		return PreparedData{}, types.NewAppErrorWithDetails(
			types.ErrCodeSkipTaskNotOpen,
			fmt.Sprintf("task has status %q", task.Status),
			nil,
			map[string]any{"object": obj.URI},
		)
	}
	id, err := objectParty(task.Identification)
	if err != nil {
		return PreparedData{}, err
	}

	var (
		party      types.CommonPartyData
		objectType types.ObjectType
		c          types.Case
		ct         types.CaseType
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		party, err = qc.Party(gctx, id)
		return err
	})
	g.Go(func() error {
		var err error
		objectType, err = qc.ObjectType(gctx, obj.Type)
		return err
	})
	if task.Link.URI != "" {
		g.Go(func() error {
			var err error
			c, ct, err = gatherLinkedCase(ctx, qc, task.Link.URI)
			return err
		})
	}
	err = g.Wait()
	if task.Link.URI != "" {
		err = whitelistFirst(ct, s.whitelist, err)
	}
	if err != nil {
		return PreparedData{}, err
	}

	values := map[string]any{
		keyTaskTitle:      task.Title,
		keyTaskExpiration: task.ExpirationDate,
		keyObjectTypeName: objectType.Name,
	}
	if task.Link.URI != "" {
		maps.Copy(values, caseValues(c, ct))
	}
	if err := checkContact(party); err != nil {
		return PreparedData{}, err
	}

	return PreparedData{
		Party:           party,
		CaseURI:         c.URI,
		Personalization: values,
	}, nil
}

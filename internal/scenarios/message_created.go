package scenarios

import (
	"context"

	"golang.org/x/sync/errgroup"

	"omc/internal/queries"
	"omc/internal/types"
)

// messageCreated announces a message placed in the recipient's inbox.
type messageCreated struct {
	base
}

func (s *messageCreated) TryGetData(ctx context.Context, qc *queries.QueryContext) (PreparedData, error) {
	obj, err := qc.Object(ctx, qc.Event().ResourceURI)
	if err != nil {
		return PreparedData{}, err
	}
	msg, err := queries.ObjectData[types.MessageData](obj)
	if err != nil {
		return PreparedData{}, err
	}
	id, err := objectParty(msg.Identification)
	if err != nil {
		return PreparedData{}, err
	}

	var (
		party      types.CommonPartyData
		objectType types.ObjectType
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
	if err := g.Wait(); err != nil {
		return PreparedData{}, err
	}
	if err := checkContact(party); err != nil {
		return PreparedData{}, err
	}

	return PreparedData{
		Party: party,
		Personalization: map[string]any{
			keyMessageSubject:     msg.Subject,
			keyMessagePublication: msg.PublicationDate,
			keyObjectTypeName:     objectType.Name,
		},
	}, nil
}

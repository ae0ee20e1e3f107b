package scenarios

import (
	"context"
	"maps"

	"golang.org/x/sync/errgroup"

	"omc/internal/queries"
	"omc/internal/types"
)

// productGiven announces a product granted to the recipient, optionally as
// the result of a case.
type productGiven struct {
	base
}

func (s *productGiven) TryGetData(ctx context.Context, qc *queries.QueryContext) (PreparedData, error) {
	obj, err := qc.Object(ctx, qc.Event().ResourceURI)
	if err != nil {
		return PreparedData{}, err
	}
	product, err := queries.ObjectData[types.ProductData](obj)
	if err != nil {
		return PreparedData{}, err
	}
	id, err := objectParty(product.Identification)
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
	if product.Link.URI != "" {
		g.Go(func() error {
			var err error
			c, ct, err = gatherLinkedCase(gctx, qc, product.Link.URI)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return PreparedData{}, err
	}
	if err := checkContact(party); err != nil {
		return PreparedData{}, err
	}

	values := map[string]any{
		keyProductName:    product.Name,
		keyObjectTypeName: objectType.Name,
	}
	if product.Link.URI != "" {
		maps.Copy(values, caseValues(c, ct))
	}

	return PreparedData{
		Party:           party,
		CaseURI:         c.URI,
		Personalization: values,
	}, nil
}

package queries

import (
	"context"

	"omc/internal/types"
)

// QueryObjectTypen reads object type definitions from ObjectTypen.
type QueryObjectTypen interface {
	GetObjectType(ctx context.Context, uri string) (types.ObjectType, error)
}

type objectTypenV1 struct {
	base *Base
}

// NewObjectTypenV1 creates the v1 adapter.
func NewObjectTypenV1(base *Base) QueryObjectTypen {
	return &objectTypenV1{base: base}
}

func (q *objectTypenV1) GetObjectType(ctx context.Context, uri string) (types.ObjectType, error) {
	return ProcessGet[types.ObjectType](ctx, q.base, types.ClientObjectTypen, uri, "failed to retrieve object type")
}

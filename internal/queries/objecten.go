package queries

import (
	"context"
	"fmt"

	"omc/internal/serialization"
	"omc/internal/types"
)

// QueryObjecten reads objects (tasks, messages, products) from Objecten.
type QueryObjecten interface {
	GetObject(ctx context.Context, uri string) (types.Object, error)
}

type objectenV1 struct {
	base *Base
}

// NewObjectenV1 creates the v1 adapter.
func NewObjectenV1(base *Base) QueryObjecten {
	return &objectenV1{base: base}
}

func (q *objectenV1) GetObject(ctx context.Context, uri string) (types.Object, error) {
	return ProcessGet[types.Object](ctx, q.base, types.ClientObjecten, uri, "failed to retrieve object")
}

// ObjectData decodes the record data of obj into T.
func ObjectData[T any](obj types.Object) (T, error) {
	data, err := serialization.Deserialize[T](obj.Record.Data)
	if err != nil {
		var zero T
		return zero, types.NewAppErrorWithDetails(
			types.ErrCodeSerializationFailed,
			fmt.Sprintf("object data does not match %T", zero),
			err,
			map[string]any{"object": obj.URI},
		)
	}
	return data, nil
}

// Package serialization decodes and encodes the JSON exchanged with the event
// source and the registers. Decoded structs are validated with their
// `validate` tags, so a payload that parses but misses required fields is
// rejected as a shape mismatch.
package serialization

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var (
	// ErrMalformed wraps payloads that are not valid JSON.
	ErrMalformed = errors.New("malformed JSON")
	// ErrShape wraps payloads that are valid JSON but do not match the target.
	ErrShape = errors.New("shape mismatch")
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// Report JSON names in errors, the upstream contract is in Dutch.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Deserialize decodes raw into a T and validates it.
func Deserialize[T any](raw []byte) (T, error) {
	var out T
	if len(bytes.TrimSpace(raw)) == 0 {
		return out, fmt.Errorf("%w: empty body", ErrMalformed)
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		var syntaxErr *json.SyntaxError
		if errors.As(err, &syntaxErr) {
			return out, fmt.Errorf("%w: %v", ErrMalformed, err)
		}
		return out, fmt.Errorf("%w: %v", ErrShape, err)
	}
	if err := Validate(out); err != nil {
		return out, err
	}
	return out, nil
}

// Serialize encodes v as JSON.
func Serialize[T any](v T) ([]byte, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("serialize %T: %w", v, err)
	}
	return raw, nil
}

// Validate runs the struct validation rules of v. Non-struct values pass.
func Validate(v any) error {
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil
		}
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return nil
	}
	if err := validate.Struct(rv.Interface()); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			fields := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				fields = append(fields, fe.Namespace()+" ("+fe.Tag()+")")
			}
			return fmt.Errorf("%w: invalid fields: %s", ErrShape, strings.Join(fields, ", "))
		}
		return fmt.Errorf("%w: %v", ErrShape, err)
	}
	return nil
}

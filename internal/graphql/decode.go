package graphql

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jamesprial/cms-blog/internal/query"
)

// Decode runs def through c and unmarshals the root field into T. found is
// false, with a nil error, only when a nullable root came back null.
// A root that does not fit T is reported as a *SchemaMismatchError.
func Decode[T any](ctx context.Context, c Client, def query.Definition) (T, bool, error) {
	var out T

	raw, err := c.Request(ctx, def)
	if err != nil {
		return out, false, err
	}
	if isNull(raw) {
		return out, false, nil
	}

	if err := json.Unmarshal(raw, &out); err != nil {
		return out, false, &SchemaMismatchError{
			Query:  queryName(def),
			Field:  def.Root,
			Reason: fmt.Sprintf("cannot decode into %T", out),
			Err:    err,
		}
	}
	return out, true, nil
}

// Describe formats err for callers that only carry text, prefixing the kind
// so the failure category survives.
func Describe(err error) string {
	if err == nil {
		return ""
	}
	return fmt.Sprintf("[%s] %v", KindOf(err), err)
}

// Package graphql provides the HTTP client that sends catalog queries to the
// headless CMS GraphQL endpoint and narrows its answers.
package graphql

import (
	"context"
	"encoding/json"
	"time"

	"github.com/jamesprial/cms-blog/internal/query"
)

// responseError represents a single error returned in a GraphQL response.
type responseError struct {
	Message string `json:"message"`
}

// Client defines the interface for executing catalog queries.
//
// Request returns the raw JSON of the definition's root field (or the whole
// data object when the definition has no root). A nil result with a nil
// error means a nullable root came back null.
type Client interface {
	Request(ctx context.Context, def query.Definition) (json.RawMessage, error)
}

// Event describes one completed Request, successful or not.
type Event struct {
	RequestID  string
	Query      string
	Preview    bool
	StatusCode int
	Duration   time.Duration
	Err        error
}

// Observer receives an Event after every Request. It runs on the calling
// goroutine and must not block.
type Observer func(Event)

package graphql

import (
	"errors"
	"fmt"
	"strings"
)

// Kind classifies client failures.
type Kind string

const (
	KindNone           Kind = ""
	KindConfiguration  Kind = "configuration"
	KindValidation     Kind = "validation"
	KindTransport      Kind = "transport"
	KindHTTPStatus     Kind = "http_status"
	KindGraphQL        Kind = "graphql"
	KindSchemaMismatch Kind = "schema_mismatch"
	KindUnknown        Kind = "unknown"
)

// ConfigurationError reports a missing or unusable endpoint or preview token.
type ConfigurationError struct {
	Field  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("graphql: configuration: %s %s", e.Field, e.Reason)
}

// ValidationError reports a definition rejected before any network call.
type ValidationError struct {
	Query string
	Err   error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("graphql: %s: invalid request: %v", e.Query, e.Err)
}

func (e *ValidationError) Unwrap() error { return e.Err }

// TransportError wraps a network-level failure (DNS, timeout, reset,
// cancellation).
type TransportError struct {
	Query string
	Err   error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("graphql: %s: request failed: %v", e.Query, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// HTTPStatusError reports a non-2xx response. Body is the response text as
// received, capped at 1 MiB.
type HTTPStatusError struct {
	Query      string
	StatusCode int
	Body       string
}

func (e *HTTPStatusError) Error() string {
	body := strings.TrimSpace(e.Body)
	if e.StatusCode == 401 {
		return fmt.Sprintf("graphql: %s: authentication failed (HTTP 401): %s", e.Query, body)
	}
	return fmt.Sprintf("graphql: %s: unexpected HTTP status %d: %s", e.Query, e.StatusCode, body)
}

// GraphQLError carries the messages of a response's top-level "errors" array.
type GraphQLError struct {
	Query    string
	Messages []string
}

func (e *GraphQLError) Error() string {
	return fmt.Sprintf("graphql: %s: %s", e.Query, strings.Join(e.Messages, "; "))
}

// SchemaMismatchError reports a response that lacks the expected field or
// cannot be decoded into the expected shape.
type SchemaMismatchError struct {
	Query  string
	Field  string
	Reason string
	Err    error
}

func (e *SchemaMismatchError) Error() string {
	msg := fmt.Sprintf("graphql: %s: schema mismatch", e.Query)
	if e.Field != "" {
		msg += fmt.Sprintf(" on %q", e.Field)
	}
	msg += ": " + e.Reason
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *SchemaMismatchError) Unwrap() error { return e.Err }

// KindOf reports the Kind of err, looking through wrapping.
func KindOf(err error) Kind {
	if err == nil {
		return KindNone
	}
	var (
		cfgErr    *ConfigurationError
		valErr    *ValidationError
		transErr  *TransportError
		statusErr *HTTPStatusError
		gqlErr    *GraphQLError
		schemaErr *SchemaMismatchError
	)
	switch {
	case errors.As(err, &cfgErr):
		return KindConfiguration
	case errors.As(err, &valErr):
		return KindValidation
	case errors.As(err, &transErr):
		return KindTransport
	case errors.As(err, &statusErr):
		return KindHTTPStatus
	case errors.As(err, &gqlErr):
		return KindGraphQL
	case errors.As(err, &schemaErr):
		return KindSchemaMismatch
	}
	return KindUnknown
}

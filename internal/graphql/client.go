package graphql

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jamesprial/cms-blog/internal/config"
	"github.com/jamesprial/cms-blog/internal/query"
)

// maxErrorBody caps how much of a non-2xx response body is kept.
const maxErrorBody = 1 << 20

// HTTPClient is a concrete implementation of the Client interface that sends
// catalog queries to the CMS over HTTP. It holds no per-request state and is
// safe for concurrent use.
type HTTPClient struct {
	httpClient   *http.Client
	endpoint     string
	previewToken string
	observer     Observer
}

type clientOptions struct {
	preview    bool
	httpClient *http.Client
	observer   Observer
}

// Option configures NewHTTPClient.
type Option func(*clientOptions)

// WithPreview makes the client read draft content by sending the configured
// preview token as a bearer token.
func WithPreview(preview bool) Option {
	return func(o *clientOptions) { o.preview = preview }
}

// WithHTTPClient replaces the underlying *http.Client. The CMS timeout from
// config is not applied to a caller-supplied client.
func WithHTTPClient(c *http.Client) Option {
	return func(o *clientOptions) { o.httpClient = c }
}

// WithObserver installs a hook that receives an Event after every Request.
func WithObserver(fn Observer) Option {
	return func(o *clientOptions) { o.observer = fn }
}

// NewHTTPClient constructs an HTTPClient from the provided CMSConfig.
// It returns a *ConfigurationError if the endpoint is missing or is not an
// absolute http(s) URL, or if preview mode is requested without a preview
// token. No network I/O happens here.
func NewHTTPClient(cfg config.CMSConfig, opts ...Option) (*HTTPClient, error) {
	var o clientOptions
	for _, opt := range opts {
		opt(&o)
	}

	endpoint := strings.TrimSpace(cfg.EndpointURL)
	if endpoint == "" {
		return nil, &ConfigurationError{Field: config.EnvEndpointURL, Reason: "is required"}
	}
	u, err := url.Parse(endpoint)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, &ConfigurationError{
			Field:  config.EnvEndpointURL,
			Reason: fmt.Sprintf("must be an absolute http(s) URL, got %q", endpoint),
		}
	}

	c := &HTTPClient{
		httpClient: o.httpClient,
		endpoint:   endpoint,
		observer:   o.observer,
	}
	if o.preview {
		if cfg.PreviewToken == "" {
			return nil, &ConfigurationError{Field: config.EnvPreviewToken, Reason: "is required in preview mode"}
		}
		c.previewToken = cfg.PreviewToken
	}
	if c.httpClient == nil {
		c.httpClient = &http.Client{}
		if cfg.Timeout > 0 {
			c.httpClient.Timeout = time.Duration(cfg.Timeout) * time.Second
		}
	}

	return c, nil
}

// Preview reports whether the client sends the preview bearer token.
func (c *HTTPClient) Preview() bool {
	return c.previewToken != ""
}

// requestBody is the JSON body shape for a GraphQL HTTP request. Variables
// are always present, as {} when the query takes none.
type requestBody struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables"`
}

// responseBody is the JSON body shape for a GraphQL HTTP response.
type responseBody struct {
	Data   json.RawMessage `json:"data"`
	Errors []responseError `json:"errors"`
}

// Request validates def, sends it in exactly one POST and narrows the answer
// to def.Root. See Client for the meaning of a nil result.
//
// Request returns:
//   - *ValidationError if def fails local validation (nothing is sent)
//   - *TransportError if the request cannot be sent or the body cannot be read
//   - *HTTPStatusError for any non-2xx status
//   - *GraphQLError if the response carries a non-empty "errors" array
//   - *SchemaMismatchError if the body is not JSON or the root field is missing
func (c *HTTPClient) Request(ctx context.Context, def query.Definition) (json.RawMessage, error) {
	start := time.Now()
	data, status, err := c.do(ctx, def)
	if c.observer != nil {
		c.observer(Event{
			RequestID:  uuid.NewString(),
			Query:      queryName(def),
			Preview:    c.Preview(),
			StatusCode: status,
			Duration:   time.Since(start),
			Err:        err,
		})
	}
	return data, err
}

func (c *HTTPClient) do(ctx context.Context, def query.Definition) (json.RawMessage, int, error) {
	name := queryName(def)

	if err := def.Validate(); err != nil {
		return nil, 0, &ValidationError{Query: name, Err: err}
	}

	bodyBytes, err := json.Marshal(requestBody{Query: def.Document, Variables: def.Bind()})
	if err != nil {
		return nil, 0, &ValidationError{Query: name, Err: fmt.Errorf("marshal variables: %w", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, 0, &TransportError{Query: name, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	if c.previewToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.previewToken)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, &TransportError{Query: name, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		text, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, resp.StatusCode, &HTTPStatusError{
			Query:      name,
			StatusCode: resp.StatusCode,
			Body:       string(text),
		}
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, &TransportError{Query: name, Err: fmt.Errorf("read response: %w", err)}
	}

	var gqlResp responseBody
	if err := json.Unmarshal(raw, &gqlResp); err != nil {
		return nil, resp.StatusCode, &SchemaMismatchError{Query: name, Reason: "response is not valid JSON", Err: err}
	}

	if len(gqlResp.Errors) > 0 {
		msgs := make([]string, len(gqlResp.Errors))
		for i, e := range gqlResp.Errors {
			msgs[i] = e.Message
		}
		return nil, resp.StatusCode, &GraphQLError{Query: name, Messages: msgs}
	}

	data, err := narrow(name, def, gqlResp.Data)
	return data, resp.StatusCode, err
}

// narrow picks def.Root out of the data object.
func narrow(name string, def query.Definition, data json.RawMessage) (json.RawMessage, error) {
	if isNull(data) {
		return nil, &SchemaMismatchError{Query: name, Field: "data", Reason: "response has no data"}
	}
	if def.Root == "" {
		return data, nil
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, &SchemaMismatchError{Query: name, Field: "data", Reason: "data is not an object", Err: err}
	}

	field, ok := fields[def.Root]
	if !ok {
		return nil, &SchemaMismatchError{Query: name, Field: def.Root, Reason: "field missing from response"}
	}
	if isNull(field) {
		if def.Nullable {
			return nil, nil
		}
		return nil, &SchemaMismatchError{Query: name, Field: def.Root, Reason: "field is null"}
	}
	return field, nil
}

func isNull(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}

func queryName(def query.Definition) string {
	if def.Name == "" {
		return "query"
	}
	return def.Name
}

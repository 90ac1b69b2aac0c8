package graphql

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/jamesprial/cms-blog/internal/query"
	"github.com/jamesprial/cms-blog/internal/safety"
	"github.com/jamesprial/cms-blog/internal/tools"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/parser"
)

const (
	toolNameGraphQLQuery = "graphql_query"
	toolNameSchemaFields = "graphql_schema_fields"
)

// GraphQLTools returns the tool registrations for direct CMS access: an
// arbitrary read query and a listing of the root query fields.
func GraphQLTools(client Client, audit *safety.AuditLogger) []tools.Registration {
	return []tools.Registration{
		toolGraphQLQuery(client, audit),
		toolSchemaFields(client, audit),
	}
}

// toolGraphQLQuery constructs the graphql_query Registration.
func toolGraphQLQuery(client Client, audit *safety.AuditLogger) tools.Registration {
	tool := mcp.NewTool(toolNameGraphQLQuery,
		mcp.WithDescription("Execute an arbitrary GraphQL query against the blog CMS. Use when the blog_* tools do not expose the content needed."),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("The GraphQL query string to execute."),
		),
		mcp.WithString("variables",
			mcp.Description("Optional JSON object string of variables to pass with the query."),
		),
	)

	handler := func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		start := time.Now()

		doc := req.GetString("query", "")
		variablesStr := req.GetString("variables", "")

		params := map[string]any{
			"query":     doc,
			"variables": variablesStr,
		}

		if err := readOnly(doc); err != nil {
			tools.LogAudit(audit, toolNameGraphQLQuery, params, "error: "+err.Error(), start)
			return tools.ErrorResult(err.Error()), nil
		}

		var parsedVars map[string]any
		if variablesStr != "" {
			if err := json.Unmarshal([]byte(variablesStr), &parsedVars); err != nil {
				errMsg := fmt.Sprintf("parse variables JSON: %v", err)
				tools.LogAudit(audit, toolNameGraphQLQuery, params, "error: "+errMsg, start)
				return tools.ErrorResult(errMsg), nil
			}
		}

		data, err := client.Request(ctx, query.Adhoc(doc, parsedVars))
		if err != nil {
			tools.LogAudit(audit, toolNameGraphQLQuery, params, "error: "+err.Error(), start)
			return tools.ErrorResult(Describe(err)), nil
		}

		// Re-decode so tools.JSONResult pretty-prints with consistent
		// indentation.
		var parsed any
		if err := json.Unmarshal(data, &parsed); err != nil {
			tools.LogAudit(audit, toolNameGraphQLQuery, params, "error: "+err.Error(), start)
			return tools.ErrorResult(err.Error()), nil
		}

		tools.LogAudit(audit, toolNameGraphQLQuery, params, "ok", start)
		return tools.JSONResult(parsed), nil
	}

	return tools.Registration{Tool: tool, Handler: server.ToolHandlerFunc(handler)}
}

// readOnly parses doc and rejects it unless every operation is a query.
func readOnly(doc string) error {
	parsed, err := parser.ParseQuery(&ast.Source{Input: strings.TrimPrefix(doc, "\ufeff")})
	if err != nil {
		return fmt.Errorf("parse query: %v", err)
	}
	if len(parsed.Operations) == 0 {
		return fmt.Errorf("parse query: document has no operation")
	}
	for _, op := range parsed.Operations {
		if op.Operation != ast.Query {
			return fmt.Errorf("only read queries are allowed, got %s", op.Operation)
		}
	}
	return nil
}

// schemaFields mirrors the __schema selection of query.SchemaFields.
type schemaFields struct {
	QueryType struct {
		Fields []struct {
			Name string `json:"name"`
		} `json:"fields"`
	} `json:"queryType"`
}

// toolSchemaFields constructs the graphql_schema_fields Registration.
func toolSchemaFields(client Client, audit *safety.AuditLogger) tools.Registration {
	tool := mcp.NewTool(toolNameSchemaFields,
		mcp.WithDescription("List the root query fields exposed by the blog CMS schema."),
	)

	handler := func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		start := time.Now()
		params := map[string]any{}

		schema, _, err := Decode[schemaFields](ctx, client, query.SchemaFields())
		if err != nil {
			tools.LogAudit(audit, toolNameSchemaFields, params, "error: "+err.Error(), start)
			return tools.ErrorResult(Describe(err)), nil
		}

		names := make([]string, 0, len(schema.QueryType.Fields))
		for _, f := range schema.QueryType.Fields {
			names = append(names, f.Name)
		}

		tools.LogAudit(audit, toolNameSchemaFields, params, "ok", start)
		return tools.JSONResult(names), nil
	}

	return tools.Registration{Tool: tool, Handler: server.ToolHandlerFunc(handler)}
}

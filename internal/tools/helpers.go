// Package tools provides shared helper utilities for MCP tool handlers.
package tools

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/jamesprial/cms-blog/internal/safety"
	"github.com/mark3labs/mcp-go/mcp"
)

// JSONResult marshals v to indented JSON and returns an mcp.CallToolResult.
func JSONResult(v any) *mcp.CallToolResult {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return ErrorResult(fmt.Sprintf("marshaling result: %v", err))
	}
	return mcp.NewToolResultText(string(data))
}

// lookup is the envelope for single-item results.
type lookup struct {
	Found bool `json:"found"`
	Item  any  `json:"item,omitempty"`
}

// LookupResult wraps the outcome of a single-item lookup so that "not found"
// is an ordinary result rather than an error.
func LookupResult(v any, found bool) *mcp.CallToolResult {
	if !found {
		return JSONResult(lookup{Found: false})
	}
	return JSONResult(lookup{Found: true, Item: v})
}

// ErrorResult returns an mcp.CallToolResult flagged as an error whose text
// is msg prefixed with "error: ".
func ErrorResult(msg string) *mcp.CallToolResult {
	result := mcp.NewToolResultText(fmt.Sprintf("error: %s", msg))
	result.IsError = true
	return result
}

// LogAudit logs a tool invocation to the audit logger, silently ignoring a nil logger.
func LogAudit(audit *safety.AuditLogger, toolName string, params map[string]any, result string, start time.Time) {
	if audit == nil {
		return
	}
	_ = audit.Log(safety.AuditEntry{
		Timestamp: start,
		Tool:      toolName,
		Params:    params,
		Result:    result,
		Duration:  time.Since(start),
	})
}

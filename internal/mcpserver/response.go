package mcpserver

import (
	"encoding/json"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// jsonResult marshals data as the tool's sole text content block.
func jsonResult(data interface{}) (*mcp.CallToolResult, error) {
	body, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("marshaling response: %w", err)
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: string(body)}},
	}, nil
}

// errorResult reports err inside the result body with IsError set,
// per the MCP convention that tool-level failures surface to the
// calling model rather than as a transport error it can't see.
func errorResult(operation string, err error) (*mcp.CallToolResult, error) {
	res, marshalErr := jsonResult(map[string]interface{}{
		"success":   false,
		"operation": operation,
		"error":     err.Error(),
	})
	if marshalErr != nil {
		return nil, marshalErr
	}
	res.IsError = true
	return res, nil
}

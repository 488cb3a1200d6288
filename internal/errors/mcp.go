package errors

import (
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
)

// ErrMCPTool renders err as a failed tool result, prefixed by its type.
func ErrMCPTool(err error) *mcp.CallToolResult {
	text := fmt.Sprintf("[unknown] %v", err)
	if appErr, ok := AsAppError(err); ok {
		text = fmt.Sprintf("[%s] %s", appErr.Type, appErr.Message)
		if appErr.Cause != nil {
			text = fmt.Sprintf("%s: %v", text, appErr.Cause)
		}
	}
	return mcp.NewToolResultError(text)
}

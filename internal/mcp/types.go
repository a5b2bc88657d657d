// Package mcp implements the Model Context Protocol surface of statuswatch:
// the tool catalog, the request dispatcher, and a stdio transport. JSON-RPC
// 2.0 framing is shared with the HTTP transport in internal/api.
//
// Spec: https://modelcontextprotocol.io/specification
package mcp

// JSON-RPC 2.0 envelope.

// Request is a JSON-RPC 2.0 request or notification.
type Request struct {
	JSONRPC string `json:"jsonrpc"`
	ID      any    `json:"id,omitempty"` // nil for notifications
	Method  string `json:"method"`
	Params  any    `json:"params,omitempty"`
}

// Response is a JSON-RPC 2.0 response.
type Response struct {
	JSONRPC string `json:"jsonrpc"`
	ID      any    `json:"id"`
	Result  any    `json:"result,omitempty"`
	Error   *Error `json:"error,omitempty"`
}

// Error is a JSON-RPC 2.0 error object.
type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// JSON-RPC error codes used by this server.
const (
	CodeParseError     = -32700
	CodeInvalidRequest = -32600
	CodeMethodNotFound = -32601
	CodeInternalError  = -32603
)

// MCP handshake.

// InitializeParams is sent by the client on "initialize".
type InitializeParams struct {
	ProtocolVersion string         `json:"protocolVersion"`
	Capabilities    map[string]any `json:"capabilities,omitempty"`
	ClientInfo      EntityInfo     `json:"clientInfo,omitempty"`
}

// InitializeResult answers "initialize".
type InitializeResult struct {
	ProtocolVersion string       `json:"protocolVersion"`
	Capabilities    Capabilities `json:"capabilities"`
	ServerInfo      EntityInfo   `json:"serverInfo"`
}

// EntityInfo identifies a client or server.
type EntityInfo struct {
	Name    string `json:"name"`
	Version string `json:"version,omitempty"`
}

// Capabilities advertises the features this server supports.
type Capabilities struct {
	Tools *ToolsCapability `json:"tools,omitempty"`
}

// ToolsCapability describes the tools feature.
type ToolsCapability struct {
	ListChanged bool `json:"listChanged,omitempty"`
}

// Tool discovery and invocation.

// Tool is one entry of the static tool catalog.
type Tool struct {
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	InputSchema map[string]any `json:"inputSchema"`
}

// ToolsListResult answers "tools/list".
type ToolsListResult struct {
	Tools []Tool `json:"tools"`
}

// ToolCallParams is the input for "tools/call".
type ToolCallParams struct {
	Name      string         `json:"name"`
	Arguments map[string]any `json:"arguments,omitempty"`
}

// ToolCallResult answers "tools/call". IsError flags protocol-level failures
// (bad arguments, unknown tool, internal errors); data-absence outcomes such
// as an unresolvable service name stay non-error and carry an "error" field
// in their JSON payload instead.
type ToolCallResult struct {
	Content []ContentBlock `json:"content"`
	IsError bool           `json:"isError,omitempty"`
}

// ContentBlock is a single content item in a tool result.
type ContentBlock struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
}

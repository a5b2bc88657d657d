package mcp

import (
	"context"
	"encoding/json"

	"github.com/rs/zerolog"

	"github.com/statuswatch/statuswatch/internal/secrets"
)

const (
	// ProtocolVersion is the MCP spec revision this server implements.
	ProtocolVersion = "2024-11-05"

	// ServerName identifies this server to MCP clients.
	ServerName = "statuswatch"
)

// HandlerConfig holds configuration for the JSON-RPC method handler.
type HandlerConfig struct {
	Dispatcher *Dispatcher
	Secrets    *secrets.Loader
	Logger     zerolog.Logger
	Version    string
}

// Handler routes JSON-RPC methods for both the stdio and HTTP transports.
// Handshake and discovery methods (initialize, tools/list, ping) never
// require a credential; only tools/call resolves one, preferring a
// caller-supplied bearer token over the process-level fallback.
type Handler struct {
	dispatcher *Dispatcher
	secrets    *secrets.Loader
	logger     zerolog.Logger
	version    string
}

// NewHandler creates a method handler.
func NewHandler(cfg HandlerConfig) *Handler {
	return &Handler{
		dispatcher: cfg.Dispatcher,
		secrets:    cfg.Secrets,
		logger:     cfg.Logger,
		version:    cfg.Version,
	}
}

// Handle processes one JSON-RPC request. bearer is the inbound credential,
// empty when the transport carries none. A nil response means the request
// was a notification and nothing should be written back.
func (h *Handler) Handle(ctx context.Context, req *Request, bearer string) *Response {
	switch req.Method {
	case "initialize":
		return resultResponse(req.ID, InitializeResult{
			ProtocolVersion: ProtocolVersion,
			Capabilities: Capabilities{
				Tools: &ToolsCapability{ListChanged: false},
			},
			ServerInfo: EntityInfo{Name: ServerName, Version: h.version},
		})

	case "notifications/initialized":
		// Client ack, nothing to do.
		return nil

	case "ping":
		return resultResponse(req.ID, map[string]any{})

	case "tools/list":
		return resultResponse(req.ID, ToolsListResult{Tools: Catalog()})

	case "tools/call":
		return h.handleToolsCall(ctx, req, bearer)

	default:
		// Notifications with unknown methods are silently ignored.
		if req.ID == nil {
			return nil
		}
		return errorResponse(req.ID, CodeMethodNotFound, "method not found: "+req.Method)
	}
}

func (h *Handler) handleToolsCall(ctx context.Context, req *Request, bearer string) *Response {
	raw, err := json.Marshal(req.Params)
	if err != nil {
		return errorResponse(req.ID, CodeInternalError, "failed to read params")
	}

	var params ToolCallParams
	if err := json.Unmarshal(raw, &params); err != nil {
		return errorResponse(req.ID, CodeInvalidRequest, "invalid tools/call params: "+err.Error())
	}
	if params.Name == "" {
		return errorResponse(req.ID, CodeInvalidRequest, "tool name is required")
	}

	apiKey := bearer
	if apiKey == "" {
		key, err := h.secrets.APIKey(ctx)
		if err != nil {
			h.logger.Warn().
				Str("tool", params.Name).
				Msg("tool call rejected: no credential available")
			return errorResponse(req.ID, CodeInternalError, secrets.ErrNoAPIKey.Error())
		}
		apiKey = key
	}

	h.logger.Info().
		Str("tool", params.Name).
		Msg("tool call")

	result := h.dispatcher.Dispatch(ctx, apiKey, params.Name, params.Arguments)
	return resultResponse(req.ID, result)
}

func resultResponse(id any, result any) *Response {
	return &Response{JSONRPC: "2.0", ID: id, Result: result}
}

func errorResponse(id any, code int, message string) *Response {
	return &Response{JSONRPC: "2.0", ID: id, Error: &Error{Code: code, Message: message}}
}

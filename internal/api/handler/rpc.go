// Package handler provides HTTP handlers for the statuswatch API.
package handler

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/statuswatch/statuswatch/internal/api/middleware"
	"github.com/statuswatch/statuswatch/internal/api/response"
	"github.com/statuswatch/statuswatch/internal/mcp"
)

// RPCHandler carries MCP JSON-RPC envelopes over a single POST endpoint.
type RPCHandler struct {
	handler *mcp.Handler
}

// NewRPCHandler creates an RPCHandler over the shared method handler.
func NewRPCHandler(handler *mcp.Handler) *RPCHandler {
	return &RPCHandler{handler: handler}
}

// ServeRPC handles POST /mcp. The inbound bearer token, when present, is
// passed through as the upstream credential for tool execution; discovery
// and handshake methods ignore it.
func (h *RPCHandler) ServeRPC(w http.ResponseWriter, r *http.Request) {
	var req mcp.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		resp := &mcp.Response{
			JSONRPC: "2.0",
			Error:   &mcp.Error{Code: mcp.CodeParseError, Message: "parse error: " + err.Error()},
		}
		response.JSON(w, r, http.StatusBadRequest, resp)
		return
	}

	resp := h.handler.Handle(r.Context(), &req, bearerToken(r))
	if resp == nil {
		// Notification: acknowledged, nothing to return.
		w.WriteHeader(http.StatusAccepted)
		return
	}

	logger := middleware.GetLogger(r.Context())
	if resp.Error != nil {
		logger.Debug().
			Int("code", resp.Error.Code).
			Str("method", req.Method).
			Msg("rpc error response")
	}

	response.JSON(w, r, http.StatusOK, resp)
}

// bearerToken extracts a bearer credential from the Authorization header,
// returning "" when none is present.
func bearerToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if len(auth) <= len(prefix) || !strings.EqualFold(auth[:len(prefix)], prefix) {
		return ""
	}
	return strings.TrimSpace(auth[len(prefix):])
}

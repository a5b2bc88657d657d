package handler

import (
	"net/http"
	"time"

	"github.com/statuswatch/statuswatch/internal/api/response"
	"github.com/statuswatch/statuswatch/internal/mcp"
)

// MetaHandler serves the liveness and self-description endpoints.
type MetaHandler struct {
	version   string
	buildTime string
}

// NewMetaHandler creates a MetaHandler.
func NewMetaHandler(version, buildTime string) *MetaHandler {
	return &MetaHandler{
		version:   version,
		buildTime: buildTime,
	}
}

// Health handles GET /health. It answers 200 whenever the process can
// respond at all; upstream reachability is deliberately not checked here.
func (h *MetaHandler) Health(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, r, http.StatusOK, map[string]any{
		"status":  "ok",
		"time":    time.Now().UTC().Format(time.RFC3339),
		"version": h.version,
	})
}

// Describe handles GET /. It returns self-describing metadata: the server
// identity, available tools, endpoints, and supported auth methods.
func (h *MetaHandler) Describe(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, r, http.StatusOK, map[string]any{
		"name":       mcp.ServerName,
		"version":    h.version,
		"build_time": h.buildTime,
		"protocol":   mcp.ProtocolVersion,
		"tools":      mcp.ToolNames(),
		"endpoints": map[string]string{
			"rpc":     "POST /mcp",
			"health":  "GET /health",
			"metrics": "GET /metrics",
		},
		"auth": []string{
			"Authorization: Bearer <api key> on tools/call",
			"STATUSGATOR_API_KEY environment fallback",
		},
	})
}

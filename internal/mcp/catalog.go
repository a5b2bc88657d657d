package mcp

import (
	"fmt"
	"strings"

	"github.com/statuswatch/statuswatch/internal/status"
)

// Tool names, in catalog order.
const (
	ToolCheckOutage         = "check_outage"
	ToolCheckAllOutages     = "check_all_outages"
	ToolGetServiceStatus    = "get_service_status"
	ToolSearchServices      = "search_services"
	ToolGetHistory          = "get_historical_incidents"
	ToolGetServiceUptime    = "get_service_uptime"
	ToolGetMultiHistory     = "get_multi_service_history"
)

// Catalog returns the fixed, ordered tool catalog. It is pure data and is
// returned verbatim on tools/list; every entry has a dispatcher branch and
// every required field is validated before any upstream call.
func Catalog() []Tool {
	serviceDesc := fmt.Sprintf(
		"Service name or alias. Known aliases: %s. Any other name is matched against the upstream catalog.",
		strings.Join(status.KnownAliases(), ", "))

	statusEnum := make([]any, 0, len(status.IncidentStatuses()))
	for _, s := range status.IncidentStatuses() {
		statusEnum = append(statusEnum, s)
	}

	return []Tool{
		{
			Name:        ToolCheckOutage,
			Description: "Check whether a single service currently has an outage.",
			InputSchema: objectSchema(map[string]any{
				"service": stringProp(serviceDesc),
			}, "service"),
		},
		{
			Name: ToolCheckAllOutages,
			Description: fmt.Sprintf(
				"Check a set of services for outages concurrently. Defaults to the monitored list: %s.",
				strings.Join(status.DefaultMonitored(), ", ")),
			InputSchema: objectSchema(map[string]any{
				"services": stringArrayProp("Services to check. Optional; defaults to the monitored list."),
			}),
		},
		{
			Name:        ToolGetServiceStatus,
			Description: "Get the current status and open incidents for a service.",
			InputSchema: objectSchema(map[string]any{
				"service": stringProp(serviceDesc),
			}, "service"),
		},
		{
			Name:        ToolSearchServices,
			Description: "Search the upstream service catalog by name, exact matches first.",
			InputSchema: objectSchema(map[string]any{
				"query": stringProp("Full or partial service name to search for."),
			}, "query"),
		},
		{
			Name:        ToolGetHistory,
			Description: "List historical incidents for a service, newest first, optionally bounded and filtered.",
			InputSchema: objectSchema(map[string]any{
				"service":    stringProp(serviceDesc),
				"start_date": stringProp("Inclusive lower bound on incident creation (RFC 3339 or YYYY-MM-DD)."),
				"end_date":   stringProp("Inclusive upper bound on incident creation (RFC 3339 or YYYY-MM-DD)."),
				"status": map[string]any{
					"type":        "string",
					"description": "Filter incidents by lifecycle status.",
					"enum":        statusEnum,
				},
			}, "service"),
		},
		{
			Name:        ToolGetServiceUptime,
			Description: "Compute downtime minutes and uptime percentage for a service over a period.",
			InputSchema: objectSchema(map[string]any{
				"service":    stringProp(serviceDesc),
				"start_date": stringProp("Period start (RFC 3339 or YYYY-MM-DD)."),
				"end_date":   stringProp("Period end (RFC 3339 or YYYY-MM-DD)."),
			}, "service", "start_date", "end_date"),
		},
		{
			Name:        ToolGetMultiHistory,
			Description: "Fetch incident history for several services at once, keyed by the names given.",
			InputSchema: objectSchema(map[string]any{
				"services":   stringArrayProp("Services to fetch history for."),
				"start_date": stringProp("Inclusive lower bound on incident creation (RFC 3339 or YYYY-MM-DD)."),
				"end_date":   stringProp("Inclusive upper bound on incident creation (RFC 3339 or YYYY-MM-DD)."),
			}, "services"),
		},
	}
}

// ToolNames returns the catalog's tool names in order.
func ToolNames() []string {
	catalog := Catalog()
	names := make([]string, 0, len(catalog))
	for _, t := range catalog {
		names = append(names, t.Name)
	}
	return names
}

func objectSchema(properties map[string]any, required ...string) map[string]any {
	schema := map[string]any{
		"type":       "object",
		"properties": properties,
	}
	if len(required) > 0 {
		schema["required"] = required
	}
	return schema
}

func stringProp(description string) map[string]any {
	return map[string]any{"type": "string", "description": description}
}

func stringArrayProp(description string) map[string]any {
	return map[string]any{
		"type":        "array",
		"items":       map[string]any{"type": "string"},
		"description": description,
	}
}

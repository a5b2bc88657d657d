package status

import (
	"sort"
	"strings"
)

// aliases maps short or common service names to the canonical ids used by
// the upstream API. This table is the single source of truth: the default
// monitored list and the tool-schema documentation are both derived from it.
var aliases = map[string]string{
	"aws":            "amazon-web-services",
	"amazon":         "amazon-web-services",
	"gcp":            "google-cloud-platform",
	"google-cloud":   "google-cloud-platform",
	"azure":          "microsoft-azure",
	"microsoft":      "microsoft-azure",
	"o365":           "office-365",
	"office365":      "office-365",
	"tmobile":        "t-mobile",
	"att":            "at-t",
	"at&t":           "at-t",
	"digitalocean":   "digital-ocean",
	"gh":             "github",
	"k8s":            "google-kubernetes-engine",
	"openai":         "openai",
	"cloudflare":     "cloudflare",
	"github":         "github",
	"slack":          "slack",
	"zoom":           "zoom",
	"verizon":        "verizon",
	"stripe":         "stripe",
	"twilio":         "twilio",
	"datadog":        "datadog",
	"pagerduty":      "pagerduty",
	"heroku":         "heroku",
	"fastly":         "fastly",
	"sendgrid":       "sendgrid",
	"atlassian":      "atlassian",
	"dropbox":        "dropbox",
	"salesforce":     "salesforce",
	"shopify":        "shopify",
	"discord":        "discord",
	"reddit":         "reddit",
}

// incidentStatuses are the lifecycle states incidents move through upstream.
// The history tool's status filter enumerates exactly these values.
var incidentStatuses = []string{"investigating", "identified", "monitoring", "resolved"}

// defaultMonitored are the services checked by the check-all tool when the
// caller does not name any. Every entry must be a key of the alias table
// (or already canonical, in which case resolution is a no-op passthrough).
var defaultMonitored = []string{
	"aws", "gcp", "azure", "cloudflare", "github",
	"slack", "zoom", "tmobile", "verizon", "att",
}

// CanonicalID normalizes a user-supplied service name (trim, lowercase) and
// maps it through the alias table. Unknown names pass through unchanged.
func CanonicalID(name string) string {
	n := strings.ToLower(strings.TrimSpace(name))
	if canonical, ok := aliases[n]; ok {
		return canonical
	}
	return n
}

// KnownAliases returns the sorted alias keys, for schema documentation.
func KnownAliases() []string {
	keys := make([]string, 0, len(aliases))
	for k := range aliases {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// IncidentStatuses returns the enumerated incident lifecycle states.
func IncidentStatuses() []string {
	out := make([]string, len(incidentStatuses))
	copy(out, incidentStatuses)
	return out
}

// DefaultMonitored returns the default list of services for batch checks.
func DefaultMonitored() []string {
	out := make([]string, len(defaultMonitored))
	copy(out, defaultMonitored)
	return out
}

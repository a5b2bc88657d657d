// Package status provides the domain model and orchestration logic for
// monitored-service status lookups backed by the StatusGator API.
package status

import (
	"context"
	"strings"
	"time"
)

// ServiceDescriptor describes a monitored service as reported upstream.
type ServiceDescriptor struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	URL     string `json:"url,omitempty"`
	Status  string `json:"status"`
	IconURL string `json:"icon_url,omitempty"`
}

// Incident is a discrete reported disruption event for a service.
type Incident struct {
	ID          string     `json:"id"`
	ServiceID   string     `json:"service_id"`
	ServiceName string     `json:"service_name,omitempty"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Status      string     `json:"status"`
	Severity    string     `json:"severity,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	ResolvedAt  *time.Time `json:"resolved_at,omitempty"`
	URL         string     `json:"url,omitempty"`
}

// Resolved reports whether the incident has been closed upstream.
func (i Incident) Resolved() bool {
	return i.ResolvedAt != nil || strings.EqualFold(i.Status, "resolved")
}

// StatusSnapshot is a point-in-time view of a service's status and its
// open incidents. Snapshots are recomputed on every request and never cached.
type StatusSnapshot struct {
	ServiceID   string     `json:"service_id"`
	ServiceName string     `json:"service_name"`
	Status      string     `json:"status"`
	Incidents   []Incident `json:"incidents"`
	CheckedAt   time.Time  `json:"checked_at"`
}

// OutageReport is the answer to a "does this service have an outage" question.
type OutageReport struct {
	Service   string     `json:"service"`
	ServiceID string     `json:"service_id,omitempty"`
	HasOutage bool       `json:"has_outage"`
	Status    string     `json:"status"`
	Incidents []Incident `json:"incidents"`
	CheckedAt time.Time  `json:"checked_at"`
}

// UptimeReport summarizes downtime and availability for a service over a period.
type UptimeReport struct {
	ServiceID            string    `json:"service_id"`
	ServiceName          string    `json:"service_name"`
	PeriodStart          time.Time `json:"period_start"`
	PeriodEnd            time.Time `json:"period_end"`
	IncidentCount        int       `json:"incident_count"`
	TotalDowntimeMinutes float64   `json:"total_downtime_minutes"`
	UptimePercentage     float64   `json:"uptime_percentage"`
}

// Gateway is the outbound boundary to the status-aggregation API.
// Implementations must treat non-2xx responses as errors, never partial data.
type Gateway interface {
	ListServices(ctx context.Context) ([]ServiceDescriptor, error)
	GetService(ctx context.Context, id string) (*ServiceDescriptor, error)
	ListIncidents(ctx context.Context, serviceID string) ([]Incident, error)
	GetIncident(ctx context.Context, serviceID, incidentID string) (*Incident, error)
}

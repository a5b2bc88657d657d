package status

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// ServiceConfig holds configuration for the status service.
type ServiceConfig struct {
	// Gateway is the upstream API boundary (required).
	Gateway Gateway

	// Logger for service operations.
	Logger zerolog.Logger

	// Clock overrides the snapshot timestamp source (tests only).
	Clock func() time.Time
}

// Service orchestrates status, incident, and uptime lookups over the upstream
// gateway. It holds no per-request state and is safe for concurrent use.
type Service struct {
	gw     Gateway
	logger zerolog.Logger
	now    func() time.Time
}

// NewService creates a new status service.
func NewService(cfg ServiceConfig) *Service {
	now := cfg.Clock
	if now == nil {
		now = time.Now
	}
	return &Service{
		gw:     cfg.Gateway,
		logger: cfg.Logger,
		now:    now,
	}
}

// ListServices returns all monitored services.
func (s *Service) ListServices(ctx context.Context) ([]ServiceDescriptor, error) {
	return s.gw.ListServices(ctx)
}

// ResolveService maps a user-supplied name to a service descriptor. Input is
// normalized and passed through the alias table, then matched exactly against
// id and display name, then by substring containment. A nil descriptor with a
// nil error means the name did not match anything, which is an expected
// outcome rather than a failure.
func (s *Service) ResolveService(ctx context.Context, name string) (*ServiceDescriptor, error) {
	id := CanonicalID(name)

	services, err := s.gw.ListServices(ctx)
	if err != nil {
		return nil, err
	}

	for i := range services {
		if strings.ToLower(services[i].ID) == id || strings.ToLower(services[i].Name) == id {
			return &services[i], nil
		}
	}

	for i := range services {
		if strings.Contains(strings.ToLower(services[i].ID), id) ||
			strings.Contains(strings.ToLower(services[i].Name), id) {
			return &services[i], nil
		}
	}

	return nil, nil
}

// SearchServices returns all services matching the query, exact matches first.
func (s *Service) SearchServices(ctx context.Context, query string) ([]ServiceDescriptor, error) {
	q := CanonicalID(query)

	services, err := s.gw.ListServices(ctx)
	if err != nil {
		return nil, err
	}

	var exact, partial []ServiceDescriptor
	for _, svc := range services {
		switch {
		case strings.ToLower(svc.ID) == q || strings.ToLower(svc.Name) == q:
			exact = append(exact, svc)
		case strings.Contains(strings.ToLower(svc.ID), q) ||
			strings.Contains(strings.ToLower(svc.Name), q):
			partial = append(partial, svc)
		}
	}

	return append(exact, partial...), nil
}

// GetIncidents returns the incidents for a service id. Upstream failures are
// logged and degrade to an empty list so that batch checks over many services
// are not aborted by one bad lookup.
func (s *Service) GetIncidents(ctx context.Context, serviceID string) []Incident {
	incidents, err := s.gw.ListIncidents(ctx, serviceID)
	if err != nil {
		s.logger.Warn().
			Err(err).
			Str("service_id", serviceID).
			Msg("incident lookup failed, returning empty list")
		return []Incident{}
	}
	if incidents == nil {
		incidents = []Incident{}
	}
	return incidents
}

// GetServiceStatus resolves the identifier and returns a fresh snapshot of the
// service's status and open incidents. If resolution fails the raw identifier
// is tried as a canonical id. Returns nil if the upstream lookups fail
// entirely; the failure is logged, not propagated.
func (s *Service) GetServiceStatus(ctx context.Context, identifier string) *StatusSnapshot {
	id := CanonicalID(identifier)
	desc, err := s.ResolveService(ctx, identifier)
	switch {
	case err != nil:
		s.logger.Debug().
			Err(err).
			Str("identifier", identifier).
			Msg("service resolution failed, trying raw identifier")
	case desc != nil:
		id = desc.ID
	}

	var (
		detail    *ServiceDescriptor
		incidents []Incident
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		d, err := s.gw.GetService(gctx, id)
		if err != nil {
			return err
		}
		detail = d
		return nil
	})
	g.Go(func() error {
		incidents = s.GetIncidents(gctx, id)
		return nil
	})

	if err := g.Wait(); err != nil {
		s.logger.Warn().
			Err(err).
			Str("service_id", id).
			Msg("status lookup failed")
		return nil
	}

	open := make([]Incident, 0, len(incidents))
	for _, inc := range incidents {
		if !inc.Resolved() {
			open = append(open, inc)
		}
	}

	return &StatusSnapshot{
		ServiceID:   detail.ID,
		ServiceName: detail.Name,
		Status:      detail.Status,
		Incidents:   open,
		CheckedAt:   s.now(),
	}
}

// CheckOutage reports whether the named service currently has an outage.
// A service has an outage when a snapshot exists and its status is neither
// exactly "operational" nor exactly "up". When the name cannot be resolved at
// all the answer is hasOutage:false with status "unknown", never an error:
// a failing monitoring API must not read as "the target is down".
func (s *Service) CheckOutage(ctx context.Context, name string) *OutageReport {
	snap := s.GetServiceStatus(ctx, name)
	if snap == nil {
		return &OutageReport{
			Service:   name,
			HasOutage: false,
			Status:    "unknown",
			Incidents: []Incident{},
			CheckedAt: s.now(),
		}
	}

	return &OutageReport{
		Service:   snap.ServiceName,
		ServiceID: snap.ServiceID,
		HasOutage: snap.Status != "operational" && snap.Status != "up",
		Status:    snap.Status,
		Incidents: snap.Incidents,
		CheckedAt: snap.CheckedAt,
	}
}

// CheckAllOutages checks a set of services concurrently. An empty input
// checks the default monitored list. Reports come back in input order.
func (s *Service) CheckAllOutages(ctx context.Context, names []string) []*OutageReport {
	if len(names) == 0 {
		names = DefaultMonitored()
	}

	reports := make([]*OutageReport, len(names))
	g, gctx := errgroup.WithContext(ctx)
	for i, name := range names {
		g.Go(func() error {
			reports[i] = s.CheckOutage(gctx, name)
			return nil
		})
	}
	// CheckOutage never returns an error, so Wait only observes ctx cancellation.
	_ = g.Wait()

	return reports
}

// GetHistoricalIncidents returns the incidents for a service filtered by an
// inclusive created_at window and an optional case-insensitive status match,
// sorted newest-first. An unresolvable name is an error; upstream failures
// after resolution degrade to an empty list, logged.
func (s *Service) GetHistoricalIncidents(ctx context.Context, name string, start, end *time.Time, statusFilter string) ([]Incident, error) {
	desc, err := s.ResolveService(ctx, name)
	if err != nil {
		s.logger.Warn().
			Err(err).
			Str("service", name).
			Msg("history lookup failed during resolution, returning empty list")
		return []Incident{}, nil
	}
	if desc == nil {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, name)
	}

	incidents, err := s.gw.ListIncidents(ctx, desc.ID)
	if err != nil {
		s.logger.Warn().
			Err(err).
			Str("service_id", desc.ID).
			Msg("history lookup failed, returning empty list")
		return []Incident{}, nil
	}

	filtered := make([]Incident, 0, len(incidents))
	for _, inc := range incidents {
		if start != nil && inc.CreatedAt.Before(*start) {
			continue
		}
		if end != nil && inc.CreatedAt.After(*end) {
			continue
		}
		if statusFilter != "" && !strings.EqualFold(inc.Status, statusFilter) {
			continue
		}
		filtered = append(filtered, inc)
	}

	sort.Slice(filtered, func(i, j int) bool {
		return filtered[i].CreatedAt.After(filtered[j].CreatedAt)
	})

	return filtered, nil
}

// GetServiceUptime computes downtime and availability over a period. Only
// incidents with a resolved_at contribute downtime; unresolved incidents
// count toward the incident total but add zero minutes. A non-positive
// period is treated as fully up.
func (s *Service) GetServiceUptime(ctx context.Context, name string, start, end time.Time) (*UptimeReport, error) {
	desc, err := s.ResolveService(ctx, name)
	if err != nil {
		return nil, err
	}
	if desc == nil {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, name)
	}

	incidents, err := s.GetHistoricalIncidents(ctx, name, &start, &end, "")
	if err != nil {
		return nil, err
	}

	periodMinutes := end.Sub(start).Minutes()

	var downtime float64
	for _, inc := range incidents {
		if inc.ResolvedAt != nil {
			downtime += inc.ResolvedAt.Sub(inc.CreatedAt).Minutes()
		}
	}

	uptime := 100.0
	if periodMinutes > 0 {
		uptime = round2((periodMinutes - downtime) / periodMinutes * 100)
	} else {
		downtime = 0
	}

	return &UptimeReport{
		ServiceID:            desc.ID,
		ServiceName:          desc.Name,
		PeriodStart:          start,
		PeriodEnd:            end,
		IncidentCount:        len(incidents),
		TotalDowntimeMinutes: round2(downtime),
		UptimePercentage:     uptime,
	}, nil
}

// GetMultiServiceHistory maps each caller-supplied name to its filtered
// incident history. Lookups run one at a time in input order. Names that fail
// to resolve keep their key and map to an empty list.
func (s *Service) GetMultiServiceHistory(ctx context.Context, names []string, start, end *time.Time) map[string][]Incident {
	result := make(map[string][]Incident, len(names))
	for _, name := range names {
		incidents, err := s.GetHistoricalIncidents(ctx, name, start, end, "")
		if err != nil {
			s.logger.Warn().
				Err(err).
				Str("service", name).
				Msg("multi-service history lookup failed for one service")
			incidents = []Incident{}
		}
		result[name] = incidents
	}
	return result
}

// round2 rounds to two decimal places.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

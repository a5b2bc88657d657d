package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/statuswatch/statuswatch/internal/status"
)

// ServiceFactory builds a status service bound to one upstream credential.
// Tool calls carry their own credential (request bearer token or the process
// fallback), so the dispatcher constructs the upstream binding per request.
type ServiceFactory func(apiKey string) *status.Service

// Dispatcher routes tool calls to the status service. Each request is a
// single received→resolved step; there is no session state across calls.
type Dispatcher struct {
	newService ServiceFactory
	logger     zerolog.Logger
	validate   *validator.Validate
}

// NewDispatcher creates a dispatcher over the given service factory.
func NewDispatcher(factory ServiceFactory, logger zerolog.Logger) *Dispatcher {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	return &Dispatcher{
		newService: factory,
		logger:     logger,
		validate:   v,
	}
}

// Tool argument shapes. Required fields are validated before any upstream call.

type serviceArgs struct {
	Service string `json:"service" validate:"required"`
}

type servicesArgs struct {
	Services []string `json:"services"`
}

type searchArgs struct {
	Query string `json:"query" validate:"required"`
}

type historyArgs struct {
	Service   string `json:"service" validate:"required"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
	Status    string `json:"status"`
}

type uptimeArgs struct {
	Service   string `json:"service" validate:"required"`
	StartDate string `json:"start_date" validate:"required"`
	EndDate   string `json:"end_date" validate:"required"`
}

type multiHistoryArgs struct {
	Services  []string `json:"services" validate:"required,min=1"`
	StartDate string   `json:"start_date"`
	EndDate   string   `json:"end_date"`
}

// Dispatch validates the arguments for the named tool, invokes the matching
// service operation, and packages the outcome. It never lets an error or
// panic escape to the transport layer.
func (d *Dispatcher) Dispatch(ctx context.Context, apiKey, tool string, args map[string]any) (result ToolCallResult) {
	start := time.Now()
	outcome := outcomeOK
	defer func() {
		if r := recover(); r != nil {
			d.logger.Error().
				Str("tool", tool).
				Interface("panic", r).
				Msg("tool call panicked")
			result = errorResult(fmt.Sprintf("internal error: %v", r))
			outcome = outcomeError
		}
		if result.IsError && outcome == outcomeOK {
			outcome = outcomeError
		}
		toolCallsTotal.WithLabelValues(tool, outcome).Inc()
		toolCallDuration.WithLabelValues(tool).Observe(time.Since(start).Seconds())
	}()

	svc := d.newService(apiKey)

	switch tool {
	case ToolCheckOutage:
		a, err := decodeArgs[serviceArgs](d, args)
		if err != nil {
			outcome = outcomeInvalid
			return errorResult(err.Error())
		}
		return d.success(svc.CheckOutage(ctx, a.Service))

	case ToolCheckAllOutages:
		a, err := decodeArgs[servicesArgs](d, args)
		if err != nil {
			outcome = outcomeInvalid
			return errorResult(err.Error())
		}
		reports := svc.CheckAllOutages(ctx, a.Services)
		return d.success(map[string]any{
			"count":   len(reports),
			"results": reports,
		})

	case ToolGetServiceStatus:
		a, err := decodeArgs[serviceArgs](d, args)
		if err != nil {
			outcome = outcomeInvalid
			return errorResult(err.Error())
		}
		snap := svc.GetServiceStatus(ctx, a.Service)
		if snap == nil {
			return d.success(map[string]any{
				"error": fmt.Sprintf("service %q not found", a.Service),
			})
		}
		return d.success(snap)

	case ToolSearchServices:
		a, err := decodeArgs[searchArgs](d, args)
		if err != nil {
			outcome = outcomeInvalid
			return errorResult(err.Error())
		}
		matches, err := svc.SearchServices(ctx, a.Query)
		if err != nil {
			return errorResult(err.Error())
		}
		if len(matches) == 0 {
			return d.success(map[string]any{
				"error": fmt.Sprintf("no services found matching %q", a.Query),
			})
		}
		return d.success(map[string]any{
			"query":   a.Query,
			"count":   len(matches),
			"results": matches,
		})

	case ToolGetHistory:
		a, err := decodeArgs[historyArgs](d, args)
		if err != nil {
			outcome = outcomeInvalid
			return errorResult(err.Error())
		}
		startAt, endAt, err := parseWindow(a.StartDate, a.EndDate)
		if err != nil {
			outcome = outcomeInvalid
			return errorResult(err.Error())
		}
		incidents, err := svc.GetHistoricalIncidents(ctx, a.Service, startAt, endAt, a.Status)
		if err != nil {
			return errorResult(err.Error())
		}
		return d.success(map[string]any{
			"service":   a.Service,
			"count":     len(incidents),
			"incidents": incidents,
		})

	case ToolGetServiceUptime:
		a, err := decodeArgs[uptimeArgs](d, args)
		if err != nil {
			outcome = outcomeInvalid
			return errorResult(err.Error())
		}
		startAt, endAt, err := parseWindow(a.StartDate, a.EndDate)
		if err != nil {
			outcome = outcomeInvalid
			return errorResult(err.Error())
		}
		report, err := svc.GetServiceUptime(ctx, a.Service, *startAt, *endAt)
		if err != nil {
			return errorResult(err.Error())
		}
		return d.success(report)

	case ToolGetMultiHistory:
		a, err := decodeArgs[multiHistoryArgs](d, args)
		if err != nil {
			outcome = outcomeInvalid
			return errorResult(err.Error())
		}
		startAt, endAt, err := parseWindow(a.StartDate, a.EndDate)
		if err != nil {
			outcome = outcomeInvalid
			return errorResult(err.Error())
		}
		histories := svc.GetMultiServiceHistory(ctx, a.Services, startAt, endAt)
		return d.success(histories)

	default:
		outcome = outcomeInvalid
		return errorResult("unknown tool: " + tool)
	}
}

// decodeArgs maps loose JSON arguments onto a typed struct and validates it.
func decodeArgs[T any](d *Dispatcher, args map[string]any) (T, error) {
	var out T

	raw, err := json.Marshal(args)
	if err != nil {
		return out, fmt.Errorf("invalid arguments: %v", err)
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return out, fmt.Errorf("invalid arguments: %v", err)
	}

	if err := d.validate.Struct(&out); err != nil {
		return out, fmt.Errorf("%s", validationMessage(err))
	}
	return out, nil
}

// validationMessage renders validator errors as caller-friendly text.
func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return "invalid arguments: " + err.Error()
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, "missing required argument: "+fe.Field())
		case "min":
			msgs = append(msgs, "argument "+fe.Field()+" must not be empty")
		default:
			msgs = append(msgs, "invalid argument: "+fe.Field())
		}
	}
	return strings.Join(msgs, "; ")
}

// parseWindow parses optional period bounds. Accepted layouts are RFC 3339
// and plain dates, interpreted as UTC midnight.
func parseWindow(start, end string) (*time.Time, *time.Time, error) {
	startAt, err := parseInstant(start, "start_date")
	if err != nil {
		return nil, nil, err
	}
	endAt, err := parseInstant(end, "end_date")
	if err != nil {
		return nil, nil, err
	}
	return startAt, endAt, nil
}

func parseInstant(s, field string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return &t, nil
	}
	if t, err := time.ParseInLocation("2006-01-02", s, time.UTC); err == nil {
		return &t, nil
	}
	return nil, fmt.Errorf("invalid %s %q: expected RFC 3339 or YYYY-MM-DD", field, s)
}

// success packages a value as a non-error tool result with a JSON text block.
func (d *Dispatcher) success(v any) ToolCallResult {
	raw, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		d.logger.Error().Err(err).Msg("failed to marshal tool result")
		return errorResult("internal error: failed to encode result")
	}
	return ToolCallResult{
		Content: []ContentBlock{{Type: "text", Text: string(raw)}},
	}
}

func errorResult(message string) ToolCallResult {
	return ToolCallResult{
		Content: []ContentBlock{{Type: "text", Text: message}},
		IsError: true,
	}
}

package health

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// Report is the outcome of a full aggregator run.
type Report struct {
	Status    Status        `json:"status"`
	Timestamp time.Time     `json:"timestamp"`
	Checks    []CheckReport `json:"checks,omitempty"`
}

// CheckReport is the outcome of one check within a Report.
type CheckReport struct {
	Name     string         `json:"name"`
	Status   Status         `json:"status"`
	Message  string         `json:"message,omitempty"`
	Duration string         `json:"duration,omitempty"`
	Details  map[string]any `json:"details,omitempty"`
	Error    string         `json:"error,omitempty"`
}

// Report runs every checker and returns the results in registration order.
func (a *Aggregator) Report(ctx context.Context) Report {
	results := a.CheckAll(ctx)
	report := Report{
		Status:    OverallStatus(results),
		Timestamp: time.Now().UTC(),
	}

	for _, name := range a.CheckerNames() {
		r, ok := results[name]
		if !ok {
			continue
		}
		check := CheckReport{
			Name:     name,
			Status:   r.Status,
			Message:  r.Message,
			Duration: r.Duration.Round(time.Microsecond).String(),
			Details:  r.Details,
		}
		if r.Error != nil {
			check.Error = r.Error.Error()
		}
		report.Checks = append(report.Checks, check)
	}
	return report
}

// String renders the report as one line per check.
func (r Report) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n", r.Status)
	for _, c := range r.Checks {
		fmt.Fprintf(&b, "  %-10s %-9s %s", c.Name, c.Status, c.Message)
		if c.Error != "" {
			fmt.Fprintf(&b, " (%s)", c.Error)
		}
		b.WriteByte('\n')
	}
	return b.String()
}

// httpStatus maps a status to a response code: degraded still serves.
func httpStatus(s Status) int {
	if s == StatusUnhealthy {
		return http.StatusServiceUnavailable
	}
	return http.StatusOK
}

// Handler serves the JSON report of agg.
func Handler(agg *Aggregator) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		report := agg.Report(r.Context())
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(httpStatus(report.Status))
		_ = json.NewEncoder(w).Encode(report)
	})
}

// RegisterHandlers registers /healthz, a liveness probe that always
// answers, and /health, the full report.
func RegisterHandlers(mux *http.ServeMux, agg *Aggregator) {
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		_, _ = w.Write([]byte("OK"))
	})
	mux.Handle("/health", Handler(agg))
}

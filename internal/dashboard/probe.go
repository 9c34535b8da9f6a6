package dashboard

import (
	"context"
	"time"

	"questctl/internal/service"
)

// Performance grades.
const (
	PerfOptimal = "OPTIMAL"
	PerfGood    = "GOOD"
	PerfSlow    = "SLOW"
	PerfError   = "ERROR"
)

// Performance is the result of one probe.
type Performance struct {
	Grade     string        `json:"grade" yaml:"grade"`
	LatencyMS int64         `json:"latency_ms" yaml:"latency_ms"`
	Latency   time.Duration `json:"-" yaml:"-"`
}

// Detail is the latency in milliseconds, or "Check Failed".
func (p Performance) Detail() string {
	if p.Grade == PerfError {
		return "Check Failed"
	}
	return formatMillis(float64(p.LatencyMS))
}

// Grade maps a round trip to OPTIMAL, GOOD or SLOW.
func Grade(latency time.Duration) string {
	switch {
	case latency < 500*time.Millisecond:
		return PerfOptimal
	case latency < time.Second:
		return PerfGood
	default:
		return PerfSlow
	}
}

// Probe times a one-row user fetch.
func Probe(ctx context.Context, svc service.Service, timeout time.Duration) Performance {
	latency, err := svc.ProbeUsers(ctx, timeout)
	if err != nil {
		return Performance{Grade: PerfError}
	}
	return Performance{Grade: Grade(latency), LatencyMS: latency.Milliseconds(), Latency: latency}
}

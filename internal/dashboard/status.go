package dashboard

import (
	"context"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"questctl/internal/service"
	"questctl/internal/store"
)

// Server states.
const (
	StateOK    = "ok"
	StateWarn  = "warn"
	StateError = "error"
)

// Default labels shown when the backend gives none.
const (
	APIPortLabel      = "Port 8080"
	DatabasePortLabel = "PostgreSQL"
)

// ServerLine is one server's row in the status panel.
type ServerLine struct {
	State  string `json:"state" yaml:"state"`
	Text   string `json:"text" yaml:"text"`
	Detail string `json:"detail,omitempty" yaml:"detail,omitempty"`
}

// ServerStatus is the API and database rows.
type ServerStatus struct {
	API      ServerLine `json:"api" yaml:"api"`
	Database ServerLine `json:"database" yaml:"database"`
	// Legacy is set when the rows came from the health endpoint.
	Legacy bool `json:"legacy" yaml:"legacy"`
}

// StatusChecker reads the status endpoint and falls back to health checks
// when the backend has none. The fallback decision is persisted.
type StatusChecker struct {
	Service       service.Service
	State         store.StateStore
	Logger        *zap.Logger
	StatusTimeout time.Duration
	HealthTimeout time.Duration
}

func (c *StatusChecker) log() *zap.Logger {
	if c.Logger == nil {
		return zap.NewNop()
	}
	return c.Logger
}

// Check returns the current server status. It never fails; unreachable
// servers are reported as OFFLINE rows.
func (c *StatusChecker) Check(ctx context.Context) ServerStatus {
	st, err := c.State.Load()
	if err != nil {
		c.log().Warn("failed to load console state", zap.Error(err))
	}
	if st.StatusEndpointDisabled() {
		return c.legacy(ctx)
	}

	snap, err := c.Service.ServerStatus(ctx, c.StatusTimeout)
	if err != nil && ctx.Err() != nil {
		// Cancelled by the caller; the backend said nothing about the endpoint.
		return c.legacy(ctx)
	}
	if err != nil {
		c.log().Warn("status endpoint unavailable, falling back to health checks", zap.Error(err))
		c.remember(st, false)
		return c.legacy(ctx)
	}
	c.remember(st, true)

	return ServerStatus{
		API:      sectionLine(snap.API, "RUNNING", APIPortLabel),
		Database: sectionLine(snap.Database, "CONNECTED", DatabasePortLabel),
	}
}

func (c *StatusChecker) remember(st store.State, supported bool) {
	st.StatusEndpointSupported = &supported
	if err := c.State.Save(st); err != nil {
		c.log().Warn("failed to save console state", zap.Error(err))
	}
}

// legacy probes the health endpoint once for each row.
func (c *StatusChecker) legacy(ctx context.Context) ServerStatus {
	out := ServerStatus{Legacy: true}
	var g errgroup.Group
	g.Go(func() error {
		out.API = healthLine(c.Service.Health(ctx, c.HealthTimeout), "RUNNING", APIPortLabel)
		return nil
	})
	g.Go(func() error {
		out.Database = healthLine(c.Service.Health(ctx, c.HealthTimeout), "CONNECTED", DatabasePortLabel)
		return nil
	})
	_ = g.Wait()
	return out
}

func healthLine(err error, okText, label string) ServerLine {
	if err != nil {
		return ServerLine{State: StateError, Text: "OFFLINE", Detail: label}
	}
	return ServerLine{State: StateOK, Text: okText, Detail: label}
}

func sectionLine(s *service.StatusSection, defaultText, label string) ServerLine {
	if s == nil {
		s = &service.StatusSection{}
	}
	text := s.Message
	if text == "" {
		text = defaultText
	}
	return ServerLine{State: MapState(s.Status), Text: text, Detail: ComposeDetail(s, label)}
}

// MapState normalizes a backend state string.
func MapState(state string) string {
	switch strings.ToLower(state) {
	case "running", "connected", "ok":
		return StateOK
	case "degraded", "warning", "":
		return StateWarn
	default:
		return StateError
	}
}

// ComposeDetail joins the port label, latency and detail with " · ".
func ComposeDetail(s *service.StatusSection, fallback string) string {
	var pieces []string
	if s.PortLabel != "" {
		pieces = append(pieces, s.PortLabel)
	} else if fallback != "" {
		pieces = append(pieces, fallback)
	}
	if s.LatencyMS != nil {
		pieces = append(pieces, formatMillis(*s.LatencyMS))
	}
	if s.Detail != "" {
		pieces = append(pieces, s.Detail)
	}
	return strings.Join(pieces, " · ")
}

func formatMillis(ms float64) string {
	return strconv.FormatFloat(ms, 'f', -1, 64) + "ms"
}

// Package telemetry provides Prometheus metrics and correlation-id aware logging helpers.
package telemetry

import (
	"context"
	"log/slog"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	once sync.Once

	// Counters
	MessagesScanned     prometheus.Counter
	CandidatesFound     prometheus.Counter
	CandidatesResolved  prometheus.Counter
	ConversionReplies   prometheus.Counter
	UnregisteredPrompts prometheus.Counter
	LinksIssued         prometheus.Counter
	LinksConsumed       prometheus.Counter
	LinksExpired        prometheus.Counter
	LinksUnknown        prometheus.Counter
	Deregistrations     prometheus.Counter
	RepliesDeleted      prometheus.Counter

	// Gauges
	GuildsConnected prometheus.Gauge
)

// Init registers metrics (idempotent).
func Init() {
	once.Do(func() {
		MessagesScanned = promauto.NewCounter(prometheus.CounterOpts{Name: "tender_messages_scanned_total", Help: "Guild messages scanned for time tokens"})
		CandidatesFound = promauto.NewCounter(prometheus.CounterOpts{Name: "tender_candidates_found_total", Help: "Delimited time candidates extracted from messages"})
		CandidatesResolved = promauto.NewCounter(prometheus.CounterOpts{Name: "tender_candidates_resolved_total", Help: "Candidates the resolver understood"})
		ConversionReplies = promauto.NewCounter(prometheus.CounterOpts{Name: "tender_conversion_replies_total", Help: "Replies posted with converted timestamps"})
		UnregisteredPrompts = promauto.NewCounter(prometheus.CounterOpts{Name: "tender_unregistered_prompts_total", Help: "Registration prompts shown to unregistered authors"})
		LinksIssued = promauto.NewCounter(prometheus.CounterOpts{Name: "tender_links_issued_total", Help: "Registration links issued"})
		LinksConsumed = promauto.NewCounter(prometheus.CounterOpts{Name: "tender_links_consumed_total", Help: "Registration links consumed successfully"})
		LinksExpired = promauto.NewCounter(prometheus.CounterOpts{Name: "tender_links_expired_total", Help: "Registration submissions rejected as timed out"})
		LinksUnknown = promauto.NewCounter(prometheus.CounterOpts{Name: "tender_links_unknown_total", Help: "Registration submissions with no matching token"})
		Deregistrations = promauto.NewCounter(prometheus.CounterOpts{Name: "tender_deregistrations_total", Help: "Deregistration commands handled"})
		RepliesDeleted = promauto.NewCounter(prometheus.CounterOpts{Name: "tender_replies_deleted_total", Help: "Bot replies deleted via the self-moderation reaction"})
		GuildsConnected = promauto.NewGauge(prometheus.GaugeOpts{Name: "tender_guilds_connected", Help: "Configured guilds the bot reached at startup"})
	})
}

// Inc increments a counter if it is registered.
func Inc(c prometheus.Counter) {
	if c != nil {
		c.Inc()
	}
}

// Add adds n to a counter if it is registered.
func Add(c prometheus.Counter, n int) {
	if c != nil && n > 0 {
		c.Add(float64(n))
	}
}

// SetGuildsConnected records how many configured guilds the bot can see.
func SetGuildsConnected(n int) {
	if GuildsConnected != nil {
		GuildsConnected.Set(float64(n))
	}
}

// Correlation ID helpers ----------------------------------------------------
type corrKeyType struct{}

var corrKey corrKeyType

// WithCorrelation returns a new context embedding correlation id (if absent) and the id.
func WithCorrelation(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, corrKey, id)
}

// GetCorrelation returns correlation id or empty string.
func GetCorrelation(ctx context.Context) string {
	v := ctx.Value(corrKey)
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}

// LoggerWithCorr returns a logger with corr attribute if present.
func LoggerWithCorr(ctx context.Context) *slog.Logger {
	if id := GetCorrelation(ctx); id != "" {
		return slog.Default().With(slog.String("corr", id))
	}
	return slog.Default()
}

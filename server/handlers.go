package server

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/onnwee/time-tender/db"
	"github.com/onnwee/time-tender/telemetry"
)

//go:embed templates/landing.html
var templatesFS embed.FS

var landingTmpl = template.Must(template.ParseFS(templatesFS, "templates/landing.html"))

// linkConsumer is the slice of the registry the web callback needs; tests
// substitute a fake.
type linkConsumer interface {
	ConsumeLink(ctx context.Context, token int64, tz string, now time.Time) (db.ConsumeResult, error)
}

// Handlers holds dependencies for all HTTP handlers.
type Handlers struct {
	db       *sql.DB
	registry linkConsumer
	appURL   string
	ctx      context.Context
}

// NewHandlers creates a new Handlers instance with the given dependencies.
func NewHandlers(ctx context.Context, database *sql.DB, registry linkConsumer, appURL string) *Handlers {
	return &Handlers{
		db:       database,
		registry: registry,
		appURL:   appURL,
		ctx:      ctx,
	}
}

// HandleHealthz responds to liveness probe requests by checking database connectivity.
func (h *Handlers) HandleHealthz(w http.ResponseWriter, r *http.Request) {
	if err := h.db.PingContext(r.Context()); err != nil {
		http.Error(w, "unhealthy", http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// HandleLanding renders the static landing page for a registration link. It
// has no side effects and always succeeds; token validity is only checked on
// submission.
func (h *Handlers) HandleLanding(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	data := struct {
		ResponseURL string
		LinkID      string
	}{
		ResponseURL: h.appURL,
		LinkID:      r.PathValue("link_id"),
	}
	if err := landingTmpl.Execute(w, data); err != nil {
		telemetry.LoggerWithCorr(r.Context()).Error("landing render failed", slog.Any("err", err), slog.String("component", "http"))
	}
}

// linkID accepts the token as either a JSON number or a JSON string.
type linkID int64

func (l *linkID) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid link_id: %w", err)
	}
	*l = linkID(n)
	return nil
}

// HandleSubmit consumes a registration link: it locates the record holding
// the token, validates its age, and writes the submitted timezone. All three
// outcomes are plain 200 bodies; the chat side told the user what to expect.
func (h *Handlers) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	var req struct {
		LinkID linkID `json:"link_id"`
		TZ     string `json:"tz"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeText(w, "No such registration")
		return
	}
	if !validZone(req.TZ) {
		writeText(w, "Invalid timezone")
		return
	}

	res, err := h.registry.ConsumeLink(r.Context(), int64(req.LinkID), req.TZ, time.Now().UTC())
	if err != nil {
		telemetry.LoggerWithCorr(r.Context()).Error("link consumption failed", slog.Any("err", err), slog.String("component", "http"))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	switch res {
	case db.ConsumeOK:
		telemetry.Inc(telemetry.LinksConsumed)
		writeText(w, "Received")
	case db.ConsumeExpired:
		telemetry.Inc(telemetry.LinksExpired)
		writeText(w, "Link timed out")
	default:
		telemetry.Inc(telemetry.LinksUnknown)
		writeText(w, "No such registration")
	}
}

func writeText(w http.ResponseWriter, body string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(body))
}

// validZone reports whether tz names a loadable IANA zone.
func validZone(tz string) bool {
	if tz == "" {
		return false
	}
	_, err := time.LoadLocation(tz)
	return err == nil
}

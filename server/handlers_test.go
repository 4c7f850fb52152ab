package server

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/onnwee/time-tender/db"
)

// fakeRegistry scripts ConsumeLink outcomes and records calls.
type fakeRegistry struct {
	result db.ConsumeResult
	calls  int
	token  int64
	tz     string
}

func (f *fakeRegistry) ConsumeLink(ctx context.Context, token int64, tz string, now time.Time) (db.ConsumeResult, error) {
	f.calls++
	f.token = token
	f.tz = tz
	return f.result, nil
}

func newTestHandlers(reg *fakeRegistry) *Handlers {
	return NewHandlers(context.Background(), nil, reg, "https://time.example.com/")
}

func postSubmit(t *testing.T, h *Handlers, body string) (int, string) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.HandleSubmit(rec, req)
	data, err := io.ReadAll(rec.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return rec.Code, string(data)
}

func TestHandleSubmitReceived(t *testing.T) {
	reg := &fakeRegistry{result: db.ConsumeOK}
	code, body := postSubmit(t, newTestHandlers(reg), `{"link_id": 1234567, "tz": "America/New_York"}`)
	if code != http.StatusOK || body != "Received" {
		t.Errorf("got %d %q, want 200 Received", code, body)
	}
	if reg.calls != 1 || reg.token != 1234567 || reg.tz != "America/New_York" {
		t.Errorf("registry called with token=%d tz=%q calls=%d", reg.token, reg.tz, reg.calls)
	}
}

func TestHandleSubmitLinkIDAsString(t *testing.T) {
	reg := &fakeRegistry{result: db.ConsumeOK}
	code, body := postSubmit(t, newTestHandlers(reg), `{"link_id": "1234567", "tz": "Europe/Berlin"}`)
	if code != http.StatusOK || body != "Received" {
		t.Errorf("got %d %q, want 200 Received", code, body)
	}
	if reg.token != 1234567 {
		t.Errorf("token = %d, want 1234567", reg.token)
	}
}

func TestHandleSubmitTimedOut(t *testing.T) {
	reg := &fakeRegistry{result: db.ConsumeExpired}
	code, body := postSubmit(t, newTestHandlers(reg), `{"link_id": 1234567, "tz": "Asia/Tokyo"}`)
	if code != http.StatusOK || body != "Link timed out" {
		t.Errorf("got %d %q, want 200 Link timed out", code, body)
	}
}

func TestHandleSubmitNoSuchRegistration(t *testing.T) {
	reg := &fakeRegistry{result: db.ConsumeNotFound}
	code, body := postSubmit(t, newTestHandlers(reg), `{"link_id": 7654321, "tz": "Asia/Tokyo"}`)
	if code != http.StatusOK || body != "No such registration" {
		t.Errorf("got %d %q, want 200 No such registration", code, body)
	}
}

func TestHandleSubmitInvalidZoneNeverTouchesRegistry(t *testing.T) {
	reg := &fakeRegistry{result: db.ConsumeOK}
	_, body := postSubmit(t, newTestHandlers(reg), `{"link_id": 1234567, "tz": "Not/AZone"}`)
	if body != "Invalid timezone" {
		t.Errorf("body = %q, want Invalid timezone", body)
	}
	if reg.calls != 0 {
		t.Errorf("registry called %d times for invalid zone", reg.calls)
	}
}

func TestHandleSubmitMalformedBody(t *testing.T) {
	reg := &fakeRegistry{result: db.ConsumeOK}
	_, body := postSubmit(t, newTestHandlers(reg), `{"link_id": "abc"`)
	if body != "No such registration" {
		t.Errorf("body = %q, want No such registration", body)
	}
	if reg.calls != 0 {
		t.Errorf("registry called %d times for malformed body", reg.calls)
	}
}

func TestHandleLanding(t *testing.T) {
	h := newTestHandlers(&fakeRegistry{})
	req := httptest.NewRequest(http.MethodGet, "/1234567", nil)
	req.SetPathValue("link_id", "1234567")
	rec := httptest.NewRecorder()
	h.HandleLanding(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	page := rec.Body.String()
	if !strings.Contains(page, "1234567") {
		t.Errorf("landing page missing link id")
	}
	if !strings.Contains(page, "https://time.example.com/") {
		t.Errorf("landing page missing callback URL")
	}
}

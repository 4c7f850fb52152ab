package times

import (
	"fmt"
	"strings"
	"testing"
	"time"
)

func TestLocalizeRoundTrip(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Fatalf("LoadLocation: %v", err)
	}

	// Author writes <tomorrow 3pm>; base is a fixed noon so "tomorrow" is
	// unambiguous regardless of when the test runs.
	base := time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC)
	naives := NewResolver().Resolve([]string{"tomorrow 3pm"}, base)
	if len(naives) != 1 {
		t.Fatalf("resolved %d values, want 1", len(naives))
	}
	n := naives[0]
	if n.Year != 2026 || n.Month != time.March || n.Day != 11 || n.Hour != 15 {
		t.Fatalf("resolved %+v, want 2026-03-11 15:00", n)
	}

	got := Localize(n, loc)
	want := time.Date(2026, time.March, 11, 15, 0, 0, 0, loc).Unix()
	if got != want {
		t.Errorf("Localize = %d, want %d (3pm Eastern on the following day)", got, want)
	}
}

func TestResolvePreservesOrder(t *testing.T) {
	base := time.Date(2026, time.March, 10, 9, 0, 0, 0, time.UTC)
	naives := NewResolver().Resolve([]string{"3pm", "5pm"}, base)
	if len(naives) != 2 {
		t.Fatalf("resolved %d values, want 2", len(naives))
	}
	if naives[0].Hour != 15 || naives[1].Hour != 17 {
		t.Errorf("resolved hours %d,%d; want 15,17 in source order", naives[0].Hour, naives[1].Hour)
	}
}

func TestResolveDropsBadCandidateOnly(t *testing.T) {
	// One garbage candidate must not suppress candidates after it.
	base := time.Date(2026, time.March, 10, 9, 0, 0, 0, time.UTC)
	naives := NewResolver().Resolve([]string{"3pm", "@@@@", "5pm"}, base)
	if len(naives) != 2 {
		t.Fatalf("resolved %d values, want 2", len(naives))
	}
	if naives[0].Hour != 15 || naives[1].Hour != 17 {
		t.Errorf("resolved hours %d,%d; want 15,17", naives[0].Hour, naives[1].Hour)
	}
}

func TestFormatReply(t *testing.T) {
	loc, _ := time.LoadLocation("UTC")
	epochs := LocalizeAll([]Naive{
		{Year: 2026, Month: time.March, Day: 11, Hour: 15},
		{Year: 2026, Month: time.March, Day: 11, Hour: 17},
	}, loc)

	reply := FormatReply(epochs)
	first := fmt.Sprintf("<t:%d:F>", epochs[0])
	second := fmt.Sprintf("<t:%d:F>", epochs[1])
	want := "That's " + first + ", " + second + " auto-converted to local time."
	if reply != want {
		t.Errorf("FormatReply = %q, want %q", reply, want)
	}
	if strings.Index(reply, first) > strings.Index(reply, second) {
		t.Errorf("timestamp tokens out of source order")
	}
}

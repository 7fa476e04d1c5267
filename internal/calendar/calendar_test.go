package calendar

import (
	"testing"

	"github.com/fortuna/apex/internal/timing"
)

func TestSeason2024Shape(t *testing.T) {
	cal := Season2024()
	if cal.Rounds() != 24 {
		t.Fatalf("rounds = %d, want 24", cal.Rounds())
	}

	events := cal.Events()
	for i, ev := range events {
		if ev.Round != i+1 {
			t.Errorf("events[%d].Round = %d, want %d", i, ev.Round, i+1)
		}
		if i > 0 && !events[i-1].Date.Before(ev.Date) {
			t.Errorf("round %d date %v not after round %d", ev.Round, ev.Date, events[i-1].Round)
		}
	}
}

func TestEventBounds(t *testing.T) {
	cal := Season2024()
	if _, err := cal.Event(0); err == nil {
		t.Error("round 0 accepted")
	}
	if _, err := cal.Event(25); err == nil {
		t.Error("round 25 accepted")
	}
	ev, err := cal.Event(21)
	if err != nil {
		t.Fatalf("Event(21): %v", err)
	}
	if ev.Name != "Brazil" {
		t.Errorf("round 21 = %s, want Brazil", ev.Name)
	}
}

func TestSprintKeys(t *testing.T) {
	cal := Season2024()

	key, ok := cal.SprintKey(5)
	if !ok {
		t.Fatal("round 5 should have a sprint")
	}
	if key.Type != timing.SessionSprint || key.Round != 5 || key.Season != 2024 {
		t.Errorf("sprint key = %v", key)
	}

	if _, ok := cal.SprintKey(8); ok {
		t.Error("Monaco has no sprint")
	}
}

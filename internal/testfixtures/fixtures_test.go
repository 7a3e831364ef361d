package testfixtures

import (
	"testing"
	"time"
)

func TestClockAdvanceAndSet(t *testing.T) {
	start := time.Date(2025, time.March, 10, 9, 0, 0, 0, time.UTC)
	clock := NewClock(start)

	updated := clock.Advance(90 * time.Minute)
	if !updated.Equal(start.Add(90 * time.Minute)) {
		t.Fatalf("advance returned %v", updated)
	}

	reset := start.Add(24 * time.Hour)
	clock.Set(reset)
	if !clock.Now().Equal(reset) {
		t.Fatalf("expected %v after Set, got %v", reset, clock.Now())
	}
}

func TestClockDefaultsToReferenceTime(t *testing.T) {
	clock := NewClock(time.Time{})
	if !clock.Now().Equal(ReferenceTime()) {
		t.Fatalf("expected ReferenceTime, got %v", clock.Now())
	}
}

func TestIDGeneratorSequence(t *testing.T) {
	gen := NewIDGenerator("booking")
	if first := gen.Next(); first != "booking-1" {
		t.Fatalf("unexpected first ID: %s", first)
	}
	if second := gen.Next(); second != "booking-2" {
		t.Fatalf("unexpected second ID: %s", second)
	}
}

func TestBookingFixturesDoNotOverlap(t *testing.T) {
	first := NewBookingFixture("room-1")
	second := NewBookingFixture("room-1")

	if first.ID == second.ID {
		t.Fatal("expected distinct booking IDs")
	}
	overlap := first.StartMinutes < second.EndMinutes && first.EndMinutes > second.StartMinutes
	if first.Date == second.Date && overlap {
		t.Fatalf("expected non-overlapping windows, got %d-%d and %d-%d",
			first.StartMinutes, first.EndMinutes, second.StartMinutes, second.EndMinutes)
	}
}

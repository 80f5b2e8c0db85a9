package client

import (
	"testing"
	"time"
)

var wib = time.FixedZone("WIB", 7*3600)

func at(day, hour, minute int) time.Time {
	return time.Date(2026, time.March, day, hour, minute, 0, 0, wib)
}

func TestReconcileEmptyInputsIsIdle(t *testing.T) {
	res := Reconcile(nil, nil, nil, at(10, 9, 0))
	if res.State != StateIdle {
		t.Fatalf("state = %s, want IDLE", res.State)
	}
	if res.RelevantTime != nil || res.Display != nil {
		t.Fatalf("expected no relevant time or display record")
	}
}

func TestReconcileServerCheckedInWins(t *testing.T) {
	in := at(10, 8, 2)
	server := &ServerStatus{CurrentStatus: "CHECKED_IN", LastCheckInTime: &in}
	history := []Record{{Date: "2026-03-09", CheckInTime: "08:00", CheckOutTime: "17:00"}}
	cached := &CachedStatus{Status: StateCheckedOut, Timestamp: at(10, 7, 0)}

	res := Reconcile(server, history, cached, at(10, 9, 0))
	if res.State != StateCheckedIn {
		t.Fatalf("state = %s, want CHECKED_IN", res.State)
	}
	if res.RelevantTime == nil || !res.RelevantTime.Equal(in) {
		t.Fatalf("relevant time = %v, want %v", res.RelevantTime, in)
	}
}

func TestReconcileServerCheckedInWithoutTimestamp(t *testing.T) {
	now := at(10, 9, 0)
	res := Reconcile(&ServerStatus{CurrentStatus: "CHECKED_IN"}, nil, nil, now)
	if res.State != StateCheckedIn {
		t.Fatalf("state = %s, want CHECKED_IN", res.State)
	}
	if res.RelevantTime == nil || !res.RelevantTime.Equal(now) {
		t.Fatalf("relevant time should fall back to now")
	}
}

func TestReconcileServerCheckedOutSameDay(t *testing.T) {
	out := at(10, 17, 5)
	server := &ServerStatus{CurrentStatus: "CHECKED_OUT", LastCheckOutTime: &out}

	res := Reconcile(server, nil, nil, at(10, 18, 0))
	if res.State != StateCheckedOut {
		t.Fatalf("state = %s, want CHECKED_OUT", res.State)
	}
}

// Pins the legacy day-of-month comparison: a check-out on the 10th of
// a previous month is still adopted on the 10th of this month.
func TestReconcileServerCheckedOutDayOfMonthOnly(t *testing.T) {
	out := time.Date(2026, time.February, 10, 17, 0, 0, 0, wib)
	server := &ServerStatus{CurrentStatus: "CHECKED_OUT", LastCheckOutTime: &out}

	res := Reconcile(server, nil, nil, at(10, 9, 0))
	if res.State != StateCheckedOut {
		t.Fatalf("state = %s, want CHECKED_OUT under day-of-month comparison", res.State)
	}
}

func TestReconcileServerCheckedOutStaleFallsThrough(t *testing.T) {
	out := at(9, 17, 0)
	server := &ServerStatus{CurrentStatus: "CHECKED_OUT", LastCheckOutTime: &out}
	history := []Record{{Date: "2026-03-10", CheckInTime: "08:00"}}

	res := Reconcile(server, history, nil, at(10, 9, 0))
	if res.State != StateCheckedIn {
		t.Fatalf("state = %s, want CHECKED_IN from history", res.State)
	}
}

func TestReconcileHistoryOpenCheckInToday(t *testing.T) {
	history := []Record{
		{Date: "2026-03-09", CheckInTime: "08:00", CheckOutTime: "17:00"},
		{Date: "2026-03-10", CheckInTime: "07:58"},
	}
	res := Reconcile(nil, history, nil, at(10, 12, 0))
	if res.State != StateCheckedIn {
		t.Fatalf("state = %s, want CHECKED_IN", res.State)
	}
	if res.Display == nil || res.Display.Date != "2026-03-10" {
		t.Fatalf("display record should be today's")
	}
}

// A night shift checked in yesterday evening is still checked in
// shortly after midnight.
func TestReconcileHistoryOpenCheckInAcrossMidnight(t *testing.T) {
	history := []Record{{Date: "2026-03-09", CheckInTime: "22:00"}}
	res := Reconcile(nil, history, nil, at(10, 2, 0))
	if res.State != StateCheckedIn {
		t.Fatalf("state = %s, want CHECKED_IN within the 24h window", res.State)
	}
}

func TestReconcileHistoryOpenCheckInExpired(t *testing.T) {
	history := []Record{{Date: "2026-03-07", CheckInTime: "08:00"}}
	res := Reconcile(nil, history, nil, at(10, 9, 0))
	if res.State != StateIdle {
		t.Fatalf("state = %s, want IDLE for a 3-day-old open check-in", res.State)
	}
}

func TestReconcileHistorySentinelCheckOutIsOpen(t *testing.T) {
	for _, sentinel := range []string{"", "00:00", "00:00:00"} {
		history := []Record{{Date: "2026-03-10", CheckInTime: "08:00", CheckOutTime: sentinel}}
		res := Reconcile(nil, history, nil, at(10, 9, 0))
		if res.State != StateCheckedIn {
			t.Errorf("sentinel %q: state = %s, want CHECKED_IN", sentinel, res.State)
		}
	}
}

func TestReconcileHistoryCheckedOutToday(t *testing.T) {
	history := []Record{{Date: "2026-03-10", CheckInTime: "08:00", CheckOutTime: "17:02"}}
	res := Reconcile(nil, history, nil, at(10, 18, 0))
	if res.State != StateCheckedOut {
		t.Fatalf("state = %s, want CHECKED_OUT", res.State)
	}
	want := at(10, 8, 0)
	if res.RelevantTime == nil || !res.RelevantTime.Equal(want) {
		t.Fatalf("relevant time = %v, want check-in instant %v", res.RelevantTime, want)
	}
}

func TestReconcileHistoryPicksLatestRecord(t *testing.T) {
	history := []Record{
		{Date: "2026-03-08", CheckInTime: "08:00"},
		{Date: "2026-03-10", CheckInTime: "08:05"},
		{Date: "2026-03-09", CheckInTime: "08:00", CheckOutTime: "17:00"},
	}
	res := Reconcile(nil, history, nil, at(10, 9, 0))
	if res.State != StateCheckedIn {
		t.Fatalf("state = %s, want CHECKED_IN", res.State)
	}
	if res.Display == nil || res.Display.Date != "2026-03-10" {
		t.Fatalf("latest record should sort to the front")
	}
}

func TestReconcileCacheSameDayApplies(t *testing.T) {
	cached := &CachedStatus{Status: StateCheckedOut, Timestamp: at(10, 17, 1)}
	res := Reconcile(nil, nil, cached, at(10, 17, 2))
	if res.State != StateCheckedOut {
		t.Fatalf("state = %s, want CHECKED_OUT from cache", res.State)
	}
	if res.Display == nil || res.Display.CheckOutTime != "17:01" {
		t.Fatalf("synthesized display record missing check-out clock: %+v", res.Display)
	}
}

// The cache override compares the full calendar date, not just the
// day of month: yesterday's entry never leaks into today.
func TestReconcileCacheExpiresAtMidnight(t *testing.T) {
	cached := &CachedStatus{Status: StateCheckedIn, Timestamp: at(9, 23, 50)}
	res := Reconcile(nil, nil, cached, at(10, 0, 5))
	if res.State != StateIdle {
		t.Fatalf("state = %s, want IDLE after midnight", res.State)
	}
}

func TestReconcileIsPure(t *testing.T) {
	in := at(10, 8, 0)
	server := &ServerStatus{CurrentStatus: "CHECKED_IN", LastCheckInTime: &in}
	history := []Record{
		{Date: "2026-03-10", CheckInTime: "08:00"},
		{Date: "2026-03-09", CheckInTime: "08:00", CheckOutTime: "17:00"},
	}
	now := at(10, 9, 0)

	first := Reconcile(server, history, nil, now)
	second := Reconcile(server, history, nil, now)
	if first.State != second.State {
		t.Fatalf("repeated calls disagree: %s vs %s", first.State, second.State)
	}
	if history[0].Date != "2026-03-10" || history[1].Date != "2026-03-09" {
		t.Fatalf("input slice was reordered")
	}
}

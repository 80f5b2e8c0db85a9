package shift

import (
	"testing"
	"time"
)

func TestParseClock(t *testing.T) {
	cases := []struct {
		in      string
		want    int
		wantErr bool
	}{
		{"08:00", 480, false},
		{"08:03:15", 483, false},
		{"23:59", 1439, false},
		{"24:00", 0, true},
		{"8", 0, true},
		{"ab:cd", 0, true},
	}
	for _, tc := range cases {
		got, err := ParseClock(tc.in)
		if tc.wantErr {
			if err == nil {
				t.Fatalf("%q: expected error", tc.in)
			}
			continue
		}
		if err != nil {
			t.Fatalf("%q: unexpected error: %v", tc.in, err)
		}
		if got != tc.want {
			t.Fatalf("%q: expected %d, got %d", tc.in, tc.want, got)
		}
	}
}

func TestDetectNearestStart(t *testing.T) {
	shifts := []Shift{
		{ID: "morning", StartHour: "08:00"},
		{ID: "evening", StartHour: "16:00"},
	}

	got := Detect(shifts, 9*60+30)
	if got == nil || got.ID != "morning" {
		t.Fatalf("expected morning shift, got %+v", got)
	}

	got = Detect(shifts, 15*60)
	if got == nil || got.ID != "evening" {
		t.Fatalf("expected evening shift, got %+v", got)
	}

	if Detect(nil, 480) != nil {
		t.Fatal("expected nil with no shifts configured")
	}
}

func TestLateness(t *testing.T) {
	// 10 minute tolerance, half day past 60 minutes.
	res, err := Lateness("09:00", 9*60+10, 10, 60)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Late {
		t.Fatal("arrival at tolerance boundary must be on time")
	}

	res, err = Lateness("09:00", 9*60+25, 10, 60)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.Late || res.LateMinutes != 25 || res.HalfDay {
		t.Fatalf("expected 25 min late without half day, got %+v", res)
	}

	res, err = Lateness("09:00", 10*60+5, 10, 60)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.HalfDay {
		t.Fatalf("expected half day when >60 min late, got %+v", res)
	}
}

func TestNeedsOvertimeConfirmation(t *testing.T) {
	day := time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC)

	// 3h01m past a 17:00 shift end.
	now := day.Add(20*time.Hour + time.Minute)
	if !NeedsOvertimeConfirmation(now, "17:00", DefaultOvertimeGateHours) {
		t.Fatal("expected confirmation gate at 3h01m past shift end")
	}

	// Exactly 3h is already gated.
	if !NeedsOvertimeConfirmation(day.Add(20*time.Hour), "17:00", DefaultOvertimeGateHours) {
		t.Fatal("expected confirmation gate at exactly 3h")
	}

	if NeedsOvertimeConfirmation(day.Add(19*time.Hour+59*time.Minute), "17:00", DefaultOvertimeGateHours) {
		t.Fatal("did not expect gate at 2h59m")
	}

	if NeedsOvertimeConfirmation(now, "nonsense", DefaultOvertimeGateHours) {
		t.Fatal("unparseable shift end must not gate check-out")
	}

	// A shorter configured gate moves the threshold.
	if !NeedsOvertimeConfirmation(day.Add(19*time.Hour), "17:00", 2) {
		t.Fatal("expected gate at 2h with a 2h policy")
	}

	// Zero falls back to the default.
	if NeedsOvertimeConfirmation(day.Add(19*time.Hour), "17:00", 0) {
		t.Fatal("zero policy must use the 3h default")
	}
}

func TestIsOvertime(t *testing.T) {
	day := time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC)
	checkIn := day.Add(9 * time.Hour)

	if !IsOvertime("STAFF", checkIn, day.Add(20*time.Hour+time.Minute), "17:00", DefaultOvertimeGateHours) {
		t.Fatal("staff 3h01m past shift end is overtime")
	}
	if IsOvertime("STAFF", checkIn, day.Add(19*time.Hour), "17:00", DefaultOvertimeGateHours) {
		t.Fatal("staff 2h past shift end is not overtime")
	}
	if !IsOvertime("HEAD", checkIn, checkIn.Add(9*time.Hour), "17:00", DefaultOvertimeGateHours) {
		t.Fatal("head working >8h is overtime")
	}
	if IsOvertime("HEAD", checkIn, checkIn.Add(7*time.Hour), "17:00", DefaultOvertimeGateHours) {
		t.Fatal("head working 7h is not overtime")
	}
	if !IsOvertime("STAFF", checkIn, day.Add(19*time.Hour+time.Minute), "17:00", 2) {
		t.Fatal("staff 2h01m past shift end is overtime with a 2h policy")
	}
	if !IsOvertime("STAFF", checkIn, day.Add(20*time.Hour+time.Minute), "17:00", 0) {
		t.Fatal("zero policy must use the 3h default")
	}
}

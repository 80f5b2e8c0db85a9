package attendance

import (
	"testing"
	"time"
)

func entryAt(typ EntryType, ts time.Time) Entry {
	return Entry{UserID: "u-1", Type: typ, Timestamp: ts}
}

func TestGroupDaysPairsAndSorts(t *testing.T) {
	loc := time.UTC
	d1 := time.Date(2026, 3, 9, 8, 3, 0, 0, loc)
	d2 := time.Date(2026, 3, 10, 8, 15, 0, 0, loc)

	in1 := entryAt(TypeCheckIn, d1)
	in1.IsLate = false
	out1 := entryAt(TypeCheckOut, d1.Add(9*time.Hour))
	in2 := entryAt(TypeCheckIn, d2)
	in2.IsLate = true

	records := GroupDays([]Entry{in1, out1, in2}, loc)
	if len(records) != 2 {
		t.Fatalf("expected 2 day records, got %d", len(records))
	}
	if records[0].Date != "2026-03-10" {
		t.Fatalf("expected newest date first, got %s", records[0].Date)
	}
	if !records[0].IsLate || records[0].CheckOutTime != "" {
		t.Fatalf("unexpected latest record: %+v", records[0])
	}
	if records[1].CheckInTime != "08:03" || records[1].CheckOutTime != "17:03" {
		t.Fatalf("unexpected paired record: %+v", records[1])
	}
	if records[0].Anomalous || records[1].Anomalous {
		t.Fatal("no anomaly expected for normal days")
	}
}

func TestGroupDaysFlagsAnomaly(t *testing.T) {
	loc := time.UTC
	out := entryAt(TypeCheckOut, time.Date(2026, 3, 9, 17, 0, 0, 0, loc))

	records := GroupDays([]Entry{out}, loc)
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
	if !records[0].Anomalous {
		t.Fatal("check-out without check-in must be flagged anomalous")
	}
	if records[0].CheckOutTime != "17:00" || records[0].CheckInTime != "" {
		t.Fatalf("anomalous record must not be repaired: %+v", records[0])
	}
}

func TestComputeStats(t *testing.T) {
	loc := time.UTC
	base := time.Date(2026, 3, 2, 8, 0, 0, 0, loc)

	late := entryAt(TypeCheckIn, base)
	late.IsLate = true
	overtime := entryAt(TypeCheckOut, base.Add(12*time.Hour))
	overtime.IsOvertime = true

	st := ComputeStats([]Entry{
		entryAt(TypeCheckIn, base.AddDate(0, 0, 1)),
		late,
		overtime,
		entryAt(TypePermit, base.AddDate(0, 0, 2)),
		entryAt(TypeSick, base.AddDate(0, 0, 3)),
		entryAt(TypeAlpha, base.AddDate(0, 0, 4)),
	})

	if st.Present != 1 || st.Late != 1 || st.Overtime != 1 || st.Permit != 2 || st.Absent != 1 {
		t.Fatalf("unexpected stats: %+v", st)
	}
}

func TestComputeRecapAutoAbsent(t *testing.T) {
	loc := time.UTC

	// Day 1: normal on-time day. Day 2: sweeper check-out only.
	in := entryAt(TypeCheckIn, time.Date(2026, 3, 2, 8, 0, 0, 0, loc))
	out := entryAt(TypeCheckOut, time.Date(2026, 3, 2, 17, 0, 0, 0, loc))
	sweeper := entryAt(TypeCheckOut, time.Date(2026, 3, 3, 23, 55, 0, 0, loc))

	recap := ComputeRecap("2026-03", []Entry{in, out, sweeper}, loc)
	if recap.OnTime != 1 {
		t.Fatalf("expected 1 on-time day, got %+v", recap)
	}
	if recap.Absent != 1 {
		t.Fatalf("sweeper-only day must count absent, got %+v", recap)
	}
}

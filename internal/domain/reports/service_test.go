package reports

import (
	"bytes"
	"testing"
	"time"

	"absensi/internal/domain/attendance"
)

var wib = time.FixedZone("WIB", 7*3600)

func entry(day int, typ attendance.EntryType, hour int, late, half bool) attendance.Entry {
	return attendance.Entry{
		UserID:    "u1",
		Type:      typ,
		Timestamp: time.Date(2026, time.March, day, hour, 0, 0, 0, wib),
		IsLate:    late,
		IsHalfDay: half,
	}
}

func TestSummarizeCountsDays(t *testing.T) {
	entries := []attendance.Entry{
		entry(2, attendance.TypeCheckIn, 8, false, false),
		entry(2, attendance.TypeCheckOut, 17, false, false),
		entry(3, attendance.TypeCheckIn, 9, true, true),
		entry(3, attendance.TypeCheckOut, 17, false, false),
		entry(4, attendance.TypePermit, 0, false, false),
	}

	m := summarize(staffer{ID: "u1", Name: "Ani", Role: "STAFF"}, entries, wib)
	if m.Present != 2 {
		t.Fatalf("present = %d, want 2", m.Present)
	}
	if m.Late != 1 {
		t.Fatalf("late = %d, want 1", m.Late)
	}
	if m.HalfDay != 1 {
		t.Fatalf("halfDay = %d, want 1", m.HalfDay)
	}
	if m.Permit != 1 {
		t.Fatalf("permit = %d, want 1", m.Permit)
	}
}

func TestSummarizeLateDaysStillPresent(t *testing.T) {
	entries := []attendance.Entry{
		entry(2, attendance.TypeCheckIn, 9, true, false),
		entry(3, attendance.TypeCheckIn, 10, true, false),
	}

	m := summarize(staffer{ID: "u1", Name: "Ani", Role: "STAFF"}, entries, wib)
	if m.Present != 2 {
		t.Fatalf("present = %d, want 2", m.Present)
	}
	if m.Late != 2 {
		t.Fatalf("late = %d, want 2", m.Late)
	}
}

func TestRenderXLSXProducesWorkbook(t *testing.T) {
	recap := &BranchRecap{
		BranchID:   "b1",
		BranchName: "HQ",
		MonthCode:  "2026-03",
		Members: []Member{
			{UserID: "u1", Name: "Ani", Role: "STAFF", Present: 20, Late: 2},
		},
	}

	var buf bytes.Buffer
	if err := RenderXLSX(recap, &buf); err != nil {
		t.Fatalf("RenderXLSX: %v", err)
	}
	if buf.Len() == 0 {
		t.Fatalf("empty workbook output")
	}
	// xlsx is a zip container.
	if got := buf.Bytes()[:2]; got[0] != 'P' || got[1] != 'K' {
		t.Fatalf("output is not a zip archive: % x", got)
	}
}

package attendance

import (
	"sort"
	"time"
)

const (
	dayFormat   = "2006-01-02"
	clockFormat = "15:04"
)

// autoAbsentClock is the synthetic check-out stamped by the nightly
// sweeper for users who never checked out; a day holding only this
// entry counts as absent.
const autoAbsentClock = "23:55"

func dayKey(t time.Time, loc *time.Location) string {
	return t.In(loc).Format(dayFormat)
}

func clockOf(t time.Time, loc *time.Location) string {
	return t.In(loc).Format(clockFormat)
}

// GroupDays pairs raw entries into per-date records, newest date
// first. A check-out with no same-day check-in is flagged Anomalous
// and left untouched; correction is an admin operation.
func GroupDays(entries []Entry, loc *time.Location) []DayRecord {
	byDate := make(map[string]*DayRecord)
	for _, e := range entries {
		date := dayKey(e.Timestamp, loc)
		rec, ok := byDate[date]
		if !ok {
			rec = &DayRecord{Date: date}
			byDate[date] = rec
		}
		switch e.Type {
		case TypeCheckIn:
			rec.CheckInTime = clockOf(e.Timestamp, loc)
			rec.IsLate = e.IsLate
			rec.IsHalfDay = e.IsHalfDay
			if rec.Notes == "" {
				rec.Notes = e.Notes
			}
		case TypeCheckOut:
			rec.CheckOutTime = clockOf(e.Timestamp, loc)
			if e.IsOvertime {
				rec.IsOvertime = true
			}
			if rec.Notes == "" {
				rec.Notes = e.Notes
			}
		}
	}

	records := make([]DayRecord, 0, len(byDate))
	for _, rec := range byDate {
		rec.Anomalous = rec.CheckOutTime != "" && rec.CheckInTime == ""
		records = append(records, *rec)
	}
	sort.Slice(records, func(i, j int) bool {
		return records[i].Date > records[j].Date
	})
	return records
}

// BuildCalendar maps a month of entries to the mobile calendar view.
func BuildCalendar(entries []Entry, loc *time.Location) []CalendarDay {
	var days []CalendarDay
	for _, e := range entries {
		switch e.Type {
		case TypeCheckIn:
			status := "onTime"
			notes := e.Notes
			if e.IsLate {
				status = "late"
				if notes == "" {
					notes = "Late"
				}
			} else if notes == "" {
				notes = "On time"
			}
			days = append(days, CalendarDay{
				Date:      dayKey(e.Timestamp, loc),
				Status:    status,
				Time:      clockOf(e.Timestamp, loc),
				IsHalfDay: e.IsHalfDay,
				IsLate:    e.IsLate,
				Notes:     notes,
			})
		case TypePermit, TypeSick:
			notes := e.Notes
			if notes == "" {
				if e.Type == TypeSick {
					notes = "Sick leave"
				} else {
					notes = "Permit"
				}
			}
			days = append(days, CalendarDay{
				Date:   dayKey(e.Timestamp, loc),
				Status: "off",
				Time:   "-",
				Notes:  notes,
			})
		}
	}
	return days
}

// ComputeStats counts the month's events for the dashboard card.
func ComputeStats(entries []Entry) Stats {
	var st Stats
	for _, e := range entries {
		switch {
		case e.Type == TypeCheckIn && e.IsLate:
			st.Late++
		case e.Type == TypeCheckIn:
			st.Present++
		case e.Type == TypePermit || e.Type == TypeSick:
			st.Permit++
		case e.Type == TypeAlpha:
			st.Absent++
		}
		if e.IsOvertime {
			st.Overtime++
		}
	}
	return st
}

// ComputeRecap reduces a month of entries to per-day outcomes. A day
// whose only trace is the 23:55 sweeper check-out is an implicit
// absence.
func ComputeRecap(monthCode string, entries []Entry, loc *time.Location) RecapMonth {
	type dayFlags struct {
		hasCheckIn bool
		isLate     bool
		hasAbsent  bool
		hasPermit  bool
		autoAbsent bool
	}

	byDate := make(map[string]*dayFlags)
	for _, e := range entries {
		date := dayKey(e.Timestamp, loc)
		flags, ok := byDate[date]
		if !ok {
			flags = &dayFlags{}
			byDate[date] = flags
		}
		switch e.Type {
		case TypeCheckIn:
			flags.hasCheckIn = true
			if e.IsLate {
				flags.isLate = true
			}
		case TypeAlpha:
			flags.hasAbsent = true
		case TypePermit, TypeSick:
			flags.hasPermit = true
		case TypeCheckOut:
			if clockOf(e.Timestamp, loc) == autoAbsentClock {
				flags.autoAbsent = true
			}
		}
	}

	recap := RecapMonth{MonthCode: monthCode}
	for _, day := range byDate {
		switch {
		case day.hasAbsent:
			recap.Absent++
		case day.autoAbsent && !day.hasCheckIn:
			recap.Absent++
		case day.hasPermit:
			recap.Off++
		case day.hasCheckIn && day.isLate:
			recap.Late++
		case day.hasCheckIn:
			recap.OnTime++
		}
	}
	return recap
}

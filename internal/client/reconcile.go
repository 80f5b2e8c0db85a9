// Package client is the device-side attendance engine: it merges the
// server's realtime aggregate, the event history and the local status
// cache into one authoritative view of "today", and owns the
// submission and recovery path for check-in/check-out.
package client

import (
	"sort"
	"strings"
	"time"
)

type State string

const (
	StateIdle       State = "IDLE"
	StateCheckedIn  State = "CHECKED_IN"
	StateCheckedOut State = "CHECKED_OUT"
)

// ServerStatus is the backend's realtime aggregate. It may lag a
// submission that just completed on this device.
type ServerStatus struct {
	CurrentStatus    string     `json:"currentStatus"`
	LastCheckInTime  *time.Time `json:"lastCheckInTime,omitempty"`
	LastCheckOutTime *time.Time `json:"lastCheckOutTime,omitempty"`
}

// Record is one historical attendance day as normalized from the
// calendar and history endpoints. Times are wall clock "HH:MM[:SS]";
// empty means the event has not occurred.
type Record struct {
	Date         string `json:"date"`
	CheckInTime  string `json:"checkInTime,omitempty"`
	CheckOutTime string `json:"checkOutTime,omitempty"`
	IsLate       bool   `json:"isLate,omitempty"`
	IsOvertime   bool   `json:"isOvertime,omitempty"`
	IsHalfDay    bool   `json:"isHalfDay,omitempty"`
	Anomalous    bool   `json:"anomalous,omitempty"`
	Notes        string `json:"notes,omitempty"`
}

// CachedStatus is the last submission outcome recorded on this device.
type CachedStatus struct {
	Status    State
	Timestamp time.Time
}

// Resolution is the reconciled view of today.
type Resolution struct {
	State        State
	RelevantTime *time.Time
	Display      *Record
}

const (
	recordDateFormat = "2006-01-02"

	// A check-in stays "open" this long before the engine stops
	// treating it as today's, covering shifts that cross midnight.
	openCheckInWindow = 24 * time.Hour
)

// Reconcile merges the three data sources in strict priority order:
// server aggregate, then history scan, then the same-day local cache.
// It is a pure function of its inputs; a missing source (nil/empty)
// simply falls through to the next tier.
func Reconcile(server *ServerStatus, history []Record, cached *CachedStatus, now time.Time) Resolution {
	res := fromServer(server, now)
	if res == nil {
		res = fromHistory(history, now)
	}
	if res == nil {
		res = fromCache(cached, now)
	}
	if res == nil {
		res = &Resolution{State: StateIdle}
	}
	if res.Display == nil {
		res.Display = findRecord(history, now.Format(recordDateFormat))
	}
	return *res
}

func fromServer(server *ServerStatus, now time.Time) *Resolution {
	if server == nil {
		return nil
	}
	switch server.CurrentStatus {
	case string(StateCheckedIn):
		relevant := server.LastCheckInTime
		if relevant == nil {
			relevant = &now
		}
		return &Resolution{State: StateCheckedIn, RelevantTime: relevant}
	case string(StateCheckedOut):
		// Compatibility with the legacy aggregate: only the day of
		// month is compared, matching the behavior shipped to date. A
		// check-out on the same day number of a different month would
		// pass; changing this needs a product decision.
		if server.LastCheckOutTime != nil && server.LastCheckOutTime.In(now.Location()).Day() == now.Day() {
			return &Resolution{State: StateCheckedOut, RelevantTime: server.LastCheckOutTime}
		}
	}
	return nil
}

func fromHistory(history []Record, now time.Time) *Resolution {
	candidates := make([]Record, 0, len(history))
	for _, rec := range history {
		if rec.Date != "" && rec.CheckInTime != "" {
			candidates = append(candidates, rec)
		}
	}
	if len(candidates) == 0 {
		return nil
	}

	// ISO-formatted strings sort date-then-time correctly.
	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].Date != candidates[j].Date {
			return candidates[i].Date > candidates[j].Date
		}
		return candidates[i].CheckInTime > candidates[j].CheckInTime
	})

	latest := candidates[0]
	checkInAt, err := combineDayClock(latest.Date, latest.CheckInTime, now.Location())
	if err != nil {
		return nil
	}

	today := now.Format(recordDateFormat)
	if !isCheckedOut(latest.CheckOutTime) {
		if latest.Date == today || now.Sub(checkInAt) < openCheckInWindow {
			return &Resolution{State: StateCheckedIn, RelevantTime: &checkInAt, Display: &latest}
		}
		return nil
	}
	if latest.Date == today {
		// The display record carries the check-out clock; the relevant
		// time stays the check-in instant.
		return &Resolution{State: StateCheckedOut, RelevantTime: &checkInAt, Display: &latest}
	}
	return nil
}

// fromCache masks backend replication lag right after a submission
// from this device. It only ever applies when the cached timestamp
// falls on today's calendar date.
func fromCache(cached *CachedStatus, now time.Time) *Resolution {
	if cached == nil {
		return nil
	}
	if cached.Status != StateCheckedIn && cached.Status != StateCheckedOut {
		return nil
	}
	ts := cached.Timestamp.In(now.Location())
	if !sameCalendarDay(ts, now) {
		return nil
	}

	relevant := cached.Timestamp
	display := &Record{Date: now.Format(recordDateFormat)}
	if cached.Status == StateCheckedIn {
		display.CheckInTime = ts.Format("15:04")
	} else {
		display.CheckOutTime = ts.Format("15:04")
	}
	return &Resolution{State: cached.Status, RelevantTime: &relevant, Display: display}
}

func sameCalendarDay(a, b time.Time) bool {
	return a.Year() == b.Year() && a.Month() == b.Month() && a.Day() == b.Day()
}

// isCheckedOut ignores the "00:00"/"00:00:00" sentinel the backend
// uses for "not actually checked out".
func isCheckedOut(checkOutTime string) bool {
	switch strings.TrimSpace(checkOutTime) {
	case "", "00:00", "00:00:00":
		return false
	}
	return true
}

func findRecord(history []Record, date string) *Record {
	for i := range history {
		if history[i].Date == date {
			return &history[i]
		}
	}
	return nil
}

func combineDayClock(date, clock string, loc *time.Location) (time.Time, error) {
	if t, err := time.ParseInLocation(recordDateFormat+" 15:04:05", date+" "+clock, loc); err == nil {
		return t, nil
	}
	return time.ParseInLocation(recordDateFormat+" 15:04", date+" "+clock, loc)
}

package shift

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// DefaultOvertimeGateHours is how far past shift end a check-out must
// be before it counts as overtime when no policy value is configured.
const DefaultOvertimeGateHours = 3

// ParseClock parses "HH:MM" or "HH:MM:SS" into minutes since midnight.
func ParseClock(clock string) (int, error) {
	parts := strings.Split(strings.TrimSpace(clock), ":")
	if len(parts) < 2 {
		return 0, fmt.Errorf("invalid clock value %q", clock)
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, fmt.Errorf("invalid clock value %q", clock)
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, fmt.Errorf("invalid clock value %q", clock)
	}
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return 0, fmt.Errorf("clock value %q out of range", clock)
	}
	return hour*60 + minute, nil
}

// ClockMinutes converts a wall-clock instant to minutes since local
// midnight.
func ClockMinutes(t time.Time) int {
	return t.Hour()*60 + t.Minute()
}

// Detect picks the shift whose start time is closest to the given
// clock minutes. With no shifts configured it returns nil and callers
// fall back to the branch schedule.
func Detect(shifts []Shift, clockMinutes int) *Shift {
	var target *Shift
	minDiff := 1 << 30
	for i := range shifts {
		start, err := ParseClock(shifts[i].StartHour)
		if err != nil {
			continue
		}
		diff := clockMinutes - start
		if diff < 0 {
			diff = -diff
		}
		if diff < minDiff {
			minDiff = diff
			target = &shifts[i]
		}
	}
	return target
}

// Lateness compares arrival against shift start. Arrivals within
// toleranceMin are on time; later than halfDayAfterMin past start
// count as a half day.
type LatenessResult struct {
	Late        bool
	LateMinutes int
	HalfDay     bool
}

func Lateness(startHour string, clockMinutes, toleranceMin, halfDayAfterMin int) (LatenessResult, error) {
	start, err := ParseClock(startHour)
	if err != nil {
		return LatenessResult{}, err
	}
	if clockMinutes <= start+toleranceMin {
		return LatenessResult{}, nil
	}
	lateBy := clockMinutes - start
	return LatenessResult{
		Late:        true,
		LateMinutes: lateBy,
		HalfDay:     lateBy > halfDayAfterMin,
	}, nil
}

// ShiftEndInstant builds today's date at endHour in now's location.
func ShiftEndInstant(now time.Time, endHour string) (time.Time, error) {
	minutes, err := ParseClock(endHour)
	if err != nil {
		return time.Time{}, err
	}
	y, m, d := now.Date()
	return time.Date(y, m, d, minutes/60, minutes%60, 0, 0, now.Location()), nil
}

// NeedsOvertimeConfirmation reports whether a check-out at now is far
// enough past shift end that the user must confirm overtime before the
// submission proceeds. gateHours <= 0 falls back to the default.
func NeedsOvertimeConfirmation(now time.Time, endHour string, gateHours int) bool {
	if gateHours <= 0 {
		gateHours = DefaultOvertimeGateHours
	}
	end, err := ShiftEndInstant(now, endHour)
	if err != nil {
		return false
	}
	return now.Sub(end) >= time.Duration(gateHours)*time.Hour
}

// IsOvertime is the server-side flag: staff check-outs more than
// gateHours past shift end, heads after more than eight worked hours.
func IsOvertime(role string, checkIn, now time.Time, endHour string, gateHours int) bool {
	if gateHours <= 0 {
		gateHours = DefaultOvertimeGateHours
	}
	if role == "HEAD" {
		return now.Sub(checkIn).Hours() > 8
	}
	end, err := ParseClock(endHour)
	if err != nil {
		return false
	}
	return ClockMinutes(now)-end > gateHours*60
}

package attendance

import "time"

type EntryType string

const (
	TypeCheckIn  EntryType = "CHECK_IN"
	TypeCheckOut EntryType = "CHECK_OUT"
	TypePermit   EntryType = "PERMIT"
	TypeSick     EntryType = "SICK"
	TypeAlpha    EntryType = "ALPHA"
)

// Entry is one raw attendance event as stored. A day normally has one
// CHECK_IN and one CHECK_OUT entry; permits and sick days replace both.
type Entry struct {
	ID         string    `json:"id"`
	UserID     string    `json:"userId"`
	Type       EntryType `json:"type"`
	Timestamp  time.Time `json:"timestamp"`
	Latitude   float64   `json:"latitude"`
	Longitude  float64   `json:"longitude"`
	DeviceID   string    `json:"deviceId"`
	IsLate     bool      `json:"isLate"`
	IsOvertime bool      `json:"isOvertime"`
	IsHalfDay  bool      `json:"isHalfDay"`
	Notes      string    `json:"notes"`
	PhotoURL   string    `json:"photoUrl,omitempty"`
}

// DayRecord is the per-date pairing of check-in and check-out served
// by the history endpoint. Times are local wall clock "HH:MM"; an
// empty string means the event has not occurred. Anomalous marks a
// check-out without a same-day check-in; it is flagged for display
// only, never auto-repaired.
type DayRecord struct {
	Date         string `json:"date"`
	CheckInTime  string `json:"checkInTime,omitempty"`
	CheckOutTime string `json:"checkOutTime,omitempty"`
	IsLate       bool   `json:"isLate"`
	IsOvertime   bool   `json:"isOvertime"`
	IsHalfDay    bool   `json:"isHalfDay"`
	Anomalous    bool   `json:"anomalous,omitempty"`
	Notes        string `json:"notes,omitempty"`
}

type CalendarDay struct {
	Date      string `json:"date"`
	Status    string `json:"status"`
	Time      string `json:"time"`
	IsHalfDay bool   `json:"isHalfDay"`
	IsLate    bool   `json:"isLate"`
	Notes     string `json:"notes"`
}

type Stats struct {
	Present  int `json:"present"`
	Late     int `json:"late"`
	Overtime int `json:"overtime"`
	Permit   int `json:"permit"`
	Absent   int `json:"absent"`
}

type RecapMonth struct {
	MonthCode string `json:"monthCode"`
	OnTime    int    `json:"onTime"`
	Late      int    `json:"late"`
	Off       int    `json:"off"`
	Holiday   int    `json:"holiday"`
	Absent    int    `json:"absent"`
}

type Punishment struct {
	ID     string    `json:"id"`
	Reason string    `json:"reason"`
	Points int       `json:"pointsDeducted"`
	Date   time.Time `json:"date"`
}

type PointsSummary struct {
	TotalPoints int          `json:"totalPoints"`
	Punishments []Punishment `json:"punishments"`
}

// User is the slice of the account needed for attendance decisions.
type User struct {
	ID       string
	Name     string
	Role     string
	BranchID string
}

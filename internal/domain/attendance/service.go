package attendance

import (
	"context"
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"

	"absensi/internal/auth"
	"absensi/internal/domain/branch"
	"absensi/internal/domain/shift"
	"absensi/internal/geo"
	"absensi/internal/realtime"
)

// Policy carries the tunable attendance rules.
type Policy struct {
	DefaultRadiusM     float64
	LateToleranceMin   int
	HalfDayAfterMin    int
	LatePenaltyPoints  int
	LateWarnThreshold  int
	OvertimeAfterHours int
}

type Service struct {
	Store    *Store
	Branches *branch.Store
	Shifts   *shift.Store
	Realtime *realtime.Cache
	Log      *zap.Logger
	Loc      *time.Location
	Policy   Policy
}

func NewService(store *Store, branches *branch.Store, shifts *shift.Store, rt *realtime.Cache, log *zap.Logger, loc *time.Location, policy Policy) *Service {
	return &Service{Store: store, Branches: branches, Shifts: shifts, Realtime: rt, Log: log, Loc: loc, Policy: policy}
}

type SubmitRequest struct {
	Latitude   float64 `json:"latitude"`
	Longitude  float64 `json:"longitude"`
	IsMocked   bool    `json:"isMocked,omitempty"`
	DeviceID   string  `json:"deviceId"`
	PhotoURL   string  `json:"photoUrl,omitempty"`
	Notes      string  `json:"notes,omitempty"`
	IsOvertime bool    `json:"isOvertime,omitempty"`
}

type SubmitResult struct {
	Entry            Entry  `json:"entry"`
	ShiftName        string `json:"shiftName"`
	IsLate           bool   `json:"isLate"`
	IsOvertime       bool   `json:"isOvertime"`
	IsHalfDay        bool   `json:"isHalfDay"`
	PunishmentPoints int    `json:"punishmentPoints"`
	Warning          string `json:"warning,omitempty"`
}

func (s *Service) dayBounds(now time.Time) (time.Time, time.Time) {
	local := now.In(s.Loc)
	start := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, s.Loc)
	return start, start.AddDate(0, 0, 1)
}

func validCoordinates(lat, lon float64) bool {
	if math.IsNaN(lat) || math.IsNaN(lon) {
		return false
	}
	return lat >= -90 && lat <= 90 && lon >= -180 && lon <= 180
}

func (s *Service) allowedRadius(site branch.Site) float64 {
	if site.RadiusMeters > 0 {
		return site.RadiusMeters
	}
	if s.Policy.DefaultRadiusM > 0 {
		return s.Policy.DefaultRadiusM
	}
	return branch.DefaultRadiusMeters
}

// enforceGeofence applies the role-dependent location rules. Owners
// are exempt; supervisors may stand at any branch; everyone else must
// be inside their assigned branch's radius. It returns the matched
// site (nil for owners) so notes can mention the visited outlet.
func (s *Service) enforceGeofence(ctx context.Context, user *User, point geo.Point) (*branch.Site, error) {
	switch user.Role {
	case auth.RoleOwner:
		return nil, nil
	case auth.RoleSupervisor:
		sites, err := s.Branches.List(ctx)
		if err != nil {
			return nil, err
		}
		res := branch.Resolve(point, sites)
		if res.Nearest == nil || res.DistanceMeters > s.allowedRadius(*res.Nearest) {
			return nil, errOutOfRange(branch.DisplayDistance(res.DistanceMeters), nearestRadius(res, s.Policy.DefaultRadiusM))
		}
		return res.Nearest, nil
	default:
		if user.BranchID == "" {
			return nil, errNoBranch()
		}
		site, err := s.Branches.Get(ctx, user.BranchID)
		if err != nil {
			return nil, errNoBranch()
		}
		dist := geo.Distance(point, geo.Point{Latitude: site.Latitude, Longitude: site.Longitude})
		allowed := s.allowedRadius(*site)
		if dist > allowed {
			return nil, errOutOfRange(branch.DisplayDistance(dist), allowed)
		}
		return site, nil
	}
}

func nearestRadius(res branch.Resolution, fallback float64) float64 {
	if res.Nearest != nil && res.Nearest.RadiusMeters > 0 {
		return res.Nearest.RadiusMeters
	}
	if fallback > 0 {
		return fallback
	}
	return branch.DefaultRadiusMeters
}

// CheckIn records the day's arrival: geofence, duplicate guard, shift
// detection, lateness and automatic punishment, then the realtime
// aggregate update.
func (s *Service) CheckIn(ctx context.Context, userID string, req SubmitRequest) (*SubmitResult, error) {
	if req.IsMocked {
		return nil, errFakeLocation()
	}
	if !validCoordinates(req.Latitude, req.Longitude) {
		return nil, errInvalidCoordinates()
	}

	user, err := s.Store.FindUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, &Error{Code: CodeNotFound, HTTPStatus: 404, Message: "user not found"}
	}

	site, err := s.enforceGeofence(ctx, user, geo.Point{Latitude: req.Latitude, Longitude: req.Longitude})
	if err != nil {
		return nil, err
	}

	now := time.Now().In(s.Loc)
	dayStart, dayEnd := s.dayBounds(now)

	existing, err := s.Store.EntryBetween(ctx, userID, TypeCheckIn, dayStart, dayEnd)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, errAlreadyCheckedIn()
	}

	shifts, err := s.Shifts.List(ctx)
	if err != nil {
		return nil, err
	}
	detected := shift.Detect(shifts, shift.ClockMinutes(now))
	shiftName, startHour := shiftSchedule(detected, site, true)

	var late shift.LatenessResult
	warning := ""
	points := 0
	if user.Role != auth.RoleHead {
		late, err = shift.Lateness(startHour, shift.ClockMinutes(now), s.Policy.LateToleranceMin, s.Policy.HalfDayAfterMin)
		if err != nil {
			s.Log.Warn("lateness evaluation skipped", zap.String("startHour", startHour), zap.Error(err))
			late = shift.LatenessResult{}
		}
	}
	if late.Late {
		points = s.Policy.LatePenaltyPoints
		reason := fmt.Sprintf("Late %d minutes. Shift: %s (%s)", late.LateMinutes, shiftName, startHour)
		if err := s.Store.InsertPunishment(ctx, userID, reason, points, now); err != nil {
			s.Log.Warn("automatic punishment failed", zap.String("user", userID), zap.Error(err))
		}

		monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, s.Loc)
		lateCount, err := s.Store.CountLateBetween(ctx, userID, monthStart, monthStart.AddDate(0, 1, 0))
		if err != nil {
			s.Log.Warn("late count lookup failed", zap.String("user", userID), zap.Error(err))
		} else if lateCount+1 > s.Policy.LateWarnThreshold {
			warning = fmt.Sprintf("You have been late more than %d times this month (%dx).", s.Policy.LateWarnThreshold, lateCount+1)
		}
	}

	notes := req.Notes
	if notes == "" {
		switch {
		case user.Role == auth.RoleSupervisor && site != nil:
			notes = fmt.Sprintf("Visit: %s", site.Name)
		case late.Late:
			notes = fmt.Sprintf("Late (%s)", shiftName)
		default:
			notes = fmt.Sprintf("Present (%s)", shiftName)
		}
	}

	entry := Entry{
		UserID:    userID,
		Type:      TypeCheckIn,
		Timestamp: now,
		Latitude:  req.Latitude,
		Longitude: req.Longitude,
		DeviceID:  orUnknown(req.DeviceID),
		IsLate:    late.Late,
		IsHalfDay: late.HalfDay,
		Notes:     notes,
		PhotoURL:  req.PhotoURL,
	}
	entry.ID, err = s.Store.Insert(ctx, entry)
	if err != nil {
		return nil, err
	}

	if err := s.Store.InsertAudit(ctx, "CHECK_IN", userID, entry.ID, fmt.Sprintf("Check-in ok. Shift: %s. Late: %v", shiftName, late.Late)); err != nil {
		s.Log.Warn("audit write failed", zap.Error(err))
	}
	s.markRealtime(ctx, userID, now, TypeCheckIn)

	return &SubmitResult{
		Entry:            entry,
		ShiftName:        shiftName,
		IsLate:           late.Late,
		IsHalfDay:        late.HalfDay,
		PunishmentPoints: points,
		Warning:          warning,
	}, nil
}

// CheckOut records the day's departure. It requires a same-day
// check-in, refuses duplicates, and flags overtime either from the
// client's confirmed claim or the shift schedule.
func (s *Service) CheckOut(ctx context.Context, userID string, req SubmitRequest) (*SubmitResult, error) {
	if req.IsMocked {
		return nil, errFakeLocation()
	}
	if !validCoordinates(req.Latitude, req.Longitude) {
		return nil, errInvalidCoordinates()
	}

	user, err := s.Store.FindUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, &Error{Code: CodeNotFound, HTTPStatus: 404, Message: "user not found"}
	}

	site, err := s.enforceGeofence(ctx, user, geo.Point{Latitude: req.Latitude, Longitude: req.Longitude})
	if err != nil {
		return nil, err
	}

	now := time.Now().In(s.Loc)
	dayStart, dayEnd := s.dayBounds(now)

	existingOut, err := s.Store.EntryBetween(ctx, userID, TypeCheckOut, dayStart, dayEnd)
	if err != nil {
		return nil, err
	}
	if existingOut != nil {
		return nil, errAlreadyCheckedOut()
	}

	checkIn, err := s.Store.EntryBetween(ctx, userID, TypeCheckIn, dayStart, dayEnd)
	if err != nil {
		return nil, err
	}
	if checkIn == nil {
		return nil, errNoCheckIn()
	}

	// The shift is matched to the check-in time, not the current
	// time, so a long day does not drift onto the evening shift.
	shifts, err := s.Shifts.List(ctx)
	if err != nil {
		return nil, err
	}
	detected := shift.Detect(shifts, shift.ClockMinutes(checkIn.Timestamp.In(s.Loc)))
	shiftName, endHour := shiftSchedule(detected, site, false)

	isOvertime := req.IsOvertime || shift.IsOvertime(user.Role, checkIn.Timestamp, now, endHour, s.Policy.OvertimeAfterHours)

	notes := req.Notes
	if notes == "" {
		if isOvertime {
			notes = fmt.Sprintf("Overtime (%s)", shiftName)
		} else {
			notes = fmt.Sprintf("Clock out (%s)", shiftName)
		}
	}

	entry := Entry{
		UserID:     userID,
		Type:       TypeCheckOut,
		Timestamp:  now,
		Latitude:   req.Latitude,
		Longitude:  req.Longitude,
		DeviceID:   orUnknown(req.DeviceID),
		IsOvertime: isOvertime,
		Notes:      notes,
	}
	entry.ID, err = s.Store.Insert(ctx, entry)
	if err != nil {
		return nil, err
	}

	if err := s.Store.InsertAudit(ctx, "CHECK_OUT", userID, entry.ID, fmt.Sprintf("Check-out ok. Shift: %s. Overtime: %v", shiftName, isOvertime)); err != nil {
		s.Log.Warn("audit write failed", zap.Error(err))
	}
	s.markRealtime(ctx, userID, now, TypeCheckOut)

	return &SubmitResult{
		Entry:      entry,
		ShiftName:  shiftName,
		IsOvertime: isOvertime,
	}, nil
}

// shiftSchedule resolves the display name plus the relevant hour
// (start for check-in, end for check-out), falling back to the branch
// schedule when no shift matched.
func shiftSchedule(detected *shift.Shift, site *branch.Site, wantStart bool) (string, string) {
	if detected != nil {
		if wantStart {
			return detected.Name, detected.StartHour
		}
		return detected.Name, detected.EndHour
	}
	name := "Unknown"
	if site != nil {
		if wantStart && site.StartHour != "" {
			return name, site.StartHour
		}
		if !wantStart && site.EndHour != "" {
			return name, site.EndHour
		}
	}
	if wantStart {
		return name, "09:00"
	}
	return name, "17:00"
}

func orUnknown(deviceID string) string {
	if deviceID == "" {
		return "UNKNOWN"
	}
	return deviceID
}

func (s *Service) markRealtime(ctx context.Context, userID string, at time.Time, typ EntryType) {
	if s.Realtime == nil {
		return
	}
	day := at.In(s.Loc).Format(dayFormat)
	var err error
	if typ == TypeCheckIn {
		err = s.Realtime.MarkCheckIn(ctx, userID, day, at)
	} else {
		err = s.Realtime.MarkCheckOut(ctx, userID, day, at)
	}
	if err != nil {
		// Clients fall back to history when the aggregate lags.
		s.Log.Warn("realtime status update failed", zap.String("user", userID), zap.Error(err))
	}
}

// Status serves the realtime aggregate: the cached snapshot when
// available, otherwise a recomputation from today's entries.
func (s *Service) Status(ctx context.Context, userID string) (*realtime.Snapshot, error) {
	now := time.Now().In(s.Loc)
	day := now.Format(dayFormat)

	if s.Realtime != nil {
		snap, err := s.Realtime.Get(ctx, userID, day)
		if err != nil {
			s.Log.Warn("realtime status read failed", zap.String("user", userID), zap.Error(err))
		} else if snap != nil {
			return snap, nil
		}
	}

	dayStart, dayEnd := s.dayBounds(now)
	checkIn, err := s.Store.EntryBetween(ctx, userID, TypeCheckIn, dayStart, dayEnd)
	if err != nil {
		return nil, err
	}
	checkOut, err := s.Store.EntryBetween(ctx, userID, TypeCheckOut, dayStart, dayEnd)
	if err != nil {
		return nil, err
	}

	snap := &realtime.Snapshot{CurrentStatus: realtime.StatusNone}
	if checkIn != nil {
		t := checkIn.Timestamp
		snap.LastCheckInTime = &t
		snap.CurrentStatus = realtime.StatusCheckedIn
	}
	if checkOut != nil {
		t := checkOut.Timestamp
		snap.LastCheckOutTime = &t
		snap.CurrentStatus = realtime.StatusCheckedOut
	}
	return snap, nil
}

// Calendar returns the current month's day list.
func (s *Service) Calendar(ctx context.Context, userID string) ([]CalendarDay, error) {
	now := time.Now().In(s.Loc)
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, s.Loc)
	entries, err := s.Store.ListBetween(ctx, userID, monthStart, monthStart.AddDate(0, 1, 0))
	if err != nil {
		return nil, err
	}
	return BuildCalendar(entries, s.Loc), nil
}

// History returns day records for the trailing N days, newest first.
func (s *Service) History(ctx context.Context, userID string, days int) ([]DayRecord, error) {
	if days <= 0 {
		days = 31
	}
	now := time.Now().In(s.Loc)
	_, dayEnd := s.dayBounds(now)
	entries, err := s.Store.ListBetween(ctx, userID, dayEnd.AddDate(0, 0, -days), dayEnd)
	if err != nil {
		return nil, err
	}
	return GroupDays(entries, s.Loc), nil
}

func (s *Service) Stats(ctx context.Context, userID string) (Stats, error) {
	now := time.Now().In(s.Loc)
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, s.Loc)
	entries, err := s.Store.ListBetween(ctx, userID, monthStart, monthStart.AddDate(0, 1, 0))
	if err != nil {
		return Stats{}, err
	}
	return ComputeStats(entries), nil
}

// Recap summarises the trailing six months.
func (s *Service) Recap(ctx context.Context, userID string) ([]RecapMonth, error) {
	now := time.Now().In(s.Loc)
	var recap []RecapMonth
	for i := 0; i < 6; i++ {
		monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, s.Loc).AddDate(0, -i, 0)
		entries, err := s.Store.ListBetween(ctx, userID, monthStart, monthStart.AddDate(0, 1, 0))
		if err != nil {
			return nil, err
		}
		recap = append(recap, ComputeRecap(monthStart.Format("2006-01"), entries, s.Loc))
	}
	return recap, nil
}

func (s *Service) Points(ctx context.Context, userID string) (*PointsSummary, error) {
	punishments, err := s.Store.ListPunishments(ctx, userID, 20)
	if err != nil {
		return nil, err
	}
	total := 0
	for _, p := range punishments {
		total += p.Points
	}
	return &PointsSummary{TotalPoints: total, Punishments: punishments}, nil
}

type PermitRequest struct {
	Date   string `json:"date"`
	Type   string `json:"type"`
	Reason string `json:"reason"`
}

// SubmitPermit records a permit or sick day, refusing dates that
// already hold attendance.
func (s *Service) SubmitPermit(ctx context.Context, userID string, req PermitRequest) (*Entry, error) {
	day, err := time.ParseInLocation(dayFormat, req.Date, s.Loc)
	if err != nil {
		return nil, &Error{Code: CodeInvalidDate, HTTPStatus: 400, Message: "invalid date"}
	}

	typ := TypePermit
	if req.Type == string(TypeSick) {
		typ = TypeSick
	}

	entries, err := s.Store.ListBetween(ctx, userID, day, day.AddDate(0, 0, 1))
	if err != nil {
		return nil, err
	}
	if len(entries) > 0 {
		return nil, errPermitExists()
	}

	entry := Entry{
		UserID:    userID,
		Type:      typ,
		Timestamp: day.Add(8 * time.Hour),
		DeviceID:  "MOBILE_APP",
		Notes:     req.Reason,
	}
	entry.ID, err = s.Store.Insert(ctx, entry)
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

func (s *Service) CancelPermit(ctx context.Context, userID, date string) error {
	day, err := time.ParseInLocation(dayFormat, date, s.Loc)
	if err != nil {
		return &Error{Code: CodeInvalidDate, HTTPStatus: 400, Message: "invalid date"}
	}
	removed, err := s.Store.DeletePermit(ctx, userID, day, day.AddDate(0, 0, 1))
	if err != nil {
		return err
	}
	if !removed {
		return &Error{Code: CodeNotFound, HTTPStatus: 404, Message: "no permit found for this date"}
	}
	return nil
}

// CloseOpenDays force-closes every check-in that never got a
// check-out, stamping the close at the given instant. The entries are
// marked so recaps can tell a forgotten check-out from a real one.
func (s *Service) CloseOpenDays(ctx context.Context, now time.Time) (int, error) {
	from, to := s.dayBounds(now)
	open, err := s.Store.ListOpenCheckIns(ctx, from, to)
	if err != nil {
		return 0, err
	}

	closed := 0
	for _, ci := range open {
		entry := Entry{
			UserID:    ci.UserID,
			Type:      TypeCheckOut,
			Timestamp: now,
			DeviceID:  "SYSTEM",
			Notes:     "Auto checkout (no check-out recorded)",
		}
		if _, err := s.Store.Insert(ctx, entry); err != nil {
			s.Log.Error("auto checkout failed",
				zap.String("userId", ci.UserID), zap.Error(err))
			continue
		}
		s.markRealtime(ctx, ci.UserID, now, TypeCheckOut)
		closed++
	}
	if closed > 0 {
		s.Log.Info("auto checkout sweep", zap.Int("closed", closed))
	}
	return closed, nil
}

package reports

import (
	"context"
	"fmt"
	"time"

	"absensi/internal/domain/attendance"
	"absensi/internal/domain/branch"
)

type Service struct {
	Store    *Store
	Branches *branch.Store
	Loc      *time.Location
}

func NewService(store *Store, branches *branch.Store, loc *time.Location) *Service {
	return &Service{Store: store, Branches: branches, Loc: loc}
}

// BranchRecap aggregates one month of attendance for every non-owner
// account assigned to the branch.
func (s *Service) BranchRecap(ctx context.Context, branchID string, month time.Month, year int) (*BranchRecap, error) {
	site, err := s.Branches.Get(ctx, branchID)
	if err != nil {
		return nil, err
	}

	from := time.Date(year, month, 1, 0, 0, 0, 0, s.Loc)
	to := from.AddDate(0, 1, 0)

	staff, err := s.Store.listBranchStaff(ctx, branchID)
	if err != nil {
		return nil, err
	}

	recap := &BranchRecap{
		BranchID:   site.ID,
		BranchName: site.Name,
		MonthCode:  fmt.Sprintf("%04d-%02d", year, int(month)),
		Members:    make([]Member, 0, len(staff)),
	}
	for _, m := range staff {
		entries, err := s.Store.listEntries(ctx, m.ID, from, to)
		if err != nil {
			return nil, err
		}
		recap.Members = append(recap.Members, summarize(m, entries, s.Loc))
	}
	return recap, nil
}

func summarize(m staffer, entries []attendance.Entry, loc *time.Location) Member {
	stats := attendance.ComputeStats(entries)
	halfDays := 0
	for _, day := range attendance.GroupDays(entries, loc) {
		if day.IsHalfDay {
			halfDays++
		}
	}
	// Present in the recap means attended, so late check-ins count
	// toward it as well as toward Late.
	return Member{
		UserID:   m.ID,
		Name:     m.Name,
		Role:     m.Role,
		Present:  stats.Present + stats.Late,
		Late:     stats.Late,
		HalfDay:  halfDays,
		Overtime: stats.Overtime,
		Permit:   stats.Permit,
		Absent:   stats.Absent,
	}
}

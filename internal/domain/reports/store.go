package reports

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"absensi/internal/domain/attendance"
)

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

type staffer struct {
	ID   string
	Name string
	Role string
}

func (s *Store) listBranchStaff(ctx context.Context, branchID string) ([]staffer, error) {
	rows, err := s.DB.Query(ctx, `
		SELECT id, name, role FROM users
		WHERE branch_id = $1 AND role <> 'OWNER'
		ORDER BY name`, branchID)
	if err != nil {
		return nil, fmt.Errorf("list branch staff: %w", err)
	}
	defer rows.Close()

	var out []staffer
	for rows.Next() {
		var m staffer
		if err := rows.Scan(&m.ID, &m.Name, &m.Role); err != nil {
			return nil, fmt.Errorf("scan staff row: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (s *Store) listEntries(ctx context.Context, userID string, from, to time.Time) ([]attendance.Entry, error) {
	rows, err := s.DB.Query(ctx, `
		SELECT id, user_id, type, timestamp, is_late, is_overtime, is_half_day, notes
		FROM attendance_entries
		WHERE user_id = $1 AND timestamp >= $2 AND timestamp < $3
		ORDER BY timestamp`, userID, from, to)
	if err != nil {
		return nil, fmt.Errorf("list entries: %w", err)
	}
	defer rows.Close()

	var out []attendance.Entry
	for rows.Next() {
		var e attendance.Entry
		if err := rows.Scan(&e.ID, &e.UserID, &e.Type, &e.Timestamp, &e.IsLate, &e.IsOvertime, &e.IsHalfDay, &e.Notes); err != nil {
			return nil, fmt.Errorf("scan entry row: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

package attendance

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

func (s *Store) FindUser(ctx context.Context, userID string) (*User, error) {
	var u User
	var branchID *string
	err := s.DB.QueryRow(ctx, `
    SELECT id, name, role, branch_id
    FROM users
    WHERE id = $1
  `, userID).Scan(&u.ID, &u.Name, &u.Role, &branchID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if branchID != nil {
		u.BranchID = *branchID
	}
	return &u, nil
}

// EntryBetween returns the user's entry of the given type inside
// [from, to), or nil when none exists. The unique index on
// (user_id, type, day) keeps this at most one row for check-ins and
// check-outs.
func (s *Store) EntryBetween(ctx context.Context, userID string, typ EntryType, from, to time.Time) (*Entry, error) {
	var e Entry
	err := s.DB.QueryRow(ctx, `
    SELECT id, user_id, type, timestamp, latitude, longitude, device_id,
           is_late, is_overtime, is_half_day, notes, COALESCE(photo_url, '')
    FROM attendance_entries
    WHERE user_id = $1 AND type = $2 AND timestamp >= $3 AND timestamp < $4
    ORDER BY timestamp
    LIMIT 1
  `, userID, typ, from, to).Scan(
		&e.ID, &e.UserID, &e.Type, &e.Timestamp, &e.Latitude, &e.Longitude, &e.DeviceID,
		&e.IsLate, &e.IsOvertime, &e.IsHalfDay, &e.Notes, &e.PhotoURL,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (s *Store) Insert(ctx context.Context, e Entry) (string, error) {
	var id string
	err := s.DB.QueryRow(ctx, `
    INSERT INTO attendance_entries
      (user_id, type, timestamp, latitude, longitude, device_id,
       is_late, is_overtime, is_half_day, notes, photo_url)
    VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,NULLIF($11,''))
    RETURNING id
  `, e.UserID, e.Type, e.Timestamp, e.Latitude, e.Longitude, e.DeviceID,
		e.IsLate, e.IsOvertime, e.IsHalfDay, e.Notes, e.PhotoURL).Scan(&id)
	if err != nil {
		return "", err
	}
	return id, nil
}

func (s *Store) ListBetween(ctx context.Context, userID string, from, to time.Time) ([]Entry, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id, user_id, type, timestamp, latitude, longitude, device_id,
           is_late, is_overtime, is_half_day, notes, COALESCE(photo_url, '')
    FROM attendance_entries
    WHERE user_id = $1 AND timestamp >= $2 AND timestamp < $3
    ORDER BY timestamp
  `, userID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(
			&e.ID, &e.UserID, &e.Type, &e.Timestamp, &e.Latitude, &e.Longitude, &e.DeviceID,
			&e.IsLate, &e.IsOvertime, &e.IsHalfDay, &e.Notes, &e.PhotoURL,
		); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// ListOpenCheckIns returns users who checked in inside the window but
// never checked out, for the end-of-day close job.
func (s *Store) ListOpenCheckIns(ctx context.Context, from, to time.Time) ([]Entry, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT ci.id, ci.user_id, ci.type, ci.timestamp, ci.latitude, ci.longitude, ci.device_id,
           ci.is_late, ci.is_overtime, ci.is_half_day, ci.notes, COALESCE(ci.photo_url, '')
    FROM attendance_entries ci
    WHERE ci.type = 'CHECK_IN' AND ci.timestamp >= $1 AND ci.timestamp < $2
      AND NOT EXISTS (
        SELECT 1 FROM attendance_entries co
        WHERE co.user_id = ci.user_id AND co.type = 'CHECK_OUT'
          AND co.timestamp >= $1 AND co.timestamp < $2
      )
  `, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(
			&e.ID, &e.UserID, &e.Type, &e.Timestamp, &e.Latitude, &e.Longitude, &e.DeviceID,
			&e.IsLate, &e.IsOvertime, &e.IsHalfDay, &e.Notes, &e.PhotoURL,
		); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (s *Store) CountLateBetween(ctx context.Context, userID string, from, to time.Time) (int, error) {
	var count int
	err := s.DB.QueryRow(ctx, `
    SELECT COUNT(1)
    FROM attendance_entries
    WHERE user_id = $1 AND type = 'CHECK_IN' AND is_late AND timestamp >= $2 AND timestamp < $3
  `, userID, from, to).Scan(&count)
	return count, err
}

func (s *Store) InsertPunishment(ctx context.Context, userID, reason string, points int, at time.Time) error {
	_, err := s.DB.Exec(ctx, `
    INSERT INTO punishments (user_id, points, reason, date)
    VALUES ($1,$2,$3,$4)
  `, userID, points, reason, at)
	return err
}

func (s *Store) ListPunishments(ctx context.Context, userID string, limit int) ([]Punishment, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id, reason, points, date
    FROM punishments
    WHERE user_id = $1
    ORDER BY date DESC
    LIMIT $2
  `, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var punishments []Punishment
	for rows.Next() {
		var p Punishment
		if err := rows.Scan(&p.ID, &p.Reason, &p.Points, &p.Date); err != nil {
			return nil, err
		}
		punishments = append(punishments, p)
	}
	return punishments, rows.Err()
}

func (s *Store) DeletePermit(ctx context.Context, userID string, from, to time.Time) (bool, error) {
	tag, err := s.DB.Exec(ctx, `
    DELETE FROM attendance_entries
    WHERE user_id = $1 AND type IN ('PERMIT','SICK') AND timestamp >= $2 AND timestamp < $3
  `, userID, from, to)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (s *Store) InsertAudit(ctx context.Context, action, performedBy, targetID, details string) error {
	_, err := s.DB.Exec(ctx, `
    INSERT INTO audit_logs (action, performed_by, target_id, details)
    VALUES ($1,$2,$3,$4)
  `, action, performedBy, targetID, details)
	return err
}

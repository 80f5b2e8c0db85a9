package shift

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

func (s *Store) List(ctx context.Context) ([]Shift, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id, name, start_hour, end_hour, created_at
    FROM shifts
    ORDER BY start_hour
  `)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var shifts []Shift
	for rows.Next() {
		var sh Shift
		if err := rows.Scan(&sh.ID, &sh.Name, &sh.StartHour, &sh.EndHour, &sh.CreatedAt); err != nil {
			return nil, err
		}
		shifts = append(shifts, sh)
	}
	return shifts, rows.Err()
}

func (s *Store) Create(ctx context.Context, payload Shift) (string, error) {
	var id string
	if err := s.DB.QueryRow(ctx, `
    INSERT INTO shifts (name, start_hour, end_hour)
    VALUES ($1,$2,$3)
    RETURNING id
  `, payload.Name, payload.StartHour, payload.EndHour).Scan(&id); err != nil {
		return "", err
	}
	return id, nil
}

func (s *Store) Update(ctx context.Context, payload Shift) error {
	_, err := s.DB.Exec(ctx, `
    UPDATE shifts SET name = $2, start_hour = $3, end_hour = $4 WHERE id = $1
  `, payload.ID, payload.Name, payload.StartHour, payload.EndHour)
	return err
}

func (s *Store) Delete(ctx context.Context, id string) error {
	_, err := s.DB.Exec(ctx, "DELETE FROM shifts WHERE id = $1", id)
	return err
}

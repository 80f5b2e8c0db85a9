package branch

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

func (s *Store) List(ctx context.Context) ([]Site, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id, name, address, latitude, longitude, radius_meters, start_hour, end_hour, created_at
    FROM branches
    ORDER BY created_at
  `)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sites []Site
	for rows.Next() {
		var b Site
		if err := rows.Scan(&b.ID, &b.Name, &b.Address, &b.Latitude, &b.Longitude, &b.RadiusMeters, &b.StartHour, &b.EndHour, &b.CreatedAt); err != nil {
			return nil, err
		}
		sites = append(sites, b)
	}
	return sites, rows.Err()
}

func (s *Store) Get(ctx context.Context, id string) (*Site, error) {
	var b Site
	err := s.DB.QueryRow(ctx, `
    SELECT id, name, address, latitude, longitude, radius_meters, start_hour, end_hour, created_at
    FROM branches
    WHERE id = $1
  `, id).Scan(&b.ID, &b.Name, &b.Address, &b.Latitude, &b.Longitude, &b.RadiusMeters, &b.StartHour, &b.EndHour, &b.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (s *Store) Create(ctx context.Context, payload Site) (string, error) {
	var id string
	if err := s.DB.QueryRow(ctx, `
    INSERT INTO branches (name, address, latitude, longitude, radius_meters, start_hour, end_hour)
    VALUES ($1,$2,$3,$4,$5,$6,$7)
    RETURNING id
  `, payload.Name, payload.Address, payload.Latitude, payload.Longitude, payload.RadiusMeters, payload.StartHour, payload.EndHour).Scan(&id); err != nil {
		return "", err
	}
	return id, nil
}

func (s *Store) Update(ctx context.Context, payload Site) error {
	_, err := s.DB.Exec(ctx, `
    UPDATE branches
    SET name = $2, address = $3, latitude = $4, longitude = $5, radius_meters = $6, start_hour = $7, end_hour = $8
    WHERE id = $1
  `, payload.ID, payload.Name, payload.Address, payload.Latitude, payload.Longitude, payload.RadiusMeters, payload.StartHour, payload.EndHour)
	return err
}

func (s *Store) Delete(ctx context.Context, id string) error {
	_, err := s.DB.Exec(ctx, "DELETE FROM branches WHERE id = $1", id)
	return err
}

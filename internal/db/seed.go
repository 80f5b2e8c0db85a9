package db

import (
	"context"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"absensi/internal/auth"
	"absensi/internal/platform/config"
)

// Seed bootstraps the owner account so a fresh deployment can log in
// and create branches, shifts and staff. It is a no-op when the email
// already exists or seeding is not configured.
func Seed(ctx context.Context, pool *pgxpool.Pool, cfg config.Config) error {
	email := strings.TrimSpace(cfg.SeedAdminEmail)
	if email == "" || cfg.SeedAdminPassword == "" {
		return nil
	}

	var count int
	if err := pool.QueryRow(ctx, "SELECT COUNT(1) FROM users WHERE email = $1", email).Scan(&count); err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	hashed, err := auth.HashPassword(cfg.SeedAdminPassword)
	if err != nil {
		return err
	}

	_, err = pool.Exec(ctx, `
    INSERT INTO users (name, email, password_hash, role)
    VALUES ('Owner', $1, $2, 'OWNER')
  `, email, hashed)
	if err != nil {
		return err
	}
	return seedShifts(ctx, pool)
}

// seedShifts installs the standard three shifts on an empty table so
// shift detection works right away.
func seedShifts(ctx context.Context, pool *pgxpool.Pool) error {
	var count int
	if err := pool.QueryRow(ctx, "SELECT COUNT(1) FROM shifts").Scan(&count); err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	_, err := pool.Exec(ctx, `
    INSERT INTO shifts (name, start_hour, end_hour) VALUES
      ('Pagi', '07:00', '15:00'),
      ('Siang', '12:00', '20:00'),
      ('Malam', '20:00', '04:00')
  `)
	return err
}

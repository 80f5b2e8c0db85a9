package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	statusKeyPrefix = "attendance:status"

	// Snapshots only matter for the current day; anything older is
	// recomputed from the database.
	statusTTL = 24 * time.Hour
)

const (
	StatusCheckedIn  = "CHECKED_IN"
	StatusCheckedOut = "CHECKED_OUT"
	StatusNone       = "NONE"
)

// Snapshot is the server-side realtime aggregate handed to clients.
// It is written on every successful submission and may briefly lag a
// submission made from another path; the client reconciler tolerates
// that.
type Snapshot struct {
	CurrentStatus    string     `json:"currentStatus"`
	LastCheckInTime  *time.Time `json:"lastCheckInTime,omitempty"`
	LastCheckOutTime *time.Time `json:"lastCheckOutTime,omitempty"`
}

type Cache struct {
	rdb *redis.Client
}

func New(rdb *redis.Client) *Cache {
	return &Cache{rdb: rdb}
}

func key(userID, day string) string {
	return fmt.Sprintf("%s:%s:%s", statusKeyPrefix, userID, day)
}

// Get returns the cached snapshot for the user and day, or nil when
// none is cached.
func (c *Cache) Get(ctx context.Context, userID, day string) (*Snapshot, error) {
	raw, err := c.rdb.Get(ctx, key(userID, day)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("realtime status get: %w", err)
	}

	var snap Snapshot
	if err := json.Unmarshal([]byte(raw), &snap); err != nil {
		return nil, fmt.Errorf("realtime status decode: %w", err)
	}
	return &snap, nil
}

func (c *Cache) Put(ctx context.Context, userID, day string, snap Snapshot) error {
	raw, err := json.Marshal(snap)
	if err != nil {
		return err
	}
	if err := c.rdb.Set(ctx, key(userID, day), raw, statusTTL).Err(); err != nil {
		return fmt.Errorf("realtime status put: %w", err)
	}
	return nil
}

// MarkCheckIn records a check-in at the given instant.
func (c *Cache) MarkCheckIn(ctx context.Context, userID, day string, at time.Time) error {
	snap, err := c.Get(ctx, userID, day)
	if err != nil {
		return err
	}
	if snap == nil {
		snap = &Snapshot{}
	}
	snap.CurrentStatus = StatusCheckedIn
	snap.LastCheckInTime = &at
	return c.Put(ctx, userID, day, *snap)
}

// MarkCheckOut records a check-out at the given instant.
func (c *Cache) MarkCheckOut(ctx context.Context, userID, day string, at time.Time) error {
	snap, err := c.Get(ctx, userID, day)
	if err != nil {
		return err
	}
	if snap == nil {
		snap = &Snapshot{}
	}
	snap.CurrentStatus = StatusCheckedOut
	snap.LastCheckOutTime = &at
	return c.Put(ctx, userID, day, *snap)
}

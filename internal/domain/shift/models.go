package shift

import "time"

type Shift struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	StartHour string    `json:"startHour"`
	EndHour   string    `json:"endHour"`
	CreatedAt time.Time `json:"createdAt"`
}

package domain

import "time"

// Snapshot is a written well-known table in a store-friendly form.
type Snapshot struct {
	Table   string    `json:"table"`
	Data    any       `json:"data"`
	Errors  int       `json:"errors"`
	TakenAt time.Time `json:"taken_at"`
}

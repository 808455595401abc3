// Package announce mirrors accepted now-playing updates to local
// infrastructure (Redis, NATS) so studio displays and websites can follow
// the stream without hitting the RadioPlayer API. Announcers are optional
// and fire-and-forget: a failed announce is a logged warning, never a
// submission failure.
package announce

import (
	"time"

	"github.com/stationops/nowplayd/internal/metadata"
)

// Update is the JSON payload published to announcers.
type Update struct {
	Artist    string    `json:"artist"`
	Title     string    `json:"title"`
	StartTime string    `json:"start_time"`
	Timestamp time.Time `json:"timestamp"`
}

// NewUpdate builds the announcement payload for one submission.
func NewUpdate(record metadata.Record, startTime string) Update {
	return Update{
		Artist:    record.Artist,
		Title:     record.Title,
		StartTime: startTime,
		Timestamp: time.Now(),
	}
}

// Announcer is one local sink for now-playing updates.
type Announcer interface {
	Announce(update Update) error
	Name() string
	Close() error
}

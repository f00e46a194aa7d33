package history

import "time"

// Status reports how a generation ended.
type Status string

const (
	StatusOK    Status = "ok"
	StatusError Status = "error"
)

// Record is one generation request as stored.
type Record struct {
	ID        int64
	RequestID string
	CreatedAt time.Time
	Voice     string
	LangCode  string
	Speed     float64
	TextChars int
	Duration  time.Duration
	Status    Status
	Message   string
	AudioFile string
}

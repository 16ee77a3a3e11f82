package domain

import "time"

// Domain contains core models shared by the CLI layers.

// Exchange records one completed request/response pair.
type Exchange struct {
	ID         string    `json:"id"`
	Method     string    `json:"method"`
	URL        string    `json:"url"`
	StatusCode int       `json:"status_code"`
	Success    bool      `json:"success"`
	DurationMS int64     `json:"duration_ms"`
	At         time.Time `json:"at"`
}

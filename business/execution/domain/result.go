package domain

import "time"

// Result pairs a processed request with its response for reporting.
type Result struct {
	Request    Request
	Response   Response
	FinishedAt time.Time
}

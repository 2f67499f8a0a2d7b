package models

import "time"

// Metric represents the current value of a named operational metric.
// Values are kept as decimal strings so large sums (e.g. total content
// bytes) never overflow a machine integer on the way through.
type Metric struct {
	Name      string
	Value     string
	UpdatedAt time.Time
}

// RunStatus represents the terminal state of one collection run
type RunStatus string

const (
	RunStatusIdle      RunStatus = "idle"
	RunStatusRunning   RunStatus = "running"
	RunStatusSucceeded RunStatus = "succeeded"
	RunStatusFailed    RunStatus = "failed"
)

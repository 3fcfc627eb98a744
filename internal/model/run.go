package model

import "time"

// RunKind names the load operation a run recorded.
type RunKind string

const (
	RunKindSessions  RunKind = "sessions"
	RunKindResults   RunKind = "results"
	RunKindLatest    RunKind = "latest"
	RunKindStandings RunKind = "standings"
)

// RunStatus represents the outcome of a load.
type RunStatus string

const (
	RunStatusRunning  RunStatus = "running"
	RunStatusComplete RunStatus = "complete"
	RunStatusPartial  RunStatus = "partial"
	RunStatusFailed   RunStatus = "failed"
)

// Run is one recorded data load. Only metadata is kept, never upstream payloads.
type Run struct {
	ID         string     `json:"id" csv:"id"`
	Kind       RunKind    `json:"kind" csv:"kind"`
	Year       int        `json:"year" csv:"year"`
	SessionKey int        `json:"session_key,omitempty" csv:"session_key"`
	Source     Provenance `json:"source" csv:"source"`
	Status     RunStatus  `json:"status" csv:"status"`
	Rows       int        `json:"rows" csv:"rows"`
	Error      string     `json:"error,omitempty" csv:"error"`
	CreatedAt  time.Time  `json:"created_at" csv:"created_at"`
	FinishedAt *time.Time `json:"finished_at,omitempty" csv:"finished_at"`
}

// RunOutcome is what a finished load reports back to the run log.
type RunOutcome struct {
	Status RunStatus
	Rows   int
	Error  string
}

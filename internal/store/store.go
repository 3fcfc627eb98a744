// Package store persists the run log: one row of metadata per data load.
// Upstream payloads are never stored.
package store

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/sells-group/paddock/internal/model"
)

// Drivers accepted by Open.
const (
	DriverNone     = "none"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// ErrDisabled is returned by Open when the run log is turned off.
var ErrDisabled = eris.New("store: run log disabled")

// ErrRunNotFound is returned when a run ID does not exist.
var ErrRunNotFound = eris.New("store: run not found")

// RunFilter specifies criteria for listing runs.
type RunFilter struct {
	Kind   model.RunKind   `json:"kind,omitempty"`
	Status model.RunStatus `json:"status,omitempty"`
	Year   int             `json:"year,omitempty"`
	Limit  int             `json:"limit,omitempty"`
	Offset int             `json:"offset,omitempty"`
}

// Store defines the run log persistence interface.
type Store interface {
	// CreateRun inserts run with a fresh ID and the running status.
	CreateRun(ctx context.Context, run model.Run) (*model.Run, error)
	// FinishRun records the outcome of a run.
	FinishRun(ctx context.Context, runID string, outcome model.RunOutcome) error
	GetRun(ctx context.Context, runID string) (*model.Run, error)
	// ListRuns returns runs newest first.
	ListRuns(ctx context.Context, filter RunFilter) ([]model.Run, error)

	Migrate(ctx context.Context) error
	Close() error
}

const defaultListLimit = 100

// Open returns the store selected by driver and migrates it.
func Open(ctx context.Context, driver, dsn string) (Store, error) {
	var (
		st  Store
		err error
	)
	switch driver {
	case "", DriverNone:
		return nil, ErrDisabled
	case DriverSQLite:
		st, err = NewSQLite(dsn)
	case DriverPostgres:
		st, err = NewPostgres(ctx, dsn, nil)
	default:
		return nil, eris.Errorf("store: unknown driver %q", driver)
	}
	if err != nil {
		return nil, err
	}
	if err := st.Migrate(ctx); err != nil {
		_ = st.Close()
		return nil, err
	}
	return st, nil
}

func listLimit(n int) int {
	if n <= 0 {
		return defaultListLimit
	}
	return n
}

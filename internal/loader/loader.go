// Package loader runs the data loads behind every command and endpoint:
// resolve a session, fetch its streams in sequence, reconcile them.
package loader

import (
	"context"
	"slices"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/paddock/internal/model"
	"github.com/sells-group/paddock/internal/reconcile"
	"github.com/sells-group/paddock/internal/source"
	"github.com/sells-group/paddock/internal/store"
)

// ErrSessionNotFound is returned when no session matches a request.
var ErrSessionNotFound = eris.New("session not found")

// ErrStandingsUnavailable is returned when no source can serve standings.
var ErrStandingsUnavailable = eris.New("standings unavailable")

// Request selects a session. Year defaults to the current year and
// SessionType to Race. Key takes precedence over Round.
type Request struct {
	Year        int
	SessionType model.SessionType
	Key         int
	Round       int
}

// Loader orchestrates loads against the sources picked by a Selector.
type Loader struct {
	selector *source.Selector
	runs     store.Store
	now      func() time.Time
}

// Option configures a Loader.
type Option func(*Loader)

// WithRunLog records every load in st.
func WithRunLog(st store.Store) Option {
	return func(l *Loader) {
		l.runs = st
	}
}

// WithClock overrides the wall clock (tests).
func WithClock(now func() time.Time) Option {
	return func(l *Loader) {
		l.now = now
	}
}

// New creates a Loader.
func New(selector *source.Selector, opts ...Option) *Loader {
	l := &Loader{selector: selector, now: time.Now}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func (l *Loader) normalize(req Request) Request {
	if req.Year <= 0 {
		req.Year = l.now().Year()
	}
	if req.SessionType == "" {
		req.SessionType = model.SessionTypeRace
	}
	return req
}

// Sessions lists a season's sessions of one type in chronological order.
func (l *Loader) Sessions(ctx context.Context, year int, sessionType model.SessionType) ([]model.Session, error) {
	req := l.normalize(Request{Year: year, SessionType: sessionType})
	src := l.selector.For(req.Year)

	var out []model.Session
	err := l.record(ctx, model.Run{Kind: model.RunKindSessions, Year: req.Year, Source: src.Provenance()},
		func() (int, bool, error) {
			var err error
			out, err = src.Sessions(ctx, req.Year, req.SessionType)
			if err != nil {
				return 0, false, eris.Wrapf(err, "loader: fetch sessions %d", req.Year)
			}
			return len(out), false, nil
		})
	return out, err
}

// Session resolves the session a request points at.
func (l *Loader) Session(ctx context.Context, req Request) (*model.Session, error) {
	req = l.normalize(req)
	sessions, err := l.selector.For(req.Year).Sessions(ctx, req.Year, req.SessionType)
	if err != nil {
		return nil, eris.Wrapf(err, "loader: fetch sessions %d", req.Year)
	}
	s, ok := pick(sessions, req)
	if !ok {
		return nil, eris.Wrapf(ErrSessionNotFound, "loader: %d key=%d round=%d", req.Year, req.Key, req.Round)
	}
	return &s, nil
}

// pick finds the session by key, or by round preferring the latest start
// within that round, then by key equal to the round number.
func pick(sessions []model.Session, req Request) (model.Session, bool) {
	if req.Key > 0 {
		i := slices.IndexFunc(sessions, func(s model.Session) bool { return s.Key == req.Key })
		if i < 0 {
			return model.Session{}, false
		}
		return sessions[i], true
	}
	if req.Round <= 0 {
		return model.Session{}, false
	}

	var best *model.Session
	for i := range sessions {
		s := &sessions[i]
		if s.Round != req.Round {
			continue
		}
		if best == nil || !s.Start.Before(best.Start) {
			best = s
		}
	}
	if best != nil {
		return *best, true
	}
	i := slices.IndexFunc(sessions, func(s model.Session) bool { return s.Key == req.Round })
	if i < 0 {
		return model.Session{}, false
	}
	return sessions[i], true
}

// ResultsFor resolves the session of req and loads its results.
func (l *Loader) ResultsFor(ctx context.Context, req Request) (*model.SessionResult, error) {
	sess, err := l.Session(ctx, req)
	if err != nil {
		return nil, err
	}
	return l.Results(ctx, *sess)
}

// Results loads and reconciles the classification of sess.
func (l *Loader) Results(ctx context.Context, sess model.Session) (*model.SessionResult, error) {
	var out *model.SessionResult
	run := model.Run{Kind: model.RunKindResults, Year: sess.Year, SessionKey: sess.Key, Source: sess.Source}
	err := l.record(ctx, run, func() (int, bool, error) {
		var err error
		out, err = l.results(ctx, sess)
		if err != nil {
			return 0, false, err
		}
		return len(out.Rows), out.Partial, nil
	})
	return out, err
}

// results fetches weather, positions, drivers and laps one after another.
// Positions and drivers are required; weather and laps degrade to a partial
// result.
func (l *Loader) results(ctx context.Context, sess model.Session) (*model.SessionResult, error) {
	src := l.selector.For(sess.Year)
	ref := sess.Ref()
	ctx = source.WithLoadScope(ctx)
	log := zap.L().With(
		zap.Int("year", ref.Year),
		zap.Int("session_key", ref.Key),
		zap.String("source", string(src.Provenance())),
	)

	out := &model.SessionResult{Session: sess}

	if err := ctx.Err(); err != nil {
		return nil, eris.Wrapf(err, "loader: fetch weather %s", ref)
	}
	weather, err := src.Weather(ctx, ref)
	if err != nil {
		log.Warn("loader: weather unavailable", zap.Error(err))
		out.Partial = true
		out.Warnings = append(out.Warnings, "weather unavailable: "+err.Error())
	} else {
		out.Weather = latestWeather(weather)
	}

	if err := ctx.Err(); err != nil {
		return nil, eris.Wrapf(err, "loader: fetch positions %s", ref)
	}
	positions, err := src.Positions(ctx, ref)
	if err != nil {
		return nil, eris.Wrapf(err, "loader: fetch positions %s", ref)
	}

	if err := ctx.Err(); err != nil {
		return nil, eris.Wrapf(err, "loader: fetch drivers %s", ref)
	}
	drivers, err := src.Drivers(ctx, ref)
	if err != nil {
		return nil, eris.Wrapf(err, "loader: fetch drivers %s", ref)
	}

	if err := ctx.Err(); err != nil {
		return nil, eris.Wrapf(err, "loader: fetch laps %s", ref)
	}
	laps, err := src.Laps(ctx, ref)
	if err != nil {
		log.Warn("loader: laps unavailable, best laps omitted", zap.Error(err))
		out.Partial = true
		out.Warnings = append(out.Warnings, "laps unavailable: "+err.Error())
		laps = nil
	}

	res := reconcile.Reconcile(positions, drivers, laps)
	out.Rows = res.Rows
	out.TotalLaps = res.TotalLaps
	out.Fastest = res.Fastest

	log.Info("loader: results loaded",
		zap.Int("rows", len(out.Rows)),
		zap.Int("positions", len(positions)),
		zap.Int("laps", len(laps)),
		zap.Bool("partial", out.Partial),
	)
	return out, nil
}

// Latest loads the most recent session that has started. When the year has
// none yet it steps back one season at a time, down to the first live
// season.
func (l *Loader) Latest(ctx context.Context, year int) (*model.SessionResult, error) {
	req := l.normalize(Request{Year: year})
	now := l.now()
	floor := min(req.Year, l.selector.Cutoff())

	var out *model.SessionResult
	run := model.Run{Kind: model.RunKindLatest, Year: req.Year, Source: l.selector.For(req.Year).Provenance()}
	err := l.record(ctx, run, func() (int, bool, error) {
		for y := req.Year; y >= floor; y-- {
			sessions, err := l.selector.For(y).Sessions(ctx, y, req.SessionType)
			if err != nil {
				return 0, false, eris.Wrapf(err, "loader: fetch sessions %d", y)
			}
			sess, ok := lastStarted(sessions, now)
			if !ok {
				zap.L().Debug("loader: no started session, stepping back", zap.Int("year", y))
				continue
			}
			res, err := l.results(ctx, sess)
			if err != nil {
				return 0, false, err
			}
			out = res
			return len(res.Rows), res.Partial, nil
		}
		return 0, false, eris.Wrapf(ErrSessionNotFound, "loader: no started session in %d..%d", floor, req.Year)
	})
	return out, err
}

func lastStarted(sessions []model.Session, now time.Time) (model.Session, bool) {
	var best *model.Session
	for i := range sessions {
		s := &sessions[i]
		if !s.Started(now) {
			continue
		}
		if best == nil || !s.Start.Before(best.Start) {
			best = s
		}
	}
	if best == nil {
		return model.Session{}, false
	}
	return *best, true
}

func latestWeather(samples []model.Weather) *model.Weather {
	if len(samples) == 0 {
		return nil
	}
	latest := samples[0]
	for _, w := range samples[1:] {
		if !w.Date.Before(latest.Date) {
			latest = w
		}
	}
	return &latest
}

// Standings loads the drivers' championship table of a year.
func (l *Loader) Standings(ctx context.Context, year int) ([]model.Standing, error) {
	req := l.normalize(Request{Year: year})
	ss := l.selector.Standings()
	if ss == nil {
		return nil, ErrStandingsUnavailable
	}

	var out []model.Standing
	run := model.Run{Kind: model.RunKindStandings, Year: req.Year, Source: model.ProvenanceLegacy}
	err := l.record(ctx, run, func() (int, bool, error) {
		var err error
		out, err = ss.Standings(ctx, req.Year)
		if err != nil {
			return 0, false, eris.Wrapf(err, "loader: fetch standings %d", req.Year)
		}
		return len(out), false, nil
	})
	return out, err
}

// Runs lists recorded loads.
func (l *Loader) Runs(ctx context.Context, filter store.RunFilter) ([]model.Run, error) {
	if l.runs == nil {
		return nil, store.ErrDisabled
	}
	return l.runs.ListRuns(ctx, filter)
}

// record wraps a load in a run log entry. Run log failures are logged and
// never fail the load.
func (l *Loader) record(ctx context.Context, run model.Run, fn func() (rows int, partial bool, err error)) error {
	if l.runs == nil {
		_, _, err := fn()
		return err
	}

	log := zap.L().With(zap.String("kind", string(run.Kind)), zap.Int("year", run.Year))
	created, err := l.runs.CreateRun(ctx, run)
	if err != nil {
		log.Warn("loader: failed to create run", zap.Error(err))
	}

	rows, partial, fnErr := fn()

	if created != nil {
		outcome := model.RunOutcome{Status: model.RunStatusComplete, Rows: rows}
		switch {
		case fnErr != nil:
			outcome.Status = model.RunStatusFailed
			outcome.Error = fnErr.Error()
		case partial:
			outcome.Status = model.RunStatusPartial
		}
		if err := l.runs.FinishRun(context.WithoutCancel(ctx), created.ID, outcome); err != nil {
			log.Warn("loader: failed to finish run", zap.String("run_id", created.ID), zap.Error(err))
		}
	}
	return fnErr
}

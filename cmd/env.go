package main

import (
	"context"
	"errors"
	"net/url"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/paddock/internal/config"
	"github.com/sells-group/paddock/internal/fetcher"
	"github.com/sells-group/paddock/internal/loader"
	"github.com/sells-group/paddock/internal/model"
	"github.com/sells-group/paddock/internal/resilience"
	"github.com/sells-group/paddock/internal/source"
	"github.com/sells-group/paddock/internal/store"
	"github.com/sells-group/paddock/pkg/ergast"
	"github.com/sells-group/paddock/pkg/openf1"
)

// appEnv holds the wired dependencies shared by commands.
type appEnv struct {
	Loader *loader.Loader
	Store  store.Store
}

// Close releases the run log, if any.
func (e *appEnv) Close() {
	if e.Store != nil {
		_ = e.Store.Close()
	}
}

// initEnv validates the config for mode and wires fetcher, upstream clients,
// sources, the optional run log and the loader.
func initEnv(ctx context.Context, mode string) (*appEnv, error) {
	if err := cfg.Validate(mode); err != nil {
		return nil, err
	}

	f := fetcher.New(fetcherOptions(cfg))
	live := source.NewLive(openf1.NewClient(openf1.WithBaseURL(cfg.Live.BaseURL), openf1.WithFetcher(f)))
	legacy := source.NewLegacy(ergast.NewClient(ergast.WithBaseURL(cfg.Legacy.BaseURL), ergast.WithFetcher(f)))
	selector := source.NewSelector(live, legacy, cfg.Source.LegacyCutoffYear)

	env := &appEnv{}
	var opts []loader.Option
	st, err := store.Open(ctx, cfg.Store.Driver, cfg.Store.DatabaseURL)
	switch {
	case errors.Is(err, store.ErrDisabled):
		zap.L().Debug("run log disabled")
	case err != nil:
		return nil, eris.Wrap(err, "open run log")
	default:
		env.Store = st
		opts = append(opts, loader.WithRunLog(st))
	}

	env.Loader = loader.New(selector, opts...)
	return env, nil
}

// fetcherOptions builds the transport settings, with one token bucket per
// upstream host.
func fetcherOptions(c *config.Config) fetcher.Options {
	limits := map[string]fetcher.Limit{}
	for _, u := range []config.UpstreamConfig{c.Live, c.Legacy} {
		if host := hostOf(u.BaseURL); host != "" {
			limits[host] = fetcher.Limit{PerSecond: u.RatePerSec, Burst: u.Burst}
		}
	}
	return fetcher.Options{
		UserAgent: c.HTTP.UserAgent,
		Timeout:   time.Duration(c.HTTP.TimeoutSecs) * time.Second,
		Retry:     resilience.PolicyFromConfig(c.HTTP.MaxAttempts, c.HTTP.InitialBackoffMs, c.HTTP.MaxBackoffMs),
		Breaker:   resilience.BreakerFromConfig(c.HTTP.BreakerThreshold, c.HTTP.BreakerResetSecs),
		Limits:    limits,
	}
}

func hostOf(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	return u.Host
}

// sessionTypeFlag resolves a --type flag value, falling back to the
// configured default.
func sessionTypeFlag(v string) (model.SessionType, error) {
	if v == "" {
		v = cfg.Source.SessionType
	}
	return config.ParseSessionType(v)
}

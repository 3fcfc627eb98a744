package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/sells-group/paddock/internal/config"
	"github.com/sells-group/paddock/internal/fetcher"
	"github.com/sells-group/paddock/internal/loader"
	"github.com/sells-group/paddock/internal/render"
	"github.com/sells-group/paddock/internal/resilience"
	"github.com/sells-group/paddock/internal/store"
)

const (
	minYear      = 1950
	maxListLimit = 500
)

type handlers struct {
	svc Service
}

func (h *handlers) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *handlers) sessions(w http.ResponseWriter, r *http.Request) {
	year, ok := yearParam(w, r)
	if !ok {
		return
	}
	st, err := config.ParseSessionType(r.URL.Query().Get("type"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	sessions, err := h.svc.Sessions(r.Context(), year, st)
	if err != nil {
		writeLoadError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sessions)
}

func (h *handlers) resultsByKey(w http.ResponseWriter, r *http.Request) {
	year, ok := yearParam(w, r)
	if !ok {
		return
	}
	key, ok := positiveParam(w, chi.URLParam(r, "key"), "key")
	if !ok {
		return
	}
	h.results(w, r, loader.Request{Year: year, Key: key})
}

func (h *handlers) resultsByRound(w http.ResponseWriter, r *http.Request) {
	year, ok := yearParam(w, r)
	if !ok {
		return
	}
	round, ok := positiveParam(w, chi.URLParam(r, "round"), "round")
	if !ok {
		return
	}
	h.results(w, r, loader.Request{Year: year, Round: round})
}

func (h *handlers) results(w http.ResponseWriter, r *http.Request, req loader.Request) {
	st, err := config.ParseSessionType(r.URL.Query().Get("type"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	req.SessionType = st

	res, err := h.svc.ResultsFor(r.Context(), req)
	if err != nil {
		writeLoadError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *handlers) latest(w http.ResponseWriter, r *http.Request) {
	year := 0
	if raw := r.URL.Query().Get("year"); raw != "" {
		y, err := strconv.Atoi(raw)
		if err != nil || y < minYear {
			writeError(w, http.StatusBadRequest, "invalid year")
			return
		}
		year = y
	}

	res, err := h.svc.Latest(r.Context(), year)
	if err != nil {
		writeLoadError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, render.Summarize(res))
}

func (h *handlers) standings(w http.ResponseWriter, r *http.Request) {
	year, ok := yearParam(w, r)
	if !ok {
		return
	}
	rows, err := h.svc.Standings(r.Context(), year)
	if err != nil {
		writeLoadError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rows)
}

func (h *handlers) runs(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	var filter store.RunFilter
	if raw := q.Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > maxListLimit {
			writeError(w, http.StatusBadRequest, "limit must be between 1 and 500")
			return
		}
		filter.Limit = n
	}
	if raw := q.Get("year"); raw != "" {
		y, err := strconv.Atoi(raw)
		if err != nil || y < minYear {
			writeError(w, http.StatusBadRequest, "invalid year")
			return
		}
		filter.Year = y
	}

	runs, err := h.svc.Runs(r.Context(), filter)
	if err != nil {
		writeLoadError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, runs)
}

func yearParam(w http.ResponseWriter, r *http.Request) (int, bool) {
	y, err := strconv.Atoi(chi.URLParam(r, "year"))
	if err != nil || y < minYear {
		writeError(w, http.StatusBadRequest, "invalid year")
		return 0, false
	}
	return y, true
}

func positiveParam(w http.ResponseWriter, raw, name string) (int, bool) {
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		writeError(w, http.StatusBadRequest, "invalid "+name)
		return 0, false
	}
	return n, true
}

// statusFor maps a load error onto an HTTP status.
func statusFor(err error) int {
	switch {
	case errors.Is(err, loader.ErrSessionNotFound):
		return http.StatusNotFound
	case errors.Is(err, store.ErrDisabled):
		return http.StatusNotFound
	case errors.Is(err, loader.ErrStandingsUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case fetcher.IsRateLimited(err), errors.Is(err, resilience.ErrCircuitOpen):
		return http.StatusServiceUnavailable
	case fetcher.IsNetworkError(err), fetcher.IsDecodeError(err):
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

func writeLoadError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		zap.L().Error("api: load failed", zap.String("path", r.URL.Path), zap.Int("status", status), zap.Error(err))
	}
	writeError(w, status, err.Error())
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Warn("api: encode response", zap.Error(err))
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

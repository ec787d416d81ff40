package handler

import (
	"context"
	"net/http"
	"time"
)

type HealthHandler struct {
	check func(ctx context.Context) error
	start time.Time
}

// NewHealthHandler reports readiness using check, typically a database status
// check.
func NewHealthHandler(check func(ctx context.Context) error) *HealthHandler {
	return &HealthHandler{
		check: check,
		start: time.Now(),
	}
}

func (hh HealthHandler) Readiness(rw http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), time.Second)
	defer cancel()

	status := "ok"
	code := http.StatusOK
	if err := hh.check(ctx); err != nil {
		status = "db not ready"
		code = http.StatusServiceUnavailable
	}

	respond(ctx, rw, code, map[string]string{
		"status": status,
		"uptime": time.Since(hh.start).Round(time.Second).String(),
	})
}

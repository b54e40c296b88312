// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/taibuivan/avatarstudio/internal/platform/constants"
	"github.com/taibuivan/avatarstudio/internal/platform/respond"
)

// HealthCheck probes one dependency behind /ready.
type HealthCheck struct {
	Name  string
	Check func(context.Context) error
}

type checkResult struct {
	Name  string `json:"name"`
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

type healthHandler struct {
	checks []HealthCheck
	logger *slog.Logger
}

/*
NewHealthHandlers builds the /health and /ready handlers.

Each check runs under [constants.HealthCheckTimeout]. The in-memory session
store has no check, so a Redis-less deployment only reports postgres.
*/
func NewHealthHandlers(checks []HealthCheck, logger *slog.Logger) (liveness, readiness http.HandlerFunc) {
	handler := &healthHandler{checks: checks, logger: logger}
	return handler.liveness, handler.readiness
}

// GET /health
func (handler *healthHandler) liveness(writer http.ResponseWriter, request *http.Request) {
	respond.OK(writer, map[string]string{constants.FieldStatus: "ok"})
}

// GET /ready
func (handler *healthHandler) readiness(writer http.ResponseWriter, request *http.Request) {
	results := make([]checkResult, 0, len(handler.checks))
	ready := true

	for _, check := range handler.checks {
		result := checkResult{Name: check.Name, OK: true}
		if err := handler.probe(request.Context(), check); err != nil {
			result.OK = false
			result.Error = err.Error()
			ready = false
			handler.logger.Error("readiness_check_failed", slog.String("dependency", check.Name), slog.Any("error", err))
		}
		results = append(results, result)
	}

	status, httpStatus := "ready", http.StatusOK
	if !ready {
		status, httpStatus = "degraded", http.StatusServiceUnavailable
	}

	respond.Status(writer, httpStatus, map[string]any{
		constants.FieldStatus: status,
		constants.FieldChecks: results,
	})
}

func (handler *healthHandler) probe(parent context.Context, check HealthCheck) error {
	ctx, cancel := context.WithTimeout(parent, constants.HealthCheckTimeout)
	defer cancel()
	return check.Check(ctx)
}

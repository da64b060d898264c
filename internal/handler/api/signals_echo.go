package api

import (
	"context"
	"errors"
	"time"

	models "SignalPull/internal/domain/models"
	"SignalPull/internal/usecase"
	xhttp "SignalPull/pkg/http"
	xlogger "SignalPull/pkg/logger"

	"github.com/labstack/echo/v4"
)

// runTimeout bounds a background run triggered over HTTP.
const runTimeout = 10 * time.Minute

// RunController is the slice of the pipeline the HTTP surface needs.
type RunController interface {
	Run(ctx context.Context) (*models.RunResult, error)
	LastRun() *models.RunResult
}

// SignalsEchoHandler exposes the pipeline output over Echo.
type SignalsEchoHandler struct {
	logger *xlogger.Logger
	pipe   RunController
}

func NewSignalsEchoHandler(logger *xlogger.Logger, pipe RunController) *SignalsEchoHandler {
	return &SignalsEchoHandler{logger: logger, pipe: pipe}
}

func (h *SignalsEchoHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api")
	g.GET("/signals", h.Signals)
	g.GET("/actions", h.Actions)
	g.GET("/diagnostics", h.Diagnostics)
	g.POST("/run", h.Run)
}

// Signals returns the emitted signals of the latest run, optionally filtered
// by level.
func (h *SignalsEchoHandler) Signals(c echo.Context) error {
	req := &models.SignalsRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	run := h.pipe.LastRun()
	if run == nil {
		return xhttp.NotFoundResponse(c, "no completed run yet")
	}

	out := make([]models.Signal, 0, len(run.Signals))
	for _, s := range run.Signals {
		if req.Level != "" && !hasLevel(s.Levels, models.LevelTag(req.Level)) {
			continue
		}
		out = append(out, s)
		if len(out) >= req.Limit {
			break
		}
	}
	return xhttp.ListResponse(c, out, int64(len(out)))
}

// Actions returns the ranked, per-symbol deduplicated action list.
func (h *SignalsEchoHandler) Actions(c echo.Context) error {
	req := &models.SignalsRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	run := h.pipe.LastRun()
	if run == nil {
		return xhttp.NotFoundResponse(c, "no completed run yet")
	}

	out := make([]models.RankedAction, 0, len(run.Actions))
	for _, a := range run.Actions {
		if req.Level != "" && a.Level != models.LevelTag(req.Level) {
			continue
		}
		out = append(out, a)
		if len(out) >= req.Limit {
			break
		}
	}
	return xhttp.ListResponse(c, out, int64(len(out)))
}

// Diagnostics returns the per-instrument records of the latest run, including
// rejected and near-miss instruments.
func (h *SignalsEchoHandler) Diagnostics(c echo.Context) error {
	req := &models.DiagnosticsRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	run := h.pipe.LastRun()
	if run == nil {
		return xhttp.NotFoundResponse(c, "no completed run yet")
	}

	out := make([]models.Diagnostic, 0, len(run.Diagnostics))
	for _, d := range run.Diagnostics {
		if req.Symbol != "" && d.Symbol != req.Symbol {
			continue
		}
		if req.Asset != "" && d.AssetType != models.AssetType(req.Asset) {
			continue
		}
		out = append(out, d)
	}
	return xhttp.ListResponse(c, out, int64(len(out)))
}

// Run triggers a pipeline run. By default it fires in the background and
// answers immediately; with wait=true it blocks and returns the run result.
func (h *SignalsEchoHandler) Run(c echo.Context) error {
	req := &models.RunRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	if req.Wait {
		res, err := h.pipe.Run(c.Request().Context())
		if errors.Is(err, usecase.ErrRunInProgress) {
			return xhttp.BadRequestResponse(c, map[string]string{"error": err.Error()})
		}
		if err != nil {
			h.logger.Error("manual run failed", xlogger.Error(err))
			return xhttp.AppErrorResponse(c, err)
		}
		return xhttp.SuccessResponse(c, res)
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), runTimeout)
		defer cancel()
		if _, err := h.pipe.Run(ctx); err != nil && !errors.Is(err, usecase.ErrRunInProgress) {
			h.logger.Error("background run failed", xlogger.Error(err))
		}
	}()
	return xhttp.SuccessResponse(c, map[string]string{"status": "started"})
}

func hasLevel(levels []models.LevelTag, want models.LevelTag) bool {
	for _, l := range levels {
		if l == want {
			return true
		}
	}
	return false
}

// internal/api/http/handler.go
package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"holter-distributor/internal/domain"
	"holter-distributor/internal/metrics"
	"holter-distributor/internal/report"
	"holter-distributor/internal/usecase"

	"github.com/go-playground/validator/v10"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const defaultPassLimit = 20

// PassService runs passes and reads their history.
type PassService interface {
	RunPass(ctx context.Context) (*domain.PassReport, error)
	ListPasses(ctx context.Context, limit int) ([]*domain.PassReport, error)
	GetPass(ctx context.Context, id string) (*domain.PassReport, error)
}

// StatsReader reads assignment statistics.
type StatsReader interface {
	Monthly(ctx context.Context, year, month int) (*usecase.MonthlyStats, error)
	Daily(ctx context.Context, year, month, day int, folder string) ([]usecase.DailyEntry, error)
}

// Handler serves the distributor's HTTP API.
type Handler struct {
	passes    PassService
	stats     StatsReader
	scheduler domain.Schedular
	logger    *slog.Logger
	validate  *validator.Validate
	tracer    trace.Tracer
}

// NewHandler creates a new Handler.
func NewHandler(passes PassService, stats StatsReader, scheduler domain.Schedular, logger *slog.Logger) *Handler {
	return &Handler{
		passes:    passes,
		stats:     stats,
		scheduler: scheduler,
		logger:    logger.With("component", "http-handler"),
		validate:  validator.New(),
		tracer:    otel.Tracer("holter-distributor-api"),
	}
}

// A helper struct to capture the status code
type instrumentedResponseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (w *instrumentedResponseWriter) WriteHeader(statusCode int) {
	w.statusCode = statusCode
	w.ResponseWriter.WriteHeader(statusCode)
}

// RegisterRoutes registers the API routes to the http.ServeMux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	routes := map[string]http.HandlerFunc{
		"POST /scheduler/start":                 h.handleSchedulerStart,
		"POST /scheduler/stop":                  h.handleSchedulerStop,
		"GET /scheduler/status":                 h.handleSchedulerStatus,
		"POST /passes":                          h.handleRunPass,
		"GET /passes":                           h.handleListPasses,
		"GET /passes/{id}":                      h.handleGetPass,
		"GET /stats/{year}/{month}":             h.handleMonthly,
		"GET /stats/{year}/{month}/export.xlsx": h.handleMonthlyExport,
		"GET /stats/{year}/{month}/{day}":       h.handleDaily,
		"GET /healthz":                          h.handleHealthz,
	}
	for pattern, fn := range routes {
		mux.Handle(pattern, h.instrument(fn))
	}
}

func (h *Handler) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// The matched pattern keeps metric label cardinality bounded.
		route := r.Pattern

		ctx, span := h.tracer.Start(r.Context(), "HTTP "+route, trace.WithAttributes(
			attribute.String("http.method", r.Method),
			attribute.String("http.target", r.URL.Path),
		))
		defer span.End()

		r = r.WithContext(ctx)

		iw := &instrumentedResponseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(iw, r)

		metrics.HttpRequestsTotal.WithLabelValues(route, r.Method, strconv.Itoa(iw.statusCode)).Inc()

		span.SetAttributes(attribute.Int("http.status_code", iw.statusCode))
		if iw.statusCode >= 500 {
			span.SetStatus(codes.Error, "Server Error")
		}
	})
}

func (h *Handler) handleSchedulerStart(w http.ResponseWriter, r *http.Request) {
	if err := h.scheduler.Enable(); err != nil {
		h.logger.Error("error enabling scheduler", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to start scheduler")
		return
	}
	writeJSON(w, http.StatusOK, newStatusResponse(h.scheduler.Enabled()))
}

func (h *Handler) handleSchedulerStop(w http.ResponseWriter, r *http.Request) {
	h.scheduler.Disable()
	writeJSON(w, http.StatusOK, newStatusResponse(h.scheduler.Enabled()))
}

func (h *Handler) handleSchedulerStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, newStatusResponse(h.scheduler.Enabled()))
}

// handleRunPass runs one pass now (POST /passes).
func (h *Handler) handleRunPass(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "handler.RunPass")
	defer span.End()

	rep, err := h.passes.RunPass(ctx)
	if err != nil {
		span.RecordError(err)
		if errors.Is(err, domain.ErrLockNotAcquired) {
			writeError(w, http.StatusConflict, "a distribution pass is already in flight")
			return
		}
		span.SetStatus(codes.Error, "distribution pass failed")
		h.logger.Error("error running pass", "error", err)
		writeError(w, statusFor(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, rep)
}

// handleListPasses lists recent passes (GET /passes?limit=N).
func (h *Handler) handleListPasses(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "handler.ListPasses")
	defer span.End()

	q := ListPassesQuery{Limit: defaultPassLimit}
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "limit must be an integer")
			return
		}
		q.Limit = n
	}
	if !h.valid(w, q) {
		return
	}

	reports, err := h.passes.ListPasses(ctx, q.Limit)
	if err != nil {
		span.SetStatus(codes.Error, "Failed to list passes from service")
		span.RecordError(err)
		h.logger.Error("error listing passes", "error", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	out := make([]PassSummary, 0, len(reports))
	for _, rep := range reports {
		out = append(out, ToPassSummary(rep))
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) handleGetPass(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "handler.GetPass")
	defer span.End()
	id := r.PathValue("id")
	span.SetAttributes(attribute.String("pass.id", id))

	rep, err := h.passes.GetPass(ctx, id)
	if err != nil {
		span.RecordError(err)
		if errors.Is(err, domain.ErrPassNotFound) {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		span.SetStatus(codes.Error, "Failed to get pass from service")
		h.logger.Error("error getting pass", "pass_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	writeJSON(w, http.StatusOK, rep)
}

func (h *Handler) handleMonthly(w http.ResponseWriter, r *http.Request) {
	req, ok := h.monthRequest(w, r)
	if !ok {
		return
	}
	stats, err := h.stats.Monthly(r.Context(), req.Year, req.Month)
	if err != nil {
		h.logger.Error("error reading monthly stats", "year", req.Year, "month", req.Month, "error", err)
		writeError(w, statusFor(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (h *Handler) handleMonthlyExport(w http.ResponseWriter, r *http.Request) {
	req, ok := h.monthRequest(w, r)
	if !ok {
		return
	}
	stats, err := h.stats.Monthly(r.Context(), req.Year, req.Month)
	if err != nil {
		h.logger.Error("error reading monthly stats", "year", req.Year, "month", req.Month, "error", err)
		writeError(w, statusFor(err), err.Error())
		return
	}

	var buf bytes.Buffer
	if err := report.WriteMonthly(&buf, stats); err != nil {
		h.logger.Error("error building workbook", "error", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="stats-%d-%02d.xlsx"`, req.Year, req.Month))
	if _, err := buf.WriteTo(w); err != nil {
		h.logger.Error("error writing workbook", "error", err)
	}
}

func (h *Handler) handleDaily(w http.ResponseWriter, r *http.Request) {
	month, ok := h.monthRequest(w, r)
	if !ok {
		return
	}
	day, err := strconv.Atoi(r.PathValue("day"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "day must be an integer")
		return
	}
	req := DayRequest{MonthRequest: month, Day: day, Doctor: r.URL.Query().Get("doctor")}
	if !h.valid(w, req) {
		return
	}

	entries, err := h.stats.Daily(r.Context(), req.Year, req.Month, req.Day, req.Doctor)
	if err != nil {
		h.logger.Warn("error reading daily stats", "error", err)
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

func (h *Handler) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, StatusResponse{Status: "ok"})
}

func (h *Handler) monthRequest(w http.ResponseWriter, r *http.Request) (MonthRequest, bool) {
	year, yerr := strconv.Atoi(r.PathValue("year"))
	month, merr := strconv.Atoi(r.PathValue("month"))
	if yerr != nil || merr != nil {
		writeError(w, http.StatusBadRequest, "year and month must be integers")
		return MonthRequest{}, false
	}
	req := MonthRequest{Year: year, Month: month}
	return req, h.valid(w, req)
}

func (h *Handler) valid(w http.ResponseWriter, req interface{}) bool {
	err := h.validate.Struct(req)
	if err == nil {
		return true
	}
	var details []string
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		for _, fe := range verrs {
			details = append(details, "Field '"+fe.Field()+"' failed on the '"+fe.Tag()+"' tag.")
		}
	}
	writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "Validation failed", Details: details})
	return false
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrLockNotAcquired):
		return http.StatusConflict
	case errors.Is(err, domain.ErrPassNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, ErrorResponse{Error: msg})
}

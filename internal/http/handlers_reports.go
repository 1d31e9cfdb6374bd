package http

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"caixa/internal/auth"
	"caixa/internal/reports"
)

const maxMonthOffset = 11

// reportCacheKey scopes a cached payload to the requesting user so one
// session's figures are never served to another.
func reportCacheKey(ctx context.Context, name string) string {
	userID, _ := auth.UserFromContext(ctx)
	return name + ":" + userID
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	key := reportCacheKey(r.Context(), "dashboard")
	if dash, ok := s.dashCache.Get(key); ok {
		writeJSON(w, http.StatusOK, dash)
		return
	}
	dash := reports.BuildDashboard(s.store.Snapshot(), time.Now())
	s.dashCache.Set(key, dash)
	writeJSON(w, http.StatusOK, dash)
}

func (s *Server) handleMonthlyReport(w http.ResponseWriter, r *http.Request) {
	offset, err := parseMonthOffset(r)
	if err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, errorBody{Error: "month_offset inválido"})
		return
	}

	key := reportCacheKey(r.Context(), "monthly-"+strconv.Itoa(offset))
	if report, ok := s.reportCache.Get(key); ok {
		writeJSON(w, http.StatusOK, report)
		return
	}
	report := reports.BuildMonthlyReport(s.store.Snapshot(), time.Now(), offset)
	s.reportCache.Set(key, report)
	writeJSON(w, http.StatusOK, report)
}

func (s *Server) handleExportReport(w http.ResponseWriter, r *http.Request) {
	if s.exporter == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorBody{Error: "exportação não configurada"})
		return
	}
	offset, err := parseMonthOffset(r)
	if err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, errorBody{Error: "month_offset inválido"})
		return
	}

	report := reports.BuildMonthlyReport(s.store.Snapshot(), time.Now(), offset)
	if err := s.exporter.ExportMonthlyReport(r.Context(), report); err != nil {
		slog.ErrorContext(r.Context(), "report export failed", "error", err, "month", report.Month)
		writeJSON(w, http.StatusBadGateway, errorBody{Error: "erro ao exportar o relatório"})
		return
	}
	writeJSON(w, http.StatusOK, statusBody{Status: "ok"})
}

func parseMonthOffset(r *http.Request) (int, error) {
	v := r.URL.Query().Get("month_offset")
	if v == "" {
		return 0, nil
	}
	offset, err := strconv.Atoi(v)
	if err != nil || offset < 0 || offset > maxMonthOffset {
		return 0, strconv.ErrRange
	}
	return offset, nil
}

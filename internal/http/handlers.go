package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sort"

	"invdefects/internal/core"
	applog "invdefects/internal/log"
	"invdefects/internal/sheets/xlsx"
)

var errUnknownReport = errors.New("unknown report")

// reportViews selects one report out of a bundle by its URL name.
var reportViews = map[string]func(core.ReportBundle) any{
	"summary":               func(b core.ReportBundle) any { return b.Overall },
	"root-causes":           func(b core.ReportBundle) any { return b.RootCauses },
	"warehouses":            func(b core.ReportBundle) any { return b.Warehouses },
	"entry-methods":         func(b core.ReportBundle) any { return b.EntryMethods },
	"operators":             func(b core.ReportBundle) any { return b.Operators },
	"severity":              func(b core.ReportBundle) any { return b.Severity },
	"severity-distribution": func(b core.ReportBundle) any { return b.SeverityDistribution },
	"monthly-trend":         func(b core.ReportBundle) any { return b.MonthlyTrend },
	"integrity":             func(b core.ReportBundle) any { return b.Integrity },
	"findings":              func(b core.ReportBundle) any { return b.Findings },
}

// ReportNames lists the names accepted by GET /api/v1/reports/{name}.
func ReportNames() []string {
	names := make([]string, 0, len(reportViews))
	for name := range reportViews {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.ready != nil {
		if err := s.ready(r.Context()); err != nil {
			applog.FromContext(r.Context()).WarnContext(r.Context(), "Readiness check failed", applog.FieldError, err)
			writeError(w, http.StatusServiceUnavailable, "data source unavailable")
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

func (s *Server) bundle(ctx context.Context) (core.ReportBundle, error) {
	ctx, cancel := context.WithTimeout(ctx, s.reportTimeout)
	defer cancel()
	return s.reports.Reports(ctx)
}

func (s *Server) handleBundle(w http.ResponseWriter, r *http.Request) {
	b, err := s.bundle(r.Context())
	if err != nil {
		s.fail(w, r, "all", err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	view, ok := reportViews[name]
	if !ok {
		s.fail(w, r, name, fmt.Errorf("%w %q", errUnknownReport, name))
		return
	}

	b, err := s.bundle(r.Context())
	if err != nil {
		s.fail(w, r, name, err)
		return
	}
	writeJSON(w, http.StatusOK, view(b))
}

func (s *Server) handleExportXLSX(w http.ResponseWriter, r *http.Request) {
	b, err := s.bundle(r.Context())
	if err != nil {
		s.fail(w, r, "export", err)
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="defect_reports.xlsx"`)
	if err := xlsx.Write(w, b); err != nil {
		// headers are gone, only log
		applog.FromContext(r.Context()).ErrorContext(r.Context(), "Failed to stream workbook",
			applog.FieldOperation, applog.OpExport, applog.FieldError, err)
	}
}

type refreshResponse struct {
	Status    string `json:"status"`
	RequestID string `json:"request_id,omitempty"`
}

// handleRefresh drops the cached reports. When a queue is configured the
// worker is also asked to republish them.
func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := applog.FromContext(ctx)

	s.reports.Invalidate()
	resp := refreshResponse{Status: "invalidated"}

	if s.refresher != nil {
		msg, err := s.refresher.PublishRefresh(ctx, "api")
		if err != nil {
			logger.ErrorContext(ctx, "Failed to enqueue refresh request",
				applog.FieldOperation, applog.OpRefresh, applog.FieldError, err)
			writeError(w, http.StatusServiceUnavailable, "cache dropped but refresh could not be queued")
			return
		}
		resp.Status = "queued"
		resp.RequestID = msg.RequestID
	}

	logger.InfoContext(ctx, "Report cache invalidated",
		applog.FieldOperation, applog.OpRefresh, "status", resp.Status)
	writeJSON(w, http.StatusAccepted, resp)
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, report string, err error) {
	status := statusFor(err)
	fields := applog.NewFields().WithOperation(applog.OpRead).WithError(err)
	fields[applog.FieldReport] = report

	logger := applog.FromContext(r.Context())
	if status >= http.StatusInternalServerError {
		logger.ErrorContext(r.Context(), "Report request failed", fields.ToSlice()...)
		writeError(w, status, "failed to compute reports")
		return
	}
	logger.WarnContext(r.Context(), "Report request rejected", fields.ToSlice()...)
	writeError(w, status, err.Error())
}

package services

import (
	"context"
	"fmt"
	"log/slog"

	"invdefects/internal/core"
	"invdefects/internal/sheets"
	"invdefects/internal/storage"
)

// RunRecorder keeps a history of published bundles.
type RunRecorder interface {
	RecordRun(ctx context.Context, b core.ReportBundle, ref string) (storage.ReportRun, error)
}

// Publisher recomputes the reports and writes them to a report writer.
type Publisher struct {
	reports  *ReportService
	writer   sheets.ReportWriter
	recorder RunRecorder
}

// NewPublisher wires a publisher. recorder may be nil.
func NewPublisher(reports *ReportService, writer sheets.ReportWriter, recorder RunRecorder) *Publisher {
	return &Publisher{reports: reports, writer: writer, recorder: recorder}
}

// Publish refreshes the bundle from the source and writes it out. It returns
// the writer's reference to the published reports.
func (p *Publisher) Publish(ctx context.Context, reason string) (string, error) {
	b, err := p.reports.Refresh(ctx)
	if err != nil {
		return "", fmt.Errorf("refresh reports: %w", err)
	}

	ref, err := p.writer.WriteReports(ctx, b)
	if err != nil {
		return "", fmt.Errorf("write reports: %w", err)
	}

	if p.recorder != nil {
		if _, err := p.recorder.RecordRun(ctx, b, ref); err != nil {
			// reports are already written, only log
			slog.ErrorContext(ctx, "Failed to record report run",
				"fingerprint", b.Fingerprint, "error", err)
		}
	}

	slog.InfoContext(ctx, "Reports published",
		"reason", reason,
		"sheet_ref", ref,
		"fingerprint", b.Fingerprint,
		"records", b.Overall.TotalRecords)
	return ref, nil
}

// Latest exposes the cached bundle the publisher would write.
func (p *Publisher) Latest(ctx context.Context) (core.ReportBundle, error) {
	return p.reports.Reports(ctx)
}

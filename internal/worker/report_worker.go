package worker

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"invdefects/internal/amqp"
)

// ReportPublisher recomputes and writes every report.
type ReportPublisher interface {
	Publish(ctx context.Context, reason string) (string, error)
}

// ReportWorker republishes the reports when asked over AMQP and on a timer.
type ReportWorker struct {
	publisher ReportPublisher
	now       func() time.Time

	mu            sync.Mutex
	lastPublished time.Time
	lastRef       string
}

func NewReportWorker(publisher ReportPublisher) *ReportWorker {
	return &ReportWorker{publisher: publisher, now: time.Now}
}

// HandleRefresh processes a single refresh request from AMQP. Requests made
// before the last successful publish are already covered and are skipped.
func (w *ReportWorker) HandleRefresh(ctx context.Context, msg *amqp.RefreshRequest) error {
	w.mu.Lock()
	last := w.lastPublished
	w.mu.Unlock()

	if !last.IsZero() && msg.RequestedAt.Before(last) {
		slog.InfoContext(ctx, "Refresh request already covered by a later publish",
			"request_id", msg.RequestID,
			"requested_at", msg.RequestedAt,
			"last_published", last)
		return nil
	}

	if _, err := w.publish(ctx, "amqp:"+msg.Reason); err != nil {
		return fmt.Errorf("handle refresh %s: %w", msg.RequestID, err)
	}
	return nil
}

// StartupPublish writes the reports once when the worker boots, so a worker
// that was down while requests expired still leaves fresh reports behind.
func (w *ReportWorker) StartupPublish(ctx context.Context) error {
	slog.InfoContext(ctx, "Performing startup publish")
	_, err := w.publish(ctx, "startup")
	return err
}

// RunPeriodic republishes every interval until ctx is done. A zero interval
// disables the timer.
func (w *ReportWorker) RunPeriodic(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		slog.InfoContext(ctx, "Periodic refresh disabled")
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := w.publish(ctx, "interval"); err != nil {
				slog.ErrorContext(ctx, "Periodic refresh failed", "error", err)
			}
		}
	}
}

// LastPublished returns the time and reference of the last successful publish.
func (w *ReportWorker) LastPublished() (time.Time, string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.lastPublished, w.lastRef
}

func (w *ReportWorker) publish(ctx context.Context, reason string) (string, error) {
	started := w.now()
	ref, err := w.publisher.Publish(ctx, reason)
	if err != nil {
		return "", err
	}

	w.mu.Lock()
	w.lastPublished = started
	w.lastRef = ref
	w.mu.Unlock()

	slog.InfoContext(ctx, "Reports refreshed",
		"reason", reason,
		"sheet_ref", ref,
		"duration", w.now().Sub(started))
	return ref, nil
}

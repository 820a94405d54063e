package sheets

import (
	"context"

	"invdefects/internal/core"
)

// Ports for outbound adapters.
type (
	// ReportWriter publishes a computed bundle and returns a reference to
	// where it was written (spreadsheet URL, file path, ...).
	ReportWriter interface {
		WriteReports(ctx context.Context, b core.ReportBundle) (ref string, err error)
	}
)

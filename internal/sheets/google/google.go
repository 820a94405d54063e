package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"strings"
	"time"

	"invdefects/internal/core"
	ports "invdefects/internal/sheets"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

// Client writes report tabs to a Google spreadsheet.
type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
}

var _ ports.ReportWriter = (*Client)(nil)

// NewFromEnv creates a Sheets client using environment variables.
// Required: GOOGLE_SPREADSHEET_ID
// Credentials: GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE or
// GOOGLE_APPLICATION_CREDENTIALS.
func NewFromEnv(ctx context.Context) (*Client, error) {
	spreadsheetID := strings.TrimSpace(os.Getenv("GOOGLE_SPREADSHEET_ID"))
	if spreadsheetID == "" {
		return nil, errors.New("missing GOOGLE_SPREADSHEET_ID")
	}

	credentialsJSON, err := credentialsFromEnv(ctx)
	if err != nil {
		return nil, err
	}
	return New(ctx, spreadsheetID,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope),
		goption.WithHTTPClient(newHTTPClientWithPooling()),
	)
}

// New creates a client for spreadsheetID with explicit client options.
func New(ctx context.Context, spreadsheetID string, opts ...goption.ClientOption) (*Client, error) {
	if strings.TrimSpace(spreadsheetID) == "" {
		return nil, errors.New("missing spreadsheet id")
	}
	svc, err := gsheet.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return &Client{svc: svc, spreadsheetID: spreadsheetID}, nil
}

func credentialsFromEnv(ctx context.Context) ([]byte, error) {
	serviceAccountJSON := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_JSON"))
	serviceAccountFile := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_FILE"))
	if serviceAccountJSON == "" && serviceAccountFile == "" {
		serviceAccountFile = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}

	switch {
	case serviceAccountJSON != "":
		slog.InfoContext(ctx, "Using inline service account credentials")
		return []byte(serviceAccountJSON), nil
	case serviceAccountFile != "":
		slog.InfoContext(ctx, "Reading service account credentials", "path", serviceAccountFile)
		data, err := os.ReadFile(serviceAccountFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		return data, nil
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}
}

// newHTTPClientWithPooling keeps connections to the Sheets API alive between
// refreshes.
func newHTTPClientWithPooling() *http.Client {
	dialer := &net.Dialer{
		Timeout:   30 * time.Second,
		KeepAlive: 30 * time.Second,
	}
	transport := &http.Transport{
		DialContext:           dialer.DialContext,
		MaxIdleConns:          100,
		MaxIdleConnsPerHost:   10,
		MaxConnsPerHost:       50,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: 30 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
		ForceAttemptHTTP2:     true,
	}
	return &http.Client{Transport: transport, Timeout: 60 * time.Second}
}

// WriteReports creates missing tabs, clears every report tab and rewrites it
// with a header row and the bundle's values.
func (c *Client) WriteReports(ctx context.Context, b core.ReportBundle) (string, error) {
	if c.svc == nil {
		return "", errors.New("sheets service not initialized")
	}
	tables := ports.BuildTables(b)

	if err := c.ensureTabs(ctx, tables); err != nil {
		return "", err
	}

	ranges := make([]string, len(tables))
	data := make([]*gsheet.ValueRange, len(tables))
	for i, t := range tables {
		ranges[i] = quoteSheet(t.Name)
		data[i] = &gsheet.ValueRange{
			Range:  quoteSheet(t.Name) + "!A1",
			Values: t.Values(),
		}
	}

	_, err := c.svc.Spreadsheets.Values.BatchClear(c.spreadsheetID, &gsheet.BatchClearValuesRequest{
		Ranges: ranges,
	}).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("clear report tabs: %w", err)
	}

	resp, err := c.svc.Spreadsheets.Values.BatchUpdate(c.spreadsheetID, &gsheet.BatchUpdateValuesRequest{
		ValueInputOption: "RAW",
		Data:             data,
	}).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("write report tabs: %w", err)
	}

	slog.InfoContext(ctx, "Reports written to Google Sheets",
		"spreadsheet_id", c.spreadsheetID,
		"tabs", len(tables),
		"updated_rows", resp.TotalUpdatedRows,
		"fingerprint", b.Fingerprint)

	return "https://docs.google.com/spreadsheets/d/" + c.spreadsheetID, nil
}

func (c *Client) ensureTabs(ctx context.Context, tables []ports.Table) error {
	ss, err := c.svc.Spreadsheets.Get(c.spreadsheetID).Fields("sheets.properties.title").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("read spreadsheet %s: %w", c.spreadsheetID, err)
	}
	missing := MissingTabs(existingTitles(ss), tables)
	if len(missing) == 0 {
		return nil
	}

	reqs := make([]*gsheet.Request, 0, len(missing))
	for _, name := range missing {
		reqs = append(reqs, &gsheet.Request{
			AddSheet: &gsheet.AddSheetRequest{
				Properties: &gsheet.SheetProperties{Title: name},
			},
		})
	}
	_, err = c.svc.Spreadsheets.BatchUpdate(c.spreadsheetID, &gsheet.BatchUpdateSpreadsheetRequest{
		Requests: reqs,
	}).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("add tabs %v: %w", missing, err)
	}
	slog.InfoContext(ctx, "Created missing report tabs", "tabs", missing)
	return nil
}

func existingTitles(ss *gsheet.Spreadsheet) map[string]bool {
	titles := make(map[string]bool)
	if ss == nil {
		return titles
	}
	for _, sh := range ss.Sheets {
		if sh != nil && sh.Properties != nil {
			titles[sh.Properties.Title] = true
		}
	}
	return titles
}

// MissingTabs returns the table names not present in existing, in table order.
func MissingTabs(existing map[string]bool, tables []ports.Table) []string {
	var out []string
	for _, t := range tables {
		if !existing[t.Name] {
			out = append(out, t.Name)
		}
	}
	return out
}

// quoteSheet quotes a sheet name for A1 notation.
func quoteSheet(name string) string {
	return "'" + strings.ReplaceAll(name, "'", "''") + "'"
}

// Package google exports monthly reports to a Google Sheets spreadsheet
// using Service Account credentials.
package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"caixa/internal/core"
	"caixa/internal/reports"
)

type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	sheetBase     string
}

// NewFromEnv creates a Sheets client from environment variables.
// Required: GOOGLE_SPREADSHEET_ID.
// Credentials: GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or
// GOOGLE_APPLICATION_CREDENTIALS.
// Optional: GOOGLE_SHEET_NAME (default "Relatorios").
func NewFromEnv(ctx context.Context) (*Client, error) {
	spreadsheetID := strings.TrimSpace(os.Getenv("GOOGLE_SPREADSHEET_ID"))
	if spreadsheetID == "" {
		return nil, errors.New("missing GOOGLE_SPREADSHEET_ID")
	}

	sheetBase := strings.TrimSpace(os.Getenv("GOOGLE_SHEET_NAME"))
	if sheetBase == "" {
		sheetBase = "Relatorios"
	}

	svc, err := newSheetsService(ctx)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}

	return &Client{
		svc:           svc,
		spreadsheetID: spreadsheetID,
		sheetBase:     sheetBase,
	}, nil
}

// newSheetsService initializes a Sheets Service using Service Account
// credentials from GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE,
// or GOOGLE_APPLICATION_CREDENTIALS.
func newSheetsService(ctx context.Context) (*gsheet.Service, error) {
	serviceAccountJSON := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_JSON"))
	serviceAccountFile := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_FILE"))

	if serviceAccountJSON == "" && serviceAccountFile == "" {
		serviceAccountFile = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}

	var credentialsJSON []byte
	var err error

	switch {
	case serviceAccountJSON != "":
		credentialsJSON = []byte(serviceAccountJSON)
	case serviceAccountFile != "":
		credentialsJSON, err = os.ReadFile(serviceAccountFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}

	service, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}

	return service, nil
}

// ExportMonthlyReport appends the report figures to the spreadsheet, one
// block per export. Amounts are written as decimal values.
func (c *Client) ExportMonthlyReport(ctx context.Context, r reports.MonthlyReport) error {
	if c.svc == nil {
		return errors.New("sheets service not initialized")
	}

	rows := [][]any{
		{"Mês", r.Month},
		{"Vendas", decimal(r.Sales.Total), r.Sales.Count},
		{"Despesas", decimal(r.Expenses.Total), r.Expenses.Count},
		{"Lucro", decimal(r.Profit)},
		{"Crescimento vendas (%)", r.SalesGrowth},
		{"Crescimento despesas (%)", r.ExpenseGrowth},
	}
	if len(r.TopProducts) > 0 {
		rows = append(rows, []any{"Produtos mais vendidos"})
		for _, p := range r.TopProducts {
			rows = append(rows, []any{p.Name, p.Quantity, decimal(p.Total)})
		}
	}
	if len(r.ByTag) > 0 {
		rows = append(rows, []any{"Despesas por tag"})
		for _, t := range r.ByTag {
			rows = append(rows, []any{t.Tag, decimal(t.Total)})
		}
	}
	rows = append(rows, []any{})

	rng := fmt.Sprintf("%s!A:C", c.sheetBase)
	vr := &gsheet.ValueRange{Values: rows}
	_, err := c.svc.Spreadsheets.Values.Append(c.spreadsheetID, rng, vr).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("append report to sheet %s: %w", c.sheetBase, err)
	}

	slog.InfoContext(ctx, "Monthly report exported to Google Sheets",
		"month", r.Month,
		"rows", len(rows),
		"sheet", c.sheetBase)
	return nil
}

func decimal(m core.Money) float64 {
	return float64(m.Cents) / 100.0
}

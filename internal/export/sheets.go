// Package export mirrors records into a Google Sheet.
package export

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"spentify/internal/log"
)

// Row is one mirrored record. Column order: A id, B date, C description,
// D amount, E category, F owner email.
type Row struct {
	RecordID    string
	Date        string
	Description string
	Amount      float64
	Category    string
	UserEmail   string
}

func (r Row) values() []any {
	return []any{r.RecordID, r.Date, r.Description, r.Amount, r.Category, r.UserEmail}
}

// Target receives record changes.
type Target interface {
	AppendRecord(ctx context.Context, row Row) error
	RemoveRecord(ctx context.Context, recordID string) error
}

// SheetsConfig selects the spreadsheet and its credentials.
type SheetsConfig struct {
	SpreadsheetID   string
	SheetName       string
	CredentialsJSON string
	CredentialsFile string
}

type SheetsClient struct {
	svc           *gsheet.Service
	spreadsheetID string
	sheet         string
	logger        *log.Logger
}

var _ Target = (*SheetsClient)(nil)

// NewSheetsClient creates a Sheets client authenticated with a service account.
// Extra options are appended after the credentials.
func NewSheetsClient(ctx context.Context, cfg SheetsConfig, logger *log.Logger, opts ...goption.ClientOption) (*SheetsClient, error) {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	logger = logger.WithComponent(log.ComponentExport)

	spreadsheetID := strings.TrimSpace(cfg.SpreadsheetID)
	if spreadsheetID == "" {
		return nil, errors.New("missing GOOGLE_SPREADSHEET_ID")
	}
	sheet := strings.TrimSpace(cfg.SheetName)
	if sheet == "" {
		sheet = "Records"
	}

	if len(opts) == 0 {
		creds, err := loadCredentials(cfg)
		if err != nil {
			return nil, err
		}
		opts = []goption.ClientOption{
			goption.WithCredentialsJSON(creds),
			goption.WithScopes(gsheet.SpreadsheetsScope),
		}
	}

	svc, err := gsheet.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}

	logger.InfoContext(ctx, "Google Sheets client ready", "sheet", sheet)
	return &SheetsClient{svc: svc, spreadsheetID: spreadsheetID, sheet: sheet, logger: logger}, nil
}

// loadCredentials prefers inline JSON over a file path, then GOOGLE_APPLICATION_CREDENTIALS.
func loadCredentials(cfg SheetsConfig) ([]byte, error) {
	inline := strings.TrimSpace(cfg.CredentialsJSON)
	file := strings.TrimSpace(cfg.CredentialsFile)
	if inline == "" && file == "" {
		file = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}

	switch {
	case inline != "":
		return []byte(inline), nil
	case file != "":
		b, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		return b, nil
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}
}

// AppendRecord writes row below the last used row. Rows already present are
// left alone, so redelivered events do not duplicate.
func (c *SheetsClient) AppendRecord(ctx context.Context, row Row) error {
	ids, err := c.recordIDs(ctx)
	if err != nil {
		return err
	}
	if indexOf(ids, row.RecordID) >= 0 {
		c.logger.InfoContext(ctx, "Record already mirrored", log.FieldRecordID, row.RecordID)
		return nil
	}

	nextRow := len(ids) + 1
	rng := fmt.Sprintf("%s!A%d:F%d", c.sheet, nextRow, nextRow)
	vr := &gsheet.ValueRange{Values: [][]any{row.values()}}

	_, err = c.svc.Spreadsheets.Values.Update(c.spreadsheetID, rng, vr).
		ValueInputOption("USER_ENTERED").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("update %s: %w", rng, err)
	}

	c.logger.InfoContext(ctx, "Record mirrored",
		log.FieldRecordID, row.RecordID, "range", rng)
	return nil
}

// RemoveRecord clears the row holding recordID. A missing row is not an error.
func (c *SheetsClient) RemoveRecord(ctx context.Context, recordID string) error {
	ids, err := c.recordIDs(ctx)
	if err != nil {
		return err
	}
	idx := indexOf(ids, recordID)
	if idx < 0 {
		c.logger.InfoContext(ctx, "Record not found in sheet", log.FieldRecordID, recordID)
		return nil
	}

	rowNum := idx + 1
	rng := fmt.Sprintf("%s!A%d:F%d", c.sheet, rowNum, rowNum)
	_, err = c.svc.Spreadsheets.Values.Clear(c.spreadsheetID, rng, &gsheet.ClearValuesRequest{}).
		Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("clear %s: %w", rng, err)
	}

	c.logger.InfoContext(ctx, "Record removed from sheet",
		log.FieldRecordID, recordID, "range", rng)
	return nil
}

// recordIDs reads column A. Index i holds the value of sheet row i+1.
func (c *SheetsClient) recordIDs(ctx context.Context) ([]string, error) {
	rng := fmt.Sprintf("%s!A:A", c.sheet)
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", rng, err)
	}
	ids := make([]string, len(resp.Values))
	for i, row := range resp.Values {
		if len(row) > 0 {
			ids[i] = strings.TrimSpace(fmt.Sprint(row[0]))
		}
	}
	return ids, nil
}

func indexOf(arr []string, target string) int {
	target = strings.TrimSpace(target)
	if target == "" {
		return -1
	}
	for i, v := range arr {
		if v == target {
			return i
		}
	}
	return -1
}

package export

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	goption "google.golang.org/api/option"

	"spentify/internal/log"
)

// fakeSheet serves the subset of the Sheets values API the client uses.
type fakeSheet struct {
	mu      sync.Mutex
	rows    [][]any
	updates []string
	clears  []string
}

func (f *fakeSheet) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	path := r.URL.Path
	w.Header().Set("Content-Type", "application/json")
	switch {
	case r.Method == http.MethodGet && strings.HasSuffix(path, "/values/Records!A:A"):
		_ = json.NewEncoder(w).Encode(map[string]any{"range": "Records!A1:A", "values": f.rows})
	case r.Method == http.MethodPut && strings.Contains(path, "/values/Records!A"):
		var body struct {
			Values [][]any `json:"values"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		f.updates = append(f.updates, path[strings.LastIndex(path, "/")+1:])
		f.rows = append(f.rows, body.Values[0])
		_ = json.NewEncoder(w).Encode(map[string]any{"updatedRows": 1})
	case r.Method == http.MethodPost && strings.HasSuffix(path, ":clear"):
		f.clears = append(f.clears, strings.TrimSuffix(path[strings.LastIndex(path, "/")+1:], ":clear"))
		_ = json.NewEncoder(w).Encode(map[string]any{})
	default:
		http.Error(w, `{"error":{"code":404,"message":"not found"}}`, http.StatusNotFound)
	}
}

func newTestClient(t *testing.T, sheet *fakeSheet) *SheetsClient {
	t.Helper()
	srv := httptest.NewServer(sheet)
	t.Cleanup(srv.Close)

	c, err := NewSheetsClient(context.Background(),
		SheetsConfig{SpreadsheetID: "sheet-1", SheetName: "Records"},
		log.Discard(),
		goption.WithEndpoint(srv.URL+"/"),
		goption.WithoutAuthentication(),
		goption.WithHTTPClient(srv.Client()),
	)
	require.NoError(t, err)
	return c
}

func TestNewSheetsClientRequiresSpreadsheet(t *testing.T) {
	_, err := NewSheetsClient(context.Background(), SheetsConfig{}, log.Discard())
	require.Error(t, err)
	assert.Equal(t, "missing GOOGLE_SPREADSHEET_ID", err.Error())
}

func TestLoadCredentials(t *testing.T) {
	t.Setenv("GOOGLE_APPLICATION_CREDENTIALS", "")

	b, err := loadCredentials(SheetsConfig{CredentialsJSON: ` {"type":"service_account"} `})
	require.NoError(t, err)
	assert.Equal(t, `{"type":"service_account"}`, string(b))

	_, err = loadCredentials(SheetsConfig{CredentialsFile: "/does/not/exist.json"})
	assert.ErrorContains(t, err, "read service account file")

	_, err = loadCredentials(SheetsConfig{})
	assert.ErrorContains(t, err, "missing service account credentials")
}

func TestAppendRecord(t *testing.T) {
	sheet := &fakeSheet{rows: [][]any{{"Record ID"}}}
	c := newTestClient(t, sheet)
	row := Row{RecordID: "r1", Date: "2024-03-01", Description: "Coffee", Amount: 4.5, Category: "Food", UserEmail: "a@example.com"}

	require.NoError(t, c.AppendRecord(context.Background(), row))
	require.Equal(t, []string{"Records!A2:F2"}, sheet.updates)
	assert.Equal(t, "r1", sheet.rows[1][0])

	// Redelivery of the same event does not add a second row.
	require.NoError(t, c.AppendRecord(context.Background(), row))
	assert.Len(t, sheet.updates, 1)
}

func TestRemoveRecord(t *testing.T) {
	sheet := &fakeSheet{rows: [][]any{{"Record ID"}, {"r1"}, {"r2"}}}
	c := newTestClient(t, sheet)

	require.NoError(t, c.RemoveRecord(context.Background(), "r2"))
	assert.Equal(t, []string{"Records!A3:F3"}, sheet.clears)

	require.NoError(t, c.RemoveRecord(context.Background(), "missing"))
	assert.Len(t, sheet.clears, 1)
}

func TestAppendRecordReadFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, `{"error":{"code":403,"message":"forbidden"}}`, http.StatusForbidden)
	}))
	t.Cleanup(srv.Close)

	c, err := NewSheetsClient(context.Background(), SheetsConfig{SpreadsheetID: "s"}, log.Discard(),
		goption.WithEndpoint(srv.URL+"/"), goption.WithoutAuthentication(), goption.WithHTTPClient(srv.Client()))
	require.NoError(t, err)

	err = c.AppendRecord(context.Background(), Row{RecordID: "r1"})
	assert.ErrorContains(t, err, "read Records!A:A")
}

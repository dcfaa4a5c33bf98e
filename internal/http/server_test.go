package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hisab/internal/amqp"
	"hisab/internal/export"
	applog "hisab/internal/log"
	"hisab/internal/services"
	"hisab/internal/storage"
	"hisab/internal/storage/memory"
)

var fixedNow = time.Date(2025, 1, 5, 9, 30, 0, 0, time.Local)

type testPublisher struct{ msgs []*amqp.ExportRequestMessage }

func (p *testPublisher) PublishExportRequest(_ context.Context, msg *amqp.ExportRequestMessage) error {
	p.msgs = append(p.msgs, msg)
	return nil
}

type testEnv struct {
	srv *Server
	pub *testPublisher
	dir string
}

func newTestEnv(t *testing.T, opts ...func(*services.Options)) *testEnv {
	t.Helper()
	env := &testEnv{pub: &testPublisher{}, dir: t.TempDir()}
	svcOpts := services.Options{
		Now:       func() time.Time { return fixedNow },
		Exporters: export.NewBuilder(export.Config{Dir: env.dir}),
		Publisher: env.pub,
	}
	for _, o := range opts {
		o(&svcOpts)
	}
	svc := services.NewLedgerService(storage.NewRepository(memory.New()), svcOpts)
	_, err := svc.Load(context.Background())
	require.NoError(t, err)

	env.srv = NewServer(":0", svc, Options{
		Logger:            applog.New(applog.Config{Output: &bytes.Buffer{}}),
		RequestsPerMinute: 1000,
	})
	t.Cleanup(func() { _ = env.srv.Shutdown(context.Background()) })
	return env
}

func (e *testEnv) do(t *testing.T, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	e.srv.Handler.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestHealthAndReady(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))

	env.srv.ready = func(context.Context) error { return errors.New("database locked") }
	rec = env.do(t, http.MethodGet, "/readyz", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "database locked")
}

func TestCreateTransactionAdoptsSuggestions(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/transactions", map[string]any{"name": "Morning coffee"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	assert.Equal(t, "/transactions/0", rec.Header().Get("Location"))
	tx := decode[storage.TransactionRecord](t, rec)
	assert.Equal(t, int64(0), tx.ID)
	assert.Equal(t, "Expense", tx.Type)
	assert.Equal(t, []string{"Food & Dining"}, tx.Categories)
	assert.Equal(t, 10.0, tx.Amount)
	assert.Equal(t, "2025-01-05", tx.Date)
}

func TestCreateTransactionExplicitFields(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/transactions", map[string]any{
		"name":               "Pay day",
		"type":               "income",
		"categories":         []string{"Salary", "Bonus"},
		"categoryQuantities": map[string]int{"Salary": 2},
		"amount":             "2500.50",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	tx := decode[storage.TransactionRecord](t, rec)
	assert.Equal(t, "Income", tx.Type)
	assert.Equal(t, []string{"Salary", "Bonus"}, tx.Categories)
	assert.Equal(t, map[string]int{"Salary": 2, "Bonus": 1}, tx.CategoryQuantities)
	assert.Equal(t, 2500.5, tx.Amount)

	cats := decode[map[string][]storage.CategoryRecord](t, env.do(t, http.MethodGet, "/categories", nil))
	assert.Equal(t, "Bonus", cats["categories"][len(cats["categories"])-1].Name)
}

func TestCreateTransactionValidation(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/transactions", map[string]any{"description": "nothing else"})
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	body := decode[map[string]any](t, rec)
	fields := body["fields"].(map[string]any)
	assert.Equal(t, "Name is required", fields["name"])
	assert.Equal(t, "Amount is required", fields["amount"])
	assert.Equal(t, "At least one category is required", fields["category"])

	rec = env.do(t, http.MethodPost, "/transactions", map[string]any{"name": "x", "bogus": true})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(t, http.MethodPost, "/transactions", map[string]any{"name": "x", "type": "loan"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUpdateAndDeleteTransaction(t *testing.T) {
	env := newTestEnv(t)
	require.Equal(t, http.StatusCreated, env.do(t, http.MethodPost, "/transactions", map[string]any{"name": "Bus ride"}).Code)

	rec := env.do(t, http.MethodPut, "/transactions/0", map[string]any{"description": "late night"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	tx := decode[storage.TransactionRecord](t, rec)
	assert.Equal(t, 5.0, tx.Amount, "recorded amount kept without selection changes")
	require.NotNil(t, tx.Description)
	assert.Equal(t, "late night", *tx.Description)

	rec = env.do(t, http.MethodPut, "/transactions/0", map[string]any{"categories": []string{"Transportation", "Food & Dining"}})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 15.0, decode[storage.TransactionRecord](t, rec).Amount)

	assert.Equal(t, http.StatusNotFound, env.do(t, http.MethodPut, "/transactions/9", map[string]any{}).Code)
	assert.Equal(t, http.StatusBadRequest, env.do(t, http.MethodGet, "/transactions/abc", nil).Code)

	assert.Equal(t, http.StatusNoContent, env.do(t, http.MethodDelete, "/transactions/0", nil).Code)
	assert.Equal(t, http.StatusNotFound, env.do(t, http.MethodGet, "/transactions/0", nil).Code)
}

func TestHistoryEndpoint(t *testing.T) {
	env := newTestEnv(t)
	env.do(t, http.MethodPost, "/transactions", map[string]any{"name": "Coffee"})
	env.do(t, http.MethodPost, "/transactions", map[string]any{"name": "Train", "categories": []string{"Transportation"}})

	rec := env.do(t, http.MethodGet, "/history?period=today&q=coff", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode[map[string][]groupDTO](t, rec)
	require.Len(t, body["groups"], 1)
	require.Len(t, body["groups"][0].Transactions, 1)
	assert.Equal(t, "Coffee", body["groups"][0].Transactions[0].Name)

	assert.Equal(t, http.StatusBadRequest, env.do(t, http.MethodGet, "/history?period=fortnight", nil).Code)
	assert.Equal(t, http.StatusBadRequest, env.do(t, http.MethodGet, "/history?period=custom", nil).Code)

	rec = env.do(t, http.MethodGet, "/history?period=custom&date=2025-13-01", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "2025-13-01")
	assert.Equal(t, http.StatusBadRequest, env.do(t, http.MethodGet, "/report?period=custom&date=05/01/2025", nil).Code)
}

func TestCategoryEndpoints(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/categories", map[string]any{"name": "Pets", "defaultPrice": 12.5})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	c := decode[storage.CategoryRecord](t, rec)
	require.NotNil(t, c.DefaultPrice)
	assert.Equal(t, 12.5, *c.DefaultPrice)

	assert.Equal(t, http.StatusConflict, env.do(t, http.MethodPost, "/categories", map[string]any{"name": "pets"}).Code)
	assert.Equal(t, http.StatusBadRequest, env.do(t, http.MethodPost, "/categories", map[string]any{"name": "Debt", "defaultPrice": -1}).Code)
	assert.Equal(t, http.StatusBadRequest, env.do(t, http.MethodPost, "/categories", map[string]any{"name": "  "}).Code)

	rec = env.do(t, http.MethodPut, "/categories/Pets", map[string]any{"name": "Animals"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Nil(t, decode[storage.CategoryRecord](t, rec).DefaultPrice)

	rec = env.do(t, http.MethodDelete, "/categories/Animls", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "did you mean Animals?")

	assert.Equal(t, http.StatusNoContent, env.do(t, http.MethodDelete, "/categories/Animals", nil).Code)
}

func TestSuggestAndAmountEndpoints(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/suggest", map[string]any{"name": "Movie", "description": "and dinner at a restaurant"})
	require.Equal(t, http.StatusOK, rec.Code)
	var names []string
	for _, c := range decode[map[string][]storage.CategoryRecord](t, rec)["categories"] {
		names = append(names, c.Name)
	}
	assert.Equal(t, []string{"Food & Dining", "Entertainment"}, names)

	rec = env.do(t, http.MethodPost, "/amount", map[string]any{"selections": []map[string]any{
		{"name": "Shopping", "quantity": 2}, {"name": "Transportation"},
	}})
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode[map[string]any](t, rec)
	assert.Equal(t, 45.0, body["amount"])
	assert.Equal(t, "45.00", body["text"])

	rec = env.do(t, http.MethodPost, "/amount", map[string]any{"selections": []map[string]any{}})
	assert.Equal(t, "", decode[map[string]any](t, rec)["text"])
}

func TestReportEndpoints(t *testing.T) {
	env := newTestEnv(t)
	env.do(t, http.MethodPost, "/transactions", map[string]any{"name": "Salary", "type": "Income", "categories": []string{"Salary"}, "amount": 1000})
	env.do(t, http.MethodPost, "/transactions", map[string]any{"name": "Bus", "categories": []string{"Transportation"}, "categoryQuantities": map[string]int{"Transportation": 3}})

	rec := env.do(t, http.MethodGet, "/report", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	rep := decode[reportDTO](t, rec)
	require.Len(t, rep.ExpenseByCategory, 1)
	assert.Equal(t, amountDTO{Name: "Transportation", Amount: 15}, rep.ExpenseByCategory[0])
	assert.Equal(t, 15.0, rep.TotalExpense)
	assert.Equal(t, -15.0, rep.Net, "Salary has no default price")

	hitsBefore, _ := env.srv.reports.Stats()
	env.do(t, http.MethodGet, "/report", nil)
	hitsAfter, _ := env.srv.reports.Stats()
	assert.Equal(t, hitsBefore+1, hitsAfter, "unchanged ledger is served from cache")

	env.do(t, http.MethodPost, "/transactions", map[string]any{"name": "Taxi", "categories": []string{"Transportation"}})
	rep = decode[reportDTO](t, env.do(t, http.MethodGet, "/report", nil))
	assert.Equal(t, 20.0, rep.TotalExpense, "mutation changes the cache key")

	rec = env.do(t, http.MethodGet, "/report/chart?width=40&height=8", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.HasPrefix(rec.Header().Get("Content-Type"), "text/plain"))
	assert.Contains(t, rec.Body.String(), "Transportation")

	assert.Equal(t, http.StatusBadRequest, env.do(t, http.MethodGet, "/report/chart?width=0", nil).Code)
}

func TestExportEndpoint(t *testing.T) {
	env := newTestEnv(t)
	env.do(t, http.MethodPost, "/transactions", map[string]any{"name": "Coffee"})

	rec := env.do(t, http.MethodPost, "/report/exports", map[string]any{"formats": []string{"pdf", "xlsx"}})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body := decode[struct {
		Results []export.Result `json:"results"`
		Notices []string        `json:"notices"`
	}](t, rec)
	require.Len(t, body.Results, 2)
	assert.Equal(t, "05/01/2025_09:30:00.pdf", body.Results[0].DisplayName)
	assert.Empty(t, body.Notices)

	rec = env.do(t, http.MethodPost, "/report/exports", map[string]any{"formats": []string{"sheets"}, "period": "this-month", "queue": true})
	require.Equal(t, http.StatusAccepted, rec.Code)
	require.Len(t, env.pub.msgs, 1)
	assert.Equal(t, "this-month", env.pub.msgs[0].Period)

	assert.Equal(t, http.StatusBadRequest, env.do(t, http.MethodPost, "/report/exports", map[string]any{"formats": []string{"csv"}}).Code)
	assert.Equal(t, http.StatusBadRequest, env.do(t, http.MethodPost, "/report/exports", map[string]any{"formats": []string{}}).Code)
	assert.Equal(t, http.StatusBadRequest, env.do(t, http.MethodPost, "/report/exports", map[string]any{"formats": []string{"pdf"}, "period": "custom", "date": "2025-02-30"}).Code)
}

func TestExportEndpointUsesConfiguredFormats(t *testing.T) {
	env := newTestEnv(t, func(o *services.Options) { o.Formats = []export.Format{export.XLSX} })
	env.do(t, http.MethodPost, "/transactions", map[string]any{"name": "Coffee"})

	rec := env.do(t, http.MethodPost, "/report/exports", map[string]any{})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body := decode[struct {
		Results []export.Result `json:"results"`
	}](t, rec)
	require.Len(t, body.Results, 1)
	assert.Equal(t, export.XLSX, body.Results[0].Format)

	rec = env.do(t, http.MethodPost, "/report/exports", map[string]any{"queue": true})
	require.Equal(t, http.StatusAccepted, rec.Code)
	require.Len(t, env.pub.msgs, 1)
	assert.Equal(t, []string{"xlsx"}, env.pub.msgs[0].Formats)
}

func TestReportCacheExpiresWithTheDay(t *testing.T) {
	now := fixedNow
	env := newTestEnv(t, func(o *services.Options) { o.Now = func() time.Time { return now } })
	env.do(t, http.MethodPost, "/transactions", map[string]any{"name": "Bus", "categories": []string{"Transportation"}})

	rep := decode[reportDTO](t, env.do(t, http.MethodGet, "/report?period=today", nil))
	assert.Equal(t, 5.0, rep.TotalExpense)

	now = now.AddDate(0, 0, 1)
	rep = decode[reportDTO](t, env.do(t, http.MethodGet, "/report?period=today", nil))
	assert.Zero(t, rep.TotalExpense, "yesterday's transaction leaves today's report")

	rep = decode[reportDTO](t, env.do(t, http.MethodGet, "/report", nil))
	assert.Equal(t, 5.0, rep.TotalExpense)
}

func TestRejectsScannerPaths(t *testing.T) {
	env := newTestEnv(t)
	assert.Equal(t, http.StatusBadRequest, env.do(t, http.MethodGet, "/.git/config", nil).Code)
	assert.Equal(t, http.StatusMethodNotAllowed, env.do(t, http.MethodPatch, "/transactions", nil).Code)
}

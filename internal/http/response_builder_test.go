package http

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"hisab/internal/amqp"
	"hisab/internal/catalog"
	"hisab/internal/core"
	"hisab/internal/entry"
	"hisab/internal/ledger"
	applog "hisab/internal/log"
	"hisab/internal/services"
)

func TestJSONResponseBuilder(t *testing.T) {
	rec := httptest.NewRecorder()
	NewJSONResponse().Status(http.StatusCreated).Header("X-Test", "1").Body(map[string]int{"id": 3}).Write(rec)

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "1", rec.Header().Get("X-Test"))
	assert.Equal(t, "application/json; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"id":3}`, rec.Body.String())
}

func TestWriteErrorLogsServerErrors(t *testing.T) {
	var logs bytes.Buffer
	logger := applog.New(applog.Config{Output: &logs, Component: applog.ComponentHTTP})

	req := httptest.NewRequest(http.MethodGet, "/report?period=today", nil)
	req = req.WithContext(applog.NewContext(req.Context(), logger))
	rec := httptest.NewRecorder()
	writeError(rec, req, errors.New("disk full"))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"internal error"}`, rec.Body.String())
	assert.Contains(t, logs.String(), "Request failed")
	assert.Contains(t, logs.String(), `error="disk full"`)
	assert.Contains(t, logs.String(), "operation=\"GET /report\"")

	logs.Reset()
	rec = httptest.NewRecorder()
	writeError(rec, req, catalog.ErrNotFound)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Empty(t, logs.String())
}

func TestErrorStatus(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{entry.FieldErrors{Name: entry.MsgNameRequired}, http.StatusUnprocessableEntity},
		{fmt.Errorf("get: %w", ledger.ErrNotFound), http.StatusNotFound},
		{catalog.ErrNotFound, http.StatusNotFound},
		{catalog.ErrDuplicateName, http.StatusConflict},
		{core.ErrNegativePrice, http.StatusBadRequest},
		{badRequest("x"), http.StatusBadRequest},
		{services.ErrQueueUnavailable, http.StatusServiceUnavailable},
		{fmt.Errorf("publish: %w", amqp.ErrCircuitOpen), http.StatusServiceUnavailable},
		{errors.New("disk on fire"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			assert.Equal(t, tt.want, errorStatus(tt.err))
		})
	}
}

func TestWriteErrorHidesInternalDetail(t *testing.T) {
	rec := httptest.NewRecorder()
	writeError(rec, httptest.NewRequest(http.MethodGet, "/", nil), errors.New("open /secret/path"))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"internal error"}`, rec.Body.String())
}

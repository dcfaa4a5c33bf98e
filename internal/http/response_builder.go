package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"hisab/internal/amqp"
	"hisab/internal/catalog"
	"hisab/internal/core"
	"hisab/internal/entry"
	"hisab/internal/export"
	"hisab/internal/ledger"
	applog "hisab/internal/log"
	"hisab/internal/services"
)

// JSONResponseBuilder provides a fluent API for JSON responses.
type JSONResponseBuilder struct {
	statusCode int
	headers    map[string]string
	body       any
}

func NewJSONResponse() *JSONResponseBuilder {
	return &JSONResponseBuilder{statusCode: http.StatusOK, headers: map[string]string{}}
}

func (b *JSONResponseBuilder) Status(code int) *JSONResponseBuilder {
	b.statusCode = code
	return b
}

func (b *JSONResponseBuilder) Header(name, value string) *JSONResponseBuilder {
	b.headers[name] = value
	return b
}

func (b *JSONResponseBuilder) Body(v any) *JSONResponseBuilder {
	b.body = v
	return b
}

// Write sends the response. A nil body writes only the status.
func (b *JSONResponseBuilder) Write(w http.ResponseWriter) {
	for name, value := range b.headers {
		w.Header().Set(name, value)
	}
	if b.body == nil {
		w.WriteHeader(b.statusCode)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(b.statusCode)
	if err := json.NewEncoder(w).Encode(b.body); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

type errorBody struct {
	Error  string             `json:"error"`
	Fields *entry.FieldErrors `json:"fields,omitempty"`
	Hint   string             `json:"hint,omitempty"`
}

// ErrorResponse builds the standard error envelope.
func ErrorResponse(statusCode int, message string) *JSONResponseBuilder {
	return NewJSONResponse().Status(statusCode).Body(errorBody{Error: message})
}

// errorStatus maps domain errors onto HTTP status codes.
func errorStatus(err error) int {
	var fe entry.FieldErrors
	switch {
	case errors.As(err, &fe):
		return http.StatusUnprocessableEntity
	case errors.Is(err, ledger.ErrNotFound), errors.Is(err, catalog.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, catalog.ErrDuplicateName):
		return http.StatusConflict
	case errors.Is(err, errBadRequest),
		errors.Is(err, core.ErrEmptyName),
		errors.Is(err, core.ErrInvalidAmount),
		errors.Is(err, core.ErrInvalidType),
		errors.Is(err, core.ErrNoCategory),
		errors.Is(err, core.ErrInvalidDate),
		errors.Is(err, core.ErrInvalidQuantity),
		errors.Is(err, core.ErrNegativePrice),
		errors.Is(err, entry.ErrUnknownCategory),
		errors.Is(err, export.ErrUnknownFormat),
		errors.Is(err, services.ErrNoFormats):
		return http.StatusBadRequest
	case errors.Is(err, services.ErrExportsDisabled),
		errors.Is(err, services.ErrQueueUnavailable),
		errors.Is(err, amqp.ErrCircuitOpen):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// writeError answers with the status errorStatus picks. Server errors are
// logged and their detail withheld from the client.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := errorStatus(err)
	body := errorBody{Error: err.Error()}
	var fe entry.FieldErrors
	if errors.As(err, &fe) {
		body.Fields = &fe
		body.Error = "invalid entry"
	}
	if status >= http.StatusInternalServerError {
		applog.NewStructuredLogger(applog.FromContext(r.Context())).LogError(r.Context(), "Request failed", err,
			applog.ComponentHTTP, r.Method+" "+r.URL.Path,
			applog.NewFields().WithHTTPRequest(r.Method, r.URL.Path, r.URL.RawQuery, r.Header.Get("User-Agent")))
		if status == http.StatusInternalServerError {
			body.Error = "internal error"
		}
	}
	NewJSONResponse().Status(status).Body(body).Write(w)
}

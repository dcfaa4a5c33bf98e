package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"hisab/internal/core"
	"hisab/internal/history"
)

const maxBodyBytes = 1 << 20

var errBadRequest = errors.New("bad request")

// badRequest wraps a parse problem so it is answered with 400.
func badRequest(format string, args ...any) error {
	return fmt.Errorf("%w: %s", errBadRequest, fmt.Sprintf(format, args...))
}

// decodeJSON reads a single JSON object into v, rejecting unknown fields and
// bodies over maxBodyBytes.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return badRequest("empty body")
		}
		return badRequest("invalid JSON: %v", err)
	}
	if dec.More() {
		return badRequest("trailing data after JSON object")
	}
	return nil
}

// parseID reads the {id} path segment.
func parseID(r *http.Request) (int64, error) {
	raw := r.PathValue("id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, badRequest("invalid transaction id %q", raw)
	}
	return id, nil
}

// parseHistoryQuery reads period, date and q from the query string.
func parseHistoryQuery(q url.Values) (history.DateFilter, string, error) {
	f, err := parseDateFilter(q.Get("period"), q.Get("date"))
	if err != nil {
		return history.DateFilter{}, "", err
	}
	return f, strings.TrimSpace(q.Get("q")), nil
}

// parseDateFilter validates a period and its YYYY-MM-DD custom date.
func parseDateFilter(period, date string) (history.DateFilter, error) {
	p, err := history.ParsePeriod(period)
	if err != nil {
		return history.DateFilter{}, badRequest("%v", err)
	}
	f := history.DateFilter{Period: p, Custom: strings.TrimSpace(date)}
	if p == history.CustomDate && f.Custom == "" {
		return history.DateFilter{}, badRequest("period custom needs a date")
	}
	if f.Custom != "" {
		if _, err := core.ParseDate(f.Custom); err != nil {
			return history.DateFilter{}, badRequest("date %q must be YYYY-MM-DD", f.Custom)
		}
	}
	return f, nil
}

// parsePositiveInt reads an optional integer parameter in [1, max].
func parsePositiveInt(q url.Values, key string, def, max int) (int, error) {
	raw := strings.TrimSpace(q.Get(key))
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 || n > max {
		return 0, badRequest("%s must be between 1 and %d", key, max)
	}
	return n, nil
}

// sanitizeInput trims and drops control characters other than tab and
// newlines.
func sanitizeInput(s string) string {
	return strings.Map(func(r rune) rune {
		if r < 32 && r != '\t' && r != '\n' && r != '\r' {
			return -1
		}
		return r
	}, strings.TrimSpace(s))
}

package http

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hisab/internal/history"
)

func TestDecodeJSON(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr bool
	}{
		{"valid", `{"text":"coffee"}`, false},
		{"empty", ``, true},
		{"unknown field", `{"txt":"coffee"}`, true},
		{"trailing", `{"text":"a"} {"text":"b"}`, true},
		{"not json", `text=coffee`, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var v suggestRequest
			req := httptest.NewRequest(http.MethodPost, "/suggest", strings.NewReader(tt.body))
			err := decodeJSON(httptest.NewRecorder(), req, &v)
			if tt.wantErr {
				assert.ErrorIs(t, err, errBadRequest)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "coffee", v.Text)
		})
	}
}

func TestParseHistoryQuery(t *testing.T) {
	f, q, err := parseHistoryQuery(url.Values{"period": {"custom"}, "date": {" 2025-01-05 "}, "q": {" tea "}})
	require.NoError(t, err)
	assert.Equal(t, history.DateFilter{Period: history.CustomDate, Custom: "2025-01-05"}, f)
	assert.Equal(t, "tea", q)

	f, _, err = parseHistoryQuery(url.Values{})
	require.NoError(t, err)
	assert.Equal(t, history.AllTime, f.Period)

	for _, date := range []string{"2025-13-01", "05/01/2025", "tomorrow"} {
		_, _, err = parseHistoryQuery(url.Values{"period": {"custom"}, "date": {date}})
		assert.ErrorIs(t, err, errBadRequest, date)
	}
}

func TestParsePositiveInt(t *testing.T) {
	n, err := parsePositiveInt(url.Values{}, "width", 60, 400)
	require.NoError(t, err)
	assert.Equal(t, 60, n)

	n, err = parsePositiveInt(url.Values{"width": {"80"}}, "width", 60, 400)
	require.NoError(t, err)
	assert.Equal(t, 80, n)

	_, err = parsePositiveInt(url.Values{"width": {"401"}}, "width", 60, 400)
	assert.Error(t, err)
}

func TestSanitizeInput(t *testing.T) {
	assert.Equal(t, "tea\tcake", sanitizeInput("  tea\tca\x00ke\x07 "))
}

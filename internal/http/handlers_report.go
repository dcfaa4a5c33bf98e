package http

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"hisab/internal/chart"
	"hisab/internal/core"
	"hisab/internal/export"
	"hisab/internal/history"
	"hisab/internal/report"
	"hisab/internal/services"
)

// cachedReport returns the report for q at the current revision. Relative
// periods also key on today's date so a cached report expires at midnight.
func (s *Server) cachedReport(r *http.Request, q services.ReportQuery) report.Report {
	key := fmt.Sprintf("%d|%s|%s|%s", s.ledger.Revision(), q.Filter.Period, q.Filter.Custom, q.Query)
	switch q.Filter.Period {
	case history.Today, history.ThisWeek, history.ThisMonth, history.ThisYear:
		key += "|" + core.FormatDate(s.ledger.Now())
	}
	rep, _ := s.reports.GetOrCompute(key, func() (report.Report, error) {
		slog.DebugContext(r.Context(), "Report cache miss", "key", key)
		return s.ledger.Report(q), nil
	})
	return rep
}

func reportQuery(r *http.Request) (services.ReportQuery, error) {
	f, q, err := parseHistoryQuery(r.URL.Query())
	if err != nil {
		return services.ReportQuery{}, err
	}
	return services.ReportQuery{Filter: f, Query: q}, nil
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	q, err := reportQuery(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	NewJSONResponse().Body(newReportDTO(s.cachedReport(r, q))).Write(w)
}

// handleReportChart renders the expense bars as terminal text.
func (s *Server) handleReportChart(w http.ResponseWriter, r *http.Request) {
	q, err := reportQuery(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	width, err := parsePositiveInt(r.URL.Query(), "width", chart.DefaultWidth, 400)
	if err != nil {
		writeError(w, r, err)
		return
	}
	height, err := parsePositiveInt(r.URL.Query(), "height", chart.DefaultHeight, 100)
	if err != nil {
		writeError(w, r, err)
		return
	}
	rep := s.cachedReport(r, q)
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte(chart.RenderBars("Expenses by Category", rep.ExpenseByCategory, width, height)))
}

type exportRequest struct {
	Formats []string `json:"formats"`
	Period  string   `json:"period"`
	Date    string   `json:"date"`
	Query   string   `json:"q"`
	Queue   bool     `json:"queue"`
}

func (in exportRequest) parse() ([]export.Format, services.ReportQuery, error) {
	formats, err := export.ParseFormats(strings.Join(in.Formats, ","))
	if err != nil {
		return nil, services.ReportQuery{}, err
	}
	f, err := parseDateFilter(in.Period, in.Date)
	if err != nil {
		return nil, services.ReportQuery{}, err
	}
	// No formats leaves the choice to the configured export_formats.
	return formats, services.ReportQuery{Filter: f, Query: strings.TrimSpace(in.Query)}, nil
}

// handleCreateExport writes exports inline or, with queue set, hands them to
// the worker and answers 202.
func (s *Server) handleCreateExport(w http.ResponseWriter, r *http.Request) {
	var in exportRequest
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	formats, q, err := in.parse()
	if err != nil {
		writeError(w, r, err)
		return
	}

	if in.Queue {
		msg, err := s.ledger.RequestExport(r.Context(), formats, q)
		if err != nil {
			writeError(w, r, err)
			return
		}
		NewJSONResponse().Status(http.StatusAccepted).Body(map[string]any{
			"id":      msg.ID,
			"formats": msg.Formats,
		}).Write(w)
		return
	}

	results, err := s.ledger.Export(r.Context(), formats, q)
	if err != nil && len(results) == 0 {
		writeError(w, r, err)
		return
	}
	var notices []string
	if err != nil {
		notices = strings.Split(err.Error(), "\n")
	}
	NewJSONResponse().Body(map[string]any{
		"results": nonNil(results),
		"notices": nonNil(notices),
	}).Write(w)
}

// Package history filters transactions by period and free text and groups
// them by day for display.
package history

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"hisab/internal/core"
)

type Period int

const (
	AllTime Period = iota
	Today
	ThisWeek
	ThisMonth
	ThisYear
	CustomDate
)

var periodNames = map[Period]string{
	AllTime:    "all-time",
	Today:      "today",
	ThisWeek:   "this-week",
	ThisMonth:  "this-month",
	ThisYear:   "this-year",
	CustomDate: "custom",
}

func (p Period) String() string {
	if s, ok := periodNames[p]; ok {
		return s
	}
	return fmt.Sprintf("Period(%d)", int(p))
}

// ParsePeriod accepts the names returned by Period.String. Blank means AllTime.
func ParsePeriod(s string) (Period, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return AllTime, nil
	}
	for p, name := range periodNames {
		if name == s {
			return p, nil
		}
	}
	return AllTime, fmt.Errorf("unknown period %q", s)
}

// DateFilter selects a period. Custom is the chosen day for CustomDate; when
// empty the filter behaves as AllTime.
type DateFilter struct {
	Period Period
	Custom string
}

// Group holds the transactions of a single day.
type Group struct {
	Date         string             `json:"date"`
	Transactions []core.Transaction `json:"transactions"`
}

// Engine evaluates filters against a clock and a week start.
type Engine struct {
	WeekStart time.Weekday
	Now       func() time.Time
}

func NewEngine(weekStart time.Weekday) *Engine {
	return &Engine{WeekStart: weekStart, Now: time.Now}
}

// ParseWeekday accepts English weekday names, case-insensitively.
func ParseWeekday(s string) (time.Weekday, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for d := time.Sunday; d <= time.Saturday; d++ {
		if strings.ToLower(d.String()) == s {
			return d, nil
		}
	}
	return time.Sunday, fmt.Errorf("unknown weekday %q", s)
}

// Filter applies the date filter, then the text query, and groups the
// result by day, most recent first. The input is not modified.
func (e *Engine) Filter(txs []core.Transaction, f DateFilter, query string) []Group {
	match := e.dateMatcher(f)
	q := strings.ToLower(strings.TrimSpace(query))

	var kept []core.Transaction
	for _, tx := range txs {
		if !match(tx.Date) {
			continue
		}
		if q != "" && !matchesText(tx, q) {
			continue
		}
		kept = append(kept, tx.Clone())
	}
	sort.SliceStable(kept, func(i, j int) bool { return kept[i].Date > kept[j].Date })

	var groups []Group
	for _, tx := range kept {
		if n := len(groups); n > 0 && groups[n-1].Date == tx.Date {
			groups[n-1].Transactions = append(groups[n-1].Transactions, tx)
			continue
		}
		groups = append(groups, Group{Date: tx.Date, Transactions: []core.Transaction{tx}})
	}
	return groups
}

// Flatten concatenates groups back into a single list in display order.
func Flatten(groups []Group) []core.Transaction {
	var out []core.Transaction
	for _, g := range groups {
		out = append(out, g.Transactions...)
	}
	return out
}

func (e *Engine) now() time.Time {
	if e.Now == nil {
		return time.Now()
	}
	return e.Now()
}

// dateMatcher compares calendar days. Bounded periods exclude dates that do
// not parse.
func (e *Engine) dateMatcher(f DateFilter) func(string) bool {
	now := e.now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.Local)

	onOrAfter := func(start time.Time) func(string) bool {
		return func(date string) bool {
			d, err := core.ParseDate(date)
			return err == nil && !d.Before(start)
		}
	}

	switch f.Period {
	case Today:
		day := core.FormatDate(today)
		return func(date string) bool { return date == day }
	case ThisWeek:
		back := (int(today.Weekday()) - int(e.WeekStart) + 7) % 7
		return onOrAfter(today.AddDate(0, 0, -back))
	case ThisMonth:
		return onOrAfter(time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, time.Local))
	case ThisYear:
		return onOrAfter(time.Date(today.Year(), time.January, 1, 0, 0, 0, 0, time.Local))
	case CustomDate:
		custom := strings.TrimSpace(f.Custom)
		if custom == "" {
			return func(string) bool { return true }
		}
		if d, err := core.ParseDate(custom); err == nil {
			custom = core.FormatDate(d)
		}
		return func(date string) bool { return date == custom }
	default:
		return func(string) bool { return true }
	}
}

func matchesText(tx core.Transaction, q string) bool {
	if strings.Contains(strings.ToLower(tx.Name), q) {
		return true
	}
	if strings.Contains(strings.ToLower(core.Deref(tx.Description)), q) {
		return true
	}
	for _, c := range tx.Categories {
		if strings.Contains(strings.ToLower(c), q) {
			return true
		}
	}
	return false
}

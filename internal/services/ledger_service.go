package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"hisab/internal/amqp"
	"hisab/internal/catalog"
	"hisab/internal/core"
	"hisab/internal/entry"
	"hisab/internal/export"
	"hisab/internal/history"
	"hisab/internal/ledger"
	applog "hisab/internal/log"
	"hisab/internal/report"
	"hisab/internal/storage"
	"hisab/internal/suggest"
)

var (
	ErrExportsDisabled  = errors.New("exports not configured")
	ErrQueueUnavailable = errors.New("export queue not configured")
	ErrNoFormats        = errors.New("no export formats requested")
)

// Publisher queues export requests for a worker.
type Publisher interface {
	PublishExportRequest(ctx context.Context, msg *amqp.ExportRequestMessage) error
}

type Options struct {
	Keywords  suggest.Keywords
	WeekStart time.Weekday
	Now       func() time.Time
	Exporters export.Builder
	// Formats are exported when a request names none.
	Formats   []export.Format
	Publisher Publisher
	Logger    *applog.Logger
}

// Selection is a category name with the quantity picked for it.
type Selection struct {
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
}

// ReportQuery narrows the transactions a report covers. The zero value
// covers the whole ledger in insertion order.
type ReportQuery struct {
	Filter history.DateFilter
	Query  string
}

func (q ReportQuery) all() bool {
	return q.Filter.Period == history.AllTime && strings.TrimSpace(q.Query) == ""
}

// LedgerService owns the catalog and the transaction store, persisting both
// after every mutation. It is safe for concurrent use.
type LedgerService struct {
	mu       sync.Mutex
	repo     *storage.Repository
	catalog  *catalog.Catalog
	ledger   *ledger.Store
	keywords suggest.Keywords
	history  *history.Engine
	now      func() time.Time
	build    export.Builder
	formats  []export.Format
	pub      Publisher
	log      *applog.StructuredLogger
	revision int64
	notices  []string
}

func NewLedgerService(repo *storage.Repository, opts Options) *LedgerService {
	if opts.Keywords == nil {
		opts.Keywords = suggest.DefaultKeywords()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = applog.New(applog.Config{Handler: slog.Default().Handler(), Component: applog.ComponentLedger})
	}
	engine := history.NewEngine(opts.WeekStart)
	engine.Now = opts.Now
	return &LedgerService{
		repo:     repo,
		catalog:  catalog.Default(),
		ledger:   ledger.New(nil),
		keywords: opts.Keywords,
		history:  engine,
		now:      opts.Now,
		build:    opts.Exporters,
		formats:  append([]export.Format(nil), opts.Formats...),
		pub:      opts.Publisher,
		log:      applog.NewStructuredLogger(opts.Logger),
	}
}

// Load replaces the in-memory state with what storage holds. Malformed blobs
// are discarded and reported as notices; only storage failures are errors.
// Absent or empty categories fall back to the default catalog.
func (s *LedgerService) Load(ctx context.Context) ([]string, error) {
	var notices []string

	txs, err := s.repo.LoadTransactions(ctx)
	if err != nil {
		if !errors.Is(err, storage.ErrMalformed) {
			return nil, err
		}
		notices = append(notices, err.Error())
	}

	cats, found, err := s.repo.LoadCategories(ctx)
	if err != nil {
		if !errors.Is(err, storage.ErrMalformed) {
			return nil, err
		}
		notices = append(notices, err.Error())
	}
	cat := catalog.New(cats)
	if !found || cat.Len() == 0 {
		cat = catalog.Default()
	}

	s.mu.Lock()
	s.catalog = cat
	s.ledger = ledger.New(txs)
	s.notices = notices
	s.revision++
	s.mu.Unlock()

	slog.InfoContext(ctx, "Ledger loaded",
		applog.FieldComponent, applog.ComponentLedger,
		"transactions", len(txs),
		"categories", cat.Len(),
		"notices", len(notices))
	return notices, nil
}

// Notices returns the problems found by the last Load.
func (s *LedgerService) Notices() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.notices...)
}

// Revision changes whenever the state changes.
func (s *LedgerService) Revision() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.revision
}

func (s *LedgerService) Transactions() []core.Transaction {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ledger.All()
}

func (s *LedgerService) Transaction(id int64) (core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ledger.Get(id)
}

func (s *LedgerService) Categories() []core.Category {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.catalog.All()
}

func (s *LedgerService) Keywords() suggest.Keywords { return s.keywords }

// Now reads the service clock.
func (s *LedgerService) Now() time.Time { return s.now() }

// DefaultFormats are exported when a request names none.
func (s *LedgerService) DefaultFormats() []export.Format {
	return append([]export.Format(nil), s.formats...)
}

// ClosestCategory returns a catalog name close to name, for hints.
func (s *LedgerService) ClosestCategory(name string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.catalog.Closest(name, 3)
}

// NewEntry starts an add flow over the current catalog.
func (s *LedgerService) NewEntry() *entry.Session {
	return entry.NewSession(s.Categories(), s.keywords, s.now())
}

// EditEntry starts an edit flow for the stored transaction id.
func (s *LedgerService) EditEntry(id int64) (*entry.Session, error) {
	tx, err := s.Transaction(id)
	if err != nil {
		return nil, err
	}
	return entry.EditSession(tx, s.Categories(), s.keywords), nil
}

// Save submits an entry session, adding or updating depending on its flow.
func (s *LedgerService) Save(ctx context.Context, sess *entry.Session) (core.Transaction, error) {
	sub, err := sess.Submit()
	if err != nil {
		return core.Transaction{}, err
	}
	if sess.Editing() {
		return s.UpdateTransaction(ctx, sub)
	}
	return s.AddTransaction(ctx, sub)
}

// AddTransaction stores a new transaction, creating any category it names
// that the catalog does not know.
func (s *LedgerService) AddTransaction(ctx context.Context, sub entry.Submission) (core.Transaction, error) {
	return s.saveTransaction(ctx, sub, applog.OpCreate, func(st *ledger.Store, tx core.Transaction) (core.Transaction, error) {
		return st.Add(tx)
	})
}

// UpdateTransaction replaces the stored transaction with the same id.
func (s *LedgerService) UpdateTransaction(ctx context.Context, sub entry.Submission) (core.Transaction, error) {
	return s.saveTransaction(ctx, sub, applog.OpUpdate, func(st *ledger.Store, tx core.Transaction) (core.Transaction, error) {
		return st.Update(tx)
	})
}

func (s *LedgerService) saveTransaction(ctx context.Context, sub entry.Submission, op string, apply func(*ledger.Store, core.Transaction) (core.Transaction, error)) (core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cat := catalog.New(s.catalog.All())
	created := 0
	for _, c := range sub.NewCategories {
		if _, ok := cat.Find(c.Name); ok {
			continue
		}
		if err := cat.Add(c); err != nil {
			return core.Transaction{}, fmt.Errorf("add category: %w", err)
		}
		created++
	}
	for _, name := range sub.Transaction.Categories {
		_, isNew, err := cat.ResolveOrCreate(name)
		if err != nil {
			return core.Transaction{}, fmt.Errorf("resolve category: %w", err)
		}
		if isNew {
			created++
		}
	}

	store := ledger.New(s.ledger.All())
	saved, err := apply(store, sub.Transaction)
	if err != nil {
		return core.Transaction{}, err
	}

	if err := s.commit(ctx, cat, created > 0, store); err != nil {
		return core.Transaction{}, err
	}

	s.log.LogTransactionSaved(ctx, op, saved.ID, saved.Name, string(saved.Type), core.FormatAmount(saved.Amount), saved.Categories)
	return saved, nil
}

func (s *LedgerService) RemoveTransaction(ctx context.Context, id int64) (core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	store := ledger.New(s.ledger.All())
	removed, err := store.Remove(id)
	if err != nil {
		return core.Transaction{}, err
	}
	if err := s.commit(ctx, nil, false, store); err != nil {
		return core.Transaction{}, err
	}
	slog.InfoContext(ctx, "Transaction removed",
		applog.FieldComponent, applog.ComponentLedger,
		applog.FieldTransactionID, id)
	return removed, nil
}

func (s *LedgerService) AddCategory(ctx context.Context, c core.Category) (core.Category, error) {
	return s.mutateCatalog(ctx, applog.OpCreate, c.Name, func(cat *catalog.Catalog) error {
		return cat.Add(c)
	})
}

// UpdateCategory edits or renames a category. Transactions keep the name
// they were saved with.
func (s *LedgerService) UpdateCategory(ctx context.Context, oldName string, c core.Category) (core.Category, error) {
	return s.mutateCatalog(ctx, applog.OpUpdate, c.Name, func(cat *catalog.Catalog) error {
		return cat.Update(oldName, c)
	})
}

// DeleteCategory removes a category; transactions naming it keep the name.
func (s *LedgerService) DeleteCategory(ctx context.Context, name string) (core.Category, error) {
	var removed core.Category
	_, err := s.mutateCatalog(ctx, applog.OpDelete, name, func(cat *catalog.Catalog) error {
		var err error
		removed, err = cat.Delete(name)
		return err
	})
	return removed, err
}

func (s *LedgerService) mutateCatalog(ctx context.Context, op, name string, apply func(*catalog.Catalog) error) (core.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cat := catalog.New(s.catalog.All())
	if err := apply(cat); err != nil {
		return core.Category{}, err
	}
	if err := s.commit(ctx, cat, true, nil); err != nil {
		return core.Category{}, err
	}
	slog.InfoContext(ctx, "Catalog changed",
		applog.FieldComponent, applog.ComponentCatalog,
		applog.FieldOperation, op,
		applog.FieldCategory, name)
	found, _ := cat.Find(name)
	return found, nil
}

// commit persists categories before transactions and then swaps in the new
// state. A nil catalog or store leaves that part untouched. Callers hold mu.
func (s *LedgerService) commit(ctx context.Context, cat *catalog.Catalog, catChanged bool, store *ledger.Store) error {
	if cat != nil && catChanged {
		if err := s.repo.SaveCategories(ctx, cat.All()); err != nil {
			s.log.LogError(ctx, "Persist failed", err, applog.ComponentStorage, applog.OpPersist,
				applog.NewFields().WithKey(storage.KeyCategories))
			return fmt.Errorf("persist categories: %w", err)
		}
		s.catalog = cat
		s.revision++
	}
	if store != nil {
		if err := s.repo.SaveTransactions(ctx, store.All()); err != nil {
			s.log.LogError(ctx, "Persist failed", err, applog.ComponentStorage, applog.OpPersist,
				applog.NewFields().WithKey(storage.KeyTransactions))
			return fmt.Errorf("persist transactions: %w", err)
		}
		s.ledger = store
		s.revision++
	}
	return nil
}

// Suggest returns the catalog categories whose keywords occur in text.
func (s *LedgerService) Suggest(text string) []core.Category {
	return suggest.Suggest(text, s.Categories(), s.keywords)
}

// Amount totals the default prices of the selections. Names the catalog does
// not know contribute nothing.
func (s *LedgerService) Amount(selections []Selection) (decimal.Decimal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	selected := make([]core.Category, 0, len(selections))
	quantities := make(map[string]int, len(selections))
	for _, sel := range selections {
		if sel.Quantity < 0 {
			return decimal.Zero, core.ErrInvalidQuantity
		}
		c, ok := s.catalog.Find(sel.Name)
		if !ok {
			c = core.Category{Name: sel.Name}
		}
		selected = append(selected, c)
		if sel.Quantity > 0 {
			quantities[c.Name] = sel.Quantity
		}
	}
	return entry.ComputeAmount(selected, quantities), nil
}

// History filters the ledger and groups it by date, newest first.
func (s *LedgerService) History(f history.DateFilter, query string) []history.Group {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.history.Filter(s.ledger.All(), f, query)
}

// Report aggregates the transactions q covers against the current catalog.
func (s *LedgerService) Report(q ReportQuery) report.Report {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reportLocked(q)
}

func (s *LedgerService) reportLocked(q ReportQuery) report.Report {
	txs := s.ledger.All()
	if !q.all() {
		txs = history.Flatten(s.history.Filter(txs, q.Filter, q.Query))
	}
	return report.Aggregate(txs, s.catalog.All())
}

// Export renders the report in every format and returns the written files.
// Failed formats are logged and joined into the error; the others still
// succeed.
func (s *LedgerService) Export(ctx context.Context, formats []export.Format, q ReportQuery) ([]export.Result, error) {
	if s.build == nil {
		return nil, ErrExportsDisabled
	}
	if len(formats) == 0 {
		formats = s.formats
	}
	if len(formats) == 0 {
		return nil, ErrNoFormats
	}
	r := s.Report(q)
	exporters, err := s.build(ctx, formats)
	if err != nil {
		return nil, err
	}
	return export.Run(ctx, r, s.now(), exporters...)
}

// RequestExport queues an export for the worker instead of running it.
func (s *LedgerService) RequestExport(ctx context.Context, formats []export.Format, q ReportQuery) (*amqp.ExportRequestMessage, error) {
	if s.pub == nil {
		return nil, ErrQueueUnavailable
	}
	if len(formats) == 0 {
		formats = s.formats
	}
	if len(formats) == 0 {
		return nil, ErrNoFormats
	}
	names := make([]string, len(formats))
	for i, f := range formats {
		names[i] = string(f)
	}
	msg := amqp.NewExportRequestMessage(names, s.Revision())
	msg.Period = q.Filter.Period.String()
	msg.Date = q.Filter.Custom
	msg.Query = q.Query
	if err := s.pub.PublishExportRequest(ctx, msg); err != nil {
		return nil, fmt.Errorf("queue export: %w", err)
	}
	slog.InfoContext(ctx, "Export queued",
		applog.FieldComponent, applog.ComponentExport,
		applog.FieldExportID, msg.ID,
		applog.FieldFormats, names)
	return msg, nil
}

// QueryFromRequest rebuilds the report query carried by an export request.
func QueryFromRequest(msg *amqp.ExportRequestMessage) (ReportQuery, error) {
	p, err := history.ParsePeriod(msg.Period)
	if err != nil {
		return ReportQuery{}, err
	}
	if msg.Date != "" {
		if _, err := core.ParseDate(msg.Date); err != nil {
			return ReportQuery{}, err
		}
	}
	return ReportQuery{Filter: history.DateFilter{Period: p, Custom: msg.Date}, Query: msg.Query}, nil
}

package persistence

import (
	"bytes"
	"context"
	"sort"
	"sync"
	"time"

	"github.com/erp/invoicing/internal/domain/billing"
	"github.com/erp/invoicing/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// InMemoryLedger implements billing.Ledger using process-local maps.
// Invoices, attachments and the logo slot are each guarded by their own lock.
type InMemoryLedger struct {
	invoicesMu sync.RWMutex
	invoices   map[uuid.UUID]billing.Invoice

	attachmentsMu sync.RWMutex
	attachments   map[uuid.UUID]billing.Attachment

	logoMu sync.RWMutex
	logo   []byte

	now    func() time.Time
	logger *zap.Logger
}

var _ billing.Ledger = (*InMemoryLedger)(nil)

// InMemoryLedgerOption is a functional option for configuring the ledger
type InMemoryLedgerOption func(*InMemoryLedger)

// WithLedgerLogger sets the logger for the ledger
func WithLedgerLogger(logger *zap.Logger) InMemoryLedgerOption {
	return func(l *InMemoryLedger) {
		l.logger = logger
	}
}

// WithLedgerClock overrides the time source used for issue and upload timestamps
func WithLedgerClock(now func() time.Time) InMemoryLedgerOption {
	return func(l *InMemoryLedger) {
		l.now = now
	}
}

// NewInMemoryLedger creates an empty ledger
func NewInMemoryLedger(opts ...InMemoryLedgerOption) *InMemoryLedger {
	l := &InMemoryLedger{
		invoices:    make(map[uuid.UUID]billing.Invoice),
		attachments: make(map[uuid.UUID]billing.Attachment),
		now:         time.Now,
		logger:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// CreateInvoice issues and stores a new invoice
func (l *InMemoryLedger) CreateInvoice(ctx context.Context, customerID uuid.UUID, lines []billing.InvoiceLine) (*billing.Invoice, error) {
	inv, err := billing.NewInvoice(customerID, lines, l.now())
	if err != nil {
		return nil, err
	}
	l.putInvoice(*inv)

	l.logger.Debug("invoice created",
		zap.String("invoice_id", inv.ID.String()),
		zap.String("customer_id", customerID.String()),
		zap.String("total", inv.Total.StringFixed(2)),
	)
	return inv, nil
}

// FindInvoice returns a copy of the stored invoice
func (l *InMemoryLedger) FindInvoice(ctx context.Context, id uuid.UUID) (*billing.Invoice, bool) {
	l.invoicesMu.RLock()
	inv, ok := l.invoices[id]
	l.invoicesMu.RUnlock()
	if !ok {
		return nil, false
	}
	return &inv, true
}

// SearchInvoices filters, counts and pages invoices.
// Matches are ordered newest first, ties broken by id, so paging is stable
// while the ledger is not being written.
func (l *InMemoryLedger) SearchInvoices(ctx context.Context, query billing.SearchQuery) shared.PagedResult[billing.InvoiceListItem] {
	query = query.Normalized()

	l.invoicesMu.RLock()
	matched := make([]billing.Invoice, 0, len(l.invoices))
	for _, inv := range l.invoices {
		if query.Matches(&inv) {
			matched = append(matched, inv)
		}
	}
	l.invoicesMu.RUnlock()

	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].IssuedAt.Equal(matched[j].IssuedAt) {
			return matched[i].IssuedAt.After(matched[j].IssuedAt)
		}
		return bytes.Compare(matched[i].ID[:], matched[j].ID[:]) < 0
	})

	page := shared.Paginate(matched, query.Page, query.PageSize)
	items := make([]billing.InvoiceListItem, len(page))
	for i := range page {
		items[i] = page[i].ListItem()
	}
	return shared.PagedResult[billing.InvoiceListItem]{
		Items:      items,
		TotalCount: len(matched),
	}
}

// ImportInvoices stores one synthetic invoice per 128 archive bytes, between 1 and 25.
// The archive content itself is not parsed.
func (l *InMemoryLedger) ImportInvoices(ctx context.Context, sourceName *string, archive []byte) (*billing.ImportResult, error) {
	count := billing.ImportCount(len(archive))
	now := l.now()

	l.invoicesMu.Lock()
	for i := 0; i < count; i++ {
		inv := billing.NewImportedInvoice(i, now)
		l.invoices[inv.ID] = *inv
	}
	l.invoicesMu.Unlock()

	result := billing.NewImportResult(count, sourceName)
	l.logger.Info("invoices imported",
		zap.Int("imported_count", count),
		zap.Int("archive_size", len(archive)),
	)
	return result, nil
}

// SaveAttachment stores attachment metadata. The invoice id is not checked
// against the invoice map and the file content is not retained.
func (l *InMemoryLedger) SaveAttachment(ctx context.Context, invoiceID uuid.UUID, file []byte, fileName, contentType string) (*billing.Attachment, error) {
	att := billing.NewAttachment(invoiceID, fileName, contentType, int64(len(file)), l.now())
	l.putAttachment(*att)

	l.logger.Debug("attachment stored",
		zap.String("invoice_id", invoiceID.String()),
		zap.String("attachment_id", att.ID.String()),
		zap.Int64("size", att.Size),
	)
	return att, nil
}

// SetCompanyLogo replaces the logo with a private copy of the given bytes
func (l *InMemoryLedger) SetCompanyLogo(ctx context.Context, logo []byte) {
	cp := bytes.Clone(logo)
	l.logoMu.Lock()
	l.logo = cp
	l.logoMu.Unlock()

	l.logger.Debug("company logo replaced", zap.Int("size", len(cp)))
}

// CompanyLogo returns a copy of the current logo, nil when none was uploaded
func (l *InMemoryLedger) CompanyLogo() []byte {
	l.logoMu.RLock()
	defer l.logoMu.RUnlock()
	return bytes.Clone(l.logo)
}

// Attachment returns a copy of stored attachment metadata
func (l *InMemoryLedger) Attachment(id uuid.UUID) (*billing.Attachment, bool) {
	l.attachmentsMu.RLock()
	att, ok := l.attachments[id]
	l.attachmentsMu.RUnlock()
	if !ok {
		return nil, false
	}
	return &att, true
}

// InvoiceCount returns the number of stored invoices
func (l *InMemoryLedger) InvoiceCount() int {
	l.invoicesMu.RLock()
	defer l.invoicesMu.RUnlock()
	return len(l.invoices)
}

func (l *InMemoryLedger) putInvoice(inv billing.Invoice) {
	l.invoicesMu.Lock()
	l.invoices[inv.ID] = inv
	l.invoicesMu.Unlock()
}

func (l *InMemoryLedger) putAttachment(att billing.Attachment) {
	l.attachmentsMu.Lock()
	l.attachments[att.ID] = att
	l.attachmentsMu.Unlock()
}

package billing

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/erp/invoicing/internal/contract/billingapi"
	"github.com/erp/invoicing/internal/domain/billing"
	"github.com/erp/invoicing/internal/domain/shared"
	"github.com/erp/invoicing/internal/infrastructure/persistence"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// ============================================================================
// Mocks
// ============================================================================

// MockAssetSource is a mock implementation of AssetSource
type MockAssetSource struct {
	mock.Mock
}

func (m *MockAssetSource) Open(ctx context.Context) (io.ReadCloser, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(io.ReadCloser), args.Error(1)
}

func (m *MockAssetSource) Location() string {
	args := m.Called()
	return args.String(0)
}

// MockLedger is a mock implementation of billing.Ledger
type MockLedger struct {
	mock.Mock
}

func (m *MockLedger) CreateInvoice(ctx context.Context, customerID uuid.UUID, lines []billing.InvoiceLine) (*billing.Invoice, error) {
	args := m.Called(ctx, customerID, lines)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.Invoice), args.Error(1)
}

func (m *MockLedger) FindInvoice(ctx context.Context, id uuid.UUID) (*billing.Invoice, bool) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Bool(1)
	}
	return args.Get(0).(*billing.Invoice), args.Bool(1)
}

func (m *MockLedger) SearchInvoices(ctx context.Context, query billing.SearchQuery) shared.PagedResult[billing.InvoiceListItem] {
	args := m.Called(ctx, query)
	return args.Get(0).(shared.PagedResult[billing.InvoiceListItem])
}

func (m *MockLedger) ImportInvoices(ctx context.Context, sourceName *string, archive []byte) (*billing.ImportResult, error) {
	args := m.Called(ctx, sourceName, archive)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.ImportResult), args.Error(1)
}

func (m *MockLedger) SaveAttachment(ctx context.Context, invoiceID uuid.UUID, file []byte, fileName, contentType string) (*billing.Attachment, error) {
	args := m.Called(ctx, invoiceID, file, fileName, contentType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.Attachment), args.Error(1)
}

func (m *MockLedger) SetCompanyLogo(ctx context.Context, logo []byte) {
	m.Called(ctx, logo)
}

// ============================================================================
// Helpers
// ============================================================================

var pdfFixture = []byte("%PDF-1.4\nfixture\n%%EOF\n")

// fixtureAsset serves pdfFixture on every Open
type fixtureAsset struct{}

func (fixtureAsset) Open(context.Context) (io.ReadCloser, error) {
	return io.NopCloser(bytes.NewReader(pdfFixture)), nil
}

func (fixtureAsset) Location() string { return "memory://invoice.pdf" }

func newSeededService(t *testing.T) (*Service, *persistence.InMemoryLedger) {
	t.Helper()
	ledger := persistence.NewInMemoryLedger()
	ledger.Seed()
	return NewService(ledger, fixtureAsset{}), ledger
}

func assertValidation(t *testing.T, err error, msg string) {
	t.Helper()
	require.Error(t, err)
	assert.True(t, errors.Is(err, shared.ErrValidation))
	var de *shared.DomainError
	require.True(t, errors.As(err, &de))
	assert.Equal(t, msg, de.Message)
}

// ============================================================================
// Tests
// ============================================================================

func TestService_GetInvoice(t *testing.T) {
	svc, _ := newSeededService(t)
	ctx := context.Background()

	t.Run("found", func(t *testing.T) {
		dto, err := svc.GetInvoice(ctx, persistence.SeedInvoicePaid)
		require.NoError(t, err)
		assert.Equal(t, "INV-SEED-0002", dto.Number)
		assert.Equal(t, billing.InvoiceStatusPaid, dto.Status)
		assert.Equal(t, "USD", dto.Currency)
	})

	t.Run("missing", func(t *testing.T) {
		dto, err := svc.GetInvoice(ctx, uuid.New())
		assert.Nil(t, dto)
		assert.True(t, errors.Is(err, shared.ErrNotFound))
	})
}

func TestService_GetInvoiceStatus(t *testing.T) {
	svc, _ := newSeededService(t)
	ctx := context.Background()

	status, err := svc.GetInvoiceStatus(ctx, persistence.SeedInvoiceOverdue, "abc-123")
	require.NoError(t, err)
	assert.Equal(t, "Overdue (corr=abc-123)", status)

	status, err = svc.GetInvoiceStatus(ctx, uuid.New(), "xyz")
	require.NoError(t, err)
	assert.Equal(t, "NotFound (corr=xyz)", status)
}

func TestService_SearchInvoices(t *testing.T) {
	svc, _ := newSeededService(t)
	customer := persistence.SeedCustomerA
	paid := billing.InvoiceStatusPaid

	page, err := svc.SearchInvoices(context.Background(), billingapi.InvoiceSearchQuery{
		CustomerID: &customer,
		Status:     &paid,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, page.TotalCount)
	require.Len(t, page.Items, 1)
	assert.Equal(t, persistence.SeedInvoicePaid, page.Items[0].ID)

	page, err = svc.SearchInvoices(context.Background(), billingapi.InvoiceSearchQuery{Page: 9, PageSize: 20})
	require.NoError(t, err)
	assert.Equal(t, 3, page.TotalCount)
	assert.NotNil(t, page.Items)
	assert.Empty(t, page.Items)
}

func TestService_CreateInvoice(t *testing.T) {
	svc, ledger := newSeededService(t)
	ctx := context.Background()

	t.Run("nil request", func(t *testing.T) {
		_, err := svc.CreateInvoice(ctx, nil)
		assertValidation(t, err, MsgRequestBodyMissing)
	})

	t.Run("no lines", func(t *testing.T) {
		_, err := svc.CreateInvoice(ctx, &billingapi.CreateInvoiceRequest{CustomerID: uuid.New()})
		assertValidation(t, err, MsgInvoiceNoLines)
	})

	t.Run("issued and stored", func(t *testing.T) {
		customer := uuid.New()
		dto, err := svc.CreateInvoice(ctx, &billingapi.CreateInvoiceRequest{
			CustomerID: customer,
			Lines: []billingapi.CreateInvoiceLineRequest{
				{Description: "Widget", Quantity: 2, UnitPrice: decimal.RequireFromString("10.50")},
				{Description: "Gadget", Quantity: 1, UnitPrice: decimal.RequireFromString("5.00")},
			},
		})
		require.NoError(t, err)
		assert.True(t, dto.Total.Equal(decimal.RequireFromString("26.00")))
		assert.Equal(t, billing.InvoiceStatusIssued, dto.Status)
		assert.Equal(t, customer, dto.CustomerID)
		assert.True(t, strings.HasPrefix(dto.Number, "INV-"))

		stored, ok := ledger.FindInvoice(ctx, dto.ID)
		require.True(t, ok)
		assert.Equal(t, dto.Number, stored.Number)
	})
}

func TestService_CreateInvoice_LedgerError(t *testing.T) {
	ledger := new(MockLedger)
	boom := errors.New("boom")
	ledger.On("CreateInvoice", mock.Anything, mock.Anything, mock.Anything).Return(nil, boom)
	svc := NewService(ledger, new(MockAssetSource))

	_, err := svc.CreateInvoice(context.Background(), &billingapi.CreateInvoiceRequest{
		CustomerID: uuid.New(),
		Lines:      []billingapi.CreateInvoiceLineRequest{{Description: "x", Quantity: 1, UnitPrice: decimal.NewFromInt(1)}},
	})
	assert.ErrorIs(t, err, boom)
	ledger.AssertExpectations(t)
}

func TestService_UploadCompanyLogo(t *testing.T) {
	svc, ledger := newSeededService(t)
	ctx := context.Background()

	assertValidation(t, svc.UploadCompanyLogoBytes(ctx, nil), MsgLogoBytesEmpty)
	assertValidation(t, svc.UploadCompanyLogoStream(ctx, nil), MsgLogoStreamMissing)
	assertValidation(t, svc.UploadCompanyLogoStream(ctx, bytes.NewReader(nil)), MsgLogoStreamEmpty)

	require.NoError(t, svc.UploadCompanyLogoBytes(ctx, []byte{1, 2, 3}))
	assert.Equal(t, []byte{1, 2, 3}, ledger.CompanyLogo())

	require.NoError(t, svc.UploadCompanyLogoStream(ctx, bytes.NewReader([]byte{4, 5})))
	assert.Equal(t, []byte{4, 5}, ledger.CompanyLogo())
}

func TestService_DownloadInvoicePdf(t *testing.T) {
	svc, _ := newSeededService(t)
	ctx := context.Background()

	data, err := svc.DownloadInvoicePdfBytes(ctx, uuid.New())
	require.NoError(t, err)
	assert.Equal(t, pdfFixture, data)

	rc, err := svc.DownloadInvoicePdfStream(ctx, uuid.New())
	require.NoError(t, err)
	defer rc.Close()
	streamed, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, data, streamed)
}

func TestService_DownloadInvoicePdf_AssetMissing(t *testing.T) {
	assets := new(MockAssetSource)
	missing := shared.NewDomainError(shared.CodeAssetMissing, "PDF asset not found at '/nowhere.pdf'.")
	assets.On("Open", mock.Anything).Return(nil, missing)
	assets.On("Location").Return("/nowhere.pdf")
	svc := NewService(persistence.NewInMemoryLedger(), assets)

	_, err := svc.DownloadInvoicePdfBytes(context.Background(), uuid.New())
	assert.True(t, errors.Is(err, shared.ErrAssetMissing))

	_, err = svc.DownloadInvoicePdfStream(context.Background(), uuid.New())
	assert.True(t, errors.Is(err, shared.ErrAssetMissing))
	assets.AssertExpectations(t)
}

func TestService_ImportInvoices(t *testing.T) {
	svc, ledger := newSeededService(t)
	ctx := context.Background()

	_, err := svc.ImportInvoices(ctx, nil)
	assertValidation(t, err, MsgRequestBodyMissing)

	_, err = svc.ImportInvoices(ctx, &billingapi.BulkImportRequest{})
	assertValidation(t, err, MsgArchiveBytesEmpty)

	source := "legacy.zip"
	res, err := svc.ImportInvoices(ctx, &billingapi.BulkImportRequest{
		SourceName:   &source,
		ArchiveBytes: make([]byte, 1024),
	})
	require.NoError(t, err)
	assert.Equal(t, 8, res.ImportedCount)
	assert.Equal(t, 0, res.FailedCount)
	assert.Equal(t, "Imported 8 invoices from 'legacy.zip'.", res.Message)
	assert.Equal(t, 11, ledger.InvoiceCount())
}

func TestService_UploadInvoiceAttachment(t *testing.T) {
	svc, ledger := newSeededService(t)
	ctx := context.Background()
	invoiceID := uuid.New()

	_, err := svc.UploadInvoiceAttachment(ctx, invoiceID, nil)
	assertValidation(t, err, MsgFileMissing)

	_, err = svc.UploadInvoiceAttachment(ctx, invoiceID, &billingapi.AttachmentUpload{
		Content: shared.PayloadFromBytes(nil),
	})
	assertValidation(t, err, MsgFileMissing)

	dto, err := svc.UploadInvoiceAttachment(ctx, invoiceID, &billingapi.AttachmentUpload{
		FileName:    "notes.txt",
		ContentType: "text/plain",
		Content:     shared.PayloadFromReader(strings.NewReader("hello")),
	})
	require.NoError(t, err)
	assert.Equal(t, "notes.txt", dto.FileName)
	assert.Equal(t, "text/plain", dto.ContentType)
	assert.Equal(t, int64(5), dto.Size)

	stored, ok := ledger.Attachment(dto.AttachmentID)
	require.True(t, ok)
	assert.Equal(t, invoiceID, stored.InvoiceID)
}

package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	appbilling "github.com/erp/invoicing/internal/application/billing"
	"github.com/erp/invoicing/internal/domain/shared"
	"github.com/erp/invoicing/internal/infrastructure/persistence"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pdfFixture = []byte("%PDF-1.4\n% invoice fixture\n%%EOF\n")

type fixtureAsset struct {
	data    []byte
	missing bool
}

func (a fixtureAsset) Open(context.Context) (io.ReadCloser, error) {
	if a.missing {
		return nil, shared.NewDomainError(shared.CodeAssetMissing, "Invoice PDF asset is unavailable.")
	}
	return io.NopCloser(bytes.NewReader(a.data)), nil
}

func (a fixtureAsset) Location() string { return "fixture" }

func newBillingFixture(asset fixtureAsset) (*gin.Engine, *persistence.InMemoryLedger) {
	ledger := persistence.NewInMemoryLedger()
	ledger.Seed()
	svc := appbilling.NewService(ledger, asset)

	r := gin.New()
	NewBillingHandler(svc).RegisterRoutes(r)
	return r, ledger
}

func serve(r http.Handler, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func multipartBody(t *testing.T, field, fileName string, content []byte, fields map[string]string) (io.Reader, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	if field != "" {
		part, err := mw.CreateFormFile(field, fileName)
		require.NoError(t, err)
		_, err = part.Write(content)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func TestBillingHandler_GetInvoice(t *testing.T) {
	r, _ := newBillingFixture(fixtureAsset{data: pdfFixture})

	w := serve(r, httptest.NewRequest(http.MethodGet, "/api/billing/invoices/"+persistence.SeedInvoicePaid.String(), nil))
	require.Equal(t, http.StatusOK, w.Code)
	resp := decodeResponse(t, w)
	data := resp.Data.(map[string]any)
	assert.Equal(t, "INV-SEED-0002", data["number"])
	assert.Equal(t, "Paid", data["status"])

	w = serve(r, httptest.NewRequest(http.MethodGet, "/api/billing/invoices/99999999-9999-9999-9999-999999999999", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "ERR_NOT_FOUND", decodeResponse(t, w).Error.Code)

	w = serve(r, httptest.NewRequest(http.MethodGet, "/api/billing/invoices/not-a-guid", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Invoice not-a-guid was not found.", decodeResponse(t, w).Error.Message)
}

func TestBillingHandler_GetInvoiceStatus(t *testing.T) {
	r, _ := newBillingFixture(fixtureAsset{data: pdfFixture})

	req := httptest.NewRequest(http.MethodGet, "/api/billing/invoices/"+persistence.SeedInvoicePaid.String()+"/status", nil)
	req.Header.Set("X-Correlation-Id", "corr-42")
	w := serve(r, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Paid (corr=corr-42)", decodeResponse(t, w).Data)
}

func TestBillingHandler_SearchInvoices(t *testing.T) {
	r, _ := newBillingFixture(fixtureAsset{data: pdfFixture})

	w := serve(r, httptest.NewRequest(http.MethodGet, "/api/billing/invoices/search", nil))
	require.Equal(t, http.StatusOK, w.Code)
	data := decodeResponse(t, w).Data.(map[string]any)
	assert.EqualValues(t, 3, data["totalCount"])
	assert.Len(t, data["items"], 3)

	w = serve(r, httptest.NewRequest(http.MethodGet, "/api/billing/invoices/search?status=overdue&customerId="+persistence.SeedCustomerB.String(), nil))
	require.Equal(t, http.StatusOK, w.Code)
	data = decodeResponse(t, w).Data.(map[string]any)
	assert.EqualValues(t, 1, data["totalCount"])

	for _, q := range []string{"page=abc", "customerId=nope", "status=Unknown"} {
		w = serve(r, httptest.NewRequest(http.MethodGet, "/api/billing/invoices/search?"+q, nil))
		assert.Equal(t, http.StatusBadRequest, w.Code, q)
	}
}

func TestBillingHandler_CreateInvoice(t *testing.T) {
	r, ledger := newBillingFixture(fixtureAsset{data: pdfFixture})

	body := `{"customerId":"` + persistence.SeedCustomerA.String() + `","lines":[{"description":"Widget","quantity":2,"unitPrice":"10.00"},{"description":"Gadget","quantity":1,"unitPrice":"6.00"}]}`
	req := httptest.NewRequest(http.MethodPost, "/api/billing/invoices", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := serve(r, req)

	require.Equal(t, http.StatusCreated, w.Code)
	data := decodeResponse(t, w).Data.(map[string]any)
	assert.Equal(t, "26", data["total"])
	assert.Equal(t, "Issued", data["status"])
	assert.Equal(t, 4, ledger.InvoiceCount())

	t.Run("empty body", func(t *testing.T) {
		w := serve(r, httptest.NewRequest(http.MethodPost, "/api/billing/invoices", nil))
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, appbilling.MsgRequestBodyMissing, decodeResponse(t, w).Error.Message)
	})

	t.Run("no lines", func(t *testing.T) {
		w := serve(r, httptest.NewRequest(http.MethodPost, "/api/billing/invoices", strings.NewReader(`{"lines":[]}`)))
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, appbilling.MsgInvoiceNoLines, decodeResponse(t, w).Error.Message)
	})

	t.Run("malformed json", func(t *testing.T) {
		w := serve(r, httptest.NewRequest(http.MethodPost, "/api/billing/invoices", strings.NewReader(`{"lines":`)))
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "ERR_INVALID_JSON", decodeResponse(t, w).Error.Code)
	})
}

func TestBillingHandler_UploadCompanyLogo(t *testing.T) {
	r, ledger := newBillingFixture(fixtureAsset{data: pdfFixture})

	w := serve(r, httptest.NewRequest(http.MethodPost, "/api/billing/assets/company-logo/bytes", bytes.NewReader([]byte("png-1"))))
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, []byte("png-1"), ledger.CompanyLogo())

	w = serve(r, httptest.NewRequest(http.MethodPost, "/api/billing/assets/company-logo/stream", bytes.NewReader([]byte("png-2"))))
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, []byte("png-2"), ledger.CompanyLogo())

	w = serve(r, httptest.NewRequest(http.MethodPost, "/api/billing/assets/company-logo/bytes", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, appbilling.MsgLogoBytesEmpty, decodeResponse(t, w).Error.Message)

	w = serve(r, httptest.NewRequest(http.MethodPost, "/api/billing/assets/company-logo/stream", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestBillingHandler_DownloadInvoicePdf(t *testing.T) {
	r, _ := newBillingFixture(fixtureAsset{data: pdfFixture})
	base := "/api/billing/invoices/" + persistence.SeedInvoiceIssued.String() + "/pdf/"

	bytesResp := serve(r, httptest.NewRequest(http.MethodGet, base+"bytes", nil))
	streamResp := serve(r, httptest.NewRequest(http.MethodGet, base+"stream", nil))

	require.Equal(t, http.StatusOK, bytesResp.Code)
	require.Equal(t, http.StatusOK, streamResp.Code)
	assert.Equal(t, "application/pdf", bytesResp.Header().Get("Content-Type"))
	assert.Equal(t, pdfFixture, bytesResp.Body.Bytes())
	assert.Equal(t, bytesResp.Body.Bytes(), streamResp.Body.Bytes())

	missing, _ := newBillingFixture(fixtureAsset{missing: true})
	w := serve(missing, httptest.NewRequest(http.MethodGet, base+"bytes", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "ERR_ASSET_MISSING", decodeResponse(t, w).Error.Code)
}

func TestBillingHandler_ImportInvoices(t *testing.T) {
	r, ledger := newBillingFixture(fixtureAsset{data: pdfFixture})

	payload, err := json.Marshal(map[string]any{
		"sourceName":   "march.zip",
		"archiveBytes": make([]byte, 1024),
	})
	require.NoError(t, err)

	w := serve(r, httptest.NewRequest(http.MethodPost, "/api/billing/invoices/import", bytes.NewReader(payload)))
	require.Equal(t, http.StatusOK, w.Code)
	data := decodeResponse(t, w).Data.(map[string]any)
	assert.EqualValues(t, 8, data["importedCount"])
	assert.EqualValues(t, 0, data["failedCount"])
	assert.Equal(t, "Imported 8 invoices from 'march.zip'.", data["message"])
	assert.Equal(t, 11, ledger.InvoiceCount())

	w = serve(r, httptest.NewRequest(http.MethodPost, "/api/billing/invoices/import", strings.NewReader(`{"archiveBytes":""}`)))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, appbilling.MsgArchiveBytesEmpty, decodeResponse(t, w).Error.Message)
}

func TestBillingHandler_UploadAttachment(t *testing.T) {
	r, ledger := newBillingFixture(fixtureAsset{data: pdfFixture})
	path := "/api/billing/invoices/" + persistence.SeedInvoiceIssued.String() + "/attachments"

	body, contentType := multipartBody(t, "file", "notes.txt", []byte("hello attachment"), nil)
	req := httptest.NewRequest(http.MethodPost, path, body)
	req.Header.Set("Content-Type", contentType)
	w := serve(r, req)

	require.Equal(t, http.StatusOK, w.Code)
	data := decodeResponse(t, w).Data.(map[string]any)
	assert.Equal(t, "notes.txt", data["fileName"])
	assert.EqualValues(t, len("hello attachment"), data["size"])

	id, ok := data["attachmentId"].(string)
	require.True(t, ok)
	stored, found := ledger.Attachment(uuid.MustParse(id))
	require.True(t, found)
	assert.Equal(t, persistence.SeedInvoiceIssued, stored.InvoiceID)

	body, contentType = multipartBody(t, "", "", nil, map[string]string{"other": "x"})
	req = httptest.NewRequest(http.MethodPost, path, body)
	req.Header.Set("Content-Type", contentType)
	w = serve(r, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, appbilling.MsgFileMissing, decodeResponse(t, w).Error.Message)
}

package handler

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	appbilling "github.com/erp/invoicing/internal/application/billing"
	appsales "github.com/erp/invoicing/internal/application/sales"
	"github.com/erp/invoicing/internal/infrastructure/logger"
	"github.com/erp/invoicing/internal/infrastructure/persistence"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSalesFixture(asset fixtureAsset) (*gin.Engine, *persistence.InMemoryLedger) {
	ledger := persistence.NewInMemoryLedger()
	ledger.Seed()
	gateway := appsales.NewGateway(appbilling.NewService(ledger, asset))

	r := gin.New()
	NewSalesGatewayHandler(gateway).RegisterRoutes(r.Group("/api/sales/billing"))
	return r, ledger
}

func TestSalesGatewayHandler_PlaceOrder(t *testing.T) {
	r, ledger := newSalesFixture(fixtureAsset{data: pdfFixture})

	body := `{"customerId":"` + persistence.SeedCustomerB.String() + `","lines":[{"sku":"SKU-1","quantity":3,"unitPrice":"2.50"}]}`
	w := serve(r, httptest.NewRequest(http.MethodPost, "/api/sales/billing/orders", strings.NewReader(body)))

	require.Equal(t, http.StatusOK, w.Code)
	data := decodeResponse(t, w).Data.(map[string]any)
	assert.Equal(t, "7.5", data["total"])
	assert.NotEmpty(t, data["invoiceNumber"])
	assert.Equal(t, 4, ledger.InvoiceCount())

	w = serve(r, httptest.NewRequest(http.MethodPost, "/api/sales/billing/orders", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Request body is missing.", decodeResponse(t, w).Error.Message)

	long := strings.Repeat("x", 65)
	w = serve(r, httptest.NewRequest(http.MethodPost, "/api/sales/billing/orders",
		strings.NewReader(`{"lines":[{"sku":"`+long+`","quantity":1,"unitPrice":"1"}]}`)))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "ERR_VALIDATION", decodeResponse(t, w).Error.Code)
}

func TestSalesGatewayHandler_Queries(t *testing.T) {
	r, _ := newSalesFixture(fixtureAsset{data: pdfFixture})

	w := serve(r, httptest.NewRequest(http.MethodGet, "/api/sales/billing/invoices/"+persistence.SeedInvoiceOverdue.String(), nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "INV-SEED-0003", decodeResponse(t, w).Data.(map[string]any)["number"])

	w = serve(r, httptest.NewRequest(http.MethodGet, "/api/sales/billing/invoices/99999999-9999-9999-9999-999999999999", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = serve(r, httptest.NewRequest(http.MethodGet, "/api/sales/billing/invoices?pageSize=2", nil))
	require.Equal(t, http.StatusOK, w.Code)
	page := decodeResponse(t, w).Data.(map[string]any)
	assert.EqualValues(t, 3, page["totalCount"])
	assert.Len(t, page["items"], 2)
}

func TestSalesGatewayHandler_StatusUsesRequestID(t *testing.T) {
	ledger := persistence.NewInMemoryLedger()
	ledger.Seed()
	h := NewSalesGatewayHandler(appsales.NewGateway(appbilling.NewService(ledger, fixtureAsset{data: pdfFixture})))

	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set(logger.GinRequestIDKey, "req-77")
		c.Next()
	})
	h.RegisterRoutes(r)

	w := serve(r, httptest.NewRequest(http.MethodGet, "/invoices/"+persistence.SeedInvoiceIssued.String()+"/status", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Issued (corr=req-77)", decodeResponse(t, w).Data)
}

func TestSalesGatewayHandler_DownloadInvoicePdf(t *testing.T) {
	r, _ := newSalesFixture(fixtureAsset{data: pdfFixture})
	path := "/api/sales/billing/invoices/" + persistence.SeedInvoicePaid.String() + "/pdf"

	bytesResp := serve(r, httptest.NewRequest(http.MethodGet, path, nil))
	streamResp := serve(r, httptest.NewRequest(http.MethodGet, path+"?mode=Stream", nil))

	require.Equal(t, http.StatusOK, bytesResp.Code)
	require.Equal(t, http.StatusOK, streamResp.Code)
	assert.Equal(t, pdfFixture, bytesResp.Body.Bytes())
	assert.Equal(t, bytesResp.Body.Bytes(), streamResp.Body.Bytes())

	disposition := bytesResp.Header().Get("Content-Disposition")
	assert.Equal(t, "attachment; filename=invoice-"+strings.ReplaceAll(persistence.SeedInvoicePaid.String(), "-", "")+".pdf", disposition)
	assert.Equal(t, disposition, streamResp.Header().Get("Content-Disposition"))

	missing, _ := newSalesFixture(fixtureAsset{missing: true})
	w := serve(missing, httptest.NewRequest(http.MethodGet, path+"?mode=stream", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "ERR_ASSET_MISSING", decodeResponse(t, w).Error.Code)
}

func TestSalesGatewayHandler_Uploads(t *testing.T) {
	r, ledger := newSalesFixture(fixtureAsset{data: pdfFixture})

	t.Run("attachment", func(t *testing.T) {
		body, contentType := multipartBody(t, "file", "scan.pdf", []byte("scan"), nil)
		req := httptest.NewRequest(http.MethodPost, "/api/sales/billing/invoices/"+persistence.SeedInvoicePaid.String()+"/attachments", body)
		req.Header.Set("Content-Type", contentType)
		w := serve(r, req)

		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "scan.pdf", decodeResponse(t, w).Data.(map[string]any)["fileName"])
	})

	t.Run("attachment missing", func(t *testing.T) {
		w := serve(r, httptest.NewRequest(http.MethodPost, "/api/sales/billing/invoices/"+persistence.SeedInvoicePaid.String()+"/attachments", nil))
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, appsales.MsgFileMissing, decodeResponse(t, w).Error.Message)
	})

	t.Run("import", func(t *testing.T) {
		body, contentType := multipartBody(t, "archive", "batch.zip", make([]byte, 300), map[string]string{"sourceName": "batch.zip"})
		req := httptest.NewRequest(http.MethodPost, "/api/sales/billing/invoices/import", body)
		req.Header.Set("Content-Type", contentType)
		w := serve(r, req)

		require.Equal(t, http.StatusOK, w.Code)
		data := decodeResponse(t, w).Data.(map[string]any)
		assert.EqualValues(t, 2, data["importedCount"])
		assert.Equal(t, "Imported 2 invoices from 'batch.zip'.", data["message"])
	})

	t.Run("import missing archive", func(t *testing.T) {
		w := serve(r, httptest.NewRequest(http.MethodPost, "/api/sales/billing/invoices/import", nil))
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, appsales.MsgArchiveMissing, decodeResponse(t, w).Error.Message)
	})

	for _, mode := range []string{"bytes", "stream"} {
		t.Run("logo "+mode, func(t *testing.T) {
			logo := []byte("logo-" + mode)
			body, contentType := multipartBody(t, "logo", "logo.png", logo, nil)
			req := httptest.NewRequest(http.MethodPost, "/api/sales/billing/admin/company-logo?mode="+mode, body)
			req.Header.Set("Content-Type", contentType)
			w := serve(r, req)

			assert.Equal(t, http.StatusNoContent, w.Code)
			assert.Equal(t, logo, ledger.CompanyLogo())
		})
	}

	t.Run("logo missing", func(t *testing.T) {
		w := serve(r, httptest.NewRequest(http.MethodPost, "/api/sales/billing/admin/company-logo", nil))
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, appsales.MsgLogoMissing, decodeResponse(t, w).Error.Message)
	})
}

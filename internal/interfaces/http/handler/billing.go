package handler

import (
	"io"
	"net/http"

	"github.com/erp/invoicing/internal/contract/billingapi"
	"github.com/erp/invoicing/internal/domain/shared"
	"github.com/gin-gonic/gin"
)

// BillingHandler serves the billing contract over HTTP
type BillingHandler struct {
	BaseHandler
	api billingapi.API
}

// NewBillingHandler creates a handler backed by the server-side contract implementation
func NewBillingHandler(api billingapi.API) *BillingHandler {
	return &BillingHandler{api: api}
}

// RegisterRoutes binds every contract route
func (h *BillingHandler) RegisterRoutes(r gin.IRoutes) {
	handlers := map[string]gin.HandlerFunc{
		billingapi.RouteGetInvoice.Operation:              h.GetInvoice,
		billingapi.RouteGetInvoiceStatus.Operation:        h.GetInvoiceStatus,
		billingapi.RouteSearchInvoices.Operation:          h.SearchInvoices,
		billingapi.RouteCreateInvoice.Operation:           h.CreateInvoice,
		billingapi.RouteUploadCompanyLogoBytes.Operation:  h.UploadCompanyLogoBytes,
		billingapi.RouteUploadCompanyLogoStream.Operation: h.UploadCompanyLogoStream,
		billingapi.RouteDownloadPdfBytes.Operation:        h.DownloadInvoicePdfBytes,
		billingapi.RouteDownloadPdfStream.Operation:       h.DownloadInvoicePdfStream,
		billingapi.RouteImportInvoices.Operation:          h.ImportInvoices,
		billingapi.RouteUploadAttachment.Operation:        h.UploadInvoiceAttachment,
	}
	for _, route := range billingapi.Routes() {
		r.Handle(route.Method, route.Path, handlers[route.Operation])
	}
}

// GetInvoice handles GET /api/billing/invoices/:invoiceId
func (h *BillingHandler) GetInvoice(c *gin.Context) {
	id, ok := h.parseInvoiceID(c)
	if !ok {
		return
	}
	inv, err := h.api.GetInvoice(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, inv)
}

// GetInvoiceStatus handles GET /api/billing/invoices/:invoiceId/status
func (h *BillingHandler) GetInvoiceStatus(c *gin.Context) {
	id, ok := h.parseInvoiceID(c)
	if !ok {
		return
	}
	status, err := h.api.GetInvoiceStatus(c.Request.Context(), id, c.GetHeader(billingapi.HeaderCorrelationID))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, status)
}

// SearchInvoices handles GET /api/billing/invoices/search
func (h *BillingHandler) SearchInvoices(c *gin.Context) {
	q, err := parseSearchQuery(c)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	page, err := h.api.SearchInvoices(c.Request.Context(), q)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, page)
}

// CreateInvoice handles POST /api/billing/invoices
func (h *BillingHandler) CreateInvoice(c *gin.Context) {
	var body billingapi.CreateInvoiceRequest
	present, ok := h.bindOptionalJSON(c, &body)
	if !ok {
		return
	}
	var req *billingapi.CreateInvoiceRequest
	if present {
		req = &body
	}

	inv, err := h.api.CreateInvoice(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, inv)
}

// UploadCompanyLogoBytes handles POST /api/billing/assets/company-logo/bytes
func (h *BillingHandler) UploadCompanyLogoBytes(c *gin.Context) {
	data, err := io.ReadAll(c.Request.Body)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	if err := h.api.UploadCompanyLogoBytes(c.Request.Context(), data); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// UploadCompanyLogoStream handles POST /api/billing/assets/company-logo/stream
func (h *BillingHandler) UploadCompanyLogoStream(c *gin.Context) {
	if err := h.api.UploadCompanyLogoStream(c.Request.Context(), c.Request.Body); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// DownloadInvoicePdfBytes handles GET /api/billing/invoices/:invoiceId/pdf/bytes
func (h *BillingHandler) DownloadInvoicePdfBytes(c *gin.Context) {
	id, ok := h.parseInvoiceID(c)
	if !ok {
		return
	}
	data, err := h.api.DownloadInvoicePdfBytes(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.Data(http.StatusOK, contentTypePDF, data)
}

// DownloadInvoicePdfStream handles GET /api/billing/invoices/:invoiceId/pdf/stream
func (h *BillingHandler) DownloadInvoicePdfStream(c *gin.Context) {
	id, ok := h.parseInvoiceID(c)
	if !ok {
		return
	}
	rc, err := h.api.DownloadInvoicePdfStream(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	defer rc.Close()
	c.DataFromReader(http.StatusOK, -1, contentTypePDF, rc, nil)
}

// ImportInvoices handles POST /api/billing/invoices/import
func (h *BillingHandler) ImportInvoices(c *gin.Context) {
	var body billingapi.BulkImportRequest
	present, ok := h.bindOptionalJSON(c, &body)
	if !ok {
		return
	}
	var req *billingapi.BulkImportRequest
	if present {
		req = &body
	}

	res, err := h.api.ImportInvoices(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, res)
}

// UploadInvoiceAttachment handles POST /api/billing/invoices/:invoiceId/attachments
func (h *BillingHandler) UploadInvoiceAttachment(c *gin.Context) {
	id, ok := h.parseInvoiceID(c)
	if !ok {
		return
	}
	header, f, err := formFile(c, billingapi.FormFieldFile)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	var upload *billingapi.AttachmentUpload
	if header != nil {
		defer f.Close()
		upload = &billingapi.AttachmentUpload{
			FileName:    header.Filename,
			ContentType: header.Header.Get("Content-Type"),
			Content:     shared.PayloadFromReader(f),
		}
	}

	att, err := h.api.UploadInvoiceAttachment(c.Request.Context(), id, upload)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, att)
}

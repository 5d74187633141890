package handler

import (
	"bytes"
	"io"
	"net/http"

	appsales "github.com/erp/invoicing/internal/application/sales"
	"github.com/erp/invoicing/internal/domain/shared"
	"github.com/erp/invoicing/internal/infrastructure/logger"
	"github.com/erp/invoicing/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Multipart fields of the sales surface
const (
	formFieldFile       = "file"
	formFieldArchive    = "archive"
	formFieldSourceName = "sourceName"
	formFieldLogo       = "logo"
)

// SalesGatewayHandler exposes the sales-facing billing surface
type SalesGatewayHandler struct {
	BaseHandler
	gateway *appsales.Gateway
}

// NewSalesGatewayHandler creates a handler over the gateway
func NewSalesGatewayHandler(gateway *appsales.Gateway) *SalesGatewayHandler {
	return &SalesGatewayHandler{gateway: gateway}
}

// RegisterRoutes binds the gateway routes under rg
func (h *SalesGatewayHandler) RegisterRoutes(rg gin.IRoutes) {
	rg.POST("/orders", h.PlaceOrder)
	rg.GET("/invoices", h.SearchInvoices)
	rg.POST("/invoices/import", h.ImportInvoices)
	rg.GET("/invoices/:invoiceId", h.GetInvoice)
	rg.GET("/invoices/:invoiceId/status", h.GetInvoiceStatus)
	rg.GET("/invoices/:invoiceId/pdf", h.DownloadInvoicePdf)
	rg.POST("/invoices/:invoiceId/attachments", h.UploadAttachment)
	rg.POST("/admin/company-logo", h.UploadCompanyLogo)
}

// PlaceOrder handles POST /orders
func (h *SalesGatewayHandler) PlaceOrder(c *gin.Context) {
	var body dto.PlaceOrderRequest
	present, ok := h.bindOptionalJSON(c, &body)
	if !ok {
		return
	}
	var req *dto.PlaceOrderRequest
	if present {
		req = &body
	}

	placed, err := h.gateway.PlaceOrder(c.Request.Context(), req.ToOrder())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, dto.NewPlaceOrderResponse(placed))
}

// GetInvoice handles GET /invoices/:invoiceId
func (h *SalesGatewayHandler) GetInvoice(c *gin.Context) {
	id, ok := h.parseInvoiceID(c)
	if !ok {
		return
	}
	inv, err := h.gateway.GetInvoice(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, inv)
}

// GetInvoiceStatus handles GET /invoices/:invoiceId/status.
// The inbound request id becomes the correlation id.
func (h *SalesGatewayHandler) GetInvoiceStatus(c *gin.Context) {
	id, ok := h.parseInvoiceID(c)
	if !ok {
		return
	}
	status, err := h.gateway.GetInvoiceStatus(c.Request.Context(), id, getRequestID(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, status)
}

// SearchInvoices handles GET /invoices
func (h *SalesGatewayHandler) SearchInvoices(c *gin.Context) {
	q, err := parseSearchQuery(c)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	page, err := h.gateway.SearchInvoices(c.Request.Context(), q)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, page)
}

// DownloadInvoicePdf handles GET /invoices/:invoiceId/pdf?mode=bytes|stream
func (h *SalesGatewayHandler) DownloadInvoicePdf(c *gin.Context) {
	id, ok := h.parseInvoiceID(c)
	if !ok {
		return
	}
	mode := shared.ParseTransferMode(c.Query(queryMode))

	pdf, err := h.gateway.DownloadInvoicePdf(c.Request.Context(), id, mode)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	defer pdf.Close()

	disposition := map[string]string{"Content-Disposition": "attachment; filename=" + pdf.FileName}

	if !pdf.Payload.IsStream() {
		data, err := pdf.Payload.Bytes()
		if err != nil {
			h.HandleError(c, err)
			return
		}
		c.DataFromReader(http.StatusOK, int64(len(data)), contentTypePDF, bytes.NewReader(data), disposition)
		return
	}

	r, err := pdf.Payload.Reader()
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.DataFromReader(http.StatusOK, -1, contentTypePDF, r, disposition)
	logger.L(c.Request.Context()).Debug("Invoice pdf streamed", zap.String("invoice_id", id.String()))
}

// UploadAttachment handles POST /invoices/:invoiceId/attachments
func (h *SalesGatewayHandler) UploadAttachment(c *gin.Context) {
	id, ok := h.parseInvoiceID(c)
	if !ok {
		return
	}
	file, closer, err := uploadedFile(c, formFieldFile)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	defer closeQuietly(closer)

	att, err := h.gateway.UploadAttachment(c.Request.Context(), id, file)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, att)
}

// ImportInvoices handles POST /invoices/import
func (h *SalesGatewayHandler) ImportInvoices(c *gin.Context) {
	archive, closer, err := uploadedFile(c, formFieldArchive)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	defer closeQuietly(closer)

	res, err := h.gateway.ImportInvoices(c.Request.Context(), archive, c.PostForm(formFieldSourceName))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, res)
}

// UploadCompanyLogo handles POST /admin/company-logo?mode=bytes|stream
func (h *SalesGatewayHandler) UploadCompanyLogo(c *gin.Context) {
	logo, closer, err := uploadedFile(c, formFieldLogo)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	defer closeQuietly(closer)

	mode := shared.ParseTransferMode(c.Query(queryMode))
	if err := h.gateway.UploadCompanyLogo(c.Request.Context(), logo, mode); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

func closeQuietly(c io.Closer) {
	if c != nil {
		_ = c.Close()
	}
}

package handler

import (
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/erp/invoicing/internal/contract/billingapi"
	"github.com/erp/invoicing/internal/domain/billing"
	"github.com/erp/invoicing/internal/domain/sales"
	"github.com/erp/invoicing/internal/domain/shared"
	"github.com/erp/invoicing/internal/interfaces/http/dto"
	"github.com/erp/invoicing/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Shared query parameter for dual-transport operations
const queryMode = "mode"

// parseInvoiceID reads the invoiceId route parameter. Values that are not
// UUIDs answer 404 since no such invoice route exists.
func (h *BaseHandler) parseInvoiceID(c *gin.Context) (uuid.UUID, bool) {
	raw := c.Param(billingapi.ParamInvoiceID)
	id, err := uuid.Parse(raw)
	if err != nil {
		h.NotFound(c, "Invoice "+raw+" was not found.")
		return uuid.Nil, false
	}
	return id, true
}

// parseSearchQuery binds customerId, status, page and pageSize individually
func parseSearchQuery(c *gin.Context) (billingapi.InvoiceSearchQuery, error) {
	q := billingapi.InvoiceSearchQuery{
		Page:     shared.DefaultPage,
		PageSize: shared.DefaultPageSize,
	}

	if raw := c.Query(billingapi.QueryCustomerID); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return q, shared.NewValidationError("Invalid customerId '" + raw + "'.")
		}
		q.CustomerID = &id
	}
	if raw := c.Query(billingapi.QueryStatus); raw != "" {
		status, err := billing.ParseInvoiceStatus(raw)
		if err != nil {
			return q, err
		}
		q.Status = &status
	}

	var err error
	if q.Page, err = intQuery(c, billingapi.QueryPage, q.Page); err != nil {
		return q, err
	}
	if q.PageSize, err = intQuery(c, billingapi.QueryPageSize, q.PageSize); err != nil {
		return q, err
	}
	return q, nil
}

func intQuery(c *gin.Context, name string, def int) (int, error) {
	raw := c.Query(name)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, shared.NewValidationError("Invalid " + name + " '" + raw + "'.")
	}
	return n, nil
}

// bindOptionalJSON decodes the JSON body into out. It reports false for an
// empty body and writes the error response itself on malformed input.
func (h *BaseHandler) bindOptionalJSON(c *gin.Context, out any) (present bool, ok bool) {
	err := c.ShouldBindJSON(out)
	switch {
	case err == nil:
		return true, true
	case errors.Is(err, io.EOF):
		return false, true
	case middleware.IsValidationError(err):
		middleware.HandleValidationError(c, err)
		return false, false
	}

	var maxBytesErr *http.MaxBytesError
	if errors.As(err, &maxBytesErr) {
		h.HandleError(c, err)
		return false, false
	}
	h.Error(c, http.StatusBadRequest, dto.ErrCodeInvalidJSON, "Request body is not valid JSON.")
	return false, false
}

// formFile opens the named multipart file. A missing form or file yields nil.
// The returned file must be closed by the caller when non-nil.
func formFile(c *gin.Context, field string) (*multipart.FileHeader, multipart.File, error) {
	header, err := c.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
			return nil, nil, nil
		}
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			return nil, nil, err
		}
		return nil, nil, nil
	}
	f, err := header.Open()
	if err != nil {
		return nil, nil, err
	}
	return header, f, nil
}

// uploadedFile normalizes a multipart file into the sales representation
func uploadedFile(c *gin.Context, field string) (*sales.UploadedFile, io.Closer, error) {
	header, f, err := formFile(c, field)
	if err != nil || header == nil {
		return nil, nil, err
	}
	return &sales.UploadedFile{
		FileName:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
		Content:     shared.PayloadFromReader(f),
	}, f, nil
}

const contentTypePDF = "application/pdf"

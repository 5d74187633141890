package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/erp/invoicing/internal/domain/shared"
	"github.com/erp/invoicing/internal/infrastructure/logger"
	"github.com/erp/invoicing/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestContext() (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	return c, w
}

func decodeResponse(t *testing.T, w *httptest.ResponseRecorder) dto.Response {
	t.Helper()
	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestGetRequestID(t *testing.T) {
	t.Run("from context", func(t *testing.T) {
		c, _ := newTestContext()
		c.Set(logger.GinRequestIDKey, "ctx-request-id")
		c.Request.Header.Set(logger.RequestIDHeader, "header-request-id")
		assert.Equal(t, "ctx-request-id", getRequestID(c))
	})

	t.Run("from header when context empty", func(t *testing.T) {
		c, _ := newTestContext()
		c.Request.Header.Set(logger.RequestIDHeader, "header-request-id")
		assert.Equal(t, "header-request-id", getRequestID(c))
	})

	t.Run("empty when not set", func(t *testing.T) {
		c, _ := newTestContext()
		assert.Empty(t, getRequestID(c))
	})
}

func TestBaseHandler_Responses(t *testing.T) {
	h := &BaseHandler{}

	c, w := newTestContext()
	h.Success(c, map[string]string{"k": "v"})
	assert.Equal(t, http.StatusOK, w.Code)
	resp := decodeResponse(t, w)
	assert.True(t, resp.Success)
	assert.Equal(t, map[string]any{"k": "v"}, resp.Data)

	c, w = newTestContext()
	h.Created(c, "x")
	assert.Equal(t, http.StatusCreated, w.Code)

	c, w = newTestContext()
	h.NoContent(c)
	c.Writer.WriteHeaderNow()
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, w.Body.String())
}

func TestBaseHandler_HandleError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
		wantMsg    string
	}{
		{
			name:       "validation",
			err:        shared.NewValidationError("Request body is missing."),
			wantStatus: http.StatusBadRequest,
			wantCode:   dto.ErrCodeValidation,
			wantMsg:    "Request body is missing.",
		},
		{
			name:       "not found",
			err:        shared.NewNotFoundError("Invoice %s was not found.", "x"),
			wantStatus: http.StatusNotFound,
			wantCode:   dto.ErrCodeNotFound,
			wantMsg:    "Invoice x was not found.",
		},
		{
			name:       "asset missing",
			err:        shared.NewDomainError(shared.CodeAssetMissing, "Invoice PDF asset is unavailable."),
			wantStatus: http.StatusInternalServerError,
			wantCode:   dto.ErrCodeAssetMissing,
		},
		{
			name:       "upstream empty",
			err:        shared.NewUpstreamEmptyResponseError("Billing did not return an invoice payload."),
			wantStatus: http.StatusBadGateway,
			wantCode:   dto.ErrCodeUpstreamEmptyResponse,
		},
		{
			name:       "wrapped upstream",
			err:        fmt.Errorf("%w: dial tcp: refused", shared.NewDomainError(shared.CodeUpstream, "Billing request failed.")),
			wantStatus: http.StatusBadGateway,
			wantCode:   dto.ErrCodeUpstream,
			wantMsg:    "Billing request failed.",
		},
		{
			name:       "body too large",
			err:        &http.MaxBytesError{Limit: 10},
			wantStatus: http.StatusRequestEntityTooLarge,
			wantCode:   dto.ErrCodePayloadTooLarge,
		},
		{
			name:       "unknown",
			err:        errors.New("boom"),
			wantStatus: http.StatusInternalServerError,
			wantCode:   dto.ErrCodeInternal,
			wantMsg:    "An unexpected error occurred",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := &BaseHandler{}
			c, w := newTestContext()
			c.Set(logger.GinRequestIDKey, "req-1")

			h.HandleError(c, tt.err)

			assert.Equal(t, tt.wantStatus, w.Code)
			resp := decodeResponse(t, w)
			assert.False(t, resp.Success)
			require.NotNil(t, resp.Error)
			assert.Equal(t, tt.wantCode, resp.Error.Code)
			assert.Equal(t, "req-1", resp.Error.RequestID)
			if tt.wantMsg != "" {
				assert.Equal(t, tt.wantMsg, resp.Error.Message)
			}
		})
	}
}

func TestBaseHandler_HandleErrorNil(t *testing.T) {
	h := &BaseHandler{}
	c, w := newTestContext()
	h.HandleError(c, nil)
	assert.False(t, c.Writer.Written())
	assert.Empty(t, w.Body.String())
}

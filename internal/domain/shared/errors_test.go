package shared

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDomainError_Is(t *testing.T) {
	t.Run("matches sentinel by code", func(t *testing.T) {
		err := NewValidationError("Order must contain at least one line.")
		assert.True(t, errors.Is(err, ErrValidation))
		assert.False(t, errors.Is(err, ErrNotFound))
	})

	t.Run("matches through wrapping", func(t *testing.T) {
		err := fmt.Errorf("get invoice: %w", NewNotFoundError("Invoice '%s' not found.", "abc"))
		assert.True(t, errors.Is(err, ErrNotFound))

		var domainErr *DomainError
		assert.True(t, errors.As(err, &domainErr))
		assert.Equal(t, "Invoice 'abc' not found.", domainErr.Message)
	})

	t.Run("does not match plain errors", func(t *testing.T) {
		assert.False(t, errors.Is(errors.New("NOT_FOUND"), ErrNotFound))
	})
}

func TestNewUpstreamEmptyResponseError(t *testing.T) {
	err := NewUpstreamEmptyResponseError("Billing did not return an invoice payload.")
	assert.Equal(t, CodeUpstreamEmptyResponse, err.Code)
	assert.Equal(t, "Billing did not return an invoice payload.", err.Error())
	assert.ErrorIs(t, err, ErrUpstreamEmptyResponse)
}

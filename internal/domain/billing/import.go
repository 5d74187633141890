package billing

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Bulk import stub parameters
const (
	ImportBytesPerInvoice = 128
	MinImportedInvoices   = 1
	MaxImportedInvoices   = 25
	UnknownImportSource   = "unknown"
)

var importBaseTotal = decimal.RequireFromString("49.99")

// ImportResult summarizes a bulk import
type ImportResult struct {
	ImportedCount int
	FailedCount   int
	Message       string
}

// ImportCount returns how many invoices an archive of the given size yields:
// one per 128 bytes, clamped to [1, 25].
func ImportCount(archiveSize int) int {
	n := archiveSize / ImportBytesPerInvoice
	if n < MinImportedInvoices {
		return MinImportedInvoices
	}
	if n > MaxImportedInvoices {
		return MaxImportedInvoices
	}
	return n
}

// NewImportResult builds the result reported for a successful import
func NewImportResult(imported int, sourceName *string) *ImportResult {
	source := UnknownImportSource
	if sourceName != nil {
		source = *sourceName
	}
	return &ImportResult{
		ImportedCount: imported,
		FailedCount:   0,
		Message:       fmt.Sprintf("Imported %d invoices from '%s'.", imported, source),
	}
}

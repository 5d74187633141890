package storage

import (
	"fmt"
	"io"
	"time"

	"github.com/jung-kurt/gofpdf"
)

// PlaceholderInvoice describes the content of the placeholder invoice PDF
type PlaceholderInvoice struct {
	CompanyName string
	Title       string
	GeneratedAt time.Time
}

// RenderPlaceholderInvoicePDF writes a one-page A4 PDF used as the canonical invoice asset
func RenderPlaceholderInvoicePDF(w io.Writer, inv PlaceholderInvoice) error {
	if inv.Title == "" {
		inv.Title = "Invoice"
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetCreator("invoicing assetgen", false)
	pdf.SetTitle(inv.Title, false)
	pdf.SetCreationDate(inv.GeneratedAt)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 20)
	pdf.Cell(0, 12, inv.Title)
	pdf.Ln(16)

	pdf.SetFont("Arial", "", 12)
	if inv.CompanyName != "" {
		pdf.Cell(0, 8, inv.CompanyName)
		pdf.Ln(10)
	}
	pdf.Cell(0, 8, "This document is a placeholder served for every invoice.")
	pdf.Ln(10)
	if !inv.GeneratedAt.IsZero() {
		pdf.Cell(0, 8, "Generated: "+inv.GeneratedAt.UTC().Format(time.RFC3339))
	}

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("failed to render placeholder pdf: %w", err)
	}
	return nil
}

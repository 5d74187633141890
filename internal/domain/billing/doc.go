// Package billing provides domain models for invoicing.
//
// This package implements the billing bounded context, which is responsible for:
//   - Issuing invoices from ordered line items with exact decimal totals
//   - Querying invoices by customer and status with pagination
//   - Recording file attachments uploaded against invoices
//   - Importing invoices in bulk from archives
//
// Key Aggregates:
//   - Invoice: Immutable once issued; its total is fixed at creation
//   - Attachment: Metadata for a file uploaded against an invoice
//
// Value Objects:
//   - InvoiceLine: A quantity and unit price priced into the total
//   - InvoiceListItem: Projection of an invoice used by searches
//   - SearchQuery, ImportResult
//
// The billing domain is consumed by the sales domain only through the
// remote billing contract; it never calls back into sales.
package billing

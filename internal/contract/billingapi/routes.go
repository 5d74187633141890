package billingapi

import (
	"net/http"
	"net/url"
	"strings"
)

// Parameter binding names
const (
	ParamInvoiceID      = "invoiceId"
	HeaderCorrelationID = "X-Correlation-Id"
	QueryCustomerID     = "customerId"
	QueryStatus         = "status"
	QueryPage           = "page"
	QueryPageSize       = "pageSize"
	FormFieldFile       = "file"
)

// Route binds one contract operation to an HTTP verb and path template.
// Path segments starting with ':' are route parameters.
type Route struct {
	Operation string
	Method    string
	Path      string
}

// Contract routes
var (
	RouteGetInvoice              = Route{"GetInvoice", http.MethodGet, "/api/billing/invoices/:invoiceId"}
	RouteGetInvoiceStatus        = Route{"GetInvoiceStatus", http.MethodGet, "/api/billing/invoices/:invoiceId/status"}
	RouteSearchInvoices          = Route{"SearchInvoices", http.MethodGet, "/api/billing/invoices/search"}
	RouteCreateInvoice           = Route{"CreateInvoice", http.MethodPost, "/api/billing/invoices"}
	RouteUploadCompanyLogoBytes  = Route{"UploadCompanyLogoBytes", http.MethodPost, "/api/billing/assets/company-logo/bytes"}
	RouteUploadCompanyLogoStream = Route{"UploadCompanyLogoStream", http.MethodPost, "/api/billing/assets/company-logo/stream"}
	RouteDownloadPdfBytes        = Route{"DownloadInvoicePdfBytes", http.MethodGet, "/api/billing/invoices/:invoiceId/pdf/bytes"}
	RouteDownloadPdfStream       = Route{"DownloadInvoicePdfStream", http.MethodGet, "/api/billing/invoices/:invoiceId/pdf/stream"}
	RouteImportInvoices          = Route{"ImportInvoices", http.MethodPost, "/api/billing/invoices/import"}
	RouteUploadAttachment        = Route{"UploadInvoiceAttachment", http.MethodPost, "/api/billing/invoices/:invoiceId/attachments"}
)

// Routes returns every contract route in declaration order
func Routes() []Route {
	return []Route{
		RouteGetInvoice,
		RouteGetInvoiceStatus,
		RouteSearchInvoices,
		RouteCreateInvoice,
		RouteUploadCompanyLogoBytes,
		RouteUploadCompanyLogoStream,
		RouteDownloadPdfBytes,
		RouteDownloadPdfStream,
		RouteImportInvoices,
		RouteUploadAttachment,
	}
}

// Expand substitutes route parameters into the path template.
// Missing parameters are left as empty segments.
func (r Route) Expand(params map[string]string) string {
	segments := strings.Split(r.Path, "/")
	for i, seg := range segments {
		if strings.HasPrefix(seg, ":") {
			segments[i] = url.PathEscape(params[seg[1:]])
		}
	}
	return strings.Join(segments, "/")
}

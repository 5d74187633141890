// Package billingclient implements the billing contract as an HTTP client.
// Error envelopes returned by the billing service are translated back into
// the same domain errors the server raised.
package billingclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/erp/invoicing/internal/contract/billingapi"
	"github.com/erp/invoicing/internal/domain/billing"
	"github.com/erp/invoicing/internal/domain/shared"
	"github.com/erp/invoicing/internal/infrastructure/logger"
	"github.com/erp/invoicing/internal/interfaces/http/dto"
	"github.com/google/uuid"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
)

// Client calls the billing service over HTTP
type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
	timeout    time.Duration
}

var _ billingapi.API = (*Client)(nil)

// Option is a functional option for configuring Client
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client. Its transport is used as-is.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithTimeout bounds each call. Zero means no timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.timeout = d
	}
}

// New creates a client for the billing service at baseURL
func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid billing base url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("billing base url must be absolute: %q", baseURL)
	}
	u.Path = strings.TrimSuffix(u.Path, "/")

	c := &Client{
		baseURL: u,
		httpClient: &http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.timeout > 0 {
		hc := *c.httpClient
		hc.Timeout = c.timeout
		c.httpClient = &hc
	}
	return c, nil
}

// envelope mirrors dto.Response with the payload left undecoded
type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *dto.ErrorInfo  `json:"error"`
}

// call describes one outbound request
type call struct {
	route       billingapi.Route
	invoiceID   *uuid.UUID
	query       url.Values
	header      http.Header
	body        io.Reader
	contentType string
	streamBody  bool
}

func (c *Client) url(cl call) string {
	params := map[string]string{}
	if cl.invoiceID != nil {
		params[billingapi.ParamInvoiceID] = cl.invoiceID.String()
	}
	u := *c.baseURL
	u.Path = c.baseURL.Path + cl.route.Expand(params)
	if len(cl.query) > 0 {
		u.RawQuery = cl.query.Encode()
	}
	return u.String()
}

// send performs the call and returns the response for any 2xx status.
// Other statuses are decoded into domain errors and the body is closed.
func (c *Client) send(ctx context.Context, cl call) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, cl.route.Method, c.url(cl), cl.body)
	if err != nil {
		return nil, fmt.Errorf("failed to build %s request: %w", cl.route.Operation, err)
	}
	for k, vs := range cl.header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	if cl.contentType != "" {
		req.Header.Set("Content-Type", cl.contentType)
	}
	if cl.streamBody {
		req.ContentLength = -1
	}
	if id := logger.GetRequestID(ctx); id != "" {
		req.Header.Set(logger.RequestIDHeader, id)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		logger.L(ctx).Warn("Billing call failed",
			zap.String("operation", cl.route.Operation),
			zap.Error(err),
		)
		return nil, fmt.Errorf("billing %s failed: %w", cl.route.Operation, err)
	}
	logger.L(ctx).Debug("Billing call completed",
		zap.String("operation", cl.route.Operation),
		zap.Int("status", resp.StatusCode),
		zap.Duration("latency", time.Since(start)),
	)

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return resp, nil
	}
	defer resp.Body.Close()
	return nil, decodeError(cl.route, resp)
}

// decodeError maps a failed response onto the domain error taxonomy
func decodeError(route billingapi.Route, resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))

	var env envelope
	if err := json.Unmarshal(raw, &env); err == nil && env.Error != nil {
		if code := dto.DomainCode(env.Error.Code); code != "" && code != shared.CodeInternal {
			return shared.NewDomainError(code, env.Error.Message)
		}
		return shared.NewDomainError(shared.CodeUpstream,
			fmt.Sprintf("Billing %s failed with status %d: %s", route.Operation, resp.StatusCode, env.Error.Message))
	}

	switch resp.StatusCode {
	case http.StatusBadRequest:
		return shared.NewValidationError(strings.TrimSpace(string(raw)))
	case http.StatusNotFound:
		return shared.NewNotFoundError("Billing %s returned not found.", route.Operation)
	}
	return shared.NewDomainError(shared.CodeUpstream,
		fmt.Sprintf("Billing %s failed with status %d.", route.Operation, resp.StatusCode))
}

// doJSON performs the call and decodes the envelope payload into out.
// It reports false when the payload is absent.
func (c *Client) doJSON(ctx context.Context, cl call, out any) (bool, error) {
	resp, err := c.send(ctx, cl)
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return false, fmt.Errorf("failed to read %s response: %w", cl.route.Operation, err)
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return false, nil
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return false, fmt.Errorf("failed to decode %s response: %w", cl.route.Operation, err)
	}
	if len(env.Data) == 0 || bytes.Equal(env.Data, []byte("null")) {
		return false, nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return false, fmt.Errorf("failed to decode %s payload: %w", cl.route.Operation, err)
	}
	return true, nil
}

// doNoContent performs the call and discards any body
func (c *Client) doNoContent(ctx context.Context, cl call) error {
	resp, err := c.send(ctx, cl)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

func jsonBody(v any) (io.Reader, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}
	return bytes.NewReader(data), nil
}

// GetInvoice fetches one invoice
func (c *Client) GetInvoice(ctx context.Context, invoiceID uuid.UUID) (*billingapi.InvoiceDTO, error) {
	var out billingapi.InvoiceDTO
	ok, err := c.doJSON(ctx, call{route: billingapi.RouteGetInvoice, invoiceID: &invoiceID}, &out)
	if err != nil || !ok {
		return nil, err
	}
	return &out, nil
}

// GetInvoiceStatus fetches the status line, echoing correlationID
func (c *Client) GetInvoiceStatus(ctx context.Context, invoiceID uuid.UUID, correlationID string) (string, error) {
	header := http.Header{}
	if correlationID != "" {
		header.Set(billingapi.HeaderCorrelationID, correlationID)
	}
	var out string
	_, err := c.doJSON(ctx, call{
		route:     billingapi.RouteGetInvoiceStatus,
		invoiceID: &invoiceID,
		header:    header,
	}, &out)
	return out, err
}

// SearchInvoices runs a filtered, paged search
func (c *Client) SearchInvoices(ctx context.Context, query billingapi.InvoiceSearchQuery) (*billingapi.PagedResult[billingapi.InvoiceListItemDTO], error) {
	values := url.Values{}
	if query.CustomerID != nil {
		values.Set(billingapi.QueryCustomerID, query.CustomerID.String())
	}
	if query.Status != nil {
		values.Set(billingapi.QueryStatus, query.Status.String())
	}
	values.Set(billingapi.QueryPage, strconv.Itoa(query.Page))
	values.Set(billingapi.QueryPageSize, strconv.Itoa(query.PageSize))

	var out billingapi.PagedResult[billingapi.InvoiceListItemDTO]
	ok, err := c.doJSON(ctx, call{route: billingapi.RouteSearchInvoices, query: values}, &out)
	if err != nil || !ok {
		return nil, err
	}
	return &out, nil
}

// CreateInvoice asks billing to issue an invoice
func (c *Client) CreateInvoice(ctx context.Context, req *billingapi.CreateInvoiceRequest) (*billingapi.InvoiceDTO, error) {
	body, err := jsonBody(req)
	if err != nil {
		return nil, err
	}
	var out billingapi.InvoiceDTO
	ok, err := c.doJSON(ctx, call{
		route:       billingapi.RouteCreateInvoice,
		body:        body,
		contentType: "application/json",
	}, &out)
	if err != nil || !ok {
		return nil, err
	}
	return &out, nil
}

// UploadCompanyLogoBytes sends the logo as a single buffered body
func (c *Client) UploadCompanyLogoBytes(ctx context.Context, logo []byte) error {
	return c.doNoContent(ctx, call{
		route:       billingapi.RouteUploadCompanyLogoBytes,
		body:        bytes.NewReader(logo),
		contentType: "application/octet-stream",
	})
}

// UploadCompanyLogoStream sends the logo with chunked transfer encoding
func (c *Client) UploadCompanyLogoStream(ctx context.Context, logo io.Reader) error {
	if logo == nil {
		logo = http.NoBody
	}
	return c.doNoContent(ctx, call{
		route:       billingapi.RouteUploadCompanyLogoStream,
		body:        logo,
		contentType: "application/octet-stream",
		streamBody:  true,
	})
}

// DownloadInvoicePdfBytes reads the whole PDF into memory.
// An empty body is reported as a nil slice.
func (c *Client) DownloadInvoicePdfBytes(ctx context.Context, invoiceID uuid.UUID) ([]byte, error) {
	resp, err := c.send(ctx, call{route: billingapi.RouteDownloadPdfBytes, invoiceID: &invoiceID})
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read invoice pdf: %w", err)
	}
	if len(data) == 0 {
		return nil, nil
	}
	return data, nil
}

// DownloadInvoicePdfStream returns the response body unread. The caller closes it.
func (c *Client) DownloadInvoicePdfStream(ctx context.Context, invoiceID uuid.UUID) (io.ReadCloser, error) {
	resp, err := c.send(ctx, call{route: billingapi.RouteDownloadPdfStream, invoiceID: &invoiceID})
	if err != nil {
		return nil, err
	}
	return resp.Body, nil
}

// ImportInvoices sends the archive base64 encoded in a JSON body
func (c *Client) ImportInvoices(ctx context.Context, req *billingapi.BulkImportRequest) (*billingapi.ImportResultDTO, error) {
	body, err := jsonBody(req)
	if err != nil {
		return nil, err
	}
	var out billingapi.ImportResultDTO
	ok, err := c.doJSON(ctx, call{
		route:       billingapi.RouteImportInvoices,
		body:        body,
		contentType: "application/json",
	}, &out)
	if err != nil || !ok {
		return nil, err
	}
	return &out, nil
}

// UploadInvoiceAttachment streams the file as multipart form data
func (c *Client) UploadInvoiceAttachment(ctx context.Context, invoiceID uuid.UUID, upload *billingapi.AttachmentUpload) (*billingapi.AttachmentDTO, error) {
	if upload == nil || upload.Content == nil {
		return nil, shared.NewValidationError("File is missing or empty.")
	}
	content, err := upload.Content.Reader()
	if err != nil {
		return nil, err
	}

	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)
	go func() {
		pw.CloseWithError(writeFilePart(mw, upload, content))
	}()

	var out billingapi.AttachmentDTO
	ok, err := c.doJSON(ctx, call{
		route:       billingapi.RouteUploadAttachment,
		invoiceID:   &invoiceID,
		body:        pr,
		contentType: mw.FormDataContentType(),
		streamBody:  true,
	}, &out)
	// Unblocks the writer when the request ended before the body was consumed.
	_ = pr.CloseWithError(errors.New("request finished"))
	if err != nil || !ok {
		return nil, err
	}
	return &out, nil
}

// writeFilePart writes the upload as the file part. A blank file name would
// turn the part into a plain form value, so the stored default is sent instead.
func writeFilePart(mw *multipart.Writer, upload *billingapi.AttachmentUpload, content io.Reader) error {
	fileName := upload.FileName
	if strings.TrimSpace(fileName) == "" {
		fileName = billing.DefaultAttachmentFileName
	}
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", mime.FormatMediaType("form-data", map[string]string{
		"name":     billingapi.FormFieldFile,
		"filename": fileName,
	}))
	contentType := upload.ContentType
	if strings.TrimSpace(contentType) == "" {
		contentType = billing.DefaultAttachmentContentType
	}
	h.Set("Content-Type", contentType)

	part, err := mw.CreatePart(h)
	if err != nil {
		return err
	}
	if _, err := io.Copy(part, content); err != nil {
		return err
	}
	return mw.Close()
}

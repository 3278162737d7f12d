package order

import (
	"bytes"
	"context"
	"html/template"
	"strconv"
	"strings"

	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/infrastructure/logger"
	"github.com/storefront/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// ErrInvoiceUnavailable is returned when no PDF renderer is configured
var ErrInvoiceUnavailable = shared.NewDomainError("INVOICE_UNAVAILABLE", "Invoice rendering is not configured")

// DocumentRenderer turns an HTML body into a PDF
type DocumentRenderer interface {
	Render(ctx context.Context, title, body string) ([]byte, error)
}

// Invoice is a rendered order invoice
type Invoice struct {
	OrderID  int64
	Filename string
	PDF      []byte
}

// SetInvoiceRenderer installs the PDF renderer used by Invoice
func (s *OrderService) SetInvoiceRenderer(r DocumentRenderer) {
	s.renderer = r
}

var invoiceTemplate = template.Must(template.New("invoice").Funcs(template.FuncMap{
	"upper": strings.ToUpper,
}).Parse(`<style>
body { font-family: Helvetica, Arial, sans-serif; font-size: 12pt; color: #222; }
h1 { font-size: 24pt; margin-bottom: 4pt; }
h2 { font-size: 14pt; margin-top: 18pt; border-bottom: 1px solid #ccc; }
.total { font-size: 14pt; font-weight: bold; margin-top: 18pt; }
</style>
<h1>INVOICE</h1>
<p>Order ID: #{{.ID}}</p>
<p>Date: {{.OrderDate.Format "2006-01-02"}}</p>
<h2>Customer Details:</h2>
<p>Name: {{.CustomerName}}</p>
<p>Email: {{.CustomerEmail}}</p>
<h2>Order Details:</h2>
<p>Product: {{.ProductName}}</p>
<p>Quantity: {{.Quantity}}</p>
<p>Unit Price: ₹{{.UnitPrice.StringFixed 2}}</p>
<p>Payment: {{upper .PaymentMethod}}</p>
<p>Status: {{upper .Status}}</p>
<p class="total">Total: ₹{{.TotalPrice.StringFixed 2}}</p>
`))

// InvoiceHTML renders the invoice body for an order
func InvoiceHTML(o OrderResponse) (string, error) {
	var buf bytes.Buffer
	if err := invoiceTemplate.Execute(&buf, o); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// Invoice renders a PDF invoice for one of the user's orders. Orders of
// other users are reported as not found.
func (s *OrderService) Invoice(ctx context.Context, userID, orderID int64) (*Invoice, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "order", "invoice",
		telemetry.SpanAttrOrderID, orderID,
	)
	defer span.End()

	o, err := s.GetForUser(ctx, userID, orderID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	if s.renderer == nil {
		return nil, ErrInvoiceUnavailable
	}

	body, err := InvoiceHTML(*o)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	title := "Invoice #" + strconv.FormatInt(o.ID, 10)
	pdf, err := s.renderer.Render(ctx, title, body)
	if err != nil {
		telemetry.RecordError(span, err)
		logger.Enrich(ctx, s.logger).Error("Invoice rendering failed", zap.Int64("order_id", orderID), zap.Error(err))
		return nil, err
	}

	return &Invoice{
		OrderID:  o.ID,
		Filename: "invoice_" + strconv.FormatInt(o.ID, 10) + ".pdf",
		PDF:      pdf,
	}, nil
}

package order

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/chiclet/backend/internal/domain/address"
	"github.com/chiclet/backend/internal/domain/identity"
	"github.com/chiclet/backend/internal/domain/order"
	"github.com/chiclet/backend/internal/domain/shared"
	infra "github.com/chiclet/backend/internal/infrastructure/printing"
)

// ErrInvoiceUnavailable is returned when no PDF renderer is configured
var ErrInvoiceUnavailable = shared.NewDomainError("INVOICE_UNAVAILABLE", "Invoice rendering is not available")

// InvoiceArchive stores rendered invoices
type InvoiceArchive interface {
	Upload(ctx context.Context, key string, data []byte, contentType string) error
}

// InvoiceSettings configures printed invoices
type InvoiceSettings struct {
	StoreName    string
	StoreAddress string
	Locale       string
	Timeout      time.Duration
}

// Invoice is a rendered invoice document
type Invoice struct {
	FileName  string
	PDF       []byte
	PageCount int
}

// InvoiceService renders order invoices as PDF
type InvoiceService struct {
	orders    order.Repository
	users     identity.UserRepository
	addresses address.Repository
	engine    *infra.TemplateEngine
	renderer  infra.PDFRenderer
	archive   InvoiceArchive
	settings  InvoiceSettings
	logger    *zap.Logger
}

// NewInvoiceService creates an invoice service. renderer may be nil, in which
// case Render returns ErrInvoiceUnavailable. archive is optional.
func NewInvoiceService(
	orders order.Repository,
	users identity.UserRepository,
	addresses address.Repository,
	engine *infra.TemplateEngine,
	renderer infra.PDFRenderer,
	archive InvoiceArchive,
	settings InvoiceSettings,
	logger *zap.Logger,
) *InvoiceService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if settings.Locale == "" {
		settings.Locale = "en-IN"
	}
	return &InvoiceService{
		orders:    orders,
		users:     users,
		addresses: addresses,
		engine:    engine,
		renderer:  renderer,
		archive:   archive,
		settings:  settings,
		logger:    logger,
	}
}

// RenderHTML builds the invoice document of an order
func (s *InvoiceService) RenderHTML(ctx context.Context, orderID string) (string, error) {
	o, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return "", err
	}
	data, err := s.invoiceData(ctx, o)
	if err != nil {
		return "", err
	}
	return s.engine.RenderInvoice(data)
}

// Render produces the PDF invoice of an order and archives it when an archive is set
func (s *InvoiceService) Render(ctx context.Context, orderID string) (*Invoice, error) {
	if s.renderer == nil {
		return nil, ErrInvoiceUnavailable
	}

	html, err := s.RenderHTML(ctx, orderID)
	if err != nil {
		return nil, err
	}

	result, err := s.renderer.Render(ctx, &infra.RenderRequest{
		HTML:      html,
		PaperSize: infra.PaperSizeA4,
		Margins:   infra.DefaultMargins(),
		Title:     fmt.Sprintf("Invoice %s", orderID),
		Timeout:   s.settings.Timeout,
	})
	if err != nil {
		s.logger.Error("Invoice rendering failed", zap.String("order_id", orderID), zap.Error(err))
		return nil, fmt.Errorf("render invoice %s: %w", orderID, err)
	}

	if s.archive != nil {
		key := fmt.Sprintf("invoices/%s.pdf", orderID)
		if err := s.archive.Upload(ctx, key, result.PDFData, "application/pdf"); err != nil {
			s.logger.Warn("Failed to archive invoice", zap.String("key", key), zap.Error(err))
		}
	}

	s.logger.Info("Invoice rendered",
		zap.String("order_id", orderID),
		zap.Int("pages", result.PageCount),
		zap.Duration("duration", result.RenderDuration),
	)

	return &Invoice{
		FileName:  infra.InvoiceFileName(orderID),
		PDF:       result.PDFData,
		PageCount: result.PageCount,
	}, nil
}

func (s *InvoiceService) invoiceData(ctx context.Context, o *order.Order) (*infra.InvoiceData, error) {
	data := &infra.InvoiceData{
		StoreName:        s.settings.StoreName,
		StoreAddress:     s.settings.StoreAddress,
		OrderID:          o.ID,
		IssuedAt:         o.CreatedAt,
		Status:           string(o.Status),
		PaymentStatus:    string(o.PaymentStatus),
		Total:            o.Total,
		Currency:         o.Currency,
		TrackingNumber:   o.TrackingNumber,
		PaymentReference: o.GatewayPaymentID,
		Locale:           s.settings.Locale,
		Items:            make([]infra.InvoiceLine, 0, len(o.Items)),
	}
	for _, it := range o.Items {
		data.Items = append(data.Items, infra.InvoiceLine{
			Name:      it.Name,
			Color:     it.Color,
			Quantity:  it.Quantity,
			UnitPrice: it.Price,
			Subtotal:  it.Subtotal(),
		})
	}

	user, err := s.users.FindByID(ctx, o.UserID)
	switch {
	case err == nil:
		data.CustomerName = user.Name
		data.CustomerEmail = user.Email
	case !isNotFound(err):
		return nil, err
	}

	addr, err := s.addresses.FindByID(ctx, o.UserID, o.AddressID)
	switch {
	case err == nil:
		data.ShipTo = shipTo(addr)
		if data.CustomerName == "" {
			data.CustomerName = addr.Name
		}
	case !isNotFound(err):
		return nil, err
	}

	return data, nil
}

func shipTo(a *address.Address) []string {
	lines := []string{a.Name, a.Street, fmt.Sprintf("%s, %s %s", a.City, a.State, a.Zip), a.Country}
	if a.Phone != "" {
		lines = append(lines, a.Phone)
	}
	return lines
}

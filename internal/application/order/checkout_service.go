// Package order holds checkout and order management use cases.
package order

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/chiclet/backend/internal/domain/address"
	"github.com/chiclet/backend/internal/domain/cart"
	"github.com/chiclet/backend/internal/domain/order"
	"github.com/chiclet/backend/internal/domain/payment"
	"github.com/chiclet/backend/internal/domain/shared"
)

var (
	ErrEmptyCart          = shared.NewDomainError("EMPTY_CART", "Your cart is empty")
	ErrAddressNotFound    = shared.NewDomainError("ADDRESS_NOT_FOUND", "Shipping address not found")
	ErrPaymentUnavailable = shared.NewDomainError("PAYMENT_UNAVAILABLE", "Online payment is not available")
	ErrPaymentGateway     = shared.NewDomainError("PAYMENT_GATEWAY_ERROR", "Payment gateway request failed")
	ErrPaymentNotVerified = shared.NewDomainError("PAYMENT_VERIFICATION_FAILED", "Payment could not be verified")
	ErrOrderIDTaken       = shared.NewDomainError("ORDER_ID_TAKEN", "Order ID is already in use")
	ErrPaymentUsed        = shared.NewDomainError("PAYMENT_ALREADY_USED", "This payment has already been used for another order")
	ErrAmountMismatch     = shared.NewDomainError("PAYMENT_AMOUNT_MISMATCH", "Your cart changed after payment started; please check out again")
)

// CheckoutService turns a cart into a paid order
type CheckoutService struct {
	items     cart.ItemRepository
	addresses address.Repository
	orders    order.Repository
	gateway   payment.Gateway
	tx        shared.TxManager
	events    shared.EventPublisher
	currency  string
	logger    *zap.Logger
}

// CheckoutDeps groups the collaborators of CheckoutService
type CheckoutDeps struct {
	Items     cart.ItemRepository
	Addresses address.Repository
	Orders    order.Repository
	Gateway   payment.Gateway // nil disables checkout
	Tx        shared.TxManager
	Events    shared.EventPublisher
	Currency  string
	Logger    *zap.Logger
}

// NewCheckoutService creates a checkout service
func NewCheckoutService(deps CheckoutDeps) *CheckoutService {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if deps.Currency == "" {
		deps.Currency = shared.DefaultCurrency
	}
	return &CheckoutService{
		items:     deps.Items,
		addresses: deps.Addresses,
		orders:    deps.Orders,
		gateway:   deps.Gateway,
		tx:        deps.Tx,
		events:    deps.Events,
		currency:  strings.ToUpper(deps.Currency),
		logger:    deps.Logger,
	}
}

// CreatePaymentOrder prices the caller's cart and opens a gateway order for it
func (s *CheckoutService) CreatePaymentOrder(ctx context.Context, userID uuid.UUID, req CreatePaymentOrderRequest) (*PaymentOrderResponse, error) {
	if s.gateway == nil {
		return nil, ErrPaymentUnavailable
	}

	rows, err := s.items.FindByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	c := cart.NewCart(userID, rows)
	if c.IsEmpty() {
		return nil, ErrEmptyCart
	}
	if err := s.checkAddress(ctx, userID, req.AddressID); err != nil {
		return nil, err
	}

	amount := shared.NewMoney(c.Total(), s.currency)
	gwOrder, err := s.gateway.CreateOrder(ctx, payment.CreateOrderRequest{
		Amount:  amount,
		Receipt: receiptFor(userID),
		Notes: map[string]string{
			"user_id":    userID.String(),
			"address_id": req.AddressID.String(),
		},
	})
	if err != nil {
		return nil, s.gatewayError(err)
	}

	s.logger.Info("Payment order created",
		zap.String("user_id", userID.String()),
		zap.String("gateway_order_id", gwOrder.ID),
		zap.Int64("amount", gwOrder.Amount),
	)

	return &PaymentOrderResponse{
		GatewayOrderID: gwOrder.ID,
		Amount:         gwOrder.Amount,
		Currency:       gwOrder.Currency,
		KeyID:          s.gateway.KeyID(),
		Total:          amount.Amount,
		ItemCount:      c.ItemCount(),
	}, nil
}

// ConfirmOrder verifies the checkout signature, then creates the order and
// clears the cart in one transaction. A gateway order backs at most one
// order: retrying returns the order already placed, and the cart must still
// total what the gateway order was opened for.
func (s *CheckoutService) ConfirmOrder(ctx context.Context, userID uuid.UUID, req ConfirmOrderRequest) (*OrderResponse, error) {
	if s.gateway == nil {
		return nil, ErrPaymentUnavailable
	}
	if req.OrderID != "" && !order.ValidOrderID(req.OrderID) {
		return nil, shared.NewDomainError("INVALID_ORDER_ID", "Order ID must be 6-64 letters, digits, '-' or '_'")
	}

	if err := s.gateway.VerifyCheckout(req.GatewayOrderID, req.GatewayPaymentID, req.Signature); err != nil {
		s.logger.Warn("Checkout signature rejected",
			zap.String("user_id", userID.String()),
			zap.String("gateway_order_id", req.GatewayOrderID),
			zap.Error(err),
		)
		if errors.Is(err, payment.ErrGatewayNotConfigured) {
			return nil, ErrPaymentUnavailable
		}
		return nil, ErrPaymentNotVerified
	}

	if existing, err := s.findPlaced(ctx, userID, req); err != nil || existing != nil {
		if err != nil {
			return nil, err
		}
		resp := ToOrderResponse(existing)
		return &resp, nil
	}

	if err := s.checkAddress(ctx, userID, req.AddressID); err != nil {
		return nil, err
	}

	quoted, err := s.gateway.FetchOrder(ctx, req.GatewayOrderID)
	if err != nil {
		return nil, s.gatewayError(err)
	}

	var placed *order.Order
	err = s.tx.WithinTransaction(ctx, func(txCtx context.Context) error {
		rows, err := s.items.FindByUser(txCtx, userID)
		if err != nil {
			return err
		}
		if len(rows) == 0 {
			return ErrEmptyCart
		}

		o, err := order.NewOrder(req.OrderID, userID, req.AddressID, s.currency, linesFrom(rows))
		if err != nil {
			return err
		}
		if err := s.checkAmount(userID, o, quoted); err != nil {
			return err
		}
		if err := o.MarkPaid(req.GatewayOrderID, req.GatewayPaymentID); err != nil {
			return err
		}
		if err := s.orders.Create(txCtx, o); err != nil {
			return err
		}
		if err := s.items.ClearForUser(txCtx, userID); err != nil {
			return fmt.Errorf("clear cart: %w", err)
		}
		placed = o
		return nil
	})
	if err != nil {
		if errors.Is(err, shared.ErrAlreadyExists) {
			// a concurrent retry won the insert
			existing, findErr := s.findPlaced(ctx, userID, req)
			if findErr != nil {
				return nil, findErr
			}
			if existing != nil {
				resp := ToOrderResponse(existing)
				return &resp, nil
			}
			return nil, ErrOrderIDTaken
		}
		return nil, err
	}

	s.publish(ctx, placed)

	s.logger.Info("Order placed",
		zap.String("order_id", placed.ID),
		zap.String("user_id", userID.String()),
		zap.String("total", placed.Total.String()),
		zap.String("gateway_payment_id", req.GatewayPaymentID),
	)

	resp := ToOrderResponse(placed)
	return &resp, nil
}

// findPlaced returns the caller's order for this gateway order if one exists.
// A gateway order already spent on a different order id, or a client order
// id already taken, is refused.
func (s *CheckoutService) findPlaced(ctx context.Context, userID uuid.UUID, req ConfirmOrderRequest) (*order.Order, error) {
	existing, err := s.orders.FindByGatewayOrderID(ctx, req.GatewayOrderID)
	switch {
	case err == nil:
		if !existing.IsOwnedBy(userID) || (req.OrderID != "" && existing.ID != req.OrderID) {
			s.logger.Warn("Gateway order replayed for another order",
				zap.String("user_id", userID.String()),
				zap.String("gateway_order_id", req.GatewayOrderID),
				zap.String("placed_order_id", existing.ID),
				zap.String("requested_order_id", req.OrderID),
			)
			return nil, ErrPaymentUsed
		}
		return existing, nil
	case !errors.Is(err, shared.ErrNotFound):
		return nil, err
	}

	if req.OrderID == "" {
		return nil, nil
	}
	taken, err := s.orders.ExistsByID(ctx, req.OrderID)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, ErrOrderIDTaken
	}
	return nil, nil
}

// checkAmount refuses an order whose total differs from the gateway quote
func (s *CheckoutService) checkAmount(userID uuid.UUID, o *order.Order, quoted *payment.GatewayOrder) error {
	amount := shared.NewMoney(o.Total, s.currency)
	sameCurrency := quoted.Currency == "" || strings.EqualFold(quoted.Currency, amount.Currency)
	if amount.MinorUnits() == quoted.Amount && sameCurrency {
		return nil
	}
	s.logger.Warn("Cart total differs from the paid gateway order",
		zap.String("user_id", userID.String()),
		zap.String("gateway_order_id", quoted.ID),
		zap.Int64("cart_amount", amount.MinorUnits()),
		zap.String("cart_currency", amount.Currency),
		zap.Int64("gateway_amount", quoted.Amount),
		zap.String("gateway_currency", quoted.Currency),
	)
	return ErrAmountMismatch
}

func (s *CheckoutService) checkAddress(ctx context.Context, userID, addressID uuid.UUID) error {
	if _, err := s.addresses.FindByID(ctx, userID, addressID); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return ErrAddressNotFound
		}
		return err
	}
	return nil
}

func (s *CheckoutService) gatewayError(err error) error {
	switch {
	case errors.Is(err, payment.ErrGatewayNotConfigured):
		return ErrPaymentUnavailable
	case errors.Is(err, payment.ErrGatewayRequestFailed):
		s.logger.Error("Payment gateway request failed", zap.Error(err))
		return ErrPaymentGateway
	}
	return err
}

func (s *CheckoutService) publish(ctx context.Context, o *order.Order) {
	if s.events == nil {
		return
	}
	events := o.GetDomainEvents()
	o.ClearDomainEvents()
	if err := s.events.Publish(ctx, events...); err != nil {
		s.logger.Warn("Failed to publish order events", zap.String("order_id", o.ID), zap.Error(err))
	}
}

func linesFrom(rows []cart.Item) []order.LineInput {
	lines := make([]order.LineInput, 0, len(rows))
	for _, r := range rows {
		lines = append(lines, order.LineInput{
			ProductID: r.ProductID,
			Name:      r.Name,
			Color:     r.Color,
			Price:     r.Price,
			Quantity:  r.Quantity,
			ImageURL:  r.ImageURL,
		})
	}
	return lines
}

// receiptFor builds a gateway receipt id (at most 40 characters)
func receiptFor(userID uuid.UUID) string {
	return "rcpt_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:20] + "_" + userID.String()[:8]
}

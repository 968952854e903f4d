package order

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/chiclet/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var orderIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{6,64}$`)

// Order is a placed customer order. Its identifier is a string so clients can
// generate it before payment completes.
type Order struct {
	shared.EventRecorder `gorm:"-"`
	ID                   string          `gorm:"type:varchar(64);primaryKey"`
	UserID               uuid.UUID       `gorm:"type:uuid;not null;index"`
	AddressID            uuid.UUID       `gorm:"type:uuid;not null"`
	Total                decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Currency             string          `gorm:"type:varchar(3);not null;default:'INR'"`
	Status               Status          `gorm:"type:varchar(20);not null;index"`
	PaymentStatus        PaymentStatus   `gorm:"type:varchar(20);not null;index"`
	GatewayOrderID       string          `gorm:"type:varchar(64);index:idx_orders_gateway_order_id,unique,where:gateway_order_id <> ''"`
	GatewayPaymentID     string          `gorm:"type:varchar(64);index"`
	TrackingNumber       string          `gorm:"type:varchar(100)"`
	CancelReason         string          `gorm:"type:varchar(500)"`
	CancelledAt          *time.Time
	Version              int             `gorm:"not null;default:1"`
	CreatedAt            time.Time       `gorm:"not null;index"`
	UpdatedAt            time.Time       `gorm:"not null"`
	Items                []Item          `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	Timeline             []TimelineEvent `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
}

// TableName returns the table name for GORM
func (Order) TableName() string {
	return "orders"
}

// Item is an order line. Product data is copied at order time.
type Item struct {
	ID        uuid.UUID       `gorm:"type:uuid;primaryKey"`
	OrderID   string          `gorm:"type:varchar(64);not null;index"`
	ProductID uuid.UUID       `gorm:"type:uuid;not null;index"`
	Name      string          `gorm:"type:varchar(200);not null"`
	Color     string          `gorm:"type:varchar(50)"`
	Price     decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Quantity  int             `gorm:"not null"`
	ImageURL  string          `gorm:"type:varchar(1000)"`
	CreatedAt time.Time       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (Item) TableName() string {
	return "order_items"
}

// Subtotal returns price * quantity
func (i Item) Subtotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// TimelineEvent is an append-only record of an order's status at a point in time
type TimelineEvent struct {
	ID        uuid.UUID     `gorm:"type:uuid;primaryKey"`
	OrderID   string        `gorm:"type:varchar(64);not null;index"`
	Position  int           `gorm:"not null"`
	Label     TimelineLabel `gorm:"column:status;type:varchar(30);not null"`
	Note      string        `gorm:"type:varchar(500)"`
	CreatedAt time.Time     `gorm:"not null"`
}

// TableName returns the table name for GORM
func (TimelineEvent) TableName() string {
	return "order_timeline"
}

// LineInput describes one line of a new order
type LineInput struct {
	ProductID uuid.UUID
	Name      string
	Color     string
	Price     decimal.Decimal
	Quantity  int
	ImageURL  string
}

// NewOrder creates an order in processing status with a "placed" timeline event.
// An empty id generates one.
func NewOrder(id string, userID, addressID uuid.UUID, currency string, lines []LineInput) (*Order, error) {
	if id == "" {
		id = GenerateOrderID(time.Now())
	}
	if !ValidOrderID(id) {
		return nil, shared.NewDomainError("INVALID_ORDER_ID", "Order ID must be 6-64 letters, digits, '-' or '_'")
	}
	if userID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_USER", "User ID cannot be empty")
	}
	if addressID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_ADDRESS", "Address is required")
	}
	if len(lines) == 0 {
		return nil, shared.NewDomainError("EMPTY_ORDER", "Order must contain at least one item")
	}
	if currency == "" {
		currency = shared.DefaultCurrency
	}

	now := time.Now()
	o := &Order{
		ID:            id,
		UserID:        userID,
		AddressID:     addressID,
		Currency:      strings.ToUpper(currency),
		Status:        StatusProcessing,
		PaymentStatus: PaymentStatusPending,
		Version:       1,
		CreatedAt:     now,
		UpdatedAt:     now,
		Items:         make([]Item, 0, len(lines)),
	}

	for _, l := range lines {
		if l.ProductID == uuid.Nil {
			return nil, shared.NewDomainError("INVALID_PRODUCT", "Product ID cannot be empty")
		}
		if l.Quantity <= 0 {
			return nil, shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
		}
		if !l.Price.IsPositive() {
			return nil, shared.NewDomainError("INVALID_PRICE", "Price must be greater than zero")
		}
		o.Items = append(o.Items, Item{
			ID:        uuid.New(),
			OrderID:   id,
			ProductID: l.ProductID,
			Name:      l.Name,
			Color:     l.Color,
			Price:     l.Price,
			Quantity:  l.Quantity,
			ImageURL:  l.ImageURL,
			CreatedAt: now,
		})
	}
	o.recalculateTotal()
	o.appendTimeline(TimelinePlaced, "")

	o.AddDomainEvent(NewOrderPlacedEvent(o))

	return o, nil
}

// MarkPaid records a successful payment
func (o *Order) MarkPaid(gatewayOrderID, gatewayPaymentID string) error {
	if o.PaymentStatus == PaymentStatusPaid {
		return nil
	}
	if o.PaymentStatus == PaymentStatusRefunded {
		return shared.NewDomainError("INVALID_STATE", "Cannot mark a refunded order as paid")
	}
	if gatewayOrderID != "" {
		o.GatewayOrderID = gatewayOrderID
	}
	if gatewayPaymentID != "" {
		o.GatewayPaymentID = gatewayPaymentID
	}
	o.PaymentStatus = PaymentStatusPaid
	o.touch()
	o.appendTimeline(TimelinePaid, gatewayPaymentID)
	o.AddDomainEvent(NewOrderPaymentStatusChangedEvent(o))
	return nil
}

// MarkPaymentFailed records a failed payment attempt. A paid order stays paid.
func (o *Order) MarkPaymentFailed(gatewayPaymentID string) error {
	if o.PaymentStatus == PaymentStatusPaid || o.PaymentStatus == PaymentStatusRefunded {
		return nil
	}
	if o.PaymentStatus == PaymentStatusFailed {
		return nil
	}
	o.PaymentStatus = PaymentStatusFailed
	o.touch()
	o.appendTimeline(TimelineFailed, gatewayPaymentID)
	o.AddDomainEvent(NewOrderPaymentStatusChangedEvent(o))
	return nil
}

// Cancel cancels the order. Only processing orders can be cancelled.
func (o *Order) Cancel(reason string) error {
	if !o.Status.CanTransitionTo(StatusCancelled) {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot cancel order in %s status", o.Status))
	}
	reason = strings.TrimSpace(reason)
	if len(reason) > 500 {
		return shared.NewDomainError("INVALID_REASON", "Cancel reason cannot exceed 500 characters")
	}

	now := time.Now()
	o.Status = StatusCancelled
	o.CancelledAt = &now
	o.CancelReason = reason
	o.touch()
	o.appendTimeline(TimelineCancelled, reason)

	o.AddDomainEvent(NewOrderCancelledEvent(o))

	return nil
}

// Ship moves a processing order to shipped with a tracking number
func (o *Order) Ship(trackingNumber string) error {
	trackingNumber = strings.TrimSpace(trackingNumber)
	if trackingNumber == "" {
		return shared.NewDomainError("TRACKING_REQUIRED", "Tracking number is required to ship an order")
	}
	if len(trackingNumber) > 100 {
		return shared.NewDomainError("INVALID_TRACKING", "Tracking number cannot exceed 100 characters")
	}
	if err := o.transition(StatusShipped); err != nil {
		return err
	}
	o.TrackingNumber = trackingNumber
	o.appendTimeline(TimelineShipped, trackingNumber)
	o.AddDomainEvent(NewOrderStatusChangedEvent(o, StatusProcessing))
	return nil
}

// Deliver marks a shipped order as delivered
func (o *Order) Deliver() error {
	if err := o.transition(StatusDelivered); err != nil {
		return err
	}
	o.appendTimeline(TimelineDelivered, "")
	o.AddDomainEvent(NewOrderStatusChangedEvent(o, StatusShipped))
	return nil
}

// UpdateStatus applies an admin-requested status change along the canonical transitions
func (o *Order) UpdateStatus(target Status, trackingNumber, note string) error {
	if !target.IsValid() {
		return shared.NewDomainError("INVALID_STATUS", fmt.Sprintf("Unknown order status %q", target))
	}
	switch target {
	case StatusShipped:
		return o.Ship(trackingNumber)
	case StatusDelivered:
		return o.Deliver()
	case StatusCancelled:
		return o.Cancel(note)
	default:
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot move order from %s to %s", o.Status, target))
	}
}

// SetTrackingNumber corrects the tracking number of a shipped order
func (o *Order) SetTrackingNumber(trackingNumber string) error {
	if o.Status != StatusShipped {
		return shared.NewDomainError("INVALID_STATE", "Tracking number can only be changed on shipped orders")
	}
	trackingNumber = strings.TrimSpace(trackingNumber)
	if trackingNumber == "" || len(trackingNumber) > 100 {
		return shared.NewDomainError("INVALID_TRACKING", "Tracking number must be 1-100 characters")
	}
	o.TrackingNumber = trackingNumber
	o.touch()
	return nil
}

// ItemCount sums quantities across lines
func (o *Order) ItemCount() int {
	n := 0
	for _, item := range o.Items {
		n += item.Quantity
	}
	return n
}

// IsOwnedBy reports whether userID placed the order
func (o *Order) IsOwnedBy(userID uuid.UUID) bool {
	return o.UserID == userID
}

// Money returns the order total as Money
func (o *Order) Money() shared.Money {
	return shared.NewMoney(o.Total, o.Currency)
}

func (o *Order) transition(target Status) error {
	if !o.Status.CanTransitionTo(target) {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot move order from %s to %s", o.Status, target))
	}
	o.Status = target
	o.touch()
	return nil
}

func (o *Order) touch() {
	o.UpdatedAt = time.Now()
}

func (o *Order) appendTimeline(label TimelineLabel, note string) {
	o.Timeline = append(o.Timeline, TimelineEvent{
		ID:        uuid.New(),
		OrderID:   o.ID,
		Position:  len(o.Timeline) + 1,
		Label:     label,
		Note:      note,
		CreatedAt: time.Now(),
	})
}

func (o *Order) recalculateTotal() {
	total := decimal.Zero
	for _, item := range o.Items {
		total = total.Add(item.Subtotal())
	}
	o.Total = total.Round(2)
}

// ValidOrderID checks the format of a client-supplied order id
func ValidOrderID(id string) bool {
	return orderIDPattern.MatchString(id)
}

// GenerateOrderID returns an id of the form ORD-YYYYMMDD-XXXXXXXX
func GenerateOrderID(now time.Time) string {
	b := make([]byte, 4)
	if _, err := rand.Read(b); err != nil {
		copy(b, uuid.New().String())
	}
	return fmt.Sprintf("ORD-%s-%s", now.Format("20060102"), strings.ToUpper(hex.EncodeToString(b)))
}

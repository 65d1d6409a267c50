package order

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	StatusPending   OrderStatus = "PENDING"
	StatusPaid      OrderStatus = "PAID"
	StatusShipped   OrderStatus = "SHIPPED"
	StatusDelivered OrderStatus = "DELIVERED"
	StatusCancelled OrderStatus = "CANCELLED"
)

// orderTransitions is the full order state machine. Any edge not listed is
// rejected at the boundary, independent of business logic.
var orderTransitions = map[OrderStatus][]OrderStatus{
	StatusPending:   {StatusPaid, StatusCancelled},
	StatusPaid:      {StatusShipped, StatusCancelled},
	StatusShipped:   {StatusDelivered},
	StatusDelivered: {},
	StatusCancelled: {},
}

func (s OrderStatus) CanTransition(to OrderStatus) bool {
	for _, next := range orderTransitions[s] {
		if next == to {
			return true
		}
	}
	return false
}

// Cancellable reports whether a full or partial cancel is still permitted.
// Once shipped, reversal goes through the return workflow instead.
func (s OrderStatus) Cancellable() bool {
	return s == StatusPending || s == StatusPaid
}

type ItemStatus string

const (
	ItemNormal          ItemStatus = "NORMAL"
	ItemCancelled       ItemStatus = "CANCELLED"
	ItemReturnRequested ItemStatus = "RETURN_REQUESTED"
	ItemReturnApproved  ItemStatus = "RETURN_APPROVED"
	ItemReturned        ItemStatus = "RETURNED"
	ItemReturnRejected  ItemStatus = "RETURN_REJECTED"
)

// itemTransitions is the item state machine. Financial effects of a return
// commit only on the REQUESTED -> APPROVED edge; a rejected request may be
// re-applied.
var itemTransitions = map[ItemStatus][]ItemStatus{
	ItemNormal:          {ItemCancelled, ItemReturnRequested},
	ItemReturnRequested: {ItemReturnApproved, ItemReturnRejected},
	ItemReturnApproved:  {ItemReturned},
	ItemReturnRejected:  {ItemReturnRequested},
	ItemReturned:        {},
	ItemCancelled:       {},
}

func (s ItemStatus) CanTransition(to ItemStatus) bool {
	for _, next := range itemTransitions[s] {
		if next == to {
			return true
		}
	}
	return false
}

type PaymentMethod string

const (
	PaymentCard           PaymentMethod = "CARD"
	PaymentBankTransfer   PaymentMethod = "BANK_TRANSFER"
	PaymentMobilePay      PaymentMethod = "MOBILE_PAY"
	PaymentCashOnDelivery PaymentMethod = "COD"
)

func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentCard, PaymentBankTransfer, PaymentMobilePay, PaymentCashOnDelivery:
		return true
	}
	return false
}

type ReturnReason string

const (
	ReasonDefect      ReturnReason = "DEFECT"
	ReasonWrongItem   ReturnReason = "WRONG_ITEM"
	ReasonChangedMind ReturnReason = "CHANGED_MIND"
	ReasonSizeIssue   ReturnReason = "SIZE_ISSUE"
	ReasonOther       ReturnReason = "OTHER"
)

func (r ReturnReason) Valid() bool {
	switch r {
	case ReasonDefect, ReasonWrongItem, ReasonChangedMind, ReasonSizeIssue, ReasonOther:
		return true
	}
	return false
}

// ReturnWindow is how long after delivery a return may be requested.
const ReturnWindow = 14 * 24 * time.Hour

// Order is one checkout transaction. Monetary fields and earned points are
// snapshotted at creation and never recomputed retroactively; the refunded
// counters only grow, bounded by FinalAmount / UsedPoints.
type Order struct {
	ID              uint
	UserID          uint
	Subtotal        decimal.Decimal
	TierDiscount    decimal.Decimal
	CouponDiscount  decimal.Decimal
	ShippingFee     decimal.Decimal
	FinalAmount     decimal.Decimal
	RefundedAmount  decimal.Decimal
	UsedPoints      int64
	EarnedPoints    int64
	RefundedPoints  int64
	PointsSettled   bool
	CouponID        *uint
	PaymentMethod   PaymentMethod
	ShippingName    string
	ShippingPhone   string
	ShippingAddress string
	Status          OrderStatus
	CreatedAt       time.Time
	PaidAt          *time.Time
	ShippedAt       *time.Time
	DeliveredAt     *time.Time
	CancelledAt     *time.Time
	Items           []OrderItem
}

// RemainingRefundable is what a full cancel would still return; it stays
// correct after prior partial cancels.
func (o *Order) RemainingRefundable() decimal.Decimal {
	return o.FinalAmount.Sub(o.RefundedAmount)
}

func (o *Order) RemainingRefundablePoints() int64 {
	return o.UsedPoints - o.RefundedPoints
}

// OrderItem is one product line. Name, unit price and line subtotal are
// captured at order time. Lines are never deleted; the cancelled/returned/
// pending counters carry the audit trail.
type OrderItem struct {
	ID                    uint
	OrderID               uint
	ProductID             uint
	ProductName           string
	Quantity              int
	UnitPrice             decimal.Decimal
	Subtotal              decimal.Decimal
	CancelledQuantity     int
	ReturnedQuantity      int
	PendingReturnQuantity int
	ReturnedAmount        decimal.Decimal
	Status                ItemStatus
	ReturnReason          *ReturnReason
	RejectReason          *string
	ReturnRequestedAt     *time.Time
	ReturnResolvedAt      *time.Time
}

// RemainingQuantity is what is still held by the customer and not under an
// open return request.
func (i *OrderItem) RemainingQuantity() int {
	return i.Quantity - i.CancelledQuantity - i.ReturnedQuantity - i.PendingReturnQuantity
}

package order

import (
	"context"
	"fmt"

	"mercato-be/internal/events"
	"mercato-be/internal/logger"

	"go.uber.org/zap"
)

// CheckoutInput is the request half of order creation. CartLineIDs empty
// means "everything in the cart".
type CheckoutInput struct {
	PaymentMethod   PaymentMethod
	ShippingName    string
	ShippingPhone   string
	ShippingAddress string
	CouponID        *uint
	UsePoints       int64
	CartLineIDs     []uint
}

type Service interface {
	Checkout(ctx context.Context, userID uint, input CheckoutInput) (*Order, error)
	GetOrder(ctx context.Context, userID, orderID uint, isAdmin bool) (*Order, error)

	Cancel(ctx context.Context, userID, orderID uint) (*Order, error)
	CancelItem(ctx context.Context, userID, orderID, itemID uint, qty int) (*Order, error)
	RequestReturn(ctx context.Context, userID, orderID, itemID uint, qty int, reason ReturnReason) (*Order, error)
	ApproveReturn(ctx context.Context, orderID, itemID uint) (*Order, error)
	RejectReturn(ctx context.Context, orderID, itemID uint, rejectReason string) (*Order, error)

	MarkPaid(ctx context.Context, orderID uint) error
	MarkShipped(ctx context.Context, orderID uint) error
	MarkDelivered(ctx context.Context, orderID uint) error
}

type service struct {
	repo      Repository
	publisher events.Publisher
}

func NewService(repo Repository, publisher events.Publisher) Service {
	return &service{repo: repo, publisher: publisher}
}

// Checkout validates the request, then runs the creation transaction and
// publishes the stock-changed notification once it committed.
func (s *service) Checkout(ctx context.Context, userID uint, input CheckoutInput) (*Order, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "Checkout"),
		zap.Uint("user_id", userID),
		zap.Int("line_count", len(input.CartLineIDs)),
	)

	// Validation happens before any lock is taken.
	if !input.PaymentMethod.Valid() {
		log.Warn("unsupported payment method", zap.String("payment_method", string(input.PaymentMethod)))
		return nil, ErrUnsupportedPaymentMethod
	}
	if input.UsePoints < 0 {
		log.Warn("negative point usage requested", zap.Int64("use_points", input.UsePoints))
		return nil, ErrInvalidPointAmount
	}

	o, productIDs, err := s.repo.CreateOrder(ctx, CreateOrderParams{
		UserID:          userID,
		PaymentMethod:   input.PaymentMethod,
		ShippingName:    input.ShippingName,
		ShippingPhone:   input.ShippingPhone,
		ShippingAddress: input.ShippingAddress,
		CouponID:        input.CouponID,
		UsePoints:       input.UsePoints,
		CartLineIDs:     input.CartLineIDs,
		Actor:           actorUser(userID),
	})
	if err != nil {
		log.Error("checkout failed", zap.Error(err))
		return nil, err
	}

	log.Info("order created",
		zap.Uint("order_id", o.ID),
		zap.String("final_amount", o.FinalAmount.String()),
		zap.Int64("used_points", o.UsedPoints),
	)
	s.notifyStockChanged(ctx, productIDs)

	return o, nil
}

func (s *service) GetOrder(ctx context.Context, userID, orderID uint, isAdmin bool) (*Order, error) {
	o, err := s.repo.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !isAdmin && o.UserID != userID {
		return nil, ErrUnauthorized
	}
	return o, nil
}

func (s *service) Cancel(ctx context.Context, userID, orderID uint) (*Order, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "Cancel"),
		zap.Uint("order_id", orderID),
	)

	o, productIDs, err := s.repo.CancelOrder(ctx, orderID, &userID, actorUser(userID))
	if err != nil {
		log.Warn("cancel failed", zap.Error(err))
		return nil, err
	}

	log.Info("order cancelled", zap.String("refunded_amount", o.RefundedAmount.String()))
	s.notifyStockChanged(ctx, productIDs)

	return o, nil
}

func (s *service) CancelItem(ctx context.Context, userID, orderID, itemID uint, qty int) (*Order, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "CancelItem"),
		zap.Uint("order_id", orderID),
		zap.Uint("item_id", itemID),
		zap.Int("quantity", qty),
	)

	if qty <= 0 {
		log.Warn("invalid quantity")
		return nil, ErrInvalidQuantity
	}

	o, productIDs, err := s.repo.CancelItem(ctx, orderID, itemID, qty, &userID, actorUser(userID))
	if err != nil {
		log.Warn("partial cancel failed", zap.Error(err))
		return nil, err
	}

	log.Info("item cancelled", zap.String("refunded_amount", o.RefundedAmount.String()))
	s.notifyStockChanged(ctx, productIDs)

	return o, nil
}

func (s *service) RequestReturn(ctx context.Context, userID, orderID, itemID uint, qty int, reason ReturnReason) (*Order, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "RequestReturn"),
		zap.Uint("order_id", orderID),
		zap.Uint("item_id", itemID),
	)

	if qty <= 0 {
		log.Warn("invalid quantity", zap.Int("quantity", qty))
		return nil, ErrInvalidQuantity
	}
	if !reason.Valid() {
		log.Warn("invalid return reason", zap.String("reason", string(reason)))
		return nil, ErrInvalidReturnReason
	}

	o, err := s.repo.RequestReturn(ctx, orderID, itemID, userID, qty, reason)
	if err != nil {
		log.Warn("return request failed", zap.Error(err))
		return nil, err
	}

	log.Info("return requested", zap.String("reason", string(reason)))
	return o, nil
}

// ApproveReturn is privileged: the order is looked up by id alone, with no
// ownership check.
func (s *service) ApproveReturn(ctx context.Context, orderID, itemID uint) (*Order, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "ApproveReturn"),
		zap.Uint("order_id", orderID),
		zap.Uint("item_id", itemID),
	)

	o, productIDs, err := s.repo.ApproveReturn(ctx, orderID, itemID, logger.ActorFrom(ctx))
	if err != nil {
		log.Warn("return approval failed", zap.Error(err))
		return nil, err
	}

	log.Info("return approved", zap.String("refunded_amount", o.RefundedAmount.String()))
	s.notifyStockChanged(ctx, productIDs)

	return o, nil
}

func (s *service) RejectReturn(ctx context.Context, orderID, itemID uint, rejectReason string) (*Order, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "RejectReturn"),
		zap.Uint("order_id", orderID),
		zap.Uint("item_id", itemID),
	)

	o, err := s.repo.RejectReturn(ctx, orderID, itemID, rejectReason, logger.ActorFrom(ctx))
	if err != nil {
		log.Warn("return rejection failed", zap.Error(err))
		return nil, err
	}

	log.Info("return rejected")
	return o, nil
}

func (s *service) MarkPaid(ctx context.Context, orderID uint) error {
	return s.repo.MarkPaid(ctx, orderID)
}

func (s *service) MarkShipped(ctx context.Context, orderID uint) error {
	return s.repo.MarkShipped(ctx, orderID)
}

func (s *service) MarkDelivered(ctx context.Context, orderID uint) error {
	return s.repo.MarkDelivered(ctx, orderID)
}

// notifyStockChanged publishes after the transaction committed. Delivery is
// at-least-once; a publish failure is logged, not surfaced, because the
// order mutation already committed.
func (s *service) notifyStockChanged(ctx context.Context, productIDs []uint) {
	if len(productIDs) == 0 {
		return
	}
	if err := s.publisher.StockChanged(ctx, productIDs); err != nil {
		logger.FromCtx(ctx).Warn("failed to publish stock-changed event",
			zap.Uints("product_ids", productIDs),
			zap.Error(err),
		)
	}
}

func actorUser(userID uint) string {
	return fmt.Sprintf("user:%d", userID)
}

package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"drop-store/internal/domain"
	"drop-store/internal/metrics"
	"drop-store/internal/payment"
	"drop-store/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	ErrEmptyCart   = errors.New("cart is empty")
	ErrInvalidItem = errors.New("cart item is malformed")
)

// OutOfStockError reports which line item could not be fulfilled. The whole
// order is rejected when any line fails its stock check.
type OutOfStockError struct {
	ProductID string
	Size      string
	Quantity  int
}

func (e *OutOfStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %s size %s (wanted %d)", e.ProductID, e.Size, e.Quantity)
}

// FinalizationError reports an approved charge whose order could not be
// recorded. It carries the provider payment id so the charge stays traceable
// even when the cancellation attempt fails too.
type FinalizationError struct {
	PaymentID string
	Err       error
}

func (e *FinalizationError) Error() string {
	return fmt.Sprintf("payment %s approved but order not recorded: %v", e.PaymentID, e.Err)
}

func (e *FinalizationError) Unwrap() error { return e.Err }

// CartItem is one client-submitted cart line. UnitPrice is the price the
// customer saw and will be charged; it is snapshotted into the order as-is.
type CartItem struct {
	ProductID string `json:"productId" validate:"required,uuid"`
	Name      string `json:"name"`
	Size      string `json:"size" validate:"required"`
	Quantity  int    `json:"quantity" validate:"required,gt=0"`
	UnitPrice int64  `json:"unitPrice" validate:"gte=0"`
}

// CustomerInfo identifies the buyer for the customer upsert.
type CustomerInfo struct {
	Name  string `json:"name"`
	Email string `json:"email" validate:"required,email"`
	Phone string `json:"phone"`
}

// OrderContext carries the cart and shipping selection through checkout.
type OrderContext struct {
	Items        []CartItem             `json:"items" validate:"required,min=1,dive"`
	ShippingCost int64                  `json:"shippingCost" validate:"gte=0"`
	Customer     CustomerInfo           `json:"customer"`
	Address      domain.ShippingAddress `json:"address"`
}

// PaymentOutcome is the checkout result handed back to the storefront.
type PaymentOutcome struct {
	PaymentID string        `json:"paymentId"`
	Status    string        `json:"status"`
	Order     *domain.Order `json:"order,omitempty"`
}

// CheckoutService converts a cart plus shipping selection into a provider
// charge and, on approval, a durable order with its customer and inventory
// side effects applied in one transaction.
type CheckoutService struct {
	db       *sql.DB
	provider payment.Provider
	logger   *zap.Logger
}

// NewCheckoutService creates a new CheckoutService.
func NewCheckoutService(db *sql.DB, provider payment.Provider, logger *zap.Logger) *CheckoutService {
	return &CheckoutService{
		db:       db,
		provider: provider,
		logger:   logger,
	}
}

// CreatePreference builds the provider-side preference for the cart: one line
// item per cart entry, plus a synthetic shipping line when shipping costs
// anything. No local state is persisted.
func (s *CheckoutService) CreatePreference(ctx context.Context, order OrderContext) (string, error) {
	if err := validateCart(order.Items); err != nil {
		return "", err
	}

	items := make([]payment.PreferenceItem, 0, len(order.Items)+1)
	for _, item := range order.Items {
		items = append(items, payment.PreferenceItem{
			ID:        item.ProductID,
			Title:     fmt.Sprintf("%s (%s)", item.Name, item.Size),
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
		})
	}

	if order.ShippingCost > 0 {
		items = append(items, payment.PreferenceItem{
			ID:        "shipping",
			Title:     "Envío",
			Quantity:  1,
			UnitPrice: order.ShippingCost,
		})
	}

	preferenceID, err := s.provider.CreatePreference(ctx, items)
	if err != nil {
		return "", err
	}

	metrics.PreferencesCreatedTotal.Inc()
	s.logger.Info("Payment preference created",
		zap.String("preference_id", preferenceID),
		zap.Int("items", len(order.Items)),
	)

	return preferenceID, nil
}

// ProcessPayment submits the card payment and, only if the provider approves
// it, finalizes the order. Any non-approved status returns the provider's
// verdict with zero local mutations.
func (s *CheckoutService) ProcessPayment(ctx context.Context, card payment.CardPayment, order OrderContext) (*PaymentOutcome, error) {
	if err := validateCart(order.Items); err != nil {
		return nil, err
	}

	total := cartSubtotal(order.Items) + order.ShippingCost
	card.TransactionAmount = total
	if card.PayerEmail == "" {
		card.PayerEmail = order.Customer.Email
	}

	metrics.PaymentAttemptsTotal.Inc()

	result, err := s.provider.CreatePayment(ctx, card)
	if err != nil {
		metrics.PaymentsFailedTotal.WithLabelValues("provider_error").Inc()
		return nil, err
	}

	if result.Status != payment.StatusApproved {
		metrics.PaymentsFailedTotal.WithLabelValues(result.Status).Inc()
		s.logger.Info("Payment not approved, skipping order creation",
			zap.String("payment_id", result.PaymentID),
			zap.String("status", result.Status),
			zap.String("detail", result.StatusDetail),
		)
		return &PaymentOutcome{PaymentID: result.PaymentID, Status: result.Status}, nil
	}

	persisted, err := s.finalizeOrder(ctx, result.PaymentID, order, domain.OrderStatusPaid)
	if err != nil {
		// The customer is already charged; void the payment so the abort
		// does not leave money taken for an order that never existed.
		metrics.PaymentsFailedTotal.WithLabelValues("finalization_failed").Inc()
		s.logger.Error("Approved payment could not be finalized, cancelling charge",
			zap.String("payment_id", result.PaymentID),
			zap.Error(err),
		)
		if cancelErr := s.provider.CancelPayment(ctx, result.PaymentID); cancelErr != nil {
			s.logger.Error("Failed to cancel approved payment, manual refund required",
				zap.String("payment_id", result.PaymentID),
				zap.Error(cancelErr),
			)
		}
		return nil, &FinalizationError{PaymentID: result.PaymentID, Err: err}
	}

	metrics.PaymentsApprovedTotal.Inc()
	s.logger.Info("Order confirmed",
		zap.String("order_id", persisted.ID),
		zap.Int64("total", persisted.Total),
	)

	return &PaymentOutcome{
		PaymentID: result.PaymentID,
		Status:    result.Status,
		Order:     persisted,
	}, nil
}

// CreateOrder persists an order outside the card flow (bank transfer, admin
// entry). It runs the same transactional side effects with a generated id.
func (s *CheckoutService) CreateOrder(ctx context.Context, order OrderContext) (*domain.Order, error) {
	if err := validateCart(order.Items); err != nil {
		return nil, err
	}

	return s.finalizeOrder(ctx, uuid.New().String(), order, domain.OrderStatusPendingPayment)
}

// finalizeOrder applies the three checkout effects in one transaction, in a
// fixed order: customer upsert, conditional stock decrements, order insert.
// A failed stock condition aborts the whole transaction; there is no partial
// state to compensate.
func (s *CheckoutService) finalizeOrder(ctx context.Context, orderID string, order OrderContext, status domain.OrderStatus) (*domain.Order, error) {
	total := cartSubtotal(order.Items) + order.ShippingCost

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	customers := repository.NewCustomerRepository(tx)
	products := repository.NewProductRepository(tx)
	orders := repository.NewOrderRepository(tx)

	if _, err := customers.UpsertOnOrder(ctx, order.Customer.Email, order.Customer.Name, order.Customer.Phone, total); err != nil {
		return nil, err
	}

	for _, item := range order.Items {
		productID, err := uuid.Parse(item.ProductID)
		if err != nil {
			return nil, fmt.Errorf("%w: bad product id %q", ErrInvalidItem, item.ProductID)
		}

		err = products.DecrementStock(ctx, productID, item.Size, item.Quantity)
		if err != nil {
			if errors.Is(err, repository.ErrInsufficientStock) ||
				errors.Is(err, repository.ErrSizeNotFound) ||
				errors.Is(err, repository.ErrProductNotFound) {
				metrics.OrdersRejectedTotal.WithLabelValues("insufficient_stock").Inc()
				s.logger.Warn("Order rejected on stock check",
					zap.String("product_id", item.ProductID),
					zap.String("size", item.Size),
					zap.Int("quantity", item.Quantity),
					zap.Error(err),
				)
				return nil, &OutOfStockError{
					ProductID: item.ProductID,
					Size:      item.Size,
					Quantity:  item.Quantity,
				}
			}
			return nil, err
		}
	}

	persisted := &domain.Order{
		ID:            orderID,
		CustomerName:  order.Customer.Name,
		CustomerEmail: order.Customer.Email,
		CustomerPhone: order.Customer.Phone,
		Items:         snapshotItems(order.Items),
		Address:       order.Address,
		ShippingCost:  order.ShippingCost,
		Total:         total,
		Status:        status,
		CreatedAt:     time.Now(),
	}

	if err := orders.Create(ctx, persisted); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit order: %w", err)
	}

	metrics.OrdersCreatedTotal.Inc()
	return persisted, nil
}

func validateCart(items []CartItem) error {
	if len(items) == 0 {
		return ErrEmptyCart
	}

	for _, item := range items {
		if item.ProductID == "" || item.Size == "" {
			return ErrInvalidItem
		}
		if item.Quantity <= 0 || item.UnitPrice < 0 {
			return ErrInvalidItem
		}
	}

	return nil
}

func cartSubtotal(items []CartItem) int64 {
	var subtotal int64
	for _, item := range items {
		subtotal += item.UnitPrice * int64(item.Quantity)
	}
	return subtotal
}

func snapshotItems(items []CartItem) []domain.OrderItem {
	snapshot := make([]domain.OrderItem, 0, len(items))
	for _, item := range items {
		snapshot = append(snapshot, domain.OrderItem{
			ProductID: item.ProductID,
			Name:      item.Name,
			Size:      item.Size,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
		})
	}
	return snapshot
}

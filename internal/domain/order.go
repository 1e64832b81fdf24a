package domain

import "time"

// OrderStatus enumerates the order lifecycle.
type OrderStatus string

const (
	OrderStatusPending        OrderStatus = "pending"
	OrderStatusPendingPayment OrderStatus = "pending_payment"
	OrderStatusPaid           OrderStatus = "paid"
	OrderStatusShipped        OrderStatus = "shipped"
	OrderStatusDelivered      OrderStatus = "delivered"
	OrderStatusCancelled      OrderStatus = "cancelled"
)

// ValidOrderStatus reports whether s is a known order status.
func ValidOrderStatus(s OrderStatus) bool {
	switch s {
	case OrderStatusPending, OrderStatusPendingPayment, OrderStatusPaid,
		OrderStatusShipped, OrderStatusDelivered, OrderStatusCancelled:
		return true
	}
	return false
}

// OrderItem is a denormalized snapshot of one cart line at purchase time.
// UnitPrice is the price charged, never recomputed from the live product.
type OrderItem struct {
	ProductID string `json:"product_id"`
	Name      string `json:"name"`
	Size      string `json:"size"`
	Quantity  int    `json:"quantity"`
	UnitPrice int64  `json:"unit_price"`
}

// ShippingAddress holds the destination captured with the order.
type ShippingAddress struct {
	Street     string `json:"street"`
	City       string `json:"city"`
	Province   string `json:"province"`
	PostalCode string `json:"postal_code"`
}

// Order is immutable once created, except for Status. The ID is the payment
// provider's payment id for checkout orders, or a generated UUID otherwise.
type Order struct {
	ID            string          `json:"id"`
	CustomerName  string          `json:"customerName"`
	CustomerEmail string          `json:"customerEmail"`
	CustomerPhone string          `json:"customerPhone"`
	Items         []OrderItem     `json:"items"`
	Address       ShippingAddress `json:"address"`
	ShippingCost  int64           `json:"shippingCost"`
	Total         int64           `json:"total"`
	Status        OrderStatus     `json:"status"`
	CreatedAt     time.Time       `json:"createdAt"`
}

// ItemsSubtotal sums quantity * unit price over all line items.
func (o *Order) ItemsSubtotal() int64 {
	var subtotal int64
	for _, item := range o.Items {
		subtotal += item.UnitPrice * int64(item.Quantity)
	}
	return subtotal
}

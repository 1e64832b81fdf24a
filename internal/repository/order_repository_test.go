package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"drop-store/internal/domain"

	"github.com/google/uuid"
)

func newTestOrder(email string) *domain.Order {
	return &domain.Order{
		ID:            uuid.New().String(),
		CustomerName:  "Ana",
		CustomerEmail: email,
		CustomerPhone: "+549341000000",
		Items: []domain.OrderItem{
			{ProductID: uuid.New().String(), Name: "Hoodie Oversize", Size: "M", Quantity: 2, UnitPrice: 45000},
		},
		Address: domain.ShippingAddress{
			Street:     "San Martín 1234",
			City:       "Rosario",
			Province:   "Santa Fe",
			PostalCode: "2000",
		},
		ShippingCost: 4500,
		Total:        94500,
		Status:       domain.OrderStatusPaid,
		CreatedAt:    time.Now(),
	}
}

func TestOrderCreateFindRoundTrip(t *testing.T) {
	repo := NewOrderRepository(testDB)
	ctx := context.Background()

	order := newTestOrder("order-roundtrip@example.com")
	if err := repo.Create(ctx, order); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	found, err := repo.FindByID(ctx, order.ID)
	if err != nil {
		t.Fatalf("FindByID failed: %v", err)
	}

	if found.CustomerEmail != order.CustomerEmail || found.Total != order.Total {
		t.Errorf("round trip mismatch: %s/%d", found.CustomerEmail, found.Total)
	}
	if found.Status != domain.OrderStatusPaid {
		t.Errorf("status = %s, want paid", found.Status)
	}
	if len(found.Items) != 1 || found.Items[0].UnitPrice != 45000 {
		t.Errorf("items snapshot mismatch: %+v", found.Items)
	}
	if found.Address.PostalCode != "2000" {
		t.Errorf("address mismatch: %+v", found.Address)
	}
	if found.ItemsSubtotal()+found.ShippingCost != found.Total {
		t.Errorf("total %d does not equal subtotal %d + shipping %d", found.Total, found.ItemsSubtotal(), found.ShippingCost)
	}
}

func TestOrderUpdateStatus(t *testing.T) {
	repo := NewOrderRepository(testDB)
	ctx := context.Background()

	order := newTestOrder("order-status@example.com")
	if err := repo.Create(ctx, order); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if err := repo.UpdateStatus(ctx, order.ID, domain.OrderStatusShipped); err != nil {
		t.Fatalf("UpdateStatus failed: %v", err)
	}

	found, err := repo.FindByID(ctx, order.ID)
	if err != nil {
		t.Fatalf("FindByID failed: %v", err)
	}
	if found.Status != domain.OrderStatusShipped {
		t.Errorf("status = %s, want shipped", found.Status)
	}

	if err := repo.UpdateStatus(ctx, uuid.New().String(), domain.OrderStatusShipped); !errors.Is(err, ErrOrderNotFound) {
		t.Errorf("unknown order error = %v, want ErrOrderNotFound", err)
	}
}

func TestListByCustomerEmail(t *testing.T) {
	repo := NewOrderRepository(testDB)
	ctx := context.Background()

	email := "order-history@example.com"
	for i := 0; i < 3; i++ {
		if err := repo.Create(ctx, newTestOrder(email)); err != nil {
			t.Fatalf("Create failed: %v", err)
		}
	}
	if err := repo.Create(ctx, newTestOrder("someone-else@example.com")); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	orders, err := repo.ListByCustomerEmail(ctx, email)
	if err != nil {
		t.Fatalf("ListByCustomerEmail failed: %v", err)
	}
	if len(orders) != 3 {
		t.Fatalf("got %d orders, want 3", len(orders))
	}
	for _, order := range orders {
		if order.CustomerEmail != email {
			t.Errorf("leaked order for %s", order.CustomerEmail)
		}
	}
}

func TestOrderFindByIDNotFound(t *testing.T) {
	repo := NewOrderRepository(testDB)
	ctx := context.Background()

	if _, err := repo.FindByID(ctx, uuid.New().String()); !errors.Is(err, ErrOrderNotFound) {
		t.Errorf("error = %v, want ErrOrderNotFound", err)
	}
}

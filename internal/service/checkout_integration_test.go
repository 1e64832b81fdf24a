package service

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"testing"
	"time"

	"drop-store/internal/domain"
	"drop-store/internal/payment"
	"drop-store/internal/repository"

	"github.com/google/uuid"
	"github.com/pressly/goose/v3"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
)

var testDB *sql.DB

func setupTestDB() (func(context.Context, ...testcontainers.TerminateOption) error, error) {
	var (
		dbName = "testdb"
		dbPwd  = "password"
		dbUser = "user"
	)

	dbContainer, err := postgres.Run(
		context.Background(),
		"postgres:15",
		postgres.WithDatabase(dbName),
		postgres.WithUsername(dbUser),
		postgres.WithPassword(dbPwd),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(5*time.Second)),
	)
	if err != nil {
		return nil, err
	}

	dbHost, err := dbContainer.Host(context.Background())
	if err != nil {
		return dbContainer.Terminate, err
	}

	dbPort, err := dbContainer.MappedPort(context.Background(), "5432/tcp")
	if err != nil {
		return dbContainer.Terminate, err
	}

	connStr := "postgres://" + dbUser + ":" + dbPwd + "@" + dbHost + ":" + dbPort.Port() + "/" + dbName + "?sslmode=disable"
	testDB, err = sql.Open("pgx", connStr)
	if err != nil {
		return dbContainer.Terminate, err
	}

	if err := goose.SetDialect("postgres"); err != nil {
		return dbContainer.Terminate, err
	}
	if err := goose.Up(testDB, "../../migrations"); err != nil {
		return dbContainer.Terminate, err
	}

	return dbContainer.Terminate, nil
}

func TestMain(m *testing.M) {
	teardown, err := setupTestDB()
	if err != nil {
		log.Fatalf("could not start postgres container: %v", err)
	}

	m.Run()

	if teardown != nil {
		if err := teardown(context.Background()); err != nil {
			log.Fatalf("could not teardown postgres container: %v", err)
		}
	}
}

func seedProduct(t *testing.T, stock int) *domain.Product {
	t.Helper()

	product := &domain.Product{
		ID:       uuid.New(),
		Name:     "Hoodie Oversize",
		Price:    45000,
		Category: "hoodies",
		Sizes: domain.SizeMap{
			"M": {Available: true, Stock: stock},
		},
		IsActive:  true,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}

	if err := repository.NewProductRepository(testDB).Create(context.Background(), product); err != nil {
		t.Fatalf("failed to seed product: %v", err)
	}
	return product
}

func TestApprovedPaymentPersistsOrderOnce(t *testing.T) {
	ctx := context.Background()
	product := seedProduct(t, 5)

	provider := &mockProvider{
		result: &payment.Result{PaymentID: "904", Status: payment.StatusApproved},
	}
	service := NewCheckoutService(testDB, provider, zap.NewNop())

	order := OrderContext{
		Items: []CartItem{
			{ProductID: product.ID.String(), Name: product.Name, Size: "M", Quantity: 2, UnitPrice: 45000},
		},
		ShippingCost: 7000,
		Customer:     CustomerInfo{Name: "Ana García", Email: "approved-once@example.com", Phone: "+5493413000000"},
	}

	outcome, err := service.ProcessPayment(ctx, payment.CardPayment{Token: "tok", PaymentMethodID: "visa", Installments: 1}, order)
	if err != nil {
		t.Fatalf("ProcessPayment failed: %v", err)
	}
	if outcome.Order == nil || outcome.Order.ID != "904" {
		t.Fatalf("outcome order = %+v, want the persisted order keyed by the payment id", outcome.Order)
	}

	// Exactly one order row, with the amounts snapshotted verbatim.
	orders := repository.NewOrderRepository(testDB)
	persisted, err := orders.FindByID(ctx, "904")
	if err != nil {
		t.Fatalf("FindByID failed: %v", err)
	}
	if persisted.Total != 97000 || persisted.ShippingCost != 7000 {
		t.Errorf("persisted total/shipping = %d/%d, want 97000/7000", persisted.Total, persisted.ShippingCost)
	}
	if persisted.Status != domain.OrderStatusPaid {
		t.Errorf("status = %s, want paid", persisted.Status)
	}

	history, err := orders.ListByCustomerEmail(ctx, "approved-once@example.com")
	if err != nil {
		t.Fatalf("ListByCustomerEmail failed: %v", err)
	}
	if len(history) != 1 {
		t.Errorf("order rows for customer = %d, want exactly 1", len(history))
	}

	// Exactly one customer upsert.
	customer, err := repository.NewCustomerRepository(testDB).FindByEmail(ctx, "approved-once@example.com")
	if err != nil {
		t.Fatalf("FindByEmail failed: %v", err)
	}
	if customer.OrderCount != 1 || customer.TotalSpent != 97000 {
		t.Errorf("customer counters = %d/%d, want 1/97000", customer.OrderCount, customer.TotalSpent)
	}

	// Inventory decremented by the purchased quantity.
	found, err := repository.NewProductRepository(testDB).FindByID(ctx, product.ID)
	if err != nil {
		t.Fatalf("FindByID failed: %v", err)
	}
	if found.Sizes["M"].Stock != 3 {
		t.Errorf("stock = %d after purchase of 2 from 5, want 3", found.Sizes["M"].Stock)
	}
}

func TestOutOfStockAfterApprovalRollsBackEverything(t *testing.T) {
	ctx := context.Background()
	product := seedProduct(t, 1)

	provider := &mockProvider{
		result: &payment.Result{PaymentID: "905", Status: payment.StatusApproved},
	}
	service := NewCheckoutService(testDB, provider, zap.NewNop())

	order := OrderContext{
		Items: []CartItem{
			{ProductID: product.ID.String(), Name: product.Name, Size: "M", Quantity: 5, UnitPrice: 45000},
		},
		Customer: CustomerInfo{Name: "Ana", Email: "rolled-back@example.com"},
	}

	_, err := service.ProcessPayment(ctx, payment.CardPayment{Token: "tok", PaymentMethodID: "visa", Installments: 1}, order)

	var outOfStock *OutOfStockError
	if !errors.As(err, &outOfStock) {
		t.Fatalf("error = %v, want OutOfStockError", err)
	}

	// The customer upsert ran before the failed stock check inside the same
	// transaction; the abort must undo it.
	if _, err := repository.NewCustomerRepository(testDB).FindByEmail(ctx, "rolled-back@example.com"); !errors.Is(err, repository.ErrCustomerNotFound) {
		t.Errorf("customer lookup after abort = %v, want ErrCustomerNotFound", err)
	}

	if _, err := repository.NewOrderRepository(testDB).FindByID(ctx, "905"); !errors.Is(err, repository.ErrOrderNotFound) {
		t.Errorf("order lookup after abort = %v, want ErrOrderNotFound", err)
	}

	found, err := repository.NewProductRepository(testDB).FindByID(ctx, product.ID)
	if err != nil {
		t.Fatalf("FindByID failed: %v", err)
	}
	if found.Sizes["M"].Stock != 1 {
		t.Errorf("stock = %d after aborted checkout, want 1", found.Sizes["M"].Stock)
	}

	// The approved charge was voided.
	if len(provider.cancelled) != 1 || provider.cancelled[0] != "905" {
		t.Errorf("cancelled payments = %v, want exactly [905]", provider.cancelled)
	}
}

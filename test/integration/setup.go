package integration

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// TestDB represents a test database instance.
type TestDB struct {
	Container *postgres.PostgresContainer
	Pool      *pgxpool.Pool
	ConnStr   string
}

// SetupTestDB creates a PostgreSQL test container and connection pool.
func SetupTestDB(t *testing.T) *TestDB {
	t.Helper()

	ctx := context.Background()

	postgresContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second)),
	)
	if err != nil {
		t.Fatalf("failed to start postgres container: %v", err)
	}

	connStr, err := postgresContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("failed to get connection string: %v", err)
	}

	poolConfig, err := pgxpool.ParseConfig(connStr)
	if err != nil {
		t.Fatalf("failed to parse connection string: %v", err)
	}
	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		t.Fatalf("failed to create connection pool: %v", err)
	}

	if err := pool.Ping(ctx); err != nil {
		t.Fatalf("failed to ping database: %v", err)
	}

	createSchema(t, pool)

	t.Cleanup(func() {
		pool.Close()
		if err := postgresContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	return &TestDB{
		Container: postgresContainer,
		Pool:      pool,
		ConnStr:   connStr,
	}
}

// createSchema creates the database schema for testing.
func createSchema(t *testing.T, pool *pgxpool.Pool) {
	t.Helper()

	ctx := context.Background()

	schema := `
		CREATE TABLE IF NOT EXISTS appointments (
			id UUID PRIMARY KEY,
			customer_id UUID NOT NULL,
			staff_id UUID NOT NULL,
			starts_at TIMESTAMPTZ NOT NULL,
			ends_at TIMESTAMPTZ NOT NULL,
			status VARCHAR(20) NOT NULL,
			cancelled_at TIMESTAMPTZ,
			cancelled_by VARCHAR(20),
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			UNIQUE (staff_id, starts_at)
		);

		CREATE TABLE IF NOT EXISTS booking_rules (
			cancellation_cutoff_hours INTEGER NOT NULL,
			min_lead_time_minutes INTEGER NOT NULL,
			max_horizon_days INTEGER NOT NULL
		);

		CREATE TABLE IF NOT EXISTS products (
			id VARCHAR(50) PRIMARY KEY,
			name VARCHAR(255) NOT NULL,
			price BIGINT NOT NULL,
			category VARCHAR(100) NOT NULL,
			active BOOLEAN NOT NULL DEFAULT TRUE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);

		CREATE TABLE IF NOT EXISTS orders (
			id UUID PRIMARY KEY,
			customer_id UUID NOT NULL,
			status VARCHAR(20) NOT NULL,
			payment_status VARCHAR(30) NOT NULL,
			payment_method VARCHAR(20) NOT NULL,
			payment_intent_id VARCHAR(100),
			currency VARCHAR(3) NOT NULL,
			subtotal BIGINT NOT NULL,
			discount BIGINT NOT NULL DEFAULT 0,
			shipping BIGINT NOT NULL DEFAULT 0,
			total BIGINT NOT NULL,
			refunded_amount BIGINT NOT NULL DEFAULT 0,
			voucher_code VARCHAR(50),
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);

		CREATE TABLE IF NOT EXISTS order_items (
			id UUID PRIMARY KEY,
			order_id UUID NOT NULL REFERENCES orders(id) ON DELETE CASCADE,
			product_id VARCHAR(50) NOT NULL REFERENCES products(id),
			quantity INTEGER NOT NULL CHECK (quantity > 0),
			unit_price BIGINT NOT NULL,
			line_total BIGINT NOT NULL
		);

		CREATE TABLE IF NOT EXISTS stock_levels (
			product_id VARCHAR(50) PRIMARY KEY REFERENCES products(id),
			quantity INTEGER NOT NULL,
			min_threshold INTEGER NOT NULL DEFAULT 0,
			max_cap INTEGER,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);

		CREATE TABLE IF NOT EXISTS stock_movements (
			id UUID PRIMARY KEY,
			product_id VARCHAR(50) NOT NULL REFERENCES products(id),
			delta INTEGER NOT NULL,
			movement_type VARCHAR(20) NOT NULL,
			reference_type VARCHAR(30) NOT NULL,
			reference_id VARCHAR(100) NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);

		CREATE TABLE IF NOT EXISTS vouchers (
			code VARCHAR(50) PRIMARY KEY,
			remaining BIGINT NOT NULL,
			expires_at TIMESTAMPTZ NOT NULL,
			active BOOLEAN NOT NULL DEFAULT TRUE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);

		CREATE TABLE IF NOT EXISTS loyalty_accounts (
			customer_id UUID PRIMARY KEY,
			lifetime_points INTEGER NOT NULL DEFAULT 0,
			redeemable_points INTEGER NOT NULL DEFAULT 0,
			enrolled BOOLEAN NOT NULL DEFAULT TRUE,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);

		CREATE TABLE IF NOT EXISTS webhook_events (
			event_id VARCHAR(100) PRIMARY KEY,
			event_type VARCHAR(50) NOT NULL,
			processed_at TIMESTAMPTZ NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_order_items_order_id ON order_items(order_id);
		CREATE INDEX IF NOT EXISTS idx_stock_movements_product_id ON stock_movements(product_id);
		CREATE INDEX IF NOT EXISTS idx_orders_payment_intent_id ON orders(payment_intent_id);
	`

	_, err := pool.Exec(ctx, schema)
	if err != nil {
		t.Fatalf("failed to create schema: %v", err)
	}
}

// SeedCatalogue inserts test products with stock levels.
func SeedCatalogue(t *testing.T, pool *pgxpool.Pool) {
	t.Helper()

	ctx := context.Background()

	products := []struct {
		id       string
		name     string
		price    int64
		category string
		stock    int
		minLevel int
	}{
		{"P001", "Repair Shampoo", 2500, "Haircare", 10, 2},
		{"P002", "Silk Conditioner", 1900, "Haircare", 5, 2},
		{"P003", "Argan Hair Oil", 3400, "Treatment", 2, 1},
	}

	for _, p := range products {
		_, err := pool.Exec(ctx,
			"INSERT INTO products (id, name, price, category) VALUES ($1, $2, $3, $4)",
			p.id, p.name, p.price, p.category,
		)
		if err != nil {
			t.Fatalf("failed to seed product %s: %v", p.id, err)
		}
		_, err = pool.Exec(ctx,
			"INSERT INTO stock_levels (product_id, quantity, min_threshold) VALUES ($1, $2, $3)",
			p.id, p.stock, p.minLevel,
		)
		if err != nil {
			t.Fatalf("failed to seed stock for %s: %v", p.id, err)
		}
	}
}

// SeedVoucher inserts a voucher with the given balance.
func SeedVoucher(t *testing.T, pool *pgxpool.Pool, code string, remaining int64) {
	t.Helper()

	_, err := pool.Exec(context.Background(),
		"INSERT INTO vouchers (code, remaining, expires_at) VALUES ($1, $2, NOW() + INTERVAL '30 days')",
		code, remaining,
	)
	if err != nil {
		t.Fatalf("failed to seed voucher %s: %v", code, err)
	}
}

// SeedLoyaltyAccount inserts a loyalty account.
func SeedLoyaltyAccount(t *testing.T, pool *pgxpool.Pool, customerID uuid.UUID, lifetime, redeemable int) {
	t.Helper()

	_, err := pool.Exec(context.Background(),
		"INSERT INTO loyalty_accounts (customer_id, lifetime_points, redeemable_points) VALUES ($1, $2, $3)",
		customerID, lifetime, redeemable,
	)
	if err != nil {
		t.Fatalf("failed to seed loyalty account: %v", err)
	}
}

// CleanupDB cleans all data from test tables.
func CleanupDB(t *testing.T, pool *pgxpool.Pool) {
	t.Helper()

	ctx := context.Background()

	tables := []string{
		"webhook_events", "stock_movements", "order_items", "orders",
		"stock_levels", "vouchers", "loyalty_accounts", "appointments",
		"booking_rules", "products",
	}
	for _, table := range tables {
		_, err := pool.Exec(ctx, fmt.Sprintf("DELETE FROM %s", table))
		if err != nil {
			t.Logf("failed to clean table %s: %v", table, err)
		}
	}
}

package cart

import (
	"context"
	"os"
	"testing"

	"github.com/KatlegoSeiphemo/odysseyfinds/internal/domain"
	"github.com/KatlegoSeiphemo/odysseyfinds/internal/migrate"
	"github.com/jackc/pgx/v5/pgxpool"
)

func TestPostgres_AddItemIncrementsByProductAndSize(t *testing.T) {
	ctx := context.Background()
	pool := testPool(ctx, t)
	defer pool.Close()

	if _, err := migrate.Apply(ctx, pool); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}
	resetTables(ctx, t, pool)
	insertProduct(ctx, t, pool, "p1", 100)

	repo := NewPostgres(pool, nil)
	m, l := "M", "L"
	for _, item := range []domain.CartItem{
		{ProductID: "p1", Quantity: 1, Size: &m},
		{ProductID: "p1", Quantity: 1, Size: &l},
		{ProductID: "p1", Quantity: 2, Size: &m},
	} {
		if err := repo.AddItem(ctx, "s1", item); err != nil {
			t.Fatalf("AddItem: %v", err)
		}
	}

	lines, err := repo.Get(ctx, "s1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %+v", lines)
	}
	if *lines[0].Size != "M" || lines[0].Quantity != 3 || lines[0].Product == nil || lines[0].Product.Price != 100 {
		t.Fatalf("unexpected first line %+v", lines[0])
	}
	if *lines[1].Size != "L" || lines[1].Quantity != 1 {
		t.Fatalf("unexpected second line %+v", lines[1])
	}

	qty, err := repo.Quantity(ctx, "s1", "p1", &m)
	if err != nil || qty != 3 {
		t.Fatalf("Quantity = %d, %v", qty, err)
	}
}

func TestPostgres_ReplaceAndClear(t *testing.T) {
	ctx := context.Background()
	pool := testPool(ctx, t)
	defer pool.Close()

	if _, err := migrate.Apply(ctx, pool); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}
	resetTables(ctx, t, pool)
	insertProduct(ctx, t, pool, "p1", 100)
	insertProduct(ctx, t, pool, "p2", 50)

	repo := NewPostgres(pool, nil)
	if err := repo.AddItem(ctx, "s1", domain.CartItem{ProductID: "p1", Quantity: 1}); err != nil {
		t.Fatalf("AddItem: %v", err)
	}
	if err := repo.Replace(ctx, "s1", []domain.CartItem{
		{ProductID: "p2", Quantity: 4},
		{ProductID: "gone", Quantity: 1},
	}); err != nil {
		t.Fatalf("Replace: %v", err)
	}

	lines, err := repo.Get(ctx, "s1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if len(lines) != 1 || lines[0].ProductID != "p2" || lines[0].Quantity != 4 || lines[0].Size != nil {
		t.Fatalf("unexpected lines after replace %+v", lines)
	}

	if err := repo.Clear(ctx, "s1"); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	lines, err = repo.Get(ctx, "s1")
	if err != nil {
		t.Fatalf("Get after clear: %v", err)
	}
	if len(lines) != 0 {
		t.Fatalf("expected empty cart, got %+v", lines)
	}
}

func insertProduct(ctx context.Context, t *testing.T, pool *pgxpool.Pool, id string, price float64) {
	t.Helper()
	if _, err := pool.Exec(ctx, `
INSERT INTO products (id, name, price, category, stock)
VALUES ($1, $1, $2, 'sneakers', 10)
`, id, price); err != nil {
		t.Fatalf("insert product: %v", err)
	}
}

func testPool(ctx context.Context, t *testing.T) *pgxpool.Pool {
	t.Helper()
	dsn := os.Getenv("TEST_DB_DSN")
	if dsn == "" {
		t.Skip("TEST_DB_DSN not set")
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		t.Fatalf("connect db: %v", err)
	}
	return pool
}

func resetTables(ctx context.Context, t *testing.T, pool *pgxpool.Pool) {
	t.Helper()
	if _, err := pool.Exec(ctx, `TRUNCATE orders, cart_items, carts, products RESTART IDENTITY CASCADE`); err != nil {
		t.Fatalf("truncate tables: %v", err)
	}
}

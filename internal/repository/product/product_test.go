package product

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/KatlegoSeiphemo/odysseyfinds/internal/domain"
	"github.com/KatlegoSeiphemo/odysseyfinds/internal/migrate"
	"github.com/jackc/pgx/v5/pgxpool"
)

func TestPostgres_ListFiltersAndGet(t *testing.T) {
	ctx := context.Background()
	pool := testPool(ctx, t)
	defer pool.Close()

	if _, err := migrate.Apply(ctx, pool); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}
	resetTables(ctx, t, pool)

	repo := NewPostgres(pool, nil)
	sneaker, err := repo.Upsert(ctx, domain.Product{
		Name: "Runner", Price: 189.99, Category: "sneakers", Condition: "new",
		Sizes: []string{"9", "10"}, Stock: 5,
	})
	if err != nil {
		t.Fatalf("Upsert sneaker: %v", err)
	}
	if _, err := repo.Upsert(ctx, domain.Product{
		Name: "Phone", Price: 599.99, Category: "phones", Condition: "used", Stock: 2,
	}); err != nil {
		t.Fatalf("Upsert phone: %v", err)
	}

	all, err := repo.List(ctx, domain.ProductFilter{})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 products, got %d", len(all))
	}

	used, err := repo.List(ctx, domain.ProductFilter{Condition: "used"})
	if err != nil {
		t.Fatalf("List used: %v", err)
	}
	if len(used) != 1 || used[0].Category != "phones" || used[0].Sizes != nil {
		t.Fatalf("unexpected used listing %+v", used)
	}

	got, err := repo.GetByID(ctx, sneaker.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Price != 189.99 || len(got.Sizes) != 2 {
		t.Fatalf("unexpected product %+v", got)
	}

	if _, err := repo.GetByID(ctx, "missing"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestPostgres_UpsertOverwritesByID(t *testing.T) {
	ctx := context.Background()
	pool := testPool(ctx, t)
	defer pool.Close()

	if _, err := migrate.Apply(ctx, pool); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}
	resetTables(ctx, t, pool)

	repo := NewPostgres(pool, nil)
	p, err := repo.Upsert(ctx, domain.Product{ID: "p-1", Name: "Old", Price: 10, Category: "phones", Stock: 1})
	if err != nil {
		t.Fatalf("Upsert insert: %v", err)
	}
	updated, err := repo.Upsert(ctx, domain.Product{ID: "p-1", Name: "New", Price: 20, Category: "phones", Stock: 3})
	if err != nil {
		t.Fatalf("Upsert update: %v", err)
	}
	if updated.ID != p.ID || updated.Name != "New" || updated.Price != 20 || updated.Stock != 3 {
		t.Fatalf("unexpected updated product %+v", updated)
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

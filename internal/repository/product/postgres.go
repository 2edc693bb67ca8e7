package product

import (
	"context"
	"errors"
	"io"
	"log"

	"github.com/KatlegoSeiphemo/odysseyfinds/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// listLimit caps catalogue listings.
const listLimit = 100

const productColumns = `id, name, description, price::float8, category, image_url, brand, condition, sizes, stock, created_at`

type postgresRepo struct {
	pool   *pgxpool.Pool
	logger *log.Logger
}

func NewPostgres(pool *pgxpool.Pool, logger *log.Logger) Repository {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &postgresRepo{pool: pool, logger: logger}
}

func (r *postgresRepo) List(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, error) {
	q := `
SELECT ` + productColumns + `
FROM products
WHERE ($1 = '' OR category = $1) AND ($2 = '' OR condition = $2)
ORDER BY created_at DESC, id
LIMIT $3
`
	rows, err := r.pool.Query(ctx, q, filter.Category, filter.Condition, listLimit)
	if err != nil {
		r.logger.Printf("product repo: list category=%q condition=%q error=%v", filter.Category, filter.Condition, err)
		return nil, err
	}
	defer rows.Close()

	result := []domain.Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *p)
	}
	if err := rows.Err(); err != nil {
		r.logger.Printf("product repo: list rows error=%v", err)
		return nil, err
	}
	r.logger.Printf("product repo: list category=%q condition=%q count=%d", filter.Category, filter.Condition, len(result))
	return result, nil
}

func (r *postgresRepo) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	q := `SELECT ` + productColumns + ` FROM products WHERE id = $1`
	p, err := scanProduct(r.pool.QueryRow(ctx, q, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Printf("product repo: get id=%s not found", id)
			return nil, domain.ErrNotFound
		}
		r.logger.Printf("product repo: get id=%s error=%v", id, err)
		return nil, err
	}
	return p, nil
}

// Upsert inserts the product or overwrites the row with the same id. An
// empty id lets the database assign one.
func (r *postgresRepo) Upsert(ctx context.Context, product domain.Product) (*domain.Product, error) {
	q := `
INSERT INTO products (id, name, description, price, category, image_url, brand, condition, sizes, stock)
VALUES (COALESCE(NULLIF($1, ''), gen_random_uuid()::text), $2, $3, $4, $5, $6, $7, $8, $9, $10)
ON CONFLICT (id) DO UPDATE SET
    name = EXCLUDED.name,
    description = EXCLUDED.description,
    price = EXCLUDED.price,
    category = EXCLUDED.category,
    image_url = EXCLUDED.image_url,
    brand = EXCLUDED.brand,
    condition = EXCLUDED.condition,
    sizes = EXCLUDED.sizes,
    stock = EXCLUDED.stock
RETURNING ` + productColumns
	res, err := scanProduct(r.pool.QueryRow(ctx, q,
		product.ID,
		product.Name,
		product.Description,
		product.Price,
		product.Category,
		product.ImageURL,
		product.Brand,
		product.Condition,
		product.Sizes,
		product.Stock,
	))
	if err != nil {
		r.logger.Printf("product repo: upsert id=%s name=%q error=%v", product.ID, product.Name, err)
		return nil, err
	}
	r.logger.Printf("product repo: upserted id=%s name=%q", res.ID, res.Name)
	return res, nil
}

func scanProduct(row pgx.Row) (*domain.Product, error) {
	var p domain.Product
	if err := row.Scan(
		&p.ID,
		&p.Name,
		&p.Description,
		&p.Price,
		&p.Category,
		&p.ImageURL,
		&p.Brand,
		&p.Condition,
		&p.Sizes,
		&p.Stock,
		&p.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &p, nil
}

package cart

import (
	"context"
	"errors"
	"io"
	"log"

	"github.com/KatlegoSeiphemo/odysseyfinds/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

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

// Get returns the session's lines in insertion order, each joined with its
// product. Lines whose product no longer exists are dropped.
func (r *postgresRepo) Get(ctx context.Context, sessionID string) ([]domain.CartLine, error) {
	const q = `
SELECT ci.product_id, ci.quantity, ci.size,
       p.id, p.name, p.description, p.price::float8, p.category, p.image_url, p.brand, p.condition, p.sizes, p.stock, p.created_at
FROM cart_items ci
JOIN products p ON p.id = ci.product_id
WHERE ci.session_id = $1
ORDER BY ci.id ASC
`
	rows, err := r.pool.Query(ctx, q, sessionID)
	if err != nil {
		r.logger.Printf("cart repo: get session_id=%s error=%v", sessionID, err)
		return nil, err
	}
	defer rows.Close()

	lines := []domain.CartLine{}
	for rows.Next() {
		var (
			line domain.CartLine
			size string
			p    domain.Product
		)
		if err := rows.Scan(
			&line.ProductID,
			&line.Quantity,
			&size,
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
		line.Size = domain.SizeFromKey(size)
		line.Product = &p
		lines = append(lines, line)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return lines, nil
}

func (r *postgresRepo) Quantity(ctx context.Context, sessionID, productID string, size *string) (int, error) {
	var qty int
	err := r.pool.QueryRow(ctx, `
SELECT quantity
FROM cart_items
WHERE session_id = $1 AND product_id = $2 AND size = $3
`, sessionID, productID, domain.SizeKey(size)).Scan(&qty)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, nil
		}
		return 0, err
	}
	return qty, nil
}

// AddItem appends the line or increments the quantity of the line with the
// same (product, size) key.
func (r *postgresRepo) AddItem(ctx context.Context, sessionID string, item domain.CartItem) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if err := touchCart(ctx, tx, sessionID); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, `
INSERT INTO cart_items (session_id, product_id, size, quantity)
VALUES ($1, $2, $3, $4)
ON CONFLICT (session_id, product_id, size) DO UPDATE
SET quantity = cart_items.quantity + EXCLUDED.quantity
`, sessionID, item.ProductID, domain.SizeKey(item.Size), item.Quantity); err != nil {
		r.logger.Printf("cart repo: add session_id=%s product_id=%s error=%v", sessionID, item.ProductID, err)
		return err
	}

	return tx.Commit(ctx)
}

// Replace swaps the whole cart content for items, keeping their order.
func (r *postgresRepo) Replace(ctx context.Context, sessionID string, items []domain.CartItem) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if err := touchCart(ctx, tx, sessionID); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, `DELETE FROM cart_items WHERE session_id = $1`, sessionID); err != nil {
		return err
	}

	batch := &pgx.Batch{}
	for _, item := range items {
		batch.Queue(`
INSERT INTO cart_items (session_id, product_id, size, quantity)
VALUES ($1, $2, $3, $4)
`, sessionID, item.ProductID, domain.SizeKey(item.Size), item.Quantity)
	}
	if batch.Len() > 0 {
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			r.logger.Printf("cart repo: replace session_id=%s lines=%d error=%v", sessionID, len(items), err)
			return err
		}
	}

	return tx.Commit(ctx)
}

func (r *postgresRepo) Clear(ctx context.Context, sessionID string) error {
	if _, err := r.pool.Exec(ctx, `DELETE FROM carts WHERE session_id = $1`, sessionID); err != nil {
		r.logger.Printf("cart repo: clear session_id=%s error=%v", sessionID, err)
		return err
	}
	return nil
}

func touchCart(ctx context.Context, tx pgx.Tx, sessionID string) error {
	_, err := tx.Exec(ctx, `
INSERT INTO carts (session_id) VALUES ($1)
ON CONFLICT (session_id) DO UPDATE SET updated_at = now()
`, sessionID)
	return err
}

package order

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"

	"github.com/KatlegoSeiphemo/odysseyfinds/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const orderColumns = `id::text, session_id, items, total::float8, currency, customer_name, customer_email, shipping_address, status, created_at`

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

func (r *postgresRepo) Create(ctx context.Context, in domain.OrderInput) (*domain.Order, error) {
	items, err := json.Marshal(in.Items)
	if err != nil {
		return nil, fmt.Errorf("encode items: %w", err)
	}

	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	order, err := scanOrder(tx.QueryRow(ctx, `
INSERT INTO orders (session_id, items, total, currency, customer_name, customer_email, shipping_address, status)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
RETURNING `+orderColumns,
		in.SessionID,
		items,
		in.Total,
		in.Currency,
		in.CustomerName,
		in.CustomerEmail,
		in.ShippingAddress,
		domain.OrderStatusPending,
	))
	if err != nil {
		r.logger.Printf("order repo: create session_id=%s error=%v", in.SessionID, err)
		return nil, err
	}

	if _, err := tx.Exec(ctx, `DELETE FROM carts WHERE session_id = $1`, in.SessionID); err != nil {
		r.logger.Printf("order repo: clear cart session_id=%s error=%v", in.SessionID, err)
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	r.logger.Printf("order repo: created id=%s session_id=%s total=%.2f currency=%s", order.ID, order.SessionID, order.Total, order.Currency)
	return order, nil
}

func (r *postgresRepo) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	order, err := scanOrder(r.pool.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE id::text = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return order, nil
}

func scanOrder(row pgx.Row) (*domain.Order, error) {
	var (
		o     domain.Order
		items []byte
	)
	if err := row.Scan(
		&o.ID,
		&o.SessionID,
		&items,
		&o.Total,
		&o.Currency,
		&o.CustomerName,
		&o.CustomerEmail,
		&o.ShippingAddress,
		&o.Status,
		&o.CreatedAt,
	); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(items, &o.Items); err != nil {
		return nil, fmt.Errorf("decode items: %w", err)
	}
	return &o, nil
}

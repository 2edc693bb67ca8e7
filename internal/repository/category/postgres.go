package category

import (
	"context"

	"github.com/KatlegoSeiphemo/odysseyfinds/internal/domain"
	"github.com/jackc/pgx/v5/pgxpool"
)

type postgresRepo struct {
	pool *pgxpool.Pool
}

func NewPostgres(pool *pgxpool.Pool) Repository {
	return &postgresRepo{pool: pool}
}

func (r *postgresRepo) List(ctx context.Context) ([]domain.Category, error) {
	const q = `
SELECT category, count(*)::int, count(*) FILTER (WHERE stock > 0)::int
FROM products
GROUP BY category
ORDER BY category ASC
`
	rows, err := r.pool.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Category
	for rows.Next() {
		var c domain.Category
		if err := rows.Scan(&c.Name, &c.Products, &c.InStock); err != nil {
			return nil, err
		}
		result = append(result, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

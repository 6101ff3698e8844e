package postgres

import (
	"context"
	"errors"

	"github.com/geocoder89/storefront/internal/domain/order"
	"github.com/geocoder89/storefront/internal/observability"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const orderColumns = `id, buyer_id, products, total_price, address, status, ordered_at`

type OrdersRepo struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

func NewOrdersRepo(pool *pgxpool.Pool, prom *observability.Prom) *OrdersRepo {
	return &OrdersRepo{pool: pool, prom: prom}
}

func scanOrder(row pgx.Row) (order.Order, error) {
	var o order.Order
	var status string

	err := row.Scan(&o.ID, &o.BuyerID, &o.Products, &o.TotalPrice, &o.Address, &status, &o.OrderedAt)
	if err != nil {
		return order.Order{}, err
	}

	o.Status = order.Status(status)
	if o.Products == nil {
		o.Products = []order.LineItem{}
	}
	return o, nil
}

func (r *OrdersRepo) Create(ctx context.Context, o order.Order) (order.Order, error) {
	err := observe(r.prom, "orders.create", func() error {
		_, err := r.pool.Exec(ctx,
			`INSERT INTO orders (id, buyer_id, products, total_price, address, status, ordered_at)
			VALUES ($1,$2,$3,$4,$5,$6,$7)`,
			o.ID, o.BuyerID, o.Products, o.TotalPrice, o.Address, string(o.Status), o.OrderedAt,
		)
		return err
	})
	if err != nil {
		return order.Order{}, err
	}
	return o, nil
}

func (r *OrdersRepo) GetByID(ctx context.Context, id string) (order.Order, error) {
	var o order.Order

	err := observe(r.prom, "orders.get_by_id", func() (err error) {
		o, err = scanOrder(r.pool.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1`, id))
		return err
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return order.Order{}, order.ErrNotFound
		}
		return order.Order{}, err
	}
	return o, nil
}

func (r *OrdersRepo) List(ctx context.Context) ([]order.Order, error) {
	return r.query(ctx, "orders.list", `SELECT `+orderColumns+` FROM orders ORDER BY ordered_at ASC, id ASC`)
}

func (r *OrdersRepo) ListByBuyer(ctx context.Context, buyerID string) ([]order.Order, error) {
	return r.query(ctx, "orders.list_by_buyer",
		`SELECT `+orderColumns+` FROM orders WHERE buyer_id = $1 ORDER BY ordered_at ASC, id ASC`,
		buyerID,
	)
}

func (r *OrdersRepo) query(ctx context.Context, op, sql string, args ...interface{}) (out []order.Order, err error) {
	var rows pgx.Rows

	err = observe(r.prom, op, func() error {
		rows, err = r.pool.Query(ctx, sql, args...)
		return err
	})
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out = make([]order.Order, 0)
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}

	return out, rows.Err()
}

// SetStatus overwrites the status; there is no version check, so the last writer wins.
func (r *OrdersRepo) SetStatus(ctx context.Context, id string, status order.Status) (order.Order, error) {
	var o order.Order

	err := observe(r.prom, "orders.set_status", func() (err error) {
		o, err = scanOrder(r.pool.QueryRow(ctx,
			`UPDATE orders SET status = $2 WHERE id = $1 RETURNING `+orderColumns,
			id, string(status),
		))
		return err
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return order.Order{}, order.ErrNotFound
		}
		return order.Order{}, err
	}
	return o, nil
}

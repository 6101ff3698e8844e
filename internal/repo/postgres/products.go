package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/geocoder89/storefront/internal/domain/product"
	"github.com/geocoder89/storefront/internal/observability"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const productColumns = `id, COALESCE(seller_id, ''), name, description, images, quantity, price, category, ratings, created_at`

type ProductsRepo struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

func NewProductsRepo(pool *pgxpool.Pool, prom *observability.Prom) *ProductsRepo {
	return &ProductsRepo{pool: pool, prom: prom}
}

func scanProduct(row pgx.Row) (product.Product, error) {
	var p product.Product
	var category string

	err := row.Scan(&p.ID, &p.SellerID, &p.Name, &p.Description, &p.Images, &p.Quantity, &p.Price, &category, &p.Ratings, &p.CreatedAt)
	if err != nil {
		return product.Product{}, err
	}

	p.Category = product.Category(category)
	if p.Images == nil {
		p.Images = []string{}
	}
	if p.Ratings == nil {
		p.Ratings = []product.Rating{}
	}
	return p, nil
}

func (r *ProductsRepo) Create(ctx context.Context, p product.Product) (product.Product, error) {
	var sellerID *string
	if p.SellerID != "" {
		sellerID = &p.SellerID
	}

	err := observe(r.prom, "products.create", func() error {
		_, err := r.pool.Exec(ctx,
			`INSERT INTO products (id, seller_id, name, description, images, quantity, price, category, ratings, created_at)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`,
			p.ID, sellerID, p.Name, p.Description, p.Images, p.Quantity, p.Price, string(p.Category), p.Ratings, p.CreatedAt,
		)
		return err
	})
	if err != nil {
		return product.Product{}, err
	}
	return p, nil
}

func (r *ProductsRepo) GetByID(ctx context.Context, id string) (product.Product, error) {
	var p product.Product

	err := observe(r.prom, "products.get_by_id", func() (err error) {
		p, err = scanProduct(r.pool.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1`, id))
		return err
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return product.Product{}, product.ErrNotFound
		}
		return product.Product{}, err
	}
	return p, nil
}

func (r *ProductsRepo) List(ctx context.Context, filter product.ListFilter) (out []product.Product, err error) {
	var conds []string
	var args []interface{}

	argsPosition := 1

	if filter.Category != "" {
		conds = append(conds, fmt.Sprintf("category = $%d", argsPosition))
		args = append(args, string(filter.Category))
		argsPosition++
	}

	if filter.Name != "" {
		conds = append(conds, fmt.Sprintf(`name ILIKE $%d ESCAPE '\'`, argsPosition))
		args = append(args, likePattern(filter.Name))
		argsPosition++
	}

	query := `SELECT ` + productColumns + ` FROM products`
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	// stable ordering keeps deal-of-day tie-breaks deterministic
	query += " ORDER BY created_at ASC, id ASC"

	var rows pgx.Rows

	err = observe(r.prom, "products.list", func() error {
		rows, err = r.pool.Query(ctx, query, args...)
		return err
	})
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out = make([]product.Product, 0)
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}

	return out, rows.Err()
}

func (r *ProductsRepo) Delete(ctx context.Context, id string) (product.Product, error) {
	var p product.Product

	err := observe(r.prom, "products.delete", func() (err error) {
		p, err = scanProduct(r.pool.QueryRow(ctx, `DELETE FROM products WHERE id = $1 RETURNING `+productColumns, id))
		return err
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return product.Product{}, product.ErrNotFound
		}
		return product.Product{}, err
	}
	return p, nil
}

// Rate locks the product row for the read-modify-write so concurrent raters serialize.
func (r *ProductsRepo) Rate(ctx context.Context, id, userID string, value float64) (p product.Product, err error) {
	if err = product.ValidateRating(value); err != nil {
		return product.Product{}, err
	}

	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return product.Product{}, err
	}

	defer func() {
		_ = tx.Rollback(ctx)
	}()

	err = observe(r.prom, "products.rate.lock", func() (err error) {
		p, err = scanProduct(tx.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1 FOR UPDATE`, id))
		return err
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return product.Product{}, product.ErrNotFound
		}
		return product.Product{}, err
	}

	if err = product.Rate(&p, userID, value); err != nil {
		return product.Product{}, err
	}

	err = observe(r.prom, "products.rate.update", func() error {
		_, err := tx.Exec(ctx, `UPDATE products SET ratings = $2 WHERE id = $1`, id, p.Ratings)
		return err
	})
	if err != nil {
		return product.Product{}, err
	}

	if err = tx.Commit(ctx); err != nil {
		return product.Product{}, err
	}
	return p, nil
}

func (r *ProductsRepo) DecrementStock(ctx context.Context, id string, qty int) error {
	var affected int64

	err := observe(r.prom, "products.decrement_stock", func() error {
		tag, err := r.pool.Exec(ctx,
			`UPDATE products SET quantity = quantity - $2 WHERE id = $1 AND quantity >= $2`,
			id, qty,
		)
		affected = tag.RowsAffected()
		return err
	})
	if err != nil {
		return err
	}

	if affected == 0 {
		// distinguish a missing product from one that ran out
		if _, err := r.GetByID(ctx, id); err != nil {
			return err
		}
		return product.ErrInsufficientStock
	}
	return nil
}

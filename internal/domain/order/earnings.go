package order

import (
	"github.com/geocoder89/storefront/internal/domain/product"
	"github.com/shopspring/decimal"
)

type Earnings struct {
	TotalEarnings       float64                      `json:"totalEarnings"`
	PerCategoryEarnings map[product.Category]float64 `json:"perCategoryEarnings"`
}

// ComputeEarnings sums quantity x snapshotted unit price over every line item of every
// order. A category's figure is the full total of each order holding at least one line
// item in that category, so a mixed order counts toward every category it touches and
// the per-category figures need not add up to the total. Every known category is
// present in the result, zero when nothing sold.
func ComputeEarnings(orders []Order) Earnings {
	total := decimal.Zero
	perCategory := make(map[product.Category]decimal.Decimal, len(product.Categories))

	for _, c := range product.Categories {
		perCategory[c] = decimal.Zero
	}

	for _, o := range orders {
		orderTotal := Total(o.Products)
		total = total.Add(orderTotal)

		for c := range o.categories() {
			if cur, ok := perCategory[c]; ok {
				perCategory[c] = cur.Add(orderTotal)
			}
		}
	}

	out := Earnings{
		TotalEarnings:       total.InexactFloat64(),
		PerCategoryEarnings: make(map[product.Category]float64, len(perCategory)),
	}
	for c, v := range perCategory {
		out.PerCategoryEarnings[c] = v.InexactFloat64()
	}
	return out
}

// categories is the set of snapshot categories across the order's line items.
func (o Order) categories() map[product.Category]struct{} {
	set := make(map[product.Category]struct{}, len(o.Products))
	for _, line := range o.Products {
		set[line.Product.Category] = struct{}{}
	}
	return set
}

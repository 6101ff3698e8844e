package mongodb

import (
	"testing"
	"time"

	"github.com/geocoder89/storefront/internal/domain/order"
	"github.com/geocoder89/storefront/internal/domain/product"
	"github.com/geocoder89/storefront/internal/domain/user"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
)

func TestProductDocFlattensProductFields(t *testing.T) {
	p := product.Product{
		ID:        "p1",
		Name:      "Dune",
		Category:  product.CategoryFiction,
		Price:     9.99,
		Quantity:  3,
		Ratings:   []product.Rating{{UserID: "u1", Rating: 4}},
		CreatedAt: time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
	}

	raw, err := bson.Marshal(productDoc{Product: p, Version: 7})
	require.NoError(t, err)

	var flat bson.M
	require.NoError(t, bson.Unmarshal(raw, &flat))

	require.Equal(t, "p1", flat["_id"])
	require.Equal(t, "Dune", flat["name"])
	require.EqualValues(t, 7, flat["version"])
	require.NotContains(t, flat, "product")

	var back productDoc
	require.NoError(t, bson.Unmarshal(raw, &back))
	require.Equal(t, p.Ratings, back.Ratings)
	require.Equal(t, int64(7), back.Version)
}

func TestNormalizeFillsNilSlices(t *testing.T) {
	p := normalize(product.Product{ID: "p1"})

	require.NotNil(t, p.Images)
	require.NotNil(t, p.Ratings)
}

func TestOrderSnapshotRoundTrip(t *testing.T) {
	o := order.Order{
		ID:      "o1",
		BuyerID: "b1",
		Products: []order.LineItem{{
			Product:  product.Product{ID: "p1", Price: 4.5, Category: product.CategoryComic},
			Quantity: 2,
		}},
		Status: order.StatusPending,
	}

	raw, err := bson.Marshal(o)
	require.NoError(t, err)

	var back order.Order
	require.NoError(t, bson.Unmarshal(raw, &back))
	require.Equal(t, "p1", back.Products[0].Product.ID)
	require.Equal(t, 4.5, back.Products[0].Product.Price)
	require.Equal(t, order.StatusPending, back.Status)
}

func TestUserDocRoleIsParsed(t *testing.T) {
	u, err := userDoc{ID: "u1", Email: "a@x.io", Role: "Seller"}.toDomain()
	require.NoError(t, err)
	require.Equal(t, user.RoleSeller, u.Role)
	require.True(t, u.IsSeller())

	_, err = userDoc{ID: "u2", Email: "b@x.io", Role: "admin"}.toDomain()
	require.ErrorIs(t, err, user.ErrInvalidRole)
}

package mongodb

import (
	"context"
	"errors"
	"regexp"

	"github.com/geocoder89/storefront/internal/domain/product"
	"github.com/geocoder89/storefront/internal/observability"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const maxRateAttempts = 5

// productDoc adds a version counter used for compare-and-swap on ratings.
type productDoc struct {
	product.Product `bson:",inline"`
	Version         int64 `bson:"version"`
}

func normalize(p product.Product) product.Product {
	if p.Images == nil {
		p.Images = []string{}
	}
	if p.Ratings == nil {
		p.Ratings = []product.Rating{}
	}
	return p
}

type ProductsRepo struct {
	coll *mongo.Collection
	prom *observability.Prom
}

func NewProductsRepo(db *mongo.Database, prom *observability.Prom) *ProductsRepo {
	return &ProductsRepo{coll: db.Collection(productsCollection), prom: prom}
}

func (r *ProductsRepo) Create(ctx context.Context, p product.Product) (product.Product, error) {
	p = normalize(p)

	err := observe(r.prom, "products.create", func() error {
		_, err := r.coll.InsertOne(ctx, productDoc{Product: p, Version: 1})
		return err
	})
	if err != nil {
		return product.Product{}, err
	}
	return p, nil
}

func (r *ProductsRepo) GetByID(ctx context.Context, id string) (product.Product, error) {
	doc, err := r.get(ctx, id)
	if err != nil {
		return product.Product{}, err
	}
	return doc.Product, nil
}

func (r *ProductsRepo) get(ctx context.Context, id string) (productDoc, error) {
	var doc productDoc

	err := observe(r.prom, "products.get_by_id", func() error {
		return r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	})
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return productDoc{}, product.ErrNotFound
		}
		return productDoc{}, err
	}

	doc.Product = normalize(doc.Product)
	return doc, nil
}

func (r *ProductsRepo) List(ctx context.Context, filter product.ListFilter) ([]product.Product, error) {
	query := bson.M{}

	if filter.Category != "" {
		query["category"] = string(filter.Category)
	}
	if filter.Name != "" {
		// user input is matched literally, case-insensitively
		query["name"] = bson.M{"$regex": regexp.QuoteMeta(filter.Name), "$options": "i"}
	}

	var docs []productDoc

	err := observe(r.prom, "products.list", func() error {
		cur, err := r.coll.Find(ctx, query, options.Find().SetSort(insertionOrder))
		if err != nil {
			return err
		}
		return cur.All(ctx, &docs)
	})
	if err != nil {
		return nil, err
	}

	out := make([]product.Product, 0, len(docs))
	for _, d := range docs {
		out = append(out, normalize(d.Product))
	}
	return out, nil
}

func (r *ProductsRepo) Delete(ctx context.Context, id string) (product.Product, error) {
	var doc productDoc

	err := observe(r.prom, "products.delete", func() error {
		return r.coll.FindOneAndDelete(ctx, bson.M{"_id": id}).Decode(&doc)
	})
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return product.Product{}, product.ErrNotFound
		}
		return product.Product{}, err
	}
	return normalize(doc.Product), nil
}

// Rate re-reads and retries when another writer bumped the version in between.
func (r *ProductsRepo) Rate(ctx context.Context, id, userID string, value float64) (product.Product, error) {
	if err := product.ValidateRating(value); err != nil {
		return product.Product{}, err
	}

	for attempt := 0; attempt < maxRateAttempts; attempt++ {
		doc, err := r.get(ctx, id)
		if err != nil {
			return product.Product{}, err
		}

		p := doc.Product
		if err := product.Rate(&p, userID, value); err != nil {
			return product.Product{}, err
		}

		filter := bson.M{"_id": id, "version": doc.Version}
		if doc.Version == 0 {
			filter = bson.M{"_id": id, "$or": bson.A{
				bson.M{"version": 0},
				bson.M{"version": bson.M{"$exists": false}},
			}}
		}

		var res *mongo.UpdateResult
		err = observe(r.prom, "products.rate.cas", func() (err error) {
			res, err = r.coll.UpdateOne(ctx, filter, bson.M{
				"$set": bson.M{"ratings": p.Ratings, "version": doc.Version + 1},
			})
			return err
		})
		if err != nil {
			return product.Product{}, err
		}

		if res.MatchedCount == 1 {
			return p, nil
		}
	}

	return product.Product{}, product.ErrConcurrentUpdate
}

func (r *ProductsRepo) DecrementStock(ctx context.Context, id string, qty int) error {
	var res *mongo.UpdateResult

	err := observe(r.prom, "products.decrement_stock", func() (err error) {
		res, err = r.coll.UpdateOne(ctx,
			bson.M{"_id": id, "quantity": bson.M{"$gte": qty}},
			bson.M{"$inc": bson.M{"quantity": -qty}},
		)
		return err
	})
	if err != nil {
		return err
	}

	if res.MatchedCount == 0 {
		if _, err := r.get(ctx, id); err != nil {
			return err
		}
		return product.ErrInsufficientStock
	}
	return nil
}

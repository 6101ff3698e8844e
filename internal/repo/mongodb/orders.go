package mongodb

import (
	"context"
	"errors"

	"github.com/geocoder89/storefront/internal/domain/order"
	"github.com/geocoder89/storefront/internal/observability"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var orderSort = bson.D{{Key: "orderedAt", Value: 1}, {Key: "_id", Value: 1}}

type OrdersRepo struct {
	coll *mongo.Collection
	prom *observability.Prom
}

func NewOrdersRepo(db *mongo.Database, prom *observability.Prom) *OrdersRepo {
	return &OrdersRepo{coll: db.Collection(ordersCollection), prom: prom}
}

func (r *OrdersRepo) Create(ctx context.Context, o order.Order) (order.Order, error) {
	err := observe(r.prom, "orders.create", func() error {
		_, err := r.coll.InsertOne(ctx, o)
		return err
	})
	if err != nil {
		return order.Order{}, err
	}
	return o, nil
}

func (r *OrdersRepo) GetByID(ctx context.Context, id string) (order.Order, error) {
	var o order.Order

	err := observe(r.prom, "orders.get_by_id", func() error {
		return r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&o)
	})
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return order.Order{}, order.ErrNotFound
		}
		return order.Order{}, err
	}
	return o, nil
}

func (r *OrdersRepo) List(ctx context.Context) ([]order.Order, error) {
	return r.find(ctx, "orders.list", bson.M{})
}

func (r *OrdersRepo) ListByBuyer(ctx context.Context, buyerID string) ([]order.Order, error) {
	return r.find(ctx, "orders.list_by_buyer", bson.M{"buyerId": buyerID})
}

func (r *OrdersRepo) find(ctx context.Context, op string, filter bson.M) ([]order.Order, error) {
	out := make([]order.Order, 0)

	err := observe(r.prom, op, func() error {
		cur, err := r.coll.Find(ctx, filter, options.Find().SetSort(orderSort))
		if err != nil {
			return err
		}
		return cur.All(ctx, &out)
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *OrdersRepo) SetStatus(ctx context.Context, id string, status order.Status) (order.Order, error) {
	var o order.Order

	err := observe(r.prom, "orders.set_status", func() error {
		return r.coll.FindOneAndUpdate(ctx,
			bson.M{"_id": id},
			bson.M{"$set": bson.M{"status": string(status)}},
			options.FindOneAndUpdate().SetReturnDocument(options.After),
		).Decode(&o)
	})
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return order.Order{}, order.ErrNotFound
		}
		return order.Order{}, err
	}
	return o, nil
}

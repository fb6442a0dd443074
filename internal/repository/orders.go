package repository

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/guttosm/meal-ledger/internal/calendar"
	"github.com/guttosm/meal-ledger/internal/domain/model"
)

// OrdersRepository stores orders in MongoDB, one document per order with its
// leaves and attendance days embedded.
type OrdersRepository struct {
	collection *mongo.Collection
}

// NewOrdersRepository creates a new orders repository.
func NewOrdersRepository(db *MongoDB) *OrdersRepository {
	return &OrdersRepository{
		collection: db.Orders,
	}
}

// Insert stores a new order.
func (r *OrdersRepository) Insert(ctx context.Context, order *model.Order) error {
	if order.ID.IsZero() {
		order.ID = primitive.NewObjectID()
	}
	now := time.Now().UTC()
	order.Version = 1
	order.CreatedAt = now
	order.UpdatedAt = now

	_, err := r.collection.InsertOne(ctx, order)
	return err
}

// Load returns the order with the given id.
func (r *OrdersRepository) Load(ctx context.Context, id primitive.ObjectID) (*model.Order, error) {
	var order model.Order
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&order)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// Save replaces the stored order if its version still matches.
func (r *OrdersRepository) Save(ctx context.Context, order *model.Order) error {
	expected := order.Version
	next := *order
	next.Version = expected + 1
	next.UpdatedAt = time.Now().UTC()

	res, err := r.collection.ReplaceOne(ctx, bson.M{"_id": order.ID, "version": expected}, &next)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		n, err := r.collection.CountDocuments(ctx, bson.M{"_id": order.ID})
		if err != nil {
			return err
		}
		if n == 0 {
			return ErrOrderNotFound
		}
		return ErrVersionConflict
	}

	order.Version = next.Version
	order.UpdatedAt = next.UpdatedAt
	return nil
}

// Delete removes the order with the given id.
func (r *OrdersRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrOrderNotFound
	}
	return nil
}

// ListIDs returns up to limit order ids greater than after, ascending.
func (r *OrdersRepository) ListIDs(ctx context.Context, after primitive.ObjectID, limit int) ([]primitive.ObjectID, error) {
	filter := bson.M{}
	if !after.IsZero() {
		filter["_id"] = bson.M{"$gt": after}
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "_id", Value: 1}}).
		SetProjection(bson.M{"_id": 1})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = cursor.Close(ctx)
	}()

	var docs []struct {
		ID primitive.ObjectID `bson:"_id"`
	}
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}

	ids := make([]primitive.ObjectID, len(docs))
	for i, d := range docs {
		ids[i] = d.ID
	}
	return ids, nil
}

// FindBySubscriber returns the orders of a subscriber, oldest period first.
func (r *OrdersRepository) FindBySubscriber(ctx context.Context, subscriberID string) ([]*model.Order, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "period_start", Value: 1}}).
		SetProjection(bson.M{"attendances": 0})
	return r.find(ctx, bson.M{"subscriber_id": subscriberID}, opts)
}

// FindCovering returns the orders active on day with only that day's attendance.
func (r *OrdersRepository) FindCovering(ctx context.Context, day time.Time) ([]*model.Order, error) {
	day = calendar.Normalize(day)
	filter := bson.M{
		"period_start": bson.M{"$lte": day},
		"period_end":   bson.M{"$gte": day},
	}
	opts := options.Find().SetProjection(bson.M{
		"subscriber_id": 1,
		"plan":          1,
		"period_start":  1,
		"period_end":    1,
		"status":        1,
		"attendances":   bson.M{"$elemMatch": bson.M{"date": day}},
	})
	return r.find(ctx, filter, opts)
}

// CountUnbilledExpired counts orders that ended before today and are not billed yet.
func (r *OrdersRepository) CountUnbilledExpired(ctx context.Context, today time.Time) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{
		"billed":     false,
		"period_end": bson.M{"$lt": calendar.Normalize(today)},
	})
}

func (r *OrdersRepository) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]*model.Order, error) {
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = cursor.Close(ctx)
	}()

	var orders []*model.Order
	if err := cursor.All(ctx, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

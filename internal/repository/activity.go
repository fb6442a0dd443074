package repository

import (
	"context"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/guttosm/meal-ledger/internal/domain/model"
)

// ActivityRepository appends to and reads the activity collection. Entries
// expire through the TTL index managed by MongoDB.SetActivityTTL.
type ActivityRepository struct {
	collection *mongo.Collection
}

// NewActivityRepository creates a new activity repository.
func NewActivityRepository(db *MongoDB) *ActivityRepository {
	return &ActivityRepository{
		collection: db.Activity,
	}
}

// Append stores entries in one round trip. Entries without an id or a time
// get them here. The insert is unordered: one bad document does not stop
// the rest of the batch.
func (r *ActivityRepository) Append(ctx context.Context, entries ...*model.Activity) error {
	if len(entries) == 0 {
		return nil
	}

	now := time.Now().UTC()
	docs := make([]interface{}, len(entries))
	for i, entry := range entries {
		if entry.ID.IsZero() {
			entry.ID = primitive.NewObjectID()
		}
		if entry.At.IsZero() {
			entry.At = now
		}
		docs[i] = entry
	}

	if len(docs) == 1 {
		_, err := r.collection.InsertOne(ctx, docs[0])
		return err
	}
	_, err := r.collection.InsertMany(ctx, docs, options.InsertMany().SetOrdered(false))
	return err
}

// Find returns the entries matching filter, newest first.
func (r *ActivityRepository) Find(ctx context.Context, filter model.ActivityFilter) ([]model.Activity, error) {
	findOptions := options.Find().SetSort(bson.D{{Key: "at", Value: -1}, {Key: "_id", Value: -1}})
	if filter.Limit > 0 {
		findOptions.SetLimit(int64(filter.Limit))
	}
	if filter.Skip > 0 {
		findOptions.SetSkip(int64(filter.Skip))
	}

	cursor, err := r.collection.Find(ctx, activityQuery(filter), findOptions)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = cursor.Close(ctx)
	}()

	entries := make([]model.Activity, 0)
	if err := cursor.All(ctx, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// Count returns how many entries match filter. Limit and Skip are ignored.
func (r *ActivityRepository) Count(ctx context.Context, filter model.ActivityFilter) (int64, error) {
	return r.collection.CountDocuments(ctx, activityQuery(filter))
}

func activityQuery(f model.ActivityFilter) bson.M {
	query := bson.M{}

	if f.Kind != "" {
		query["kind"] = f.Kind
	}
	if f.Action != "" {
		// "order." selects every order action.
		if f.Action[len(f.Action)-1] == '.' {
			query["action"] = bson.M{"$regex": "^" + regexp.QuoteMeta(f.Action)}
		} else {
			query["action"] = f.Action
		}
	}
	if f.OrderID != "" {
		query["order_id"] = f.OrderID
	}
	if f.SubscriberID != "" {
		query["subscriber_id"] = f.SubscriberID
	}
	if f.RequestID != "" {
		query["request_id"] = f.RequestID
	}
	if f.Severity != "" {
		query["severity"] = f.Severity
	}
	if f.From != nil || f.To != nil {
		window := bson.M{}
		if f.From != nil {
			window["$gte"] = *f.From
		}
		if f.To != nil {
			window["$lte"] = *f.To
		}
		query["at"] = window
	}
	return query
}

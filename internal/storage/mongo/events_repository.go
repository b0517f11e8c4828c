package mongo

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/planora-events/server/internal/domain/events"
)

type eventDocument struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	Name      string             `bson:"name"`
	Location  string             `bson:"location"`
	Date      time.Time          `bson:"date"`
	CreatedAt time.Time          `bson:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt"`
}

func (d eventDocument) toDomain() events.Event {
	return events.Event{
		ID:        d.ID.Hex(),
		Name:      d.Name,
		Location:  d.Location,
		Date:      d.Date.UTC(),
		CreatedAt: d.CreatedAt.UTC(),
		UpdatedAt: d.UpdatedAt.UTC(),
	}
}

type EventRepository struct {
	coll *mongo.Collection
}

// objectID maps malformed ids to ErrNotFound so callers cannot tell them
// apart from ids that were never issued.
func objectID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, events.ErrNotFound
	}
	return oid, nil
}

// List returns every event ordered by _id, which follows insertion order.
func (r *EventRepository) List(ctx context.Context) ([]events.Event, error) {
	cursor, err := r.coll.Find(ctx, bson.D{}, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, errors.Wrap(err, "find events")
	}
	var docs []eventDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, errors.Wrap(err, "decode events")
	}
	items := make([]events.Event, 0, len(docs))
	for _, doc := range docs {
		items = append(items, doc.toDomain())
	}
	return items, nil
}

func (r *EventRepository) Get(ctx context.Context, id string) (*events.Event, error) {
	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}
	var doc eventDocument
	if err := r.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, events.ErrNotFound
		}
		return nil, errors.Wrap(err, "find event")
	}
	event := doc.toDomain()
	return &event, nil
}

func (r *EventRepository) Create(ctx context.Context, params events.CreateParams) (*events.Event, error) {
	now := time.Now().UTC().Truncate(time.Millisecond)
	doc := eventDocument{
		ID:        primitive.NewObjectID(),
		Name:      params.Name,
		Location:  params.Location,
		Date:      params.Date.UTC().Truncate(time.Millisecond),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return nil, errors.Wrap(err, "insert event")
	}
	event := doc.toDomain()
	return &event, nil
}

func (r *EventRepository) Update(ctx context.Context, id string, params events.UpdateParams) (*events.Event, error) {
	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}
	set := bson.M{"updatedAt": time.Now().UTC().Truncate(time.Millisecond)}
	if params.Name != nil {
		set["name"] = *params.Name
	}
	if params.Location != nil {
		set["location"] = *params.Location
	}
	if params.Date != nil {
		set["date"] = params.Date.UTC().Truncate(time.Millisecond)
	}

	var doc eventDocument
	err = r.coll.FindOneAndUpdate(ctx,
		bson.M{"_id": oid},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, events.ErrNotFound
		}
		return nil, errors.Wrap(err, "update event")
	}
	event := doc.toDomain()
	return &event, nil
}

func (r *EventRepository) Delete(ctx context.Context, id string) error {
	oid, err := objectID(id)
	if err != nil {
		return err
	}
	result, err := r.coll.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return errors.Wrap(err, "delete event")
	}
	if result.DeletedCount == 0 {
		return events.ErrNotFound
	}
	return nil
}

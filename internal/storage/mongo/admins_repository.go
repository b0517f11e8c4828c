package mongo

import (
	"context"
	"strings"
	"time"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/planora-events/server/internal/domain/admins"
)

type adminDocument struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	FirstName string             `bson:"firstName"`
	LastName  string             `bson:"lastName"`
	Email     string             `bson:"email"`
	Password  string             `bson:"password"`
	CreatedAt time.Time          `bson:"createdAt"`
}

func (d adminDocument) toDomain() *admins.Admin {
	return &admins.Admin{
		ID:           d.ID.Hex(),
		FirstName:    d.FirstName,
		LastName:     d.LastName,
		Email:        d.Email,
		PasswordHash: d.Password,
		CreatedAt:    d.CreatedAt.UTC(),
	}
}

type AdminRepository struct {
	coll *mongo.Collection
}

func (r *AdminRepository) Create(ctx context.Context, params admins.CreateParams) (*admins.Admin, error) {
	doc := adminDocument{
		ID:        primitive.NewObjectID(),
		FirstName: params.FirstName,
		LastName:  params.LastName,
		Email:     strings.ToLower(params.Email),
		Password:  params.PasswordHash,
		CreatedAt: time.Now().UTC().Truncate(time.Millisecond),
	}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, admins.ErrDuplicateEmail
		}
		return nil, errors.Wrap(err, "insert admin")
	}
	return doc.toDomain(), nil
}

func (r *AdminRepository) GetByEmail(ctx context.Context, email string) (*admins.Admin, error) {
	var doc adminDocument
	err := r.coll.FindOne(ctx, bson.M{"email": strings.ToLower(email)}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, admins.ErrNotFound
		}
		return nil, errors.Wrap(err, "find admin by email")
	}
	return doc.toDomain(), nil
}

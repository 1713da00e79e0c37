package cart

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"storefront/internal/models"
)

// ErrCartNotFound reports that no cart is stored for the session.
var ErrCartNotFound = errors.New("cart not found")

// Storage is the durable slot a session's cart is read from at first touch
// and written to on every mutation.
type Storage interface {
	Load(ctx context.Context, sessionID string) (models.Cart, error)
	Save(ctx context.Context, cart models.Cart) error
	Delete(ctx context.Context, sessionID string) error
}

type mongoStorage struct {
	collection *mongo.Collection
}

// NewMongoStorage stores carts in the "carts" collection, one document per
// session, upserted by sessionId.
func NewMongoStorage(db *mongo.Database) Storage {
	return &mongoStorage{collection: db.Collection("carts")}
}

func (m *mongoStorage) Load(ctx context.Context, sessionID string) (models.Cart, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var cart models.Cart
	err := m.collection.FindOne(ctx, bson.M{"sessionId": sessionID}).Decode(&cart)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.Cart{}, ErrCartNotFound
	}
	if err != nil {
		return models.Cart{}, fmt.Errorf("load cart: %w", err)
	}
	return cart, nil
}

func (m *mongoStorage) Save(ctx context.Context, cart models.Cart) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if cart.CreatedAt.IsZero() {
		cart.CreatedAt = time.Now()
	}
	if cart.UpdatedAt.IsZero() {
		cart.UpdatedAt = time.Now()
	}

	filter := bson.M{"sessionId": cart.SessionID}
	update := bson.M{"$set": cart}
	opts := options.Update().SetUpsert(true)

	if _, err := m.collection.UpdateOne(ctx, filter, update, opts); err != nil {
		return fmt.Errorf("save cart: %w", err)
	}
	return nil
}

func (m *mongoStorage) Delete(ctx context.Context, sessionID string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if _, err := m.collection.DeleteOne(ctx, bson.M{"sessionId": sessionID}); err != nil {
		return fmt.Errorf("delete cart: %w", err)
	}
	return nil
}

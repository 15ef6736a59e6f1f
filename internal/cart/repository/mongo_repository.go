package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/mkravets/brewcart/internal/cart"
)

type MongoRepository struct {
	collection *mongo.Collection
}

// NewMongoRepository stores carts in the "carts" collection, one document
// per user. Prices are stored as strings so no precision is lost.
func NewMongoRepository(db *mongo.Database) *MongoRepository {
	return &MongoRepository{collection: db.Collection("carts")}
}

type cartDoc struct {
	UserID    string    `bson:"user_id"`
	Items     []itemDoc `bson:"items"`
	UpdatedAt time.Time `bson:"updated_at"`
}

type itemDoc struct {
	EntryID    string `bson:"entry_id"`
	VariantKey string `bson:"variant_key"`
	Name       string `bson:"name"`
	Image      string `bson:"image,omitempty"`
	UnitPrice  string `bson:"unit_price"`
	Quantity   int    `bson:"quantity"`
}

// CreateIndexes sets up the unique user_id index. Run once at startup.
func (m *MongoRepository) CreateIndexes(ctx context.Context) error {
	model := mongo.IndexModel{
		Keys:    bson.D{{Key: "user_id", Value: 1}},
		Options: options.Index().SetUnique(true),
	}
	if _, err := m.collection.Indexes().CreateOne(ctx, model); err != nil {
		return fmt.Errorf("failed to create cart indexes: %w", err)
	}
	return nil
}

func (m *MongoRepository) GetCart(ctx context.Context, userID string) (cart.State, error) {
	var doc cartDoc

	filter := bson.M{"user_id": userID}
	err := m.collection.FindOne(ctx, filter).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return cart.State{}, cart.ErrCartNotFound
		}
		return cart.State{}, fmt.Errorf("failed to get cart: %w", err)
	}

	return docToState(doc)
}

func (m *MongoRepository) SaveCart(ctx context.Context, userID string, s cart.State) error {
	doc := cartDoc{
		UserID:    userID,
		Items:     make([]itemDoc, 0, len(s.Items)),
		UpdatedAt: time.Now(),
	}
	for _, item := range s.Items {
		doc.Items = append(doc.Items, itemDoc{
			EntryID:    item.EntryID,
			VariantKey: item.VariantKey,
			Name:       item.Name,
			Image:      item.Image,
			UnitPrice:  item.UnitPrice.String(),
			Quantity:   item.Quantity,
		})
	}

	filter := bson.M{"user_id": userID}
	update := bson.M{"$set": doc}
	opts := options.Update().SetUpsert(true)

	if _, err := m.collection.UpdateOne(ctx, filter, update, opts); err != nil {
		return fmt.Errorf("failed to upsert cart: %w", err)
	}
	return nil
}

func (m *MongoRepository) DeleteCart(ctx context.Context, userID string) error {
	filter := bson.M{"user_id": userID}
	if _, err := m.collection.DeleteOne(ctx, filter); err != nil {
		return fmt.Errorf("failed to delete cart: %w", err)
	}
	return nil
}

func docToState(doc cartDoc) (cart.State, error) {
	items := make([]cart.LineItem, 0, len(doc.Items))
	for _, d := range doc.Items {
		p, err := decimal.NewFromString(d.UnitPrice)
		if err != nil {
			return cart.State{}, fmt.Errorf("bad stored price %q: %w", d.UnitPrice, err)
		}
		items = append(items, cart.LineItem{
			EntryID:    d.EntryID,
			VariantKey: d.VariantKey,
			Name:       d.Name,
			Image:      d.Image,
			UnitPrice:  p,
			Quantity:   d.Quantity,
		})
	}

	// Derived fields are recomputed by the engine on Restore; only the
	// item set matters here.
	return cart.State{Items: items}, nil
}

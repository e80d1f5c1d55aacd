package mongodb

import (
	"context"
	"fmt"
	"regexp"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"shop-api/internal/models"
)

type ShopRepository interface {
	GetByIDs(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]*models.Shop, error)
	FindIDsByName(ctx context.Context, name string) ([]primitive.ObjectID, error)
}

type shopRepo struct {
	collection *mongo.Collection
}

func NewShopRepository(db *DB) ShopRepository {
	return &shopRepo{
		collection: db.Database.Collection("shops"),
	}
}

func (r *shopRepo) GetByIDs(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]*models.Shop, error) {
	shops := make(map[primitive.ObjectID]*models.Shop, len(ids))
	if len(ids) == 0 {
		return shops, nil
	}

	cursor, err := r.collection.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, fmt.Errorf("find shops: %w", err)
	}
	defer cursor.Close(ctx)

	for cursor.Next(ctx) {
		var shop models.Shop
		if err := cursor.Decode(&shop); err != nil {
			return nil, fmt.Errorf("decode shop: %w", err)
		}
		shops[shop.ID] = &shop
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("cursor error: %w", err)
	}

	return shops, nil
}

// FindIDsByName matches shop names by case-insensitive substring.
func (r *shopRepo) FindIDsByName(ctx context.Context, name string) ([]primitive.ObjectID, error) {
	filter := bson.M{"name": primitive.Regex{Pattern: regexp.QuoteMeta(name), Options: "i"}}

	cursor, err := r.collection.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("find shops by name: %w", err)
	}
	defer cursor.Close(ctx)

	ids := []primitive.ObjectID{}
	for cursor.Next(ctx) {
		var shop models.Shop
		if err := cursor.Decode(&shop); err != nil {
			return nil, fmt.Errorf("decode shop: %w", err)
		}
		ids = append(ids, shop.ID)
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("cursor error: %w", err)
	}

	return ids, nil
}

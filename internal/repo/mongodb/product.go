package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"golang.org/x/sync/errgroup"

	"shop-api/internal/models"
)

type ProductPage struct {
	Total int64
	Items []*models.Product
}

type ProductRepository interface {
	Create(ctx context.Context, product *models.Product) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Product, error)
	FindPage(ctx context.Context, filter bson.M, limit, skip int64) (*ProductPage, error)
	Update(ctx context.Context, id primitive.ObjectID, set bson.M) error
	Delete(ctx context.Context, id primitive.ObjectID) error
}

type productRepo struct {
	collection *mongo.Collection
}

func NewProductRepository(db *DB) ProductRepository {
	return &productRepo{
		collection: db.Database.Collection("products"),
	}
}

func (r *productRepo) Create(ctx context.Context, product *models.Product) error {
	product.ID = primitive.NewObjectID()
	product.CreatedAt = time.Now()
	product.UpdatedAt = time.Now()

	if _, err := r.collection.InsertOne(ctx, product); err != nil {
		return fmt.Errorf("create product: %w", err)
	}
	return nil
}

func (r *productRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Product, error) {
	var product models.Product
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&product)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get product: %w", err)
	}
	return &product, nil
}

// FindPage runs the count and the page query concurrently under the same
// filter. Results are ordered by ascending _id so pages are stable.
func (r *productRepo) FindPage(ctx context.Context, filter bson.M, limit, skip int64) (*ProductPage, error) {
	group, ctx := errgroup.WithContext(ctx)
	var items []*models.Product
	var total int64

	group.Go(func() error {
		opts := options.Find().
			SetSort(bson.D{{Key: "_id", Value: 1}}).
			SetSkip(skip).
			SetLimit(limit)
		cursor, err := r.collection.Find(ctx, filter, opts)
		if err != nil {
			return fmt.Errorf("find: %w", err)
		}
		if err := cursor.All(ctx, &items); err != nil {
			return fmt.Errorf("cursor all: %w", err)
		}
		return nil
	})

	group.Go(func() error {
		count, err := r.collection.CountDocuments(ctx, filter)
		if err != nil {
			return fmt.Errorf("count documents: %w", err)
		}
		total = count
		return nil
	})

	if err := group.Wait(); err != nil {
		return nil, err
	}

	return &ProductPage{Total: total, Items: items}, nil
}

// Update applies the given fields without checking that the product exists;
// an unknown id is a silent no-op.
func (r *productRepo) Update(ctx context.Context, id primitive.ObjectID, set bson.M) error {
	set["updated_at"] = time.Now()

	_, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set})
	if err != nil {
		return fmt.Errorf("update product: %w", err)
	}
	return nil
}

func (r *productRepo) Delete(ctx context.Context, id primitive.ObjectID) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	if result.DeletedCount == 0 {
		return models.ErrNotFound
	}
	return nil
}

package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Product belongs to exactly one Shop and one User. Both foreign keys are
// assigned at creation from the authenticated context and never changed by
// the update flow.
type Product struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name      string             `bson:"name" json:"name"`
	Price     float64            `bson:"price" json:"price"`
	Stock     int                `bson:"stock" json:"stock"`
	ImageURL  []string           `bson:"image_url" json:"imageUrl"`
	ShopID    primitive.ObjectID `bson:"shop_id" json:"shopId"`
	UserID    primitive.ObjectID `bson:"user_id" json:"userId"`
	CreatedAt time.Time          `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updated_at" json:"updatedAt"`
}

// ProductListItem is the projection returned by the listing endpoint.
// The product id is intentionally absent from this shape.
type ProductListItem struct {
	Name      string    `json:"name"`
	Price     float64   `json:"price"`
	Stock     int       `json:"stock"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
	Shop      ShopRef   `json:"shop"`
	User      UserRef   `json:"user"`
}

type ShopRef struct {
	ID   primitive.ObjectID `json:"id"`
	Name string             `json:"name"`
}

type UserRef struct {
	Name string `json:"name"`
}

type Pagination struct {
	TotalData  int64 `json:"totalData"`
	TotalPages int64 `json:"totalPages"`
	PageNum    int64 `json:"pageNum"`
	PageSize   int64 `json:"pageSize"`
}

type ProductPage struct {
	Products   []ProductListItem `json:"products"`
	Pagination Pagination        `json:"pagination"`
}

package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const RoleAdmin = "Admin"

// User is the authenticated actor resolved by the upstream identity layer.
// Role and ShopID are trusted as-is; nothing in a request body ever
// overrides them.
type User struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name      string             `bson:"name" json:"name"`
	Role      string             `bson:"role" json:"role"`
	ShopID    primitive.ObjectID `bson:"shop_id" json:"shopId"`
	CreatedAt time.Time          `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updated_at" json:"updatedAt"`
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

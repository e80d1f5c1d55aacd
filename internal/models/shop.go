package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Shop is the tenant that owns products. Referenced, never mutated, by this
// service.
type Shop struct {
	ID   primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name string             `bson:"name" json:"name"`
}

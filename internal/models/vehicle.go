package models

import (
	"time"
)

// Vehicle represents a tracked car, motorcycle or truck owned by one user account.
type Vehicle struct {
	ID             string    `bson:"_id" json:"id"`
	OwnerID        string    `bson:"owner_id" json:"owner_id"`
	Name           string    `bson:"name" json:"name"`
	Category       *string   `bson:"category,omitempty" json:"category,omitempty"` // e.g. "sedan", "SUV", "motorcycle"
	CurrentMileage int       `bson:"current_mileage" json:"current_mileage"`       // in kilometers
	LastUpdated    time.Time `bson:"last_updated" json:"last_updated"`
	CreatedAt      time.Time `bson:"created_at" json:"created_at"`
}

// VehicleUpdate carries the fields of a vehicle edit. Nil fields are left untouched.
type VehicleUpdate struct {
	Name           *string
	Category       *string
	CurrentMileage *int
	LastUpdated    time.Time
}

// ClearsCategory reports whether the update removes the category.
func (u VehicleUpdate) ClearsCategory() bool {
	return u.Category != nil && *u.Category == ""
}

// In returns v with its timestamps in loc.
func (v Vehicle) In(loc *time.Location) Vehicle {
	v.LastUpdated = v.LastUpdated.In(loc)
	v.CreatedAt = v.CreatedAt.In(loc)
	return v
}

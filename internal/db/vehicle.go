package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/ukydev/maintenance-tracker/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoVehicleCollection implements VehicleCollection for MongoDB.
type MongoVehicleCollection struct {
	Collection *mongo.Collection
}

// InsertVehicle inserts a vehicle record into the collection.
func (c *MongoVehicleCollection) InsertVehicle(ctx context.Context, vehicle models.Vehicle) error {
	if c.Collection == nil {
		return errNilCollection
	}
	_, err := c.Collection.InsertOne(ctx, vehicle)
	return err
}

// FindVehiclesByOwner queries the owner's vehicles ordered by creation time.
func (c *MongoVehicleCollection) FindVehiclesByOwner(ctx context.Context, ownerID string) ([]models.Vehicle, error) {
	if c.Collection == nil {
		return nil, errNilCollection
	}

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})
	cursor, err := c.Collection.Find(ctx, bson.M{"owner_id": ownerID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	vehicles := []models.Vehicle{}
	if err := cursor.All(ctx, &vehicles); err != nil {
		return nil, err
	}
	return vehicles, nil
}

// FindVehicleByID finds one of the owner's vehicles by its ID.
func (c *MongoVehicleCollection) FindVehicleByID(ctx context.Context, ownerID, id string) (*models.Vehicle, error) {
	if c.Collection == nil {
		return nil, errNilCollection
	}

	var vehicle models.Vehicle
	err := c.Collection.FindOne(ctx, bson.M{"_id": id, "owner_id": ownerID}).Decode(&vehicle)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("vehicle %s: %w", id, ErrNotFound)
		}
		return nil, err
	}
	return &vehicle, nil
}

// UpdateVehicle applies an update to one of the owner's vehicles.
func (c *MongoVehicleCollection) UpdateVehicle(ctx context.Context, ownerID, id string, update models.VehicleUpdate) error {
	if c.Collection == nil {
		return errNilCollection
	}

	result, err := c.Collection.UpdateOne(ctx, bson.M{"_id": id, "owner_id": ownerID}, vehicleUpdateDocument(update))
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("vehicle %s: %w", id, ErrNotFound)
	}
	return nil
}

func vehicleUpdateDocument(update models.VehicleUpdate) bson.M {
	set := bson.M{"last_updated": update.LastUpdated}
	if update.Name != nil {
		set["name"] = *update.Name
	}
	if update.CurrentMileage != nil {
		set["current_mileage"] = *update.CurrentMileage
	}

	doc := bson.M{"$set": set}
	switch {
	case update.ClearsCategory():
		doc["$unset"] = bson.M{"category": ""}
	case update.Category != nil:
		set["category"] = *update.Category
	}
	return doc
}

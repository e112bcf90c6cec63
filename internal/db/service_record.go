package db

import (
	"context"

	"github.com/ukydev/maintenance-tracker/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoServiceRecordCollection implements ServiceRecordCollection for MongoDB.
type MongoServiceRecordCollection struct {
	Collection *mongo.Collection
}

// InsertServiceRecord inserts a service record into the collection.
func (c *MongoServiceRecordCollection) InsertServiceRecord(ctx context.Context, record models.ServiceRecord) error {
	if c.Collection == nil {
		return errNilCollection
	}
	_, err := c.Collection.InsertOne(ctx, record)
	return err
}

// FindServiceRecordsByVehicle queries a vehicle's service records, newest first.
func (c *MongoServiceRecordCollection) FindServiceRecordsByVehicle(ctx context.Context, vehicleID string) ([]models.ServiceRecord, error) {
	if c.Collection == nil {
		return nil, errNilCollection
	}

	opts := options.Find().SetSort(bson.D{{Key: "date", Value: -1}})
	cursor, err := c.Collection.Find(ctx, bson.M{"vehicle_id": vehicleID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	records := []models.ServiceRecord{}
	if err := cursor.All(ctx, &records); err != nil {
		return nil, err
	}
	return records, nil
}

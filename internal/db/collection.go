package db

import (
	"context"
	"errors"

	"github.com/ukydev/maintenance-tracker/internal/models"
)

// ErrNotFound is returned when a lookup or update by id matches nothing.
var ErrNotFound = errors.New("not found")

// VehicleCollection defines the interface for vehicle data operations.
// Every operation is scoped to the owning user.
type VehicleCollection interface {
	InsertVehicle(ctx context.Context, vehicle models.Vehicle) error
	// FindVehiclesByOwner returns the owner's vehicles, oldest first.
	FindVehiclesByOwner(ctx context.Context, ownerID string) ([]models.Vehicle, error)
	FindVehicleByID(ctx context.Context, ownerID, id string) (*models.Vehicle, error)
	UpdateVehicle(ctx context.Context, ownerID, id string, update models.VehicleUpdate) error
}

// ServiceRecordCollection defines the interface for service record data operations.
type ServiceRecordCollection interface {
	InsertServiceRecord(ctx context.Context, record models.ServiceRecord) error
	// FindServiceRecordsByVehicle returns the vehicle's records, newest first.
	FindServiceRecordsByVehicle(ctx context.Context, vehicleID string) ([]models.ServiceRecord, error)
}

package controller

import (
	"context"

	"github.com/stretchr/testify/mock"
	"github.com/ukydev/maintenance-tracker/internal/models"
	"github.com/ukydev/maintenance-tracker/internal/notify"
)

// MockVehicleCollection is a mock implementation of VehicleCollection. Find
// methods accept either a value or a function computing it at call time.
type MockVehicleCollection struct {
	mock.Mock
}

func (m *MockVehicleCollection) InsertVehicle(ctx context.Context, vehicle models.Vehicle) error {
	args := m.Called(ctx, vehicle)
	return args.Error(0)
}

func (m *MockVehicleCollection) FindVehiclesByOwner(ctx context.Context, ownerID string) ([]models.Vehicle, error) {
	args := m.Called(ctx, ownerID)
	if fn, ok := args.Get(0).(func(context.Context, string) []models.Vehicle); ok {
		return fn(ctx, ownerID), args.Error(1)
	}
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Vehicle), args.Error(1)
}

func (m *MockVehicleCollection) FindVehicleByID(ctx context.Context, ownerID, id string) (*models.Vehicle, error) {
	args := m.Called(ctx, ownerID, id)
	if fn, ok := args.Get(0).(func(context.Context, string, string) *models.Vehicle); ok {
		return fn(ctx, ownerID, id), args.Error(1)
	}
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Vehicle), args.Error(1)
}

func (m *MockVehicleCollection) UpdateVehicle(ctx context.Context, ownerID, id string, update models.VehicleUpdate) error {
	args := m.Called(ctx, ownerID, id, update)
	return args.Error(0)
}

// MockServiceRecordCollection is a mock implementation of ServiceRecordCollection
type MockServiceRecordCollection struct {
	mock.Mock
}

func (m *MockServiceRecordCollection) InsertServiceRecord(ctx context.Context, record models.ServiceRecord) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

func (m *MockServiceRecordCollection) FindServiceRecordsByVehicle(ctx context.Context, vehicleID string) ([]models.ServiceRecord, error) {
	args := m.Called(ctx, vehicleID)
	if fn, ok := args.Get(0).(func(context.Context, string) []models.ServiceRecord); ok {
		return fn(ctx, vehicleID), args.Error(1)
	}
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.ServiceRecord), args.Error(1)
}

// MockNotifier is a mock implementation of notify.Notifier
type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) Permission() notify.Permission {
	args := m.Called()
	return args.Get(0).(notify.Permission)
}

func (m *MockNotifier) RequestPermission(ctx context.Context) notify.Permission {
	args := m.Called(ctx)
	return args.Get(0).(notify.Permission)
}

func (m *MockNotifier) Notify(ctx context.Context, n notify.Notification) error {
	args := m.Called(ctx, n)
	return args.Error(0)
}

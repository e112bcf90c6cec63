package maintenance

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/ukydev/maintenance-tracker/internal/models"
)

// DefaultVehicleName is used when a new vehicle is submitted without a name.
const DefaultVehicleName = "My vehicle"

// VehicleInput is the raw form input of the add and edit vehicle forms.
type VehicleInput struct {
	Name     string
	Category string
	Mileage  string
}

// BuildVehicle validates input for a new vehicle owned by ownerID.
func BuildVehicle(ownerID string, in VehicleInput, now time.Time) (models.Vehicle, error) {
	var errs ValidationErrors
	mileage := parseWholeNumber(&errs, "mileage", in.Mileage, 0, MaxMileageKm)
	if err := errs.orNil(); err != nil {
		return models.Vehicle{}, err
	}

	name := strings.TrimSpace(in.Name)
	if name == "" {
		name = DefaultVehicleName
	}

	return models.Vehicle{
		ID:             uuid.NewString(),
		OwnerID:        ownerID,
		Name:           name,
		Category:       optionalText(in.Category),
		CurrentMileage: mileage,
		LastUpdated:    now,
		CreatedAt:      now,
	}, nil
}

// BuildVehicleUpdate validates an edit of an existing vehicle. An empty name
// keeps the current one; an empty category clears it.
func BuildVehicleUpdate(in VehicleInput, now time.Time) (models.VehicleUpdate, error) {
	var errs ValidationErrors
	mileage := parseWholeNumber(&errs, "mileage", in.Mileage, 0, MaxMileageKm)
	if err := errs.orNil(); err != nil {
		return models.VehicleUpdate{}, err
	}

	update := models.VehicleUpdate{
		CurrentMileage: &mileage,
		LastUpdated:    now,
	}
	if name := strings.TrimSpace(in.Name); name != "" {
		update.Name = &name
	}
	category := strings.TrimSpace(in.Category)
	update.Category = &category
	return update, nil
}

// BuildMileageUpdate validates a new odometer reading for the active vehicle.
func BuildMileageUpdate(raw string, now time.Time) (models.VehicleUpdate, error) {
	var errs ValidationErrors
	mileage := parseWholeNumber(&errs, "mileage", raw, 0, MaxMileageKm)
	if err := errs.orNil(); err != nil {
		return models.VehicleUpdate{}, err
	}
	return models.VehicleUpdate{CurrentMileage: &mileage, LastUpdated: now}, nil
}

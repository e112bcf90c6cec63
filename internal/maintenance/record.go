package maintenance

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/ukydev/maintenance-tracker/internal/models"
)

// ServiceRecordInput is the raw form input of a new service record.
type ServiceRecordInput struct {
	VehicleID      string
	ServiceType    string
	Date           string // YYYY-MM-DD or RFC 3339; empty means today
	Mileage        string
	IntervalKm     string
	IntervalMonths string
	OilType        string
	Note           string
}

// BuildServiceRecord validates raw input and derives the next-due projection
// fields. Validation failures are returned as ValidationErrors.
func BuildServiceRecord(in ServiceRecordInput, now time.Time) (models.ServiceRecord, error) {
	var errs ValidationErrors

	serviceType := models.ServiceType(strings.TrimSpace(in.ServiceType))
	if serviceType == "" {
		serviceType = models.ServiceTypeOilChange
	} else if !models.IsValidServiceType(serviceType) {
		errs.add("service_type", "is not a supported service type")
	}

	date, ok := parseServiceDate(in.Date, now)
	if !ok {
		errs.add("date", "must be a date in YYYY-MM-DD format")
	}

	mileage := parseWholeNumber(&errs, "mileage", in.Mileage, 1, MaxMileageKm)
	intervalKm := parseWholeNumber(&errs, "interval_km", in.IntervalKm, 1, MaxIntervalKm)
	intervalMonths := parseWholeNumber(&errs, "interval_months", in.IntervalMonths, 1, MaxIntervalMonths)

	if err := errs.orNil(); err != nil {
		return models.ServiceRecord{}, err
	}

	record := models.ServiceRecord{
		ID:                uuid.NewString(),
		VehicleID:         in.VehicleID,
		ServiceType:       serviceType,
		Date:              date,
		MileageAtChange:   mileage,
		IntervalKm:        intervalKm,
		IntervalMonths:    intervalMonths,
		NextChangeMileage: mileage + intervalKm,
		NextChangeDate:    AddMonths(date, intervalMonths),
		Note:              optionalText(in.Note),
		CreatedAt:         now,
	}
	if serviceType == models.ServiceTypeOilChange {
		record.OilType = optionalText(in.OilType)
	}
	return record, nil
}

func parseServiceDate(raw string, now time.Time) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		y, m, d := now.Date()
		return time.Date(y, m, d, 0, 0, 0, 0, now.Location()), true
	}
	if t, err := time.ParseInLocation("2006-01-02", raw, now.Location()); err == nil {
		return t, true
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, true
	}
	return time.Time{}, false
}

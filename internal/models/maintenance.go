package models

import (
	"time"
)

// ServiceType identifies the kind of maintenance performed.
type ServiceType string

const (
	ServiceTypeOilChange  ServiceType = "oil_change"
	ServiceTypeAirFilter  ServiceType = "air_filter"
	ServiceTypeCoolant    ServiceType = "coolant"
	ServiceTypeBrakeFluid ServiceType = "brake_fluid"
)

// ServiceTypes lists the supported service types in display order.
var ServiceTypes = []ServiceType{
	ServiceTypeOilChange,
	ServiceTypeAirFilter,
	ServiceTypeCoolant,
	ServiceTypeBrakeFluid,
}

// ServiceTypeLabels are the display names of the supported service types.
var ServiceTypeLabels = map[ServiceType]string{
	ServiceTypeOilChange:  "Oil change",
	ServiceTypeAirFilter:  "Air filter",
	ServiceTypeCoolant:    "Coolant",
	ServiceTypeBrakeFluid: "Brake fluid",
}

// Label returns the display name of t. Unknown types render as their raw
// value; the empty type is a legacy oil change.
func (t ServiceType) Label() string {
	if t == "" {
		return ServiceTypeLabels[ServiceTypeOilChange]
	}
	if label, ok := ServiceTypeLabels[t]; ok {
		return label
	}
	return string(t)
}

// IsValidServiceType checks if a service type is one of the supported values.
func IsValidServiceType(t ServiceType) bool {
	switch t {
	case ServiceTypeOilChange, ServiceTypeAirFilter, ServiceTypeCoolant, ServiceTypeBrakeFluid:
		return true
	default:
		return false
	}
}

// ServiceRecord is an immutable log entry of a completed maintenance action.
type ServiceRecord struct {
	ID                string      `json:"id" bson:"_id"`
	VehicleID         string      `json:"vehicle_id" bson:"vehicle_id"`
	ServiceType       ServiceType `json:"service_type,omitempty" bson:"service_type,omitempty"` // empty on records created before service types existed
	Date              time.Time   `json:"date" bson:"date"`
	MileageAtChange   int         `json:"mileage_at_change" bson:"mileage_at_change"` // in kilometers
	IntervalKm        int         `json:"interval_km" bson:"interval_km"`
	IntervalMonths    int         `json:"interval_months" bson:"interval_months"`
	NextChangeMileage int         `json:"next_change_mileage" bson:"next_change_mileage"`
	NextChangeDate    time.Time   `json:"next_change_date" bson:"next_change_date"`
	Note              *string     `json:"note,omitempty" bson:"note,omitempty"`
	OilType           *string     `json:"oil_type,omitempty" bson:"oil_type,omitempty"`
	CreatedAt         time.Time   `json:"created_at" bson:"created_at"`
}

// IsOilChange reports whether the record counts as an oil change.
// Records without a service type predate the field and are oil changes.
func (r *ServiceRecord) IsOilChange() bool {
	return r.ServiceType == "" || r.ServiceType == ServiceTypeOilChange
}

// In returns r with its dates in loc. Stores keep instants in UTC; the
// calendar day of Date and NextChangeDate is only meaningful in the location
// the record was entered in.
func (r ServiceRecord) In(loc *time.Location) ServiceRecord {
	if !r.Date.IsZero() {
		r.Date = r.Date.In(loc)
	}
	if !r.NextChangeDate.IsZero() {
		r.NextChangeDate = r.NextChangeDate.In(loc)
	}
	r.CreatedAt = r.CreatedAt.In(loc)
	return r
}

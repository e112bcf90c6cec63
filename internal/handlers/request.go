package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/ukydev/maintenance-tracker/internal/maintenance"
)

// FlexString accepts a JSON string or number and keeps its text, so that a
// missing value and a non-numeric one stay distinguishable during validation.
type FlexString string

func (f *FlexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*f = ""
		return nil
	case len(data) > 0 && data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = FlexString(s)
		return nil
	default:
		var n json.Number
		if err := json.Unmarshal(data, &n); err != nil {
			return fmt.Errorf("expected string or number, got %s", data)
		}
		*f = FlexString(n.String())
		return nil
	}
}

type vehicleRequest struct {
	Name     string     `json:"name"`
	Category string     `json:"category"`
	Mileage  FlexString `json:"mileage"`
}

func (r vehicleRequest) input() maintenance.VehicleInput {
	return maintenance.VehicleInput{
		Name:     r.Name,
		Category: r.Category,
		Mileage:  string(r.Mileage),
	}
}

type mileageRequest struct {
	Mileage FlexString `json:"mileage"`
}

type serviceRecordRequest struct {
	ServiceType    string     `json:"service_type"`
	Date           string     `json:"date"`
	Mileage        FlexString `json:"mileage"`
	IntervalKm     FlexString `json:"interval_km"`
	IntervalMonths FlexString `json:"interval_months"`
	OilType        string     `json:"oil_type"`
	Note           string     `json:"note"`
}

func (r serviceRecordRequest) input() maintenance.ServiceRecordInput {
	return maintenance.ServiceRecordInput{
		ServiceType:    r.ServiceType,
		Date:           r.Date,
		Mileage:        string(r.Mileage),
		IntervalKm:     string(r.IntervalKm),
		IntervalMonths: string(r.IntervalMonths),
		OilType:        r.OilType,
		Note:           r.Note,
	}
}

package models

import (
	"testing"
)

func TestIsValidServiceType(t *testing.T) {
	tests := []struct {
		name        string
		serviceType ServiceType
		expected    bool
	}{
		{"oil change", ServiceTypeOilChange, true},
		{"air filter", ServiceTypeAirFilter, true},
		{"coolant", ServiceTypeCoolant, true},
		{"brake fluid", ServiceTypeBrakeFluid, true},
		{"tire rotation", "tire_rotation", false},
		{"empty type", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := IsValidServiceType(tt.serviceType)
			if result != tt.expected {
				t.Errorf("IsValidServiceType(%s) = %v, want %v", tt.serviceType, result, tt.expected)
			}
		})
	}
}

func TestServiceRecord_IsOilChange(t *testing.T) {
	tests := []struct {
		name        string
		serviceType ServiceType
		expected    bool
	}{
		{"explicit oil change", ServiceTypeOilChange, true},
		{"legacy record without type", "", true},
		{"coolant", ServiceTypeCoolant, false},
		{"brake fluid", ServiceTypeBrakeFluid, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := &ServiceRecord{ServiceType: tt.serviceType}
			if got := r.IsOilChange(); got != tt.expected {
				t.Errorf("IsOilChange() with type %q = %v, want %v", tt.serviceType, got, tt.expected)
			}
		})
	}
}

func TestVehicleUpdate_ClearsCategory(t *testing.T) {
	empty := ""
	suv := "SUV"

	if (VehicleUpdate{}).ClearsCategory() {
		t.Error("expected untouched category not to be cleared")
	}
	if !(VehicleUpdate{Category: &empty}).ClearsCategory() {
		t.Error("expected empty category to clear the field")
	}
	if (VehicleUpdate{Category: &suv}).ClearsCategory() {
		t.Error("expected a category value not to clear the field")
	}
}

func TestServiceType_Label(t *testing.T) {
	tests := []struct {
		serviceType ServiceType
		expected    string
	}{
		{ServiceTypeOilChange, "Oil change"},
		{ServiceTypeBrakeFluid, "Brake fluid"},
		{"", "Oil change"},
		{"tire_rotation", "tire_rotation"},
	}

	for _, tt := range tests {
		if got := tt.serviceType.Label(); got != tt.expected {
			t.Errorf("ServiceType(%q).Label() = %q, want %q", tt.serviceType, got, tt.expected)
		}
	}
	for _, st := range ServiceTypes {
		if _, ok := ServiceTypeLabels[st]; !ok {
			t.Errorf("service type %s has no label", st)
		}
	}
}

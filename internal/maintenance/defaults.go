package maintenance

import "github.com/ukydev/maintenance-tracker/internal/models"

const (
	DefaultIntervalKm     = 5000
	DefaultIntervalMonths = 6
)

// CategoryOptions are the suggested vehicle categories.
var CategoryOptions = []string{
	"sedan",
	"hatchback",
	"SUV",
	"pickup",
	"van",
	"truck",
	"motorcycle",
	"other",
}

// OilTypeOptions are the suggested oil type labels.
var OilTypeOptions = []string{"Behran", "Locomoly"}

// FormDefaults is what a client needs to pre-fill its forms.
type FormDefaults struct {
	IntervalKm        int                           `json:"interval_km"`
	IntervalMonths    int                           `json:"interval_months"`
	Categories        []string                      `json:"categories"`
	OilTypes          []string                      `json:"oil_types"`
	ServiceTypes      []models.ServiceType          `json:"service_types"`
	ServiceTypeLabels map[models.ServiceType]string `json:"service_type_labels"`
	WarningKm         int                           `json:"warning_km"`
	WarningDays       int                           `json:"warning_days"`
}

// Defaults returns the form defaults.
func Defaults() FormDefaults {
	return FormDefaults{
		IntervalKm:        DefaultIntervalKm,
		IntervalMonths:    DefaultIntervalMonths,
		Categories:        CategoryOptions,
		OilTypes:          OilTypeOptions,
		ServiceTypes:      models.ServiceTypes,
		ServiceTypeLabels: models.ServiceTypeLabels,
		WarningKm:         WarningKmThreshold,
		WarningDays:       WarningDaysThreshold,
	}
}

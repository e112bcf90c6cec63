// Package maintenance turns service history into due-status projections and
// validates raw input before records and vehicles are persisted.
package maintenance

import (
	"math"
	"time"

	"github.com/ukydev/maintenance-tracker/internal/models"
)

// Level is the severity of a vehicle's due-status.
type Level string

const (
	LevelUnknown Level = "unknown"
	LevelGood    Level = "good"
	LevelWarning Level = "warning"
	LevelDanger  Level = "danger"
)

const (
	// WarningKmThreshold is the remaining distance below which a vehicle is in warning.
	WarningKmThreshold = 1000
	// WarningDaysThreshold is the remaining day count below which a vehicle is in warning.
	WarningDaysThreshold = 14
)

// DisplayDateLayout is the layout used for display-formatted dates.
const DisplayDateLayout = "2006-01-02"

// Projection holds the numbers behind a known status.
type Projection struct {
	KmDriven          int       `json:"km_driven"`
	KmRemaining       int       `json:"km_remaining"`
	PercentUsed       float64   `json:"percent_used"` // clamped to [0, 100], display only
	DaysRemaining     int       `json:"days_remaining"`
	NextDueMileage    int       `json:"next_due_mileage"`
	NextDueDate       time.Time `json:"next_due_date"`
	NextDueDateText   string    `json:"next_due_date_text"`
	NextDueDateJalali string    `json:"next_due_date_jalali"` // e.g. 1403/06/11
}

// Status is the due-status snapshot of a vehicle. Projection is nil when the
// level is unknown.
type Status struct {
	Level      Level       `json:"level"`
	Projection *Projection `json:"projection,omitempty"`
}

// ComputeStatus projects the due-status of a vehicle from its current mileage and
// its most recent oil change. It must be re-evaluated with the current time on
// every use; the result depends on now.
func ComputeStatus(currentMileage int, last *models.ServiceRecord, now time.Time) Status {
	if last == nil {
		return Status{Level: LevelUnknown}
	}

	kmDriven := currentMileage - last.MileageAtChange
	kmRemaining := last.IntervalKm - kmDriven
	daysRemaining := DaysUntil(now, last.NextChangeDate)

	return Status{
		Level: classify(kmRemaining, daysRemaining),
		Projection: &Projection{
			KmDriven:          kmDriven,
			KmRemaining:       kmRemaining,
			PercentUsed:       percentUsed(kmDriven, last.IntervalKm),
			DaysRemaining:     daysRemaining,
			NextDueMileage:    last.NextChangeMileage,
			NextDueDate:       last.NextChangeDate,
			NextDueDateText:   FormatDate(last.NextChangeDate),
			NextDueDateJalali: FormatJalaliDate(last.NextChangeDate),
		},
	}
}

// classify applies the severity rules in precedence order: danger, warning, good.
func classify(kmRemaining, daysRemaining int) Level {
	switch {
	case kmRemaining <= 0 || daysRemaining <= 0:
		return LevelDanger
	case kmRemaining < WarningKmThreshold || daysRemaining < WarningDaysThreshold:
		return LevelWarning
	default:
		return LevelGood
	}
}

func percentUsed(kmDriven, intervalKm int) float64 {
	// BuildServiceRecord rejects non-positive intervals; a stored record that
	// still has one is reported as fully used.
	if intervalKm <= 0 {
		return 100
	}
	p := float64(kmDriven) / float64(intervalKm) * 100
	return math.Min(100, math.Max(0, p))
}

// LatestOilChange returns the oil-change record with the greatest date, or nil.
// Records without a service type count as oil changes.
func LatestOilChange(history []models.ServiceRecord) *models.ServiceRecord {
	var latest *models.ServiceRecord
	for i := range history {
		r := &history[i]
		if !r.IsOilChange() {
			continue
		}
		if latest == nil || r.Date.After(latest.Date) {
			latest = r
		}
	}
	return latest
}

// DaysUntil returns the number of calendar days from now until due, rounded up:
// the smallest d for which now advanced by d calendar days is not before due.
// Day arithmetic happens in due's location, so DST transitions do not shift
// the count.
func DaysUntil(now, due time.Time) int {
	now = now.In(due.Location())

	y1, m1, d1 := now.Date()
	y2, m2, d2 := due.Date()
	from := time.Date(y1, m1, d1, 0, 0, 0, 0, time.UTC)
	to := time.Date(y2, m2, d2, 0, 0, 0, 0, time.UTC)
	days := int(to.Sub(from).Hours() / 24)

	for now.AddDate(0, 0, days).Before(due) {
		days++
	}
	for !now.AddDate(0, 0, days-1).Before(due) {
		days--
	}
	return days
}

// FormatDate renders a date for display. The zero time renders as "".
func FormatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(DisplayDateLayout)
}

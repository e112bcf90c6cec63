// Package calendar builds calendar deep links for upcoming services.
package calendar

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/ukydev/maintenance-tracker/internal/models"
)

const (
	googleCalendarURL = "https://calendar.google.com/calendar/render"
	allDayLayout      = "20060102"
)

var ErrNoDueDate = errors.New("service record has no next change date")

// ReminderLink returns a Google Calendar link that pre-fills an all-day event on
// the record's next change date.
func ReminderLink(vehicleName string, r models.ServiceRecord) (string, error) {
	if r.NextChangeDate.IsZero() {
		return "", ErrNoDueDate
	}

	start := r.NextChangeDate
	// all-day events end on the following day, exclusive
	end := start.AddDate(0, 0, 1)

	title := r.ServiceType.Label() + " reminder"
	if name := strings.TrimSpace(vehicleName); name != "" {
		title += " - " + name
	}

	q := url.Values{}
	q.Set("action", "TEMPLATE")
	q.Set("text", title)
	q.Set("dates", start.Format(allDayLayout)+"/"+end.Format(allDayLayout))
	q.Set("details", fmt.Sprintf("Next service due at %s km", humanize.Comma(int64(r.NextChangeMileage))))

	return googleCalendarURL + "?" + q.Encode(), nil
}

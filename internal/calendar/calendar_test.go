package calendar

import (
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ukydev/maintenance-tracker/internal/models"
)

func TestReminderLink(t *testing.T) {
	record := models.ServiceRecord{
		ServiceType:       models.ServiceTypeOilChange,
		NextChangeMileage: 45000,
		NextChangeDate:    time.Date(2024, time.December, 31, 0, 0, 0, 0, time.UTC),
	}

	link, err := ReminderLink("Pride", record)
	require.NoError(t, err)

	u, err := url.Parse(link)
	require.NoError(t, err)
	assert.Equal(t, "calendar.google.com", u.Host)
	assert.Equal(t, "/calendar/render", u.Path)

	q := u.Query()
	assert.Equal(t, "TEMPLATE", q.Get("action"))
	assert.Equal(t, "Oil change reminder - Pride", q.Get("text"))
	assert.Equal(t, "20241231/20250101", q.Get("dates"))
	assert.Equal(t, "Next service due at 45,000 km", q.Get("details"))
}

func TestReminderLink_NoVehicleName(t *testing.T) {
	record := models.ServiceRecord{
		ServiceType:       models.ServiceTypeBrakeFluid,
		NextChangeMileage: 120500,
		NextChangeDate:    time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC),
	}

	link, err := ReminderLink("  ", record)
	require.NoError(t, err)

	u, err := url.Parse(link)
	require.NoError(t, err)
	assert.Equal(t, "Brake fluid reminder", u.Query().Get("text"))
	assert.Equal(t, "Next service due at 120,500 km", u.Query().Get("details"))
}

func TestReminderLink_ZeroDate(t *testing.T) {
	_, err := ReminderLink("Pride", models.ServiceRecord{NextChangeMileage: 1000})
	assert.ErrorIs(t, err, ErrNoDueDate)
}

func TestReminderLink_LegacyRecordAndLargeMileage(t *testing.T) {
	record := models.ServiceRecord{
		NextChangeMileage: 1234567,
		NextChangeDate:    time.Date(2025, time.February, 28, 0, 0, 0, 0, time.UTC),
	}

	link, err := ReminderLink("Paykan", record)
	require.NoError(t, err)

	u, err := url.Parse(link)
	require.NoError(t, err)
	assert.Equal(t, "Oil change reminder - Paykan", u.Query().Get("text"))
	assert.Equal(t, "20250228/20250301", u.Query().Get("dates"))
	assert.Equal(t, "Next service due at 1,234,567 km", u.Query().Get("details"))
}

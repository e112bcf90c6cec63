package maintenance

import (
	"time"

	ptime "github.com/yaa110/go-persian-calendar"
)

// JalaliDateLayout renders Jalali dates as 1403/01/15.
const JalaliDateLayout = "yyyy/MM/dd"

// FormatJalaliDate renders the calendar day of t, in t's location, as a
// Jalali (Solar Hijri) date. The zero time renders as "".
func FormatJalaliDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return ptime.New(t).Format(JalaliDateLayout)
}

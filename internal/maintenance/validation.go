package maintenance

import (
	"errors"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
)

// FieldError is a user-correctable problem with one input field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e FieldError) Error() string {
	return e.Field + ": " + e.Message
}

// ValidationErrors collects every field error of one submission.
type ValidationErrors []FieldError

func (v ValidationErrors) Error() string {
	msgs := make([]string, 0, len(v))
	for _, e := range v {
		msgs = append(msgs, e.Error())
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

// Field returns the message for field, or "" if the field is valid.
func (v ValidationErrors) Field(field string) string {
	for _, e := range v {
		if e.Field == field {
			return e.Message
		}
	}
	return ""
}

func (v *ValidationErrors) add(field, message string) {
	*v = append(*v, FieldError{Field: field, Message: message})
}

func (v ValidationErrors) orNil() error {
	if len(v) == 0 {
		return nil
	}
	return v
}

// Upper bounds of numeric inputs. They keep NextChangeMileage and the
// next-due date far from integer and calendar overflow.
const (
	MaxMileageKm      = 9_999_999
	MaxIntervalKm     = 100_000
	MaxIntervalMonths = 120
)

// parseWholeNumber parses a required integer field and checks it lies in
// [min, max].
func parseWholeNumber(errs *ValidationErrors, field, raw string, min, max int) int {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		errs.add(field, "is required")
		return 0
	}

	n, err := strconv.Atoi(raw)
	if errors.Is(err, strconv.ErrRange) {
		if strings.HasPrefix(raw, "-") {
			errs.add(field, belowMessage(min))
		} else {
			errs.add(field, aboveMessage(max))
		}
		return 0
	}
	if err != nil {
		if _, ferr := strconv.ParseFloat(raw, 64); ferr == nil {
			errs.add(field, "must be a whole number")
		} else {
			errs.add(field, "must be a number")
		}
		return 0
	}

	switch {
	case n < min:
		errs.add(field, belowMessage(min))
		return 0
	case n > max:
		errs.add(field, aboveMessage(max))
		return 0
	}
	return n
}

func belowMessage(min int) string {
	switch min {
	case 0:
		return "must not be negative"
	case 1:
		return "must be greater than zero"
	default:
		return "must be at least " + humanize.Comma(int64(min))
	}
}

func aboveMessage(max int) string {
	return "must be at most " + humanize.Comma(int64(max))
}

func optionalText(raw string) *string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	return &raw
}

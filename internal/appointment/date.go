package appointment

import (
	"strings"
	"time"

	"appointments/internal/types"
)

// DateValidator decides whether a raw date string is acceptable.
type DateValidator interface {
	IsValid(raw string) bool
}

var isoLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// ISODateValidator accepts ISO-8601 timestamps and calendar dates.
type ISODateValidator struct{}

// IsValid implements DateValidator.
func (ISODateValidator) IsValid(raw string) bool {
	_, ok := parseISO(raw)
	return ok
}

func parseISO(raw string) (time.Time, bool) {
	for _, layout := range isoLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// AppointmentDate is the requested appointment date in its original text form.
type AppointmentDate struct {
	value string
}

// NewAppointmentDate rejects blank input and anything v does not accept. A nil
// validator falls back to ISODateValidator.
func NewAppointmentDate(raw string, v DateValidator) (AppointmentDate, error) {
	if strings.TrimSpace(raw) == "" {
		return AppointmentDate{}, invalid(types.ErrCodeInvalidDate, "date must not be empty")
	}
	if v == nil {
		v = ISODateValidator{}
	}
	if !v.IsValid(raw) {
		return AppointmentDate{}, invalid(types.ErrCodeInvalidDate, "date %q is not a valid date", raw)
	}
	return AppointmentDate{value: raw}, nil
}

func (d AppointmentDate) Value() string                     { return d.value }
func (d AppointmentDate) String() string                    { return d.value }
func (d AppointmentDate) Equals(other AppointmentDate) bool { return d.value == other.value }

// Time parses the date. The zero time is returned when the stored value was
// accepted by a custom validator but is not ISO-8601.
func (d AppointmentDate) Time() time.Time {
	t, _ := parseISO(d.value)
	return t
}

package appointment

import (
	"strconv"
	"strings"

	"appointments/internal/types"
)

// InsuredIDLength is the exact length of an insured identifier.
const InsuredIDLength = 5

// InsuredID identifies the person an appointment is booked for.
type InsuredID struct {
	value string
}

// NewInsuredID validates raw and returns an InsuredID. It fails with
// INVALID_INSURED_ID when raw is blank or not exactly five characters long.
func NewInsuredID(raw string) (InsuredID, error) {
	if strings.TrimSpace(raw) == "" {
		return InsuredID{}, invalid(types.ErrCodeInvalidInsuredID, "insured id must not be empty")
	}
	if n := len([]rune(raw)); n != InsuredIDLength {
		return InsuredID{}, invalid(types.ErrCodeInvalidInsuredID,
			"insured id must be exactly %d characters, got %d", InsuredIDLength, n)
	}
	return InsuredID{value: raw}, nil
}

func (id InsuredID) Value() string               { return id.value }
func (id InsuredID) String() string              { return id.value }
func (id InsuredID) Equals(other InsuredID) bool { return id.value == other.value }

// positiveID is the shared representation of the numeric identifiers.
type positiveID struct {
	value int64
}

func newPositiveID(v int64, code types.ErrorCode, field string) (positiveID, error) {
	if v <= 0 {
		return positiveID{}, invalid(code, "%s must be a positive number greater than zero, got %d", field, v)
	}
	return positiveID{value: v}, nil
}

// parsePositiveID accepts the textual form of a JSON number. Integral values
// written with a fractional part ("42.0") are accepted; anything else that is
// not a whole number is rejected with code.
func parsePositiveID(raw string, code types.ErrorCode, field string) (positiveID, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return positiveID{}, invalid(code, "%s is required", field)
	}
	if v, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return newPositiveID(v, code, field)
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return positiveID{}, invalid(code, "%s must be a number, got %q", field, raw)
	}
	if f != float64(int64(f)) {
		return positiveID{}, invalid(code, "%s must be an integer, got %s", field, raw)
	}
	return newPositiveID(int64(f), code, field)
}

// ScheduleID identifies an appointment slot.
type ScheduleID struct{ positiveID }

// NewScheduleID fails with INVALID_SCHEDULE_ID unless v > 0.
func NewScheduleID(v int64) (ScheduleID, error) {
	id, err := newPositiveID(v, types.ErrCodeInvalidScheduleID, "schedule id")
	return ScheduleID{id}, err
}

// ParseScheduleID parses the textual (JSON number) form of a schedule id.
func ParseScheduleID(raw string) (ScheduleID, error) {
	id, err := parsePositiveID(raw, types.ErrCodeInvalidScheduleID, "schedule id")
	return ScheduleID{id}, err
}

func (id ScheduleID) Value() int64                 { return id.value }
func (id ScheduleID) String() string               { return strconv.FormatInt(id.value, 10) }
func (id ScheduleID) Equals(other ScheduleID) bool { return id.value == other.value }

// CenterID identifies the medical center.
type CenterID struct{ positiveID }

// NewCenterID fails with INVALID_CENTER_ID unless v > 0.
func NewCenterID(v int64) (CenterID, error) {
	id, err := newPositiveID(v, types.ErrCodeInvalidCenterID, "center id")
	return CenterID{id}, err
}

// ParseCenterID parses the textual (JSON number) form of a center id.
func ParseCenterID(raw string) (CenterID, error) {
	id, err := parsePositiveID(raw, types.ErrCodeInvalidCenterID, "center id")
	return CenterID{id}, err
}

func (id CenterID) Value() int64               { return id.value }
func (id CenterID) String() string             { return strconv.FormatInt(id.value, 10) }
func (id CenterID) Equals(other CenterID) bool { return id.value == other.value }

// SpecialtyID identifies the medical specialty.
type SpecialtyID struct{ positiveID }

// NewSpecialtyID fails with INVALID_SPECIALTY_ID unless v > 0.
func NewSpecialtyID(v int64) (SpecialtyID, error) {
	id, err := newPositiveID(v, types.ErrCodeInvalidSpecialtyID, "specialty id")
	return SpecialtyID{id}, err
}

// ParseSpecialtyID parses the textual (JSON number) form of a specialty id.
func ParseSpecialtyID(raw string) (SpecialtyID, error) {
	id, err := parsePositiveID(raw, types.ErrCodeInvalidSpecialtyID, "specialty id")
	return SpecialtyID{id}, err
}

func (id SpecialtyID) Value() int64                  { return id.value }
func (id SpecialtyID) String() string                { return strconv.FormatInt(id.value, 10) }
func (id SpecialtyID) Equals(other SpecialtyID) bool { return id.value == other.value }

// MedicID identifies the attending medic.
type MedicID struct{ positiveID }

// NewMedicID fails with INVALID_MEDIC_ID unless v > 0.
func NewMedicID(v int64) (MedicID, error) {
	id, err := newPositiveID(v, types.ErrCodeInvalidMedicID, "medic id")
	return MedicID{id}, err
}

// ParseMedicID parses the textual (JSON number) form of a medic id.
func ParseMedicID(raw string) (MedicID, error) {
	id, err := parsePositiveID(raw, types.ErrCodeInvalidMedicID, "medic id")
	return MedicID{id}, err
}

func (id MedicID) Value() int64              { return id.value }
func (id MedicID) String() string            { return strconv.FormatInt(id.value, 10) }
func (id MedicID) Equals(other MedicID) bool { return id.value == other.value }

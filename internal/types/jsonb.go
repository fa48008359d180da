package types

import (
	"database/sql"
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

var (
	_ sql.Scanner   = (*ScheduledAppointment)(nil)
	_ driver.Valuer = ScheduledAppointment{}
)

// scanJSONB scans a JSONB column value into dest. Drivers hand back either
// []byte or string.
func scanJSONB(dest any, value any) error {
	if value == nil {
		return nil
	}
	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("jsonb: unsupported scan type %T", value)
	}
	return json.Unmarshal(data, dest)
}

// Scan implements sql.Scanner for the appointment_details payload column.
func (s *ScheduledAppointment) Scan(value any) error {
	if value == nil {
		*s = ScheduledAppointment{}
		return nil
	}
	return scanJSONB(s, value)
}

// Value implements driver.Valuer.
func (s ScheduledAppointment) Value() (driver.Value, error) {
	return json.Marshal(s)
}

package appointment

import (
	"strings"

	"appointments/internal/types"
)

var supportedCountries = []string{"PE", "CL"}

// SupportedCountries returns the ISO codes accepted by NewCountryISO.
func SupportedCountries() []string {
	out := make([]string, len(supportedCountries))
	copy(out, supportedCountries)
	return out
}

// CountryISO is a normalized (upper-case) supported country code.
type CountryISO struct {
	value string
}

// NewCountryISO upper-cases raw and checks it against the supported set.
func NewCountryISO(raw string) (CountryISO, error) {
	if strings.TrimSpace(raw) == "" {
		return CountryISO{}, invalid(types.ErrCodeInvalidCountry, "country must not be empty")
	}
	normalized := strings.ToUpper(raw)
	for _, c := range supportedCountries {
		if c == normalized {
			return CountryISO{value: normalized}, nil
		}
	}
	return CountryISO{}, invalid(types.ErrCodeInvalidCountry,
		"country %q is not supported, expected one of %s", raw, strings.Join(supportedCountries, ", "))
}

func (c CountryISO) Value() string                { return c.value }
func (c CountryISO) String() string               { return c.value }
func (c CountryISO) Equals(other CountryISO) bool { return c.value == other.value }

// Package features turns the attributes a user enters about a household into
// the fixed-order numeric feature vector the consumption models were trained on.
//
// Derivation is a pure function: no I/O, no shared state. Categorical inputs
// are closed enum types, so once a RawInput exists every category is known;
// unknown categories can only appear when parsing text (forms, JSON, flags).
package features

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInvalidDate is returned when year/month/day is not a real calendar date.
	ErrInvalidDate = errors.New("invalid calendar date")
	// ErrDivisionByZero is returned when a per-person ratio has zero occupants.
	ErrDivisionByZero = errors.New("division by zero")
	// ErrUnknownCategory is returned when parsing a categorical value outside its set.
	ErrUnknownCategory = errors.New("unknown category")
	// ErrOutOfRange is returned by RawInput.Validate for values outside the form bounds.
	ErrOutOfRange = errors.New("value out of range")
)

// HeatingType is the household's primary heating source.
type HeatingType int

const (
	HeatingElectric HeatingType = iota
	HeatingGas
	HeatingNone
)

var heatingNames = [...]string{"Electric", "Gas", "None"}

func (h HeatingType) String() string {
	if h < 0 || int(h) >= len(heatingNames) {
		return fmt.Sprintf("HeatingType(%d)", int(h))
	}
	return heatingNames[h]
}

// ParseHeatingType accepts "Electric", "Gas" or "None" (case-insensitive).
func ParseHeatingType(s string) (HeatingType, error) {
	for i, name := range heatingNames {
		if strings.EqualFold(strings.TrimSpace(s), name) {
			return HeatingType(i), nil
		}
	}
	return 0, fmt.Errorf("heating type %q: %w", s, ErrUnknownCategory)
}

func (h HeatingType) MarshalText() ([]byte, error) { return []byte(h.String()), nil }

func (h *HeatingType) UnmarshalText(b []byte) error {
	v, err := ParseHeatingType(string(b))
	if err != nil {
		return err
	}
	*h = v
	return nil
}

// CoolingType is the household's primary cooling source.
type CoolingType int

const (
	CoolingAc CoolingType = iota
	CoolingFan
	CoolingNone
)

var coolingNames = [...]string{"Ac", "Fan", "None"}

func (c CoolingType) String() string {
	if c < 0 || int(c) >= len(coolingNames) {
		return fmt.Sprintf("CoolingType(%d)", int(c))
	}
	return coolingNames[c]
}

// ParseCoolingType accepts "Ac", "Fan" or "None" (case-insensitive, so "AC" works too).
func ParseCoolingType(s string) (CoolingType, error) {
	for i, name := range coolingNames {
		if strings.EqualFold(strings.TrimSpace(s), name) {
			return CoolingType(i), nil
		}
	}
	return 0, fmt.Errorf("cooling type %q: %w", s, ErrUnknownCategory)
}

func (c CoolingType) MarshalText() ([]byte, error) { return []byte(c.String()), nil }

func (c *CoolingType) UnmarshalText(b []byte) error {
	v, err := ParseCoolingType(string(b))
	if err != nil {
		return err
	}
	*c = v
	return nil
}

// ManualOverride records whether the occupants override the thermostat schedule.
type ManualOverride int

const (
	OverrideYes ManualOverride = iota
	OverrideNo
)

var overrideNames = [...]string{"Y", "N"}

func (m ManualOverride) String() string {
	if m < 0 || int(m) >= len(overrideNames) {
		return fmt.Sprintf("ManualOverride(%d)", int(m))
	}
	return overrideNames[m]
}

func ParseManualOverride(s string) (ManualOverride, error) {
	for i, name := range overrideNames {
		if strings.EqualFold(strings.TrimSpace(s), name) {
			return ManualOverride(i), nil
		}
	}
	return 0, fmt.Errorf("manual override %q: %w", s, ErrUnknownCategory)
}

func (m ManualOverride) MarshalText() ([]byte, error) { return []byte(m.String()), nil }

func (m *ManualOverride) UnmarshalText(b []byte) error {
	v, err := ParseManualOverride(string(b))
	if err != nil {
		return err
	}
	*m = v
	return nil
}

// HeatingTypes, CoolingTypes and ManualOverrides list each set in form order.
var (
	HeatingTypes    = []HeatingType{HeatingElectric, HeatingGas, HeatingNone}
	CoolingTypes    = []CoolingType{CoolingAc, CoolingFan, CoolingNone}
	ManualOverrides = []ManualOverride{OverrideYes, OverrideNo}
)

// RawInput holds the attributes collected from the user.
//
// The zero value of each category is the first member of its set, so a JSON
// body that omits heating_type, cooling_type or manual_override decodes to
// Electric, Ac and Y, the form's initial selection. Unknown names fail with
// ErrUnknownCategory.
type RawInput struct {
	NumOccupants       int            `json:"num_occupants"`
	HouseSizeSqft      int            `json:"house_size_sqft"`
	MonthlyIncome      float64        `json:"monthly_income"`
	OutsideTempCelsius float64        `json:"outside_temp_celsius"`
	Year               int            `json:"year"`
	Month              int            `json:"month"`
	Day                int            `json:"day"`
	HeatingType        HeatingType    `json:"heating_type"`
	CoolingType        CoolingType    `json:"cooling_type"`
	ManualOverride     ManualOverride `json:"manual_override"`
	EnergyStarHome     bool           `json:"energy_star_home"`
}

// DefaultInput returns the values the form starts with.
func DefaultInput() RawInput {
	return RawInput{
		NumOccupants:       MinOccupants,
		HouseSizeSqft:      MinHouseSizeSqft,
		MonthlyIncome:      MinMonthlyIncome,
		OutsideTempCelsius: 26,
		Year:               2025,
		Month:              8,
		Day:                1,
		HeatingType:        HeatingElectric,
		CoolingType:        CoolingAc,
		ManualOverride:     OverrideYes,
	}
}

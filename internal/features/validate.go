package features

import "fmt"

// Form bounds for each numeric input.
const (
	MinOccupants     = 3
	MaxOccupants     = 5
	MinHouseSizeSqft = 1000
	MaxHouseSizeSqft = 2000
	MinMonthlyIncome = 10000
	MaxMonthlyIncome = 200000
	MinOutsideTemp   = 22
	MinYear          = 2005
	MaxYear          = 2070
)

// Validate checks every field against the bounds the form enforces. Derive
// only repeats the category checks; callers taking input from users should
// call Validate.
func (r RawInput) Validate() error {
	if r.NumOccupants < MinOccupants || r.NumOccupants > MaxOccupants {
		return outOfRange("num_occupants", float64(r.NumOccupants), MinOccupants, MaxOccupants)
	}
	if r.HouseSizeSqft < MinHouseSizeSqft || r.HouseSizeSqft > MaxHouseSizeSqft {
		return outOfRange("house_size_sqft", float64(r.HouseSizeSqft), MinHouseSizeSqft, MaxHouseSizeSqft)
	}
	if r.MonthlyIncome < MinMonthlyIncome || r.MonthlyIncome > MaxMonthlyIncome {
		return outOfRange("monthly_income", r.MonthlyIncome, MinMonthlyIncome, MaxMonthlyIncome)
	}
	if r.OutsideTempCelsius < MinOutsideTemp {
		return fmt.Errorf("outside_temp_celsius %g below minimum %d: %w", r.OutsideTempCelsius, MinOutsideTemp, ErrOutOfRange)
	}
	if r.Year < MinYear || r.Year > MaxYear {
		return outOfRange("year", float64(r.Year), MinYear, MaxYear)
	}
	if r.Month < 1 || r.Month > 12 {
		return outOfRange("month", float64(r.Month), 1, 12)
	}
	if r.Day < 1 || r.Day > 31 {
		return outOfRange("day", float64(r.Day), 1, 31)
	}
	return r.checkCategories()
}

// checkCategories rejects enum values outside their declared sets. Go does
// not close int enums, so a converted integer can hold any value.
func (r RawInput) checkCategories() error {
	if int(r.HeatingType) < 0 || int(r.HeatingType) >= len(heatingNames) {
		return fmt.Errorf("heating type %d: %w", int(r.HeatingType), ErrUnknownCategory)
	}
	if int(r.CoolingType) < 0 || int(r.CoolingType) >= len(coolingNames) {
		return fmt.Errorf("cooling type %d: %w", int(r.CoolingType), ErrUnknownCategory)
	}
	if int(r.ManualOverride) < 0 || int(r.ManualOverride) >= len(overrideNames) {
		return fmt.Errorf("manual override %d: %w", int(r.ManualOverride), ErrUnknownCategory)
	}
	return nil
}

func outOfRange(field string, v float64, lo, hi int) error {
	return fmt.Errorf("%s %g not in [%d, %d]: %w", field, v, lo, hi, ErrOutOfRange)
}

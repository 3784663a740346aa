package features

import (
	"fmt"
	"time"
)

// Season labels as the models know them. The month ranges deliberately do
// not follow northern-hemisphere naming; the training data used this mapping.
type Season int

const (
	SeasonWinter Season = iota + 1
	SeasonSummer
	SeasonFall
	SeasonSpring
)

func (s Season) String() string {
	switch s {
	case SeasonWinter:
		return "winter"
	case SeasonSummer:
		return "summer"
	case SeasonFall:
		return "fall"
	case SeasonSpring:
		return "spring"
	}
	return fmt.Sprintf("Season(%d)", int(s))
}

// SeasonOf maps a month number to its season label.
func SeasonOf(month int) Season {
	switch month {
	case 12, 1, 2:
		return SeasonWinter
	case 3, 4, 5:
		return SeasonSummer
	case 6, 7, 8:
		return SeasonFall
	default:
		return SeasonSpring
	}
}

const avgTempCelsius = 28
const highIncomeThreshold = 40000

// Weekday resolves a calendar date to a weekday number with Monday=0 and
// Sunday=6. Dates that do not exist return ErrInvalidDate.
func Weekday(year, month, day int) (int, error) {
	if month < 1 || month > 12 || day < 1 {
		return 0, fmt.Errorf("%04d-%02d-%02d: %w", year, month, day, ErrInvalidDate)
	}
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	// time.Date normalises overflow (Feb 30 -> Mar 2); a real date round-trips.
	if t.Year() != year || int(t.Month()) != month || t.Day() != day {
		return 0, fmt.Errorf("%04d-%02d-%02d: %w", year, month, day, ErrInvalidDate)
	}
	return (int(t.Weekday()) + 6) % 7, nil
}

// MetricsTracker receives a count of failed derivations.
type MetricsTracker interface {
	FeatureErrorsInc()
}

// DeriveWithMetrics is Derive that also reports failures to m.
func DeriveWithMetrics(raw RawInput, m MetricsTracker) (FeatureVector, error) {
	v, err := Derive(raw)
	if err != nil && m != nil {
		m.FeatureErrorsInc()
	}
	return v, err
}

// Derive builds the feature vector for raw. It fails without a partial
// result when the date is not real, a category is outside its set or there
// are no occupants.
func Derive(raw RawInput) (FeatureVector, error) {
	weekday, err := Weekday(raw.Year, raw.Month, raw.Day)
	if err != nil {
		return FeatureVector{}, err
	}
	if err := raw.checkCategories(); err != nil {
		return FeatureVector{}, err
	}
	if raw.NumOccupants == 0 {
		return FeatureVector{}, fmt.Errorf("per-person ratios with zero occupants: %w", ErrDivisionByZero)
	}

	season := SeasonOf(raw.Month)
	occupants := float64(raw.NumOccupants)

	return FeatureVector{
		NumOccupants:        occupants,
		HouseSizeSqft:       float64(raw.HouseSizeSqft),
		MonthlyIncome:       raw.MonthlyIncome,
		OutsideTempCelsius:  raw.OutsideTempCelsius,
		Year:                float64(raw.Year),
		Month:               float64(raw.Month),
		Day:                 float64(raw.Day),
		Season:              float64(season),
		HeatingElectric:     flag(raw.HeatingType == HeatingElectric),
		HeatingGas:          flag(raw.HeatingType == HeatingGas),
		HeatingNone:         flag(raw.HeatingType == HeatingNone),
		CoolingAC:           flag(raw.CoolingType == CoolingAc),
		CoolingFan:          flag(raw.CoolingType == CoolingFan),
		CoolingNone:         flag(raw.CoolingType == CoolingNone),
		ManualOverrideY:     flag(raw.ManualOverride == OverrideYes),
		ManualOverrideN:     flag(raw.ManualOverride == OverrideNo),
		IsWeekend:           flag(weekday >= 5),
		TempAboveAvg:        flag(raw.OutsideTempCelsius > avgTempCelsius),
		IncomePerPerson:     raw.MonthlyIncome / occupants,
		SquareFeetPerPerson: float64(raw.HouseSizeSqft) / occupants,
		HighIncomeFlag:      flag(raw.MonthlyIncome > highIncomeThreshold),
		LowTempFlag:         flag(raw.OutsideTempCelsius < avgTempCelsius),
		SeasonSpring:        flag(season == SeasonSpring),
		SeasonSummer:        flag(season == SeasonSummer),
		SeasonFall:          flag(season == SeasonFall),
		SeasonWinter:        flag(season == SeasonWinter),
		DayOfWeek0:          flag(weekday == 0),
		DayOfWeek6:          flag(weekday == 6),
		EnergyStarHome:      flag(raw.EnergyStarHome),
	}, nil
}

func flag(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

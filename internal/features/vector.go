package features

// names is the column order every model artifact was trained on.
var names = [...]string{
	"num_occupants", "house_size_sqft", "monthly_income", "outside_temp_celsius",
	"year", "month", "day", "season",
	"heating_type_Electric", "heating_type_Gas", "heating_type_None",
	"cooling_type_AC", "cooling_type_Fan", "cooling_type_None",
	"manual_override_Y", "manual_override_N",
	"is_weekend", "temp_above_avg", "income_per_person", "square_feet_per_person",
	"high_income_flag", "low_temp_flag",
	"season_spring", "season_summer", "season_fall", "season_winter",
	"day_of_week_0", "day_of_week_6", "energy_star_home",
}

// Count is the number of features in a FeatureVector.
const Count = len(names)

// Names returns a copy of the feature schema in order.
func Names() []string {
	out := make([]string, Count)
	copy(out[:], names[:])
	return out
}

// FeatureVector is the model input built from one RawInput.
type FeatureVector struct {
	NumOccupants        float64
	HouseSizeSqft       float64
	MonthlyIncome       float64
	OutsideTempCelsius  float64
	Year                float64
	Month               float64
	Day                 float64
	Season              float64
	HeatingElectric     float64
	HeatingGas          float64
	HeatingNone         float64
	CoolingAC           float64
	CoolingFan          float64
	CoolingNone         float64
	ManualOverrideY     float64
	ManualOverrideN     float64
	IsWeekend           float64
	TempAboveAvg        float64
	IncomePerPerson     float64
	SquareFeetPerPerson float64
	HighIncomeFlag      float64
	LowTempFlag         float64
	SeasonSpring        float64
	SeasonSummer        float64
	SeasonFall          float64
	SeasonWinter        float64
	DayOfWeek0          float64
	DayOfWeek6          float64
	EnergyStarHome      float64
}

// Values returns the features in schema order.
func (v FeatureVector) Values() []float64 {
	return []float64{
		v.NumOccupants, v.HouseSizeSqft, v.MonthlyIncome, v.OutsideTempCelsius,
		v.Year, v.Month, v.Day, v.Season,
		v.HeatingElectric, v.HeatingGas, v.HeatingNone,
		v.CoolingAC, v.CoolingFan, v.CoolingNone,
		v.ManualOverrideY, v.ManualOverrideN,
		v.IsWeekend, v.TempAboveAvg, v.IncomePerPerson, v.SquareFeetPerPerson,
		v.HighIncomeFlag, v.LowTempFlag,
		v.SeasonSpring, v.SeasonSummer, v.SeasonFall, v.SeasonWinter,
		v.DayOfWeek0, v.DayOfWeek6, v.EnergyStarHome,
	}
}

// Map returns the features keyed by schema name.
func (v FeatureVector) Map() map[string]float64 {
	vals := v.Values()
	m := make(map[string]float64, Count)
	for i, n := range names {
		m[n] = vals[i]
	}
	return m
}

// Named is one entry of an ordered feature listing.
type Named struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
}

// Ordered pairs each value with its name, keeping schema order.
func (v FeatureVector) Ordered() []Named {
	vals := v.Values()
	out := make([]Named, Count)
	for i, n := range names {
		out[i] = Named{Name: n, Value: vals[i]}
	}
	return out
}

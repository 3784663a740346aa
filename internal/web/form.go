package web

import (
	"fmt"
	"html/template"
	"net/http"
	"strconv"
	"strings"

	"energy-predictor/internal/features"
	"energy-predictor/internal/ml"

	"github.com/rs/zerolog/log"
)

// formPage is what the form template renders.
type formPage struct {
	Models          []string
	Model           string
	Input           features.RawInput
	HeatingTypes    []features.HeatingType
	CoolingTypes    []features.CoolingType
	ManualOverrides []features.ManualOverride
	Bounds          formBounds
	Result          *ml.Result
	Error           string
}

type formBounds struct {
	MinOccupants, MaxOccupants         int
	MinHouseSizeSqft, MaxHouseSizeSqft int
	MinMonthlyIncome, MaxMonthlyIncome int
	MinOutsideTemp                     int
	MinYear, MaxYear                   int
}

var bounds = formBounds{
	MinOccupants:     features.MinOccupants,
	MaxOccupants:     features.MaxOccupants,
	MinHouseSizeSqft: features.MinHouseSizeSqft,
	MaxHouseSizeSqft: features.MaxHouseSizeSqft,
	MinMonthlyIncome: features.MinMonthlyIncome,
	MaxMonthlyIncome: features.MaxMonthlyIncome,
	MinOutsideTemp:   features.MinOutsideTemp,
	MinYear:          features.MinYear,
	MaxYear:          features.MaxYear,
}

func (s *Server) page(model string, input features.RawInput) formPage {
	if model == "" {
		model = s.predictor.Models().DefaultName()
	}
	return formPage{
		Models:          s.predictor.Models().Names(),
		Model:           model,
		Input:           input,
		HeatingTypes:    features.HeatingTypes,
		CoolingTypes:    features.CoolingTypes,
		ManualOverrides: features.ManualOverrides,
		Bounds:          bounds,
	}
}

func (s *Server) render(w http.ResponseWriter, status int, p formPage) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := formTemplate.Execute(w, p); err != nil {
		log.Error().Err(err).Msg("Failed to render form")
	}
}

func (s *Server) handleForm(w http.ResponseWriter, r *http.Request) {
	s.render(w, http.StatusOK, s.page("", features.DefaultInput()))
}

func (s *Server) handleFormPredict(w http.ResponseWriter, r *http.Request) {
	model, raw, err := parseForm(r)
	p := s.page(model, raw)
	if err != nil {
		p.Error = err.Error()
		s.render(w, http.StatusBadRequest, p)
		return
	}

	res, err := s.predict(r.Context(), PredictRequest{Model: model, Input: raw})
	if err != nil {
		p.Error = err.Error()
		s.render(w, statusFor(err), p)
		return
	}
	p.Model = res.Model
	p.Result = &res
	s.render(w, http.StatusOK, p)
}

// parseForm reads a form post into a RawInput. Fields left empty keep the
// form defaults; malformed numbers and unknown categories are errors.
func parseForm(r *http.Request) (string, features.RawInput, error) {
	raw := features.DefaultInput()
	if err := r.ParseForm(); err != nil {
		return "", raw, fmt.Errorf("malformed form: %w", err)
	}
	model := strings.TrimSpace(r.PostForm.Get("model"))

	ints := []struct {
		field string
		dst   *int
	}{
		{"num_occupants", &raw.NumOccupants},
		{"house_size_sqft", &raw.HouseSizeSqft},
		{"year", &raw.Year},
		{"month", &raw.Month},
		{"day", &raw.Day},
	}
	for _, f := range ints {
		v := strings.TrimSpace(r.PostForm.Get(f.field))
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return model, raw, fmt.Errorf("%s: %q is not a whole number", f.field, v)
		}
		*f.dst = n
	}

	floats := []struct {
		field string
		dst   *float64
	}{
		{"monthly_income", &raw.MonthlyIncome},
		{"outside_temp_celsius", &raw.OutsideTempCelsius},
	}
	for _, f := range floats {
		v := strings.TrimSpace(r.PostForm.Get(f.field))
		if v == "" {
			continue
		}
		n, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return model, raw, fmt.Errorf("%s: %q is not a number", f.field, v)
		}
		*f.dst = n
	}

	if v := r.PostForm.Get("heating_type"); v != "" {
		h, err := features.ParseHeatingType(v)
		if err != nil {
			return model, raw, err
		}
		raw.HeatingType = h
	}
	if v := r.PostForm.Get("cooling_type"); v != "" {
		c, err := features.ParseCoolingType(v)
		if err != nil {
			return model, raw, err
		}
		raw.CoolingType = c
	}
	if v := r.PostForm.Get("manual_override"); v != "" {
		m, err := features.ParseManualOverride(v)
		if err != nil {
			return model, raw, err
		}
		raw.ManualOverride = m
	}
	// unchecked boxes are not posted
	raw.EnergyStarHome = r.PostForm.Get("energy_star_home") != ""

	return model, raw, nil
}

var formTemplate = template.Must(template.New("form").Parse(`<!DOCTYPE html>
<html>
<head>
    <title>Energy Consumption Predictor</title>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <style>
        body { font-family: 'Segoe UI', Tahoma, Geneva, Verdana, sans-serif; margin: 0; padding: 20px; background-color: #f5f5f5; }
        .container { max-width: 640px; margin: 0 auto; }
        .header { background: linear-gradient(135deg, #667eea 0%, #764ba2 100%); color: white; padding: 20px; border-radius: 10px; margin-bottom: 20px; }
        .header h1 { margin: 0; font-size: 2em; text-align: center; }
        .card { background: white; border-radius: 10px; padding: 20px; box-shadow: 0 4px 6px rgba(0,0,0,0.1); }
        label { display: block; font-weight: 500; color: #666; margin-top: 12px; }
        input[type=number], select { width: 100%; padding: 6px; box-sizing: border-box; }
        .row { display: flex; gap: 10px; }
        .row > div { flex: 1; }
        button { margin-top: 20px; padding: 10px 24px; font-size: 1em; border: none; border-radius: 6px; background: #667eea; color: white; cursor: pointer; }
        .result { margin-top: 20px; padding: 12px; border-radius: 6px; background: #d4edda; color: #155724; font-weight: bold; }
        .error { margin-top: 20px; padding: 12px; border-radius: 6px; background: #f8d7da; color: #721c24; }
        .preview { margin-top: 10px; color: #999; font-size: 0.9em; }
    </style>
</head>
<body>
    <div class="container">
        <div class="header">
            <h1>Energy Consumption Predictor</h1>
        </div>
        <form class="card" id="predict-form" method="POST" action="/predict">
            <label for="model">Choose Prediction Model</label>
            <select id="model" name="model">
                {{range .Models}}<option value="{{.}}"{{if eq . $.Model}} selected{{end}}>{{.}}</option>{{end}}
            </select>

            <label for="num_occupants">Number of Occupants</label>
            <input type="number" id="num_occupants" name="num_occupants" min="{{.Bounds.MinOccupants}}" max="{{.Bounds.MaxOccupants}}" value="{{.Input.NumOccupants}}">

            <label for="house_size_sqft">House Size (sqft)</label>
            <input type="number" id="house_size_sqft" name="house_size_sqft" min="{{.Bounds.MinHouseSizeSqft}}" max="{{.Bounds.MaxHouseSizeSqft}}" value="{{.Input.HouseSizeSqft}}">

            <label for="monthly_income">Monthly Income</label>
            <input type="number" id="monthly_income" name="monthly_income" min="{{.Bounds.MinMonthlyIncome}}" max="{{.Bounds.MaxMonthlyIncome}}" step="any" value="{{.Input.MonthlyIncome}}">

            <label for="outside_temp_celsius">Outside Temperature (&deg;C)</label>
            <input type="number" id="outside_temp_celsius" name="outside_temp_celsius" min="{{.Bounds.MinOutsideTemp}}" step="any" value="{{.Input.OutsideTempCelsius}}">

            <div class="row">
                <div>
                    <label for="year">Year</label>
                    <input type="number" id="year" name="year" min="{{.Bounds.MinYear}}" max="{{.Bounds.MaxYear}}" value="{{.Input.Year}}">
                </div>
                <div>
                    <label for="month">Month</label>
                    <input type="number" id="month" name="month" min="1" max="12" value="{{.Input.Month}}">
                </div>
                <div>
                    <label for="day">Day</label>
                    <input type="number" id="day" name="day" min="1" max="31" value="{{.Input.Day}}">
                </div>
            </div>

            <label for="heating_type">Heating Type</label>
            <select id="heating_type" name="heating_type">
                {{range .HeatingTypes}}<option value="{{.}}"{{if eq . $.Input.HeatingType}} selected{{end}}>{{.}}</option>{{end}}
            </select>

            <label for="cooling_type">Cooling Type</label>
            <select id="cooling_type" name="cooling_type">
                {{range .CoolingTypes}}<option value="{{.}}"{{if eq . $.Input.CoolingType}} selected{{end}}>{{.}}</option>{{end}}
            </select>

            <label>Manual Override</label>
            {{range .ManualOverrides}}<input type="radio" name="manual_override" value="{{.}}"{{if eq . $.Input.ManualOverride}} checked{{end}}> {{.}} {{end}}

            <label><input type="checkbox" name="energy_star_home" value="on"{{if .Input.EnergyStarHome}} checked{{end}}> Certified Energy-Star Home</label>

            <button type="submit">Predict</button>
            <div class="preview" id="preview"></div>

            {{with .Result}}<div class="result" id="result">{{.Message}}</div>{{end}}
            {{with .Error}}<div class="error" id="error">{{.}}</div>{{end}}
        </form>
    </div>

    <script>
        const form = document.getElementById('predict-form');
        const preview = document.getElementById('preview');
        let ws;

        function currentRequest() {
            const f = new FormData(form);
            const num = (k) => Number(f.get(k));
            return {
                model: f.get('model'),
                input: {
                    num_occupants: num('num_occupants'),
                    house_size_sqft: num('house_size_sqft'),
                    monthly_income: num('monthly_income'),
                    outside_temp_celsius: num('outside_temp_celsius'),
                    year: num('year'),
                    month: num('month'),
                    day: num('day'),
                    heating_type: f.get('heating_type'),
                    cooling_type: f.get('cooling_type'),
                    manual_override: f.get('manual_override'),
                    energy_star_home: f.get('energy_star_home') !== null
                }
            };
        }

        function connect() {
            const proto = location.protocol === 'https:' ? 'wss:' : 'ws:';
            ws = new WebSocket(proto + '//' + location.host + '/ws');
            ws.onmessage = (event) => {
                const data = JSON.parse(event.data);
                preview.textContent = data.error ? data.error : 'Live: ' + data.message;
            };
            ws.onclose = () => setTimeout(connect, 3000);
        }

        form.addEventListener('input', () => {
            if (ws && ws.readyState === WebSocket.OPEN) {
                ws.send(JSON.stringify(currentRequest()));
            }
        });

        connect();
    </script>
</body>
</html>
`))

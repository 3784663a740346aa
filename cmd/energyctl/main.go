package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"energy-predictor/internal/client"
	"energy-predictor/internal/features"
	"energy-predictor/internal/ml"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const usage = `Usage: energyctl <command> [flags]

Commands:
  features      derive and print the model features for an input
  predict       request a prediction from a running predictor
  models        list the server's model catalog
  history       list recent predictions served
  init-models   write sample model artifacts to a directory

Run "energyctl <command> -h" for command flags.
`

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	var err error
	switch os.Args[1] {
	case "features":
		err = runFeatures(os.Args[2:], os.Stdout)
	case "predict":
		err = runPredict(os.Args[2:], os.Stdout)
	case "models":
		err = runModels(os.Args[2:], os.Stdout)
	case "history":
		err = runHistory(os.Args[2:], os.Stdout)
	case "init-models":
		err = runInitModels(os.Args[2:])
	case "-h", "--help", "help":
		fmt.Print(usage)
		return
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n%s", os.Args[1], usage)
		os.Exit(2)
	}

	if err != nil {
		log.Fatal().Err(err).Str("command", os.Args[1]).Msg("command failed")
	}
}

// inputFlags registers the household input flags on fs and returns a
// function that builds the RawInput once fs has been parsed.
func inputFlags(fs *flag.FlagSet) func() (features.RawInput, error) {
	def := features.DefaultInput()
	var (
		occupants  = fs.Int("occupants", def.NumOccupants, "Number of occupants")
		sqft       = fs.Int("sqft", def.HouseSizeSqft, "House size in square feet")
		income     = fs.Float64("income", def.MonthlyIncome, "Monthly income")
		temp       = fs.Float64("temp", def.OutsideTempCelsius, "Outside temperature in Celsius")
		date       = fs.String("date", fmt.Sprintf("%04d-%02d-%02d", def.Year, def.Month, def.Day), "Date (YYYY-MM-DD)")
		heating    = fs.String("heating", def.HeatingType.String(), "Heating type: Electric, Gas, None")
		cooling    = fs.String("cooling", def.CoolingType.String(), "Cooling type: Ac, Fan, None")
		override   = fs.String("override", def.ManualOverride.String(), "Manual override: Y, N")
		energyStar = fs.Bool("energy-star", def.EnergyStarHome, "Certified Energy-Star home")
	)

	return func() (features.RawInput, error) {
		raw := features.RawInput{
			NumOccupants:       *occupants,
			HouseSizeSqft:      *sqft,
			MonthlyIncome:      *income,
			OutsideTempCelsius: *temp,
			EnergyStarHome:     *energyStar,
		}

		var err error
		if raw.Year, raw.Month, raw.Day, err = parseDate(*date); err != nil {
			return raw, err
		}
		if raw.HeatingType, err = features.ParseHeatingType(*heating); err != nil {
			return raw, err
		}
		if raw.CoolingType, err = features.ParseCoolingType(*cooling); err != nil {
			return raw, err
		}
		if raw.ManualOverride, err = features.ParseManualOverride(*override); err != nil {
			return raw, err
		}
		return raw, nil
	}
}

// parseDate splits YYYY-MM-DD into its numbers. Whether the date exists is
// left to feature derivation.
func parseDate(s string) (year, month, day int, err error) {
	parts := strings.Split(strings.TrimSpace(s), "-")
	if len(parts) != 3 {
		return 0, 0, 0, fmt.Errorf("date %q is not YYYY-MM-DD: %w", s, features.ErrInvalidDate)
	}
	nums := make([]int, 3)
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil {
			return 0, 0, 0, fmt.Errorf("date %q is not YYYY-MM-DD: %w", s, features.ErrInvalidDate)
		}
		nums[i] = n
	}
	return nums[0], nums[1], nums[2], nil
}

func runFeatures(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("features", flag.ContinueOnError)
	input := inputFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}

	raw, err := input()
	if err != nil {
		return err
	}
	vec, err := features.Derive(raw)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	for _, f := range vec.Ordered() {
		fmt.Fprintf(tw, "%s\t%g\n", f.Name, f.Value)
	}
	return tw.Flush()
}

func clientFlags(fs *flag.FlagSet) (server *string, timeout *time.Duration) {
	server = fs.String("server", "http://localhost:8501", "Predictor base URL")
	timeout = fs.Duration("timeout", 5*time.Second, "Request timeout")
	return server, timeout
}

func runPredict(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("predict", flag.ContinueOnError)
	server, timeout := clientFlags(fs)
	model := fs.String("model", "", "Model name (server default when empty)")
	input := inputFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}

	raw, err := input()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	res, err := client.New(*server, *timeout).Predict(ctx, *model, raw)
	if err != nil {
		return err
	}
	fmt.Fprintln(out, res.Message)
	return nil
}

func runModels(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("models", flag.ContinueOnError)
	server, timeout := clientFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	resp, err := client.New(*server, *timeout).Models(ctx)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tFILE\tLOADED\tVERSION\tDEFAULT")
	for _, m := range resp.Models {
		fmt.Fprintf(tw, "%s\t%s\t%t\t%s\t%t\n", m.Name, m.File, m.Loaded, m.Metadata.Version, m.IsDefault)
	}
	return tw.Flush()
}

func runHistory(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("history", flag.ContinueOnError)
	server, timeout := clientFlags(fs)
	limit := fs.Int("limit", 10, "Number of predictions to show")
	model := fs.String("model", "", "Only show predictions from this model")
	since := fs.String("since", "", "Earliest time: RFC 3339 timestamp or a duration back from now (e.g. 24h)")
	until := fs.String("until", "", "Latest time: RFC 3339 timestamp or a duration back from now")
	if err := fs.Parse(args); err != nil {
		return err
	}

	now := time.Now()
	q := client.HistoryQuery{Limit: *limit, Model: *model}
	var err error
	if q.Since, err = parseTimeFlag(*since, now); err != nil {
		return fmt.Errorf("-since: %w", err)
	}
	if q.Until, err = parseTimeFlag(*until, now); err != nil {
		return fmt.Errorf("-until: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	records, err := client.New(*server, *timeout).History(ctx, q)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "TIME\tMODEL\tPREDICTION\tID")
	for _, r := range records {
		fmt.Fprintf(tw, "%s\t%s\t%.2f\t%s\n", r.Timestamp.Format(time.RFC3339), r.Model, r.Prediction, r.ID)
	}
	return tw.Flush()
}

// parseTimeFlag reads an RFC 3339 timestamp or a duration counted back from
// now. An empty value is the zero time.
func parseTimeFlag(s string, now time.Time) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%q is neither an RFC 3339 timestamp nor a duration", s)
	}
	return now.Add(-d), nil
}

func runInitModels(args []string) error {
	fs := flag.NewFlagSet("init-models", flag.ContinueOnError)
	dir := fs.String("dir", "models", "Directory to write model artifacts into")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if err := ml.WriteSampleModels(*dir); err != nil {
		return err
	}
	log.Info().Str("dir", *dir).Msg("Sample models written")
	return nil
}

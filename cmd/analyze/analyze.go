// Package analyze implements the analyze command.
package analyze

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/bahria/bahria-go/internal/analysis"
	"github.com/bahria/bahria-go/internal/app"
	"github.com/bahria/bahria-go/internal/conf"
	"github.com/bahria/bahria-go/internal/engine"
)

// requestTimeout bounds the SST lookup and the recommendation request.
const requestTimeout = 60 * time.Second

type flags struct {
	species   string
	size      float64
	weight    float64
	count     int
	zone      string
	date      string
	notes     string
	sst       float64
	upwelling float64
	demo      string
	json      bool
	offline   bool
}

// Command creates the analyze command.
func Command(settings *conf.Settings) *cobra.Command {
	f := &flags{}

	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Analyze a field sample",
		Long: "Evaluate a field sample and print the rest decision.\n\nDemo samples: " +
			strings.Join(analysis.DemoNames(), ", "),
		Example: "  bahria analyze --species poulpe --size 9.5 --weight 380 --count 50 --zone Lassarga\n" +
			"  bahria analyze --demo juvenile-octopus --offline --sst 18.5",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := f.request(cmd)
			if err != nil {
				return err
			}
			return run(cmd.Context(), cmd.OutOrStdout(), settings, f, req)
		},
	}

	cmd.Flags().StringVar(&f.species, "species", "", "Species code, e.g. poulpe")
	cmd.Flags().Float64Var(&f.size, "size", 0, "Average size in cm")
	cmd.Flags().Float64Var(&f.weight, "weight", 0, "Average weight in g")
	cmd.Flags().IntVar(&f.count, "count", 0, "Number of individuals measured")
	cmd.Flags().StringVar(&f.zone, "zone", "", "Fishing zone, first zone of the species when empty")
	cmd.Flags().StringVar(&f.date, "date", "", "Sample date YYYY-MM-DD, today when empty")
	cmd.Flags().StringVar(&f.notes, "notes", "", "Free-text notes")
	cmd.Flags().Float64Var(&f.sst, "sst", 0, "Sea surface temperature in °C, skips the ocean provider")
	cmd.Flags().Float64Var(&f.upwelling, "upwelling", conf.DefaultUpwellingIndex, "Upwelling index between 0 and 1")
	cmd.Flags().StringVar(&f.demo, "demo", "", "Use a demo sample ("+strings.Join(analysis.DemoNames(), ", ")+")")
	cmd.Flags().BoolVar(&f.json, "json", false, "Print the report as JSON")
	cmd.Flags().BoolVar(&f.offline, "offline", false, "No network access: requires --sst and uses the fallback recommendation")

	return cmd
}

// request builds the analysis request from the flags. Explicit sample flags
// override the demo sample values.
func (f *flags) request(cmd *cobra.Command) (analysis.Request, error) {
	var sample engine.Sample
	if f.demo != "" {
		demo, err := analysis.DemoSample(f.demo)
		if err != nil {
			return analysis.Request{}, err
		}
		sample = demo
	}

	changed := cmd.Flags().Changed
	if changed("species") {
		sample.SpeciesCode = f.species
	}
	if changed("size") {
		sample.AvgSizeCm = f.size
	}
	if changed("weight") {
		sample.AvgWeightG = f.weight
	}
	if changed("count") {
		sample.Count = f.count
	}
	if changed("zone") {
		sample.Zone = f.zone
	}
	if changed("notes") {
		sample.Notes = f.notes
	}
	if f.date != "" {
		date, err := time.Parse(time.DateOnly, f.date)
		if err != nil {
			return analysis.Request{}, fmt.Errorf("invalid --date %q: expected YYYY-MM-DD", f.date)
		}
		sample.Date = date
	}

	req := analysis.Request{Sample: sample}
	if changed("sst") {
		sst := f.sst
		req.SST = &sst
	}
	if changed("upwelling") {
		upwelling := f.upwelling
		req.Upwelling = &upwelling
	}
	return req, nil
}

func run(ctx context.Context, out io.Writer, settings *conf.Settings, f *flags, req analysis.Request) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	var opts []app.Option
	if f.offline {
		opts = append(opts, app.WithOffline())
	}

	a, err := app.New(settings, opts...)
	if err != nil {
		return err
	}
	defer a.Close()

	var report *analysis.Report
	if f.offline {
		report, err = a.Service.Preview(req)
	} else {
		report, err = a.Service.Analyze(ctx, req)
	}
	if err != nil {
		return err
	}

	if f.json {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}
	return analysis.WriteText(out, report, settings.Advisor.Locale)
}

package analysis

import (
	"slices"
	"strings"

	"github.com/bahria/bahria-go/internal/engine"
	"github.com/bahria/bahria-go/internal/errors"
)

// Demo samples. Dates are left empty so intake uses today.
var demoSamples = map[string]engine.Sample{
	"juvenile-octopus": {SpeciesCode: "poulpe", AvgSizeCm: 9.5, AvgWeightG: 380, Count: 50, Zone: "Lassarga"},
	"small-sardine":    {SpeciesCode: "sardine", AvgSizeCm: 14.5, AvgWeightG: 22, Count: 100, Zone: "Port Dakhla"},
	"adult-meagre":     {SpeciesCode: "courbine", AvgSizeCm: 72, AvgWeightG: 5200, Count: 15, Zone: "Port Dakhla"},
}

// DemoNames lists the available demo samples.
func DemoNames() []string {
	names := make([]string, 0, len(demoSamples))
	for name := range demoSamples {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// DemoSample returns a copy of the named demo sample.
func DemoSample(name string) (engine.Sample, error) {
	sample, ok := demoSamples[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return engine.Sample{}, errors.Newf("unknown demo %q (available: %s)", name, strings.Join(DemoNames(), ", ")).
			Component("analysis").
			Category(errors.CategoryNotFound).
			Build()
	}
	return sample, nil
}

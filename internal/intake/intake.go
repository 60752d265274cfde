// Package intake validates field samples before they reach the decision engine.
package intake

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/bahria/bahria-go/internal/engine"
	"github.com/bahria/bahria-go/internal/errors"
	"github.com/bahria/bahria-go/internal/species"
)

// MinSampleCount is the smallest number of individuals accepted in a sample.
const MinSampleCount = 10

// Validator checks samples against the species catalog.
type Validator struct {
	store species.Store
	now   func() time.Time
}

// New creates a Validator. A nil clock uses time.Now.
func New(store species.Store, now func() time.Time) *Validator {
	if now == nil {
		now = time.Now
	}
	return &Validator{store: store, now: now}
}

// Validate normalizes sample in place and returns the species profile it
// refers to. The species code is lower-cased, a missing date becomes today and
// a missing zone becomes the species' first declared zone.
func (v *Validator) Validate(sample *engine.Sample) (species.Profile, error) {
	if sample == nil {
		return species.Profile{}, errors.ValidationError("sample is required")
	}

	sample.SpeciesCode = strings.ToLower(strings.TrimSpace(sample.SpeciesCode))
	sample.Zone = strings.TrimSpace(sample.Zone)

	var problems []string
	fields := make(map[string]string)
	reject := func(field, format string, args ...any) {
		msg := fmt.Sprintf(format, args...)
		problems = append(problems, field+": "+msg)
		fields[field] = msg
	}

	if !positive(sample.AvgSizeCm) {
		reject("avg_size_cm", "must be greater than 0")
	}
	if !positive(sample.AvgWeightG) {
		reject("avg_weight_g", "must be greater than 0")
	}
	if sample.Count < MinSampleCount {
		reject("count", "must be at least %d individuals", MinSampleCount)
	}

	if sample.SpeciesCode == "" {
		reject("species_code", "is required")
	}
	if len(problems) > 0 {
		return species.Profile{}, invalid(problems, fields)
	}

	profile, ok := v.store.Get(sample.SpeciesCode)
	if !ok {
		return species.Profile{}, species.NotFound(sample.SpeciesCode)
	}

	switch zone, allowed := profile.CanonicalZone(sample.Zone); {
	case sample.Zone == "" && len(profile.Zones) > 0:
		sample.Zone = profile.Zones[0]
	case sample.Zone == "":
		reject("zone", "is required")
	case !allowed:
		reject("zone", "%q is not a fishing zone for %s (allowed: %s)",
			sample.Zone, profile.Code, strings.Join(profile.Zones, ", "))
	default:
		sample.Zone = zone
	}
	if len(problems) > 0 {
		return species.Profile{}, invalid(problems, fields)
	}

	if sample.Date.IsZero() {
		now := v.now()
		sample.Date = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	}

	return profile, nil
}

func positive(f float64) bool {
	return f > 0 && !math.IsInf(f, 0) && !math.IsNaN(f)
}

func invalid(problems []string, fields map[string]string) error {
	return errors.Newf("invalid sample: %s", strings.Join(problems, "; ")).
		Component("intake").
		Category(errors.CategoryValidation).
		Context("fields", fields).
		Build()
}

// Fields returns the per-field messages of a validation error, if any.
func Fields(err error) map[string]string {
	var ee *errors.EnhancedError
	if !errors.As(err, &ee) {
		return nil
	}
	fields, _ := ee.GetContext()["fields"].(map[string]string)
	return fields
}

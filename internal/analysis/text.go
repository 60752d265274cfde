package analysis

import (
	"io"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/bahria/bahria-go/internal/engine"
)

// WriteText renders a report for terminal output. Numbers are formatted for
// locale (fr or en).
func WriteText(w io.Writer, r *Report, locale string) error {
	tag := language.French
	if locale == "en" {
		tag = language.English
	}
	p := message.NewPrinter(tag)
	ew := &errWriter{w: w, p: p}

	ew.printf("BAHRIA analysis %s (%s)\n", r.ID, r.CreatedAt.Format(time.DateTime))
	ew.printf("Species:   %s %s (%s)\n", r.Species.Icon, r.Species.CommonName, r.Species.ScientificName)
	ew.printf("Sample:    %s, zone %s, %d individuals, %.1f cm, %.0f g\n",
		r.Sample.Date.Format(time.DateOnly), r.Sample.Zone, r.Sample.Count, r.Sample.AvgSizeCm, r.Sample.AvgWeightG)

	origin := "not live"
	if r.Ocean.Live {
		origin = "live"
	}
	ew.printf("Ocean:     SST %.1f °C, %s, %s (%s)\n", r.Ocean.SST, r.Ocean.Source, r.Ocean.Date, origin)

	decision := "no rest needed"
	if r.RestRecommended() {
		decision = "BIOLOGICAL REST RECOMMENDED"
	}
	ew.printf("Decision:  %s, risk %d/100, confidence %d%%, urgency %s\n",
		decision, r.Prediction.RiskScore, r.Prediction.Confidence, r.Prediction.Urgency)

	if r.Impact != nil {
		ew.printf("Impact:    %d days, %.0f t foregone, %.1f M MAD, %d workers, biomass %s\n",
			r.Impact.DurationDays, r.Impact.TonnesForegone, r.Impact.ValueMillions,
			r.Impact.WorkersAffected, r.Impact.BiomassGain)
	}

	ew.printf("Signals:   %d critical, %d warning, %d ok\n",
		r.SignalCounts[engine.SeverityCritical], r.SignalCounts[engine.SeverityWarning], r.SignalCounts[engine.SeverityOK])
	for _, s := range r.SortedSignals() {
		ew.printf("  %s %-28s %s\n", s.Icon, s.Title, s.Message)
	}

	ew.printf("\nRecommendation (%s):\n%s\n", r.Recommendation.Source, r.Recommendation.Text)
	return ew.err
}

// errWriter keeps the first write error and skips later writes.
type errWriter struct {
	w   io.Writer
	p   *message.Printer
	err error
}

func (e *errWriter) printf(format string, args ...any) {
	if e.err != nil {
		return
	}
	_, e.err = e.p.Fprintf(e.w, format, args...)
}

// Package analysis runs the full decision pipeline for a field sample:
// intake validation, ocean data, feature extraction, prediction, impact and
// the narrative recommendation.
package analysis

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/bahria/bahria-go/internal/advisor"
	"github.com/bahria/bahria-go/internal/conf"
	"github.com/bahria/bahria-go/internal/engine"
	"github.com/bahria/bahria-go/internal/errors"
	"github.com/bahria/bahria-go/internal/intake"
	"github.com/bahria/bahria-go/internal/logging"
	"github.com/bahria/bahria-go/internal/ocean"
	"github.com/bahria/bahria-go/internal/observability/metrics"
	"github.com/bahria/bahria-go/internal/species"
)

// SourceManual labels SST values supplied by the caller.
const SourceManual = "manual"

// Publisher distributes reports that recommend a rest.
type Publisher interface {
	PublishDecision(ctx context.Context, r *Report) error
}

// Request is one analysis request. Upwelling is optional and defaults to the
// configured index. SST, when set, replaces the ocean provider.
type Request struct {
	Sample    engine.Sample `json:"sample"`
	Upwelling *float64      `json:"upwelling_index,omitempty"`
	SST       *float64      `json:"sst,omitempty"`
}

// Service runs analyses. It holds no per-analysis state and is safe for concurrent use.
type Service struct {
	store            species.Store
	validator        *intake.Validator
	ocean            ocean.Provider
	advisor          advisor.Generator
	locale           string
	upwellingDefault float64
	now              func() time.Time
	metrics          *metrics.AnalysisMetrics
	publishers       []Publisher
	logger           *slog.Logger
}

// Option customizes a Service.
type Option func(*Service)

// WithClock sets the clock used for report timestamps and default sample dates.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithMetrics attaches analysis metrics.
func WithMetrics(m *metrics.AnalysisMetrics) Option {
	return func(s *Service) { s.metrics = m }
}

// WithPublisher adds a destination for rest decisions. A nil publisher is ignored.
func WithPublisher(p Publisher) Option {
	return func(s *Service) {
		if p != nil {
			s.publishers = append(s.publishers, p)
		}
	}
}

// WithUpwellingDefault sets the upwelling index used when a request has none.
func WithUpwellingDefault(v float64) Option {
	return func(s *Service) { s.upwellingDefault = v }
}

// WithLocale sets the locale of fallback recommendation texts.
func WithLocale(locale string) Option {
	return func(s *Service) { s.locale = locale }
}

// NewService creates an analysis service. A nil generator uses the fallback text only.
func NewService(store species.Store, provider ocean.Provider, generator advisor.Generator, opts ...Option) *Service {
	s := &Service{
		store:            store,
		ocean:            provider,
		advisor:          generator,
		locale:           advisor.LocaleFrench,
		upwellingDefault: conf.DefaultUpwellingIndex,
		now:              time.Now,
		logger:           logging.ForService("analysis"),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.advisor == nil {
		s.advisor = advisor.NewFallbackGenerator(s.locale)
	}
	s.validator = intake.New(store, s.now)
	return s
}

// Analyze validates the sample, fetches the current SST unless the request
// carries one, and returns the complete report. Rest decisions are published
// to every configured publisher; publication failures are logged only.
func (s *Service) Analyze(ctx context.Context, req Request) (*Report, error) {
	start := time.Now()

	sample := req.Sample
	profile, err := s.validate(&sample)
	if err != nil {
		return nil, err
	}

	var snapshot ocean.Snapshot
	if req.SST != nil {
		snapshot = manualSnapshot(*req.SST, sample.Date)
	} else {
		if s.ocean == nil {
			return nil, errors.Newf("no ocean provider configured").
				Component("analysis").
				Category(errors.CategoryConfiguration).
				Build()
		}
		snapshot = s.ocean.FetchCurrentSST(ctx)
	}

	report := s.evaluate(sample, profile, snapshot, req.Upwelling)
	report.Recommendation = s.advisor.Recommend(ctx, s.advisorInput(report))
	report.DurationMs = float64(time.Since(start).Microseconds()) / 1000

	s.record(report, time.Since(start))
	s.logger.Info("Analysis completed",
		"id", report.ID,
		"species", profile.Code,
		"zone", sample.Zone,
		"risk_score", report.Prediction.RiskScore,
		"urgency", report.Prediction.Urgency,
		"sst_live", snapshot.Live,
		"recommendation_source", report.Recommendation.Source)

	if report.RestRecommended() {
		for _, p := range s.publishers {
			if err := p.PublishDecision(ctx, report); err != nil {
				s.logger.Warn("Failed to publish rest decision", "id", report.ID, "error", err)
			}
		}
	}

	return report, nil
}

// Preview evaluates a sample against an explicit SST without any network
// access. The recommendation is always the fallback text and nothing is published.
func (s *Service) Preview(req Request) (*Report, error) {
	if req.SST == nil {
		return nil, errors.New(errors.NewStd("sst is required for a preview")).
			Component("analysis").
			Category(errors.CategoryValidation).
			Context("fields", map[string]string{"sst": "is required"}).
			Build()
	}

	start := time.Now()
	sample := req.Sample
	profile, err := s.validate(&sample)
	if err != nil {
		return nil, err
	}

	report := s.evaluate(sample, profile, manualSnapshot(*req.SST, sample.Date), req.Upwelling)
	report.Recommendation = advisor.Fallback(s.advisorInput(report), s.locale)
	report.DurationMs = float64(time.Since(start).Microseconds()) / 1000
	return report, nil
}

func (s *Service) validate(sample *engine.Sample) (species.Profile, error) {
	profile, err := s.validator.Validate(sample)
	if err != nil && s.metrics != nil {
		reason := "validation"
		if errors.IsNotFound(err) {
			reason = "not_found"
		}
		s.metrics.RecordRejected(reason)
	}
	return profile, err
}

// evaluate runs the pure engine stages.
func (s *Service) evaluate(sample engine.Sample, profile species.Profile, snapshot ocean.Snapshot, upwelling *float64) *Report {
	if upwelling == nil {
		upwelling = &s.upwellingDefault
	}

	features := engine.ComputeFeatures(sample, profile, engine.OceanInput{SST: snapshot.SST, Upwelling: upwelling})
	prediction := engine.Predict(features, profile)
	impact := engine.ComputeImpact(profile, s.store.Economics(profile.Code), prediction.RiskScore)

	report := &Report{
		ID:           uuid.NewString(),
		CreatedAt:    s.now(),
		Sample:       sample,
		Species:      profile,
		Ocean:        snapshot,
		Features:     features,
		Prediction:   prediction,
		SignalCounts: engine.CountBySeverity(prediction.Signals),
	}
	if prediction.Classification {
		report.Impact = &impact
	}
	return report
}

func (s *Service) advisorInput(r *Report) advisor.Input {
	in := advisor.Input{
		Profile:    r.Species,
		Zone:       r.Sample.Zone,
		Date:       r.Sample.Date,
		Features:   r.Features,
		Prediction: r.Prediction,
	}
	if r.Impact != nil {
		in.Impact = *r.Impact
	}
	return in
}

func (s *Service) record(r *Report, elapsed time.Duration) {
	if s.metrics == nil {
		return
	}
	s.metrics.RecordAnalysis(r.Species.Code, string(r.Prediction.Urgency), r.Prediction.RiskScore, elapsed.Seconds())
	for i := range r.Prediction.Signals {
		sig := &r.Prediction.Signals[i]
		s.metrics.RecordSignal(string(sig.Domain), string(sig.Severity))
	}
	s.metrics.RecordRecommendation(r.Recommendation.Source)
}

func manualSnapshot(sst float64, date time.Time) ocean.Snapshot {
	return ocean.Snapshot{
		SST:    sst,
		Date:   date.Format(time.DateOnly),
		Source: SourceManual,
		Live:   false,
	}
}

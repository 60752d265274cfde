package mqtt

import (
	"time"

	"github.com/bahria/bahria-go/internal/analysis"
	"github.com/bahria/bahria-go/internal/engine"
)

// DecisionDTO is the payload published for a recommended rest.
//
// Field names are part of the topic contract consumed by subscribers.
type DecisionDTO struct {
	ID              string         `json:"id"`
	Node            string         `json:"node"`
	PublishedAt     time.Time      `json:"published_at"`
	SpeciesCode     string         `json:"species_code"`
	CommonName      string         `json:"common_name"`
	Zone            string         `json:"zone"`
	SampleDate      string         `json:"sample_date"`
	RiskScore       int            `json:"risk_score"`
	Confidence      int            `json:"confidence"`
	Urgency         engine.Urgency `json:"urgency"`
	DurationDays    int            `json:"duration_days"`
	TonnesForegone  float64        `json:"tonnes_foregone"`
	ValueMillions   float64        `json:"value_millions_mad"`
	WorkersAffected int            `json:"workers_affected"`
	BiomassGain     string         `json:"biomass_gain"`
	SST             float64        `json:"sst"`
	SSTLive         bool           `json:"sst_live"`
	CriticalSignals []string       `json:"critical_signals"`
	Recommendation  string         `json:"recommendation"`
}

// NewDecisionDTO flattens a report into the published payload.
func NewDecisionDTO(r *analysis.Report, node string, now time.Time) DecisionDTO {
	dto := DecisionDTO{
		ID:              r.ID,
		Node:            node,
		PublishedAt:     now,
		SpeciesCode:     r.Species.Code,
		CommonName:      r.Species.CommonName,
		Zone:            r.Sample.Zone,
		SampleDate:      r.Sample.Date.Format(time.DateOnly),
		RiskScore:       r.Prediction.RiskScore,
		Confidence:      r.Prediction.Confidence,
		Urgency:         r.Prediction.Urgency,
		SST:             r.Ocean.SST,
		SSTLive:         r.Ocean.Live,
		CriticalSignals: []string{},
		Recommendation:  r.Recommendation.Text,
	}
	if r.Impact != nil {
		dto.DurationDays = r.Impact.DurationDays
		dto.TonnesForegone = r.Impact.TonnesForegone
		dto.ValueMillions = r.Impact.ValueMillions
		dto.WorkersAffected = r.Impact.WorkersAffected
		dto.BiomassGain = r.Impact.BiomassGain
	}
	for _, s := range r.SortedSignals() {
		if s.Severity != engine.SeverityCritical {
			break
		}
		dto.CriticalSignals = append(dto.CriticalSignals, s.Title)
	}
	return dto
}

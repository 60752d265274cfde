// Package species provides the static species reference store: biological
// constants per species and the economic reference table used for impact estimates.
package species

import (
	"slices"
	"strings"
)

// Stock status categories.
const (
	StockOverexploited  = "overexploited"
	StockFullyExploited = "fully_exploited"
	StockModerate       = "moderately_exploited"
)

// Profile holds the read-only biological and economic reference data for one species.
type Profile struct {
	Code              string   `yaml:"code" json:"code"`
	CommonName        string   `yaml:"common_name" json:"common_name"`
	ScientificName    string   `yaml:"scientific_name" json:"scientific_name"`
	Icon              string   `yaml:"icon" json:"icon"`
	Zones             []string `yaml:"zones" json:"zones"`
	L50Cm             float64  `yaml:"l50_cm" json:"l50_cm"`
	OptimalSizeCm     float64  `yaml:"optimal_size_cm" json:"optimal_size_cm"`
	MaturityWeightG   float64  `yaml:"maturity_weight_g" json:"maturity_weight_g"`
	OptimalWeightG    float64  `yaml:"optimal_weight_g" json:"optimal_weight_g"`
	SpawningMonths    []int    `yaml:"spawning_months" json:"spawning_months"`
	PeakSpawn         string   `yaml:"peak_spawn" json:"peak_spawn"`
	SpawnSSTThreshold float64  `yaml:"spawn_sst_threshold" json:"spawn_sst_threshold"`
	CPUEPrior         float64  `yaml:"cpue_2023" json:"cpue_2023"` // baseline year, kg per trip
	CPUEPrevious      float64  `yaml:"cpue_2024" json:"cpue_2024"`
	CPUERecent        float64  `yaml:"cpue_2025" json:"cpue_2025"`
	CPUETrend2yPct    float64  `yaml:"cpue_trend_2y_pct" json:"cpue_trend_2y_pct"`
	AvgPriceMAD       float64  `yaml:"avg_price_mad" json:"avg_price_mad"` // per kg
	StockStatus       string   `yaml:"stock_status" json:"stock_status"`
	QuotaTotalT       float64  `yaml:"quota_total_t,omitempty" json:"quota_total_t,omitempty"`
	QuotaArtisanalT   float64  `yaml:"quota_artisanal_t,omitempty" json:"quota_artisanal_t,omitempty"`
}

// Economics is the per-species socio-economic reference used by the impact estimate.
type Economics struct {
	DailyCatchTonnes float64 `yaml:"daily_catch_tonnes" json:"daily_catch_tonnes"`
	WorkersAffected  int     `yaml:"workers_affected" json:"workers_affected"`
}

// Store is a keyed, read-only lookup of species reference data.
type Store interface {
	// Get returns the profile for code, or false when the species is unknown.
	Get(code string) (Profile, bool)
	// List returns all profiles in catalog order.
	List() []Profile
	// Economics returns the economic reference for code. Unknown codes yield the zero value.
	Economics(code string) Economics
}

// AllowsZone reports whether zone is one of the species' fishing zones.
// A species without declared zones accepts any zone.
func (p *Profile) AllowsZone(zone string) bool {
	_, ok := p.CanonicalZone(zone)
	return ok
}

// CanonicalZone returns the declared spelling of zone, compared without case.
// A species without declared zones returns zone unchanged.
func (p *Profile) CanonicalZone(zone string) (string, bool) {
	if len(p.Zones) == 0 {
		return zone, true
	}
	for _, z := range p.Zones {
		if strings.EqualFold(z, zone) {
			return z, true
		}
	}
	return "", false
}

// clone returns a copy that shares no slices with p.
func (p Profile) clone() Profile {
	p.Zones = slices.Clone(p.Zones)
	p.SpawningMonths = slices.Clone(p.SpawningMonths)
	return p
}

package advisor

import (
	"math"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"github.com/bahria/bahria-go/internal/engine"
)

// Supported fallback locales.
const (
	LocaleFrench  = "fr"
	LocaleEnglish = "en"
)

// Fallback builds the deterministic recommendation for the risk score:
// immediate rest, reinforced surveillance, or normal situation.
func Fallback(in Input, locale string) Recommendation {
	tag := language.French
	if locale == LocaleEnglish {
		tag = language.English
	}
	p := message.NewPrinter(tag)
	name := cases.Title(tag).String(in.Profile.CommonName)
	score := in.Prediction.RiskScore

	var text string
	switch {
	case score >= engine.ImmediateThreshold:
		l50 := number.Decimal(in.Profile.L50Cm, number.MaxFractionDigits(1))
		drop := number.Decimal(math.Abs(in.Profile.CPUETrend2yPct), number.MaxFractionDigits(1))
		if tag == language.English {
			text = p.Sprintf("Immediate biological rest recommended for %s. Average catch size is below the maturity threshold (L50 = %v cm) and CPUE has fallen %v%% over 2 years. Urgency: immediate. Suggested duration: %d days.",
				name, l50, drop, in.Impact.DurationDays)
		} else {
			text = p.Sprintf("Arrêt biologique immédiat recommandé pour %s. Taille moyenne des captures inférieure au seuil de maturité (L50 = %v cm), CPUE en chute de %v%% sur 2 ans. Urgence : immédiate. Durée suggérée : %d jours.",
				name, l50, drop, in.Impact.DurationDays)
		}
	case score >= engine.RestThreshold:
		if tag == language.English {
			text = p.Sprintf("Reinforced surveillance recommended for %s. Several indicators are approaching critical thresholds. Re-evaluate within 7 days with new samples.", name)
		} else {
			text = p.Sprintf("Surveillance renforcée recommandée pour %s. Plusieurs indicateurs approchent les seuils critiques. Réévaluation dans 7 jours avec nouveaux échantillons.", name)
		}
	default:
		if tag == language.English {
			text = p.Sprintf("Normal situation for %s. Biological and oceanographic indicators do not justify an early closure. Next check in 15 days.", name)
		} else {
			text = p.Sprintf("Situation normale pour %s. Les indicateurs biologiques et océanographiques ne justifient pas d'arrêt anticipé. Prochain contrôle dans 15 jours.", name)
		}
	}

	return Recommendation{Text: text, Source: SourceFallback}
}

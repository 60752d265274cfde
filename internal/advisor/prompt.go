package advisor

import (
	"fmt"
	"strings"
	"time"
)

// BuildPrompt renders the instruction sent to remote generators. The impact
// line is only included when a rest is recommended.
func BuildPrompt(in Input) string {
	classification := "Pas d'arrêt nécessaire"
	if in.Prediction.Classification {
		classification = "ARRÊT BIOLOGIQUE RECOMMANDÉ"
	}

	var b strings.Builder
	b.WriteString("Tu es BAHRIA, un système expert en gestion halieutique au Maroc.\n")
	b.WriteString("Analyse cette situation et produis une recommandation en 3-4 phrases maximum, en français, ")
	b.WriteString("pour un décideur du Secrétariat d'État de la Pêche Maritime.\n\n")

	fmt.Fprintf(&b, "Espèce : %s (%s)\n", in.Profile.CommonName, in.Profile.ScientificName)
	fmt.Fprintf(&b, "Zone : %s\n", in.Zone)
	fmt.Fprintf(&b, "Date : %s\n\n", in.Date.Format(time.DateOnly))

	b.WriteString("Données échantillon :\n")
	fmt.Fprintf(&b, "- Taille moyenne captures : %g cm (maturité L50 : %g cm)\n", in.Features.AvgSizeCm, in.Profile.L50Cm)
	fmt.Fprintf(&b, "- Poids moyen : %g g\n", in.Features.AvgWeightG)
	fmt.Fprintf(&b, "- SST actuelle : %g°C (seuil ponte : %g°C)\n", in.Features.SSTCurrent, in.Profile.SpawnSSTThreshold)
	fmt.Fprintf(&b, "- CPUE récent : %g kg/sortie (tendance 2 ans : %g%%)\n\n", in.Profile.CPUERecent, in.Profile.CPUETrend2yPct)

	b.WriteString("Résultat analyse :\n")
	fmt.Fprintf(&b, "- Classification : %s\n", classification)
	fmt.Fprintf(&b, "- Score de risque : %d/100\n", in.Prediction.RiskScore)
	fmt.Fprintf(&b, "- Confiance : %d%%", in.Prediction.Confidence)
	if in.Prediction.Classification {
		fmt.Fprintf(&b, "\nImpact estimé : %d jours d'arrêt, %.0f T non pêchées, %.2f MDH de manque à gagner, %d marins impactés.",
			in.Impact.DurationDays, in.Impact.TonnesForegone, in.Impact.ValueMillions, in.Impact.WorkersAffected)
	}
	b.WriteString("\n\nDonne ta recommandation opérationnelle précise.")

	return b.String()
}

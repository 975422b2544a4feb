package scoring

import (
	"github.com/turtacn/LabelScan-Intelligence/internal/domain/catalog"
	"github.com/turtacn/LabelScan-Intelligence/pkg/types/scoring"
)

// PositionFactor selects the entry's factor for a 1-based rank.
func PositionFactor(e *catalog.Entry, rank int) float64 {
	pm := e.Position()
	switch {
	case rank <= 3:
		return pm.Top3
	case rank <= 6:
		return pm.Top6
	default:
		return pm.Rest
	}
}

// PercentFactor selects the entry's factor for a declared concentration.
// Bucket bounds: above 10, 3 to 10 inclusive, below 3.
func PercentFactor(e *catalog.Entry, percent float64) float64 {
	pm := e.Percent()
	switch {
	case percent > 10:
		return pm.GT10
	case percent >= 3:
		return pm.From3
	default:
		return pm.Below3
	}
}

// Weight is the penalty a match contributes: the base penalty scaled by the
// position factor and, when the token declared one, the percent factor.
func Weight(e *catalog.Entry, token *scoring.IngredientToken) float64 {
	w := e.Penalty * PositionFactor(e, token.Rank)
	if token.Percent != nil {
		w *= PercentFactor(e, *token.Percent)
	}
	return w
}

//Personal.AI order the ending

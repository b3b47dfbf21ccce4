package usecase

import (
	"math"
	"slices"

	"videoab/internal/core/domain"
)

// BuildVerdict ranks totals and derives the winner and its lift. Variants
// with views rank above those without, then by conversion rate, then by
// registration position. When any variant has fewer than minSampleViews
// views, no winner or lift is claimed.
func BuildVerdict(experimentID string, totals []domain.VariantTotals, minSampleViews int64) domain.Verdict {
	standings := make([]domain.Standing, len(totals))
	for i, t := range totals {
		standings[i] = domain.Standing{
			VariantID:   t.VariantID,
			Name:        t.Name,
			Position:    t.Position,
			Views:       t.Views,
			Conversions: t.Conversions,
			Rate:        domain.ConversionRate(t.Views, t.Conversions),
		}
	}
	slices.SortStableFunc(standings, compareStandings)

	v := domain.Verdict{
		ExperimentID:   experimentID,
		Standings:      standings,
		MinSampleViews: minSampleViews,
	}
	if len(standings) == 0 {
		v.InsufficientData = true
		return v
	}
	for _, s := range standings {
		if s.Views < minSampleViews {
			v.InsufficientData = true
			return v
		}
	}
	v.WinningVariantID = standings[0].VariantID
	if len(standings) > 1 {
		v.RunnerUpVariantID = standings[1].VariantID
		v.LiftPercentage = lift(standings[0], standings[1])
	}
	return v
}

// compareStandings orders best first. Rates are compared by
// cross-multiplication so equal rates tie exactly.
func compareStandings(a, b domain.Standing) int {
	if (a.Views > 0) != (b.Views > 0) {
		if a.Views > 0 {
			return -1
		}
		return 1
	}
	if a.Views > 0 {
		l, r := a.Conversions*b.Views, b.Conversions*a.Views
		if l != r {
			if l > r {
				return -1
			}
			return 1
		}
	}
	return a.Position - b.Position
}

// lift is the relative improvement of w over r in percent. It is nil when
// r has no conversions.
func lift(w, r domain.Standing) *float64 {
	if r.Views == 0 || r.Conversions == 0 || w.Views == 0 {
		return nil
	}
	num := w.Conversions*r.Views - r.Conversions*w.Views
	den := r.Conversions * w.Views
	l := float64(num) / float64(den) * 100
	return &l
}

// confidence is a two-proportion z-test between the two best variants,
// mapped to [0, 1) with the normal CDF. It is a proxy, not a p-value.
func confidence(a, b domain.Standing) float64 {
	if a.Views == 0 || b.Views == 0 {
		return 0
	}
	n1, n2 := float64(a.Views), float64(b.Views)
	p1, p2 := float64(a.Conversions)/n1, float64(b.Conversions)/n2
	p := float64(a.Conversions+b.Conversions) / (n1 + n2)
	se := math.Sqrt(p * (1 - p) * (1/n1 + 1/n2))
	if se == 0 {
		return 0
	}
	z := math.Abs(p1-p2) / se
	return math.Erf(z / math.Sqrt2)
}

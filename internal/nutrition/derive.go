package nutrition

import "math"

// Bucket is a named health-score range used for color coding.
type Bucket struct {
	Label string
	Hex   string
}

var (
	bucketHealthy     = Bucket{Label: "Healthy", Hex: "#10B981"}
	bucketModerate    = Bucket{Label: "Moderate", Hex: "#FBBF24"}
	bucketLessHealthy = Bucket{Label: "Less Healthy", Hex: "#F97316"}
	bucketHighCaution = Bucket{Label: "High Caution", Hex: "#EF4444"}
)

// ClampScore clamps a health score into [0, 100].
func ClampScore(score int) int {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

// BucketFor maps a health score to its bucket. Out-of-range scores are
// clamped before lookup, so the function is total over all integers.
func BucketFor(score int) Bucket {
	score = ClampScore(score)
	switch {
	case score >= 80:
		return bucketHealthy
	case score >= 60:
		return bucketModerate
	case score >= 40:
		return bucketLessHealthy
	default:
		return bucketHighCaution
	}
}

// MacroPercent is one macro's share of the daily target.
type MacroPercent struct {
	Label   string
	ActualG float64
	TargetG int
	Percent int
}

// Percents derives the per-macro percentage of the daily targets.
// percent = round(100 * actual / target), floored at 0 and deliberately
// not capped: values over 100 signal overconsumption and are stored
// as-is. A target of zero or less yields percent 0.
func Percents(e Estimate, t Targets) []MacroPercent {
	return []MacroPercent{
		{Label: "Protein", ActualG: e.ProteinG, TargetG: t.DailyProteinG, Percent: percentOf(e.ProteinG, t.DailyProteinG)},
		{Label: "Carbs", ActualG: e.CarbsG, TargetG: t.DailyCarbsG, Percent: percentOf(e.CarbsG, t.DailyCarbsG)},
		{Label: "Fat", ActualG: e.FatG, TargetG: t.DailyFatG, Percent: percentOf(e.FatG, t.DailyFatG)},
	}
}

func percentOf(actual float64, target int) int {
	if target <= 0 {
		return 0
	}
	p := int(math.Round(100 * actual / float64(target)))
	if p < 0 {
		return 0
	}
	return p
}

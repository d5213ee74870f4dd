package nutrition

// Estimate is the structured result of analyzing one meal photo.
// It lives only for the duration of a single record's processing; the
// persisted copy is whatever gets written back to the meal record.
type Estimate struct {
	FoodName    string
	Kcal        int
	ProteinG    float64
	CarbsG      float64
	FatG        float64
	Score       int
	Insight     string
	Tip         string
	FoodType    string
	PortionSize string
}

// Targets holds the user's daily nutrition targets. It is read-only for
// the lifetime of a run and is passed explicitly into prompt building,
// derivation, and rendering.
type Targets struct {
	DailyKcal     int
	DailyProteinG int
	DailyCarbsG   int
	DailyFatG     int
}

// DefaultTargets returns the built-in daily targets.
func DefaultTargets() Targets {
	return Targets{
		DailyKcal:     2000,
		DailyProteinG: 50,
		DailyCarbsG:   250,
		DailyFatG:     65,
	}
}

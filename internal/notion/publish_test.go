package notion

import "github.com/7Spidy/foodinsight-ai/internal/nutrition"

func estimateFixture() nutrition.Estimate {
	return nutrition.Estimate{
		FoodName: "Chicken Biryani",
		Kcal:     650,
		ProteinG: 32.5,
		CarbsG:   78,
		FatG:     22,
		Score:    55,
		Insight:  "High in carbs and moderate in protein.",
		Tip:      "Use brown rice and less oil.",
	}
}

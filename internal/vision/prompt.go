package vision

import (
	"fmt"
	"strings"

	"github.com/7Spidy/foodinsight-ai/internal/nutrition"
)

// Profile carries the user details embedded in the instruction so the
// model can contextualize portion and calorie estimates.
type Profile struct {
	Age      int
	Location string
}

const promptHeader = `You are a professional nutritionist and food analyst.
Analyze this food image and provide detailed nutritional insights.`

const promptSchema = `Please analyze this meal and return a JSON response with:
{
    "food_name": "Name of the dish (e.g., Chicken Biryani)",
    "estimated_kcal": <estimated total calories as integer>,
    "protein_g": <estimated protein in grams>,
    "carbs_g": <estimated carbohydrates in grams>,
    "fat_g": <estimated fat in grams>,
    "food_score": <health score 0-100 where 100 is perfectly healthy>,
    "ai_insight": "<1-2 sentences about this food's nutritional profile>",
    "healthy_tips": "<1-2 sentences on how to make this meal healthier>",
    "food_type": "<category: vegetarian/non-vegetarian/vegan/etc>",
    "portion_size": "<estimated portion size>"
}

Be conservative in calorie estimates. Use regional nutrition databases for the user's location when applicable.
Return ONLY valid JSON, no markdown or extra text.`

// BuildPrompt constructs the fixed instruction text sent with every meal
// photo. Targets and profile are embedded so the model's insight can
// reference the user's daily goals.
func BuildPrompt(targets nutrition.Targets, profile Profile) string {
	var sb strings.Builder
	sb.WriteString(promptHeader)
	sb.WriteString("\n\nUser Profile:\n")
	if profile.Age > 0 {
		fmt.Fprintf(&sb, "- Age: %d years\n", profile.Age)
	}
	if profile.Location != "" {
		fmt.Fprintf(&sb, "- Location: %s\n", profile.Location)
	}
	fmt.Fprintf(&sb, "- Daily KCal Target: %d KCal\n", targets.DailyKcal)
	fmt.Fprintf(&sb, "- Daily Protein Target: %dg\n", targets.DailyProteinG)
	fmt.Fprintf(&sb, "- Daily Carbs Target: %dg\n", targets.DailyCarbsG)
	fmt.Fprintf(&sb, "- Daily Fat Target: %dg\n", targets.DailyFatG)
	sb.WriteString("\n")
	sb.WriteString(promptSchema)
	return sb.String()
}

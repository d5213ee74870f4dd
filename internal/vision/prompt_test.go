package vision

import (
	"strings"
	"testing"

	"github.com/7Spidy/foodinsight-ai/internal/nutrition"
)

func TestBuildPrompt(t *testing.T) {
	prompt := BuildPrompt(nutrition.Targets{
		DailyKcal:     2000,
		DailyProteinG: 50,
		DailyCarbsG:   250,
		DailyFatG:     65,
	}, Profile{Age: 35, Location: "Mumbai, India"})

	for _, want := range []string{
		"Age: 35 years",
		"Location: Mumbai, India",
		"Daily KCal Target: 2000 KCal",
		"Daily Protein Target: 50g",
		"Daily Carbs Target: 250g",
		"Daily Fat Target: 65g",
		`"food_name"`,
		`"estimated_kcal"`,
		`"food_score"`,
		`"healthy_tips"`,
		`"portion_size"`,
		"ONLY valid JSON",
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
}

func TestBuildPrompt_EmptyProfile(t *testing.T) {
	prompt := BuildPrompt(nutrition.DefaultTargets(), Profile{})
	if strings.Contains(prompt, "Age:") {
		t.Error("prompt mentions age for empty profile")
	}
	if strings.Contains(prompt, "Location:") {
		t.Error("prompt mentions location for empty profile")
	}
}

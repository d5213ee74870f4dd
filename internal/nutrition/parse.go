package nutrition

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"
)

// defaultFoodName is used when the model response omits the dish name.
const defaultFoodName = "Unknown meal"

// rawEstimate mirrors the JSON object the model is instructed to return.
// Numeric fields are pointers so a missing field is distinguishable from
// a zero value.
type rawEstimate struct {
	FoodName    string   `json:"food_name"`
	Kcal        *float64 `json:"estimated_kcal"`
	ProteinG    *float64 `json:"protein_g"`
	CarbsG      *float64 `json:"carbs_g"`
	FatG        *float64 `json:"fat_g"`
	Score       *float64 `json:"food_score"`
	Insight     string   `json:"ai_insight"`
	Tip         string   `json:"healthy_tips"`
	FoodType    string   `json:"food_type"`
	PortionSize string   `json:"portion_size"`
}

// ParseEstimate validates a model response against the nutrition schema.
// The response may be wrapped in markdown code fences. Missing or
// negative numeric fields are rejected rather than guessed at; only the
// score is clamped into [0, 100].
func ParseEstimate(response string) (Estimate, error) {
	text := stripCodeFences(response)
	if text == "" {
		return Estimate{}, fmt.Errorf("empty response")
	}

	var raw rawEstimate
	if err := json.Unmarshal([]byte(text), &raw); err != nil {
		return Estimate{}, fmt.Errorf("parsing response JSON: %w", err)
	}

	for _, f := range []struct {
		name string
		val  *float64
	}{
		{"estimated_kcal", raw.Kcal},
		{"protein_g", raw.ProteinG},
		{"carbs_g", raw.CarbsG},
		{"fat_g", raw.FatG},
		{"food_score", raw.Score},
	} {
		if f.val == nil {
			return Estimate{}, fmt.Errorf("response missing required field %q", f.name)
		}
		if *f.val < 0 && f.name != "food_score" {
			return Estimate{}, fmt.Errorf("field %q is negative (%v)", f.name, *f.val)
		}
	}

	e := Estimate{
		FoodName:    strings.TrimSpace(raw.FoodName),
		Kcal:        int(math.Round(*raw.Kcal)),
		ProteinG:    *raw.ProteinG,
		CarbsG:      *raw.CarbsG,
		FatG:        *raw.FatG,
		Score:       ClampScore(int(math.Round(*raw.Score))),
		Insight:     strings.TrimSpace(raw.Insight),
		Tip:         strings.TrimSpace(raw.Tip),
		FoodType:    strings.TrimSpace(raw.FoodType),
		PortionSize: strings.TrimSpace(raw.PortionSize),
	}
	if e.FoodName == "" {
		e.FoodName = defaultFoodName
	}
	return e, nil
}

// stripCodeFences removes a surrounding ```json ... ``` (or plain ```)
// wrapper that vision models frequently add despite instructions.
func stripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	if idx := strings.Index(s, "```json"); idx >= 0 {
		s = s[idx+len("```json"):]
		if end := strings.Index(s, "```"); end >= 0 {
			s = s[:end]
		}
	} else if idx := strings.Index(s, "```"); idx >= 0 {
		s = s[idx+len("```"):]
		if end := strings.Index(s, "```"); end >= 0 {
			s = s[:end]
		}
	}
	return strings.TrimSpace(s)
}

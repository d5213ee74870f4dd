package vision

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/7Spidy/foodinsight-ai/internal/nutrition"
)

type mockChatter struct {
	response string
	err      error

	gotImage       []byte
	gotInstruction string
}

func (m *mockChatter) Analyze(_ context.Context, image []byte, _, instruction string) (string, error) {
	m.gotImage = image
	m.gotInstruction = instruction
	return m.response, m.err
}

func TestExtractor_Analyze(t *testing.T) {
	chatter := &mockChatter{response: `{
		"food_name": "Masala Dosa",
		"estimated_kcal": 450,
		"protein_g": 9,
		"carbs_g": 60,
		"fat_g": 18,
		"food_score": 62,
		"ai_insight": "Mostly carbs.",
		"healthy_tips": "Skip the extra ghee."
	}`}

	e := NewExtractor(chatter, nutrition.DefaultTargets(), Profile{Age: 35, Location: "Mumbai, India"})
	est, err := e.Analyze(context.Background(), []byte{1, 2, 3}, "image/jpeg")
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}

	if est.FoodName != "Masala Dosa" {
		t.Errorf("FoodName = %q, want %q", est.FoodName, "Masala Dosa")
	}
	if est.Kcal != 450 {
		t.Errorf("Kcal = %d, want 450", est.Kcal)
	}
	if len(chatter.gotImage) != 3 {
		t.Errorf("client received %d image bytes, want 3", len(chatter.gotImage))
	}
	if !strings.Contains(chatter.gotInstruction, "Daily KCal Target: 2000 KCal") {
		t.Error("instruction does not embed the daily targets")
	}
}

func TestExtractor_Analyze_ClientError(t *testing.T) {
	chatter := &mockChatter{err: fmt.Errorf("connection refused")}
	e := NewExtractor(chatter, nutrition.DefaultTargets(), Profile{})

	_, err := e.Analyze(context.Background(), []byte{1}, "image/jpeg")
	if err == nil {
		t.Fatal("expected error, got nil")
	}
}

func TestExtractor_Analyze_UnparseableResponse(t *testing.T) {
	chatter := &mockChatter{response: "this plate looks delicious"}
	e := NewExtractor(chatter, nutrition.DefaultTargets(), Profile{})

	_, err := e.Analyze(context.Background(), []byte{1}, "image/jpeg")
	if err == nil {
		t.Fatal("expected error for unparseable response, got nil")
	}
	if !strings.Contains(err.Error(), "invalid model response") {
		t.Errorf("error = %q, want it to mention invalid model response", err.Error())
	}
}

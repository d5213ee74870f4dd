package vision

import (
	"context"
	"fmt"

	"github.com/7Spidy/foodinsight-ai/internal/nutrition"
)

// Chatter is the interface for the underlying image-chat call.
type Chatter interface {
	Analyze(ctx context.Context, image []byte, contentType, instruction string) (string, error)
}

// Extractor turns a meal photo into a validated nutrition estimate.
// One model attempt per call; retry policy belongs to the caller.
type Extractor struct {
	client      Chatter
	instruction string
}

// NewExtractor creates an Extractor with a fixed instruction built from
// the user's targets and profile.
func NewExtractor(client Chatter, targets nutrition.Targets, profile Profile) *Extractor {
	return &Extractor{
		client:      client,
		instruction: BuildPrompt(targets, profile),
	}
}

// Analyze submits the photo and parses the response against the strict
// nutrition schema. A response that omits required fields fails here
// rather than being guessed at.
func (e *Extractor) Analyze(ctx context.Context, image []byte, contentType string) (nutrition.Estimate, error) {
	raw, err := e.client.Analyze(ctx, image, contentType, e.instruction)
	if err != nil {
		return nutrition.Estimate{}, fmt.Errorf("vision call: %w", err)
	}

	est, err := nutrition.ParseEstimate(raw)
	if err != nil {
		return nutrition.Estimate{}, fmt.Errorf("invalid model response: %w", err)
	}
	return est, nil
}

package notion

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/7Spidy/foodinsight-ai/internal/nutrition"
)

// PublishInput holds everything written back to a record on success.
type PublishInput struct {
	Estimate    nutrition.Estimate
	ProcessedAt time.Time
	ReportURL   string // optional; set when the rendered report was uploaded
	ReportName  string
}

// Publish writes the analysis results to a record in a single PATCH and
// advances its status to processed. On failure the status is left
// untouched, so the record is retried by a later run.
func (c *Client) Publish(ctx context.Context, pageID string, in PublishInput) error {
	e := in.Estimate

	props := map[string]any{
		propFoodName:   titleProp(e.FoodName),
		propKcal:       numberProp(float64(e.Kcal)),
		propProtein:    numberProp(e.ProteinG),
		propCarbs:      numberProp(e.CarbsG),
		propFat:        numberProp(e.FatG),
		propScore:      numberProp(float64(e.Score)),
		propInsight:    richTextProp(e.Insight),
		propTips:       richTextProp(e.Tip),
		propAnalyzedAt: dateProp(in.ProcessedAt),
		propStatus:     selectProp(string(StatusProcessed)),
		propErrMessage: richTextProp(""),
	}
	if in.ReportURL != "" {
		props[propReport] = externalFileProp(in.ReportName, in.ReportURL)
	}

	if _, err := c.do(ctx, http.MethodPatch, "/pages/"+pageID, map[string]any{"properties": props}); err != nil {
		return fmt.Errorf("updating page %s: %w", pageID, err)
	}
	return nil
}

// MarkError sets a record's status to error and records the captured
// failure message.
func (c *Client) MarkError(ctx context.Context, pageID, msg string) error {
	props := map[string]any{
		propStatus:     selectProp(string(StatusError)),
		propErrMessage: richTextProp(msg),
	}
	if _, err := c.do(ctx, http.MethodPatch, "/pages/"+pageID, map[string]any{"properties": props}); err != nil {
		return fmt.Errorf("marking page %s as error: %w", pageID, err)
	}
	return nil
}

func titleProp(text string) map[string]any {
	return map[string]any{
		"title": []map[string]any{
			{"text": map[string]any{"content": text}},
		},
	}
}

func richTextProp(text string) map[string]any {
	if text == "" {
		return map[string]any{"rich_text": []map[string]any{}}
	}
	return map[string]any{
		"rich_text": []map[string]any{
			{"text": map[string]any{"content": text}},
		},
	}
}

func numberProp(v float64) map[string]any {
	return map[string]any{"number": v}
}

func selectProp(name string) map[string]any {
	return map[string]any{"select": map[string]any{"name": name}}
}

func dateProp(t time.Time) map[string]any {
	return map[string]any{"date": map[string]any{"start": t.Format(time.RFC3339)}}
}

func externalFileProp(name, url string) map[string]any {
	if name == "" {
		name = "nutrition-report.pdf"
	}
	return map[string]any{
		"files": []map[string]any{
			{
				"type":     "external",
				"name":     name,
				"external": map[string]any{"url": url},
			},
		},
	}
}

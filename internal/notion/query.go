package notion

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

const maxPageSize = 100

// propStatus and friends name the database properties this client reads
// and writes. The database schema is owned by the user; the doctor
// command checks these exist before a run.
const (
	propFoodName   = "Food Name"
	propMealPhoto  = "Meal Photo"
	propStatus     = "Status"
	propKcal       = "KCal Count"
	propProtein    = "Protein (g)"
	propCarbs      = "Carbs (g)"
	propFat        = "Fat (g)"
	propScore      = "Food Score"
	propInsight    = "AI Insight"
	propTips       = "Healthy Tips"
	propAnalyzedAt = "Analysis DateTime"
	propErrMessage = "Error Message"
	propReport     = "Nutrition Report"
)

// RequiredProperties lists the database properties the pipeline reads
// or writes, in display order, for schema checks.
func RequiredProperties() []string {
	return []string{
		propFoodName,
		propMealPhoto,
		propStatus,
		propKcal,
		propProtein,
		propCarbs,
		propFat,
		propScore,
		propInsight,
		propTips,
		propAnalyzedAt,
		propErrMessage,
		propReport,
	}
}

// page mirrors the subset of the Notion page object this client reads.
type page struct {
	ID          string              `json:"id"`
	CreatedTime time.Time           `json:"created_time"`
	Properties  map[string]property `json:"properties"`
}

type property struct {
	Type  string `json:"type"`
	Title []struct {
		PlainText string `json:"plain_text"`
	} `json:"title"`
	Select *struct {
		Name string `json:"name"`
	} `json:"select"`
	Files []struct {
		Type string `json:"type"`
		Name string `json:"name"`
		File *struct {
			URL string `json:"url"`
		} `json:"file"`
		External *struct {
			URL string `json:"url"`
		} `json:"external"`
	} `json:"files"`
}

// QueryPending lists up to limit pending records, oldest first.
// The status filter is applied server-side so records already processed
// are never selected again.
func (c *Client) QueryPending(ctx context.Context, limit int) ([]MealRecord, error) {
	if limit <= 0 || limit > maxPageSize {
		limit = maxPageSize
	}

	payload := map[string]any{
		"filter": map[string]any{
			"property": propStatus,
			"select":   map[string]any{"equals": string(StatusPending)},
		},
		"sorts": []map[string]any{
			{"timestamp": "created_time", "direction": "ascending"},
		},
		"page_size": limit,
	}

	raw, err := c.do(ctx, http.MethodPost, "/databases/"+c.databaseID+"/query", payload)
	if err != nil {
		return nil, fmt.Errorf("querying database: %w", err)
	}

	var result struct {
		Results []page `json:"results"`
	}
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, fmt.Errorf("decoding query results: %w", err)
	}

	records := make([]MealRecord, 0, len(result.Results))
	for _, p := range result.Results {
		records = append(records, recordFromPage(p))
	}
	return records, nil
}

// GetRecord fetches a single record by page ID with a fresh photo URL.
func (c *Client) GetRecord(ctx context.Context, pageID string) (MealRecord, error) {
	raw, err := c.do(ctx, http.MethodGet, "/pages/"+pageID, nil)
	if err != nil {
		return MealRecord{}, fmt.Errorf("reading page %s: %w", pageID, err)
	}

	var p page
	if err := json.Unmarshal(raw, &p); err != nil {
		return MealRecord{}, fmt.Errorf("decoding page: %w", err)
	}
	return recordFromPage(p), nil
}

func recordFromPage(p page) MealRecord {
	rec := MealRecord{ID: p.ID, CreatedAt: p.CreatedTime}

	if prop, ok := p.Properties[propFoodName]; ok {
		for _, t := range prop.Title {
			rec.Title += t.PlainText
		}
	}
	if prop, ok := p.Properties[propStatus]; ok && prop.Select != nil {
		rec.Status = Status(prop.Select.Name)
	}
	if prop, ok := p.Properties[propMealPhoto]; ok && prop.Type == "files" && len(prop.Files) > 0 {
		// Only the first attached file is analyzed.
		f := prop.Files[0]
		rec.PhotoName = f.Name
		switch {
		case f.File != nil:
			rec.PhotoURL = f.File.URL
		case f.External != nil:
			rec.PhotoURL = f.External.URL
		}
	}
	return rec
}

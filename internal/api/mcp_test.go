package api

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/7Spidy/foodinsight-ai/internal/notion"
	"github.com/7Spidy/foodinsight-ai/internal/pipeline"
)

// --- mocks ---

type mockBatchRunner struct {
	runFn    func(ctx context.Context) (pipeline.RunSummary, error)
	runOneFn func(ctx context.Context, pageID string) (pipeline.RecordResult, error)
}

func (m *mockBatchRunner) Run(ctx context.Context) (pipeline.RunSummary, error) {
	return m.runFn(ctx)
}

func (m *mockBatchRunner) RunOne(ctx context.Context, pageID string) (pipeline.RecordResult, error) {
	return m.runOneFn(ctx, pageID)
}

type mockPendingLister struct {
	records  []notion.MealRecord
	err      error
	gotLimit int
}

func (m *mockPendingLister) QueryPending(_ context.Context, limit int) ([]notion.MealRecord, error) {
	m.gotLimit = limit
	return m.records, m.err
}

// --- helpers ---

func toolText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	if len(result.Content) == 0 {
		t.Fatal("no content in result")
	}
	tc, ok := result.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("expected TextContent, got %T", result.Content[0])
	}
	return tc.Text
}

func makeCallToolRequest(name string, args map[string]interface{}) mcp.CallToolRequest {
	return mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Name:      name,
			Arguments: args,
		},
	}
}

func makeReadResourceRequest(uri string) mcp.ReadResourceRequest {
	return mcp.ReadResourceRequest{
		Params: mcp.ReadResourceParams{
			URI: uri,
		},
	}
}

// --- tests ---

func TestMCPListPending(t *testing.T) {
	lister := &mockPendingLister{
		records: []notion.MealRecord{
			{ID: "p1", Title: "breakfast", PhotoName: "idli.jpg", CreatedAt: time.Date(2026, 8, 24, 8, 0, 0, 0, time.UTC)},
			{ID: "p2", Title: "lunch"},
		},
	}
	deps := MCPDeps{Source: lister, MaxEntries: 10}

	result, err := mcpListPending(deps)(context.Background(), makeCallToolRequest("list_pending", nil))
	if err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if result.IsError {
		t.Fatalf("tool error: %s", toolText(t, result))
	}
	if lister.gotLimit != 10 {
		t.Errorf("limit = %d, want default 10", lister.gotLimit)
	}

	var records []map[string]any
	if err := json.Unmarshal([]byte(toolText(t, result)), &records); err != nil {
		t.Fatalf("decoding result: %v", err)
	}
	if len(records) != 2 || records[0]["page_id"] != "p1" || records[0]["name"] != "breakfast" {
		t.Errorf("records = %+v", records)
	}
}

func TestMCPListPending_CustomLimit(t *testing.T) {
	lister := &mockPendingLister{}
	deps := MCPDeps{Source: lister, MaxEntries: 10}

	result, err := mcpListPending(deps)(context.Background(),
		makeCallToolRequest("list_pending", map[string]interface{}{"limit": 3}))
	if err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if lister.gotLimit != 3 {
		t.Errorf("limit = %d, want 3", lister.gotLimit)
	}
	if got := toolText(t, result); got != "[]" {
		t.Errorf("empty result = %q, want []", got)
	}
}

func TestMCPListPending_Error(t *testing.T) {
	deps := MCPDeps{Source: &mockPendingLister{err: errors.New("401")}, MaxEntries: 10}

	result, err := mcpListPending(deps)(context.Background(), makeCallToolRequest("list_pending", nil))
	if err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if !result.IsError {
		t.Fatal("expected tool error")
	}
}

func TestMCPAnalyzeMeal(t *testing.T) {
	var gotPageID string
	runner := &mockBatchRunner{
		runOneFn: func(_ context.Context, pageID string) (pipeline.RecordResult, error) {
			gotPageID = pageID
			return pipeline.RecordResult{PageID: pageID, FoodName: "Poha", Outcome: pipeline.OutcomeProcessed}, nil
		},
	}
	deps := MCPDeps{Runner: runner}

	result, err := mcpAnalyzeMeal(deps)(context.Background(),
		makeCallToolRequest("analyze_meal", map[string]interface{}{"page_id": "p7"}))
	if err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if result.IsError {
		t.Fatalf("tool error: %s", toolText(t, result))
	}
	if gotPageID != "p7" {
		t.Errorf("page ID = %q, want p7", gotPageID)
	}

	var res pipeline.RecordResult
	if err := json.Unmarshal([]byte(toolText(t, result)), &res); err != nil {
		t.Fatalf("decoding result: %v", err)
	}
	if res.Outcome != pipeline.OutcomeProcessed || res.FoodName != "Poha" {
		t.Errorf("result = %+v", res)
	}
}

func TestMCPAnalyzeMeal_MissingPageID(t *testing.T) {
	result, err := mcpAnalyzeMeal(MCPDeps{})(context.Background(),
		makeCallToolRequest("analyze_meal", nil))
	if err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if !result.IsError {
		t.Fatal("expected tool error for missing page_id")
	}
	if got := toolText(t, result); !strings.Contains(got, "page_id") {
		t.Errorf("error text = %q", got)
	}
}

func TestMCPRunBatch_RecordsHistory(t *testing.T) {
	runner := &mockBatchRunner{
		runFn: func(_ context.Context) (pipeline.RunSummary, error) {
			return pipeline.RunSummary{ID: "run-42", Total: 2, Processed: 2}, nil
		},
	}
	history := pipeline.NewHistory(0)
	deps := MCPDeps{Runner: runner, History: history}

	result, err := mcpRunBatch(deps)(context.Background(), makeCallToolRequest("run_batch", nil))
	if err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if result.IsError {
		t.Fatalf("tool error: %s", toolText(t, result))
	}

	last, ok := history.Latest()
	if !ok || last.ID != "run-42" {
		t.Errorf("history latest = %+v, %v, want run-42", last, ok)
	}
}

func TestMCPRunBatch_Error(t *testing.T) {
	runner := &mockBatchRunner{
		runFn: func(_ context.Context) (pipeline.RunSummary, error) {
			return pipeline.RunSummary{}, &pipeline.Error{Kind: pipeline.KindIngest, Err: errors.New("db unreachable")}
		},
	}

	result, err := mcpRunBatch(MCPDeps{Runner: runner})(context.Background(), makeCallToolRequest("run_batch", nil))
	if err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if !result.IsError {
		t.Fatal("expected tool error")
	}
}

func TestMCPResourceStatus(t *testing.T) {
	history := pipeline.NewHistory(0)
	history.Add(pipeline.RunSummary{ID: "run-9"})
	deps := MCPDeps{History: history}

	contents, err := mcpResourceStatus(deps)(context.Background(), makeReadResourceRequest("foodinsight://status"))
	if err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if len(contents) != 1 {
		t.Fatalf("got %d contents, want 1", len(contents))
	}
	text, ok := contents[0].(mcp.TextResourceContents)
	if !ok {
		t.Fatalf("expected TextResourceContents, got %T", contents[0])
	}

	var resp StatusResponse
	if err := json.Unmarshal([]byte(text.Text), &resp); err != nil {
		t.Fatalf("decoding status: %v", err)
	}
	if resp.State != "ok" || resp.LastRun == nil || resp.LastRun.ID != "run-9" {
		t.Errorf("status = %+v", resp)
	}
}

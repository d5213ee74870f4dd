package api

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/7Spidy/foodinsight-ai/internal/notion"
	"github.com/7Spidy/foodinsight-ai/internal/pipeline"
)

// BatchRunner abstracts the pipeline for the MCP layer.
type BatchRunner interface {
	Run(ctx context.Context) (pipeline.RunSummary, error)
	RunOne(ctx context.Context, pageID string) (pipeline.RecordResult, error)
}

// PendingLister lists pending meal records.
type PendingLister interface {
	QueryPending(ctx context.Context, limit int) ([]notion.MealRecord, error)
}

// MCPDeps holds dependencies for the MCP server.
type MCPDeps struct {
	Runner     BatchRunner
	Source     PendingLister
	History    *pipeline.History
	MaxEntries int
}

// NewMCPServer creates an MCP server exposing the meal pipeline as
// tools, so an assistant can trigger analysis on demand.
func NewMCPServer(deps MCPDeps) *server.MCPServer {
	s := server.NewMCPServer(
		"foodinsight",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(false, true),
		server.WithInstructions("FoodInsight AI — analyze meal photos from a Notion database into nutrition estimates and report PDFs."),
		server.WithRecovery(),
	)

	s.AddTool(
		mcp.NewTool("list_pending",
			mcp.WithDescription("List meal records waiting for analysis."),
			mcp.WithNumber("limit", mcp.Description("Maximum number of records to return (default 10)")),
		),
		mcpListPending(deps),
	)

	s.AddTool(
		mcp.NewTool("analyze_meal",
			mcp.WithDescription("Analyze a single pending meal record by its Notion page ID and publish the results."),
			mcp.WithString("page_id", mcp.Description("Notion page ID of the meal record"), mcp.Required()),
		),
		mcpAnalyzeMeal(deps),
	)

	s.AddTool(
		mcp.NewTool("run_batch",
			mcp.WithDescription("Process one batch of pending meal records, exactly like a scheduled run."),
		),
		mcpRunBatch(deps),
	)

	s.AddResource(
		mcp.NewResource(
			"foodinsight://status",
			"Pipeline Status",
			mcp.WithResourceDescription("Latest run summary as JSON"),
			mcp.WithMIMEType("application/json"),
		),
		mcpResourceStatus(deps),
	)

	return s
}

func mcpListPending(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		limit := req.GetInt("limit", deps.MaxEntries)
		if limit <= 0 {
			limit = deps.MaxEntries
		}

		records, err := deps.Source.QueryPending(ctx, limit)
		if err != nil {
			return mcpError(fmt.Sprintf("listing pending records failed: %v", err)), nil
		}

		if len(records) == 0 {
			return mcpText("[]"), nil
		}

		type pendingRecord struct {
			PageID    string `json:"page_id"`
			Name      string `json:"name,omitempty"`
			PhotoName string `json:"photo_name,omitempty"`
			CreatedAt string `json:"created_at"`
		}

		results := make([]pendingRecord, len(records))
		for i, rec := range records {
			results[i] = pendingRecord{
				PageID:    rec.ID,
				Name:      rec.Title,
				PhotoName: rec.PhotoName,
				CreatedAt: rec.CreatedAt.Format(time.RFC3339),
			}
		}

		b, err := json.Marshal(results)
		if err != nil {
			return mcpError(fmt.Sprintf("failed to marshal results: %v", err)), nil
		}
		return mcpText(string(b)), nil
	}
}

func mcpAnalyzeMeal(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		pageID, err := req.RequireString("page_id")
		if err != nil {
			return mcpError("page_id is required"), nil
		}

		res, err := deps.Runner.RunOne(ctx, pageID)
		if err != nil {
			return mcpError(fmt.Sprintf("analysis failed: %v", err)), nil
		}

		b, err := json.Marshal(res)
		if err != nil {
			return mcpError(fmt.Sprintf("failed to marshal result: %v", err)), nil
		}
		return mcpText(string(b)), nil
	}
}

func mcpRunBatch(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		sum, err := deps.Runner.Run(ctx)
		if err != nil {
			return mcpError(fmt.Sprintf("batch run failed: %v", err)), nil
		}
		if deps.History != nil {
			deps.History.Add(sum)
		}

		b, err := json.Marshal(sum)
		if err != nil {
			return mcpError(fmt.Sprintf("failed to marshal summary: %v", err)), nil
		}
		return mcpText(string(b)), nil
	}
}

func mcpResourceStatus(deps MCPDeps) server.ResourceHandlerFunc {
	return func(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		resp := StatusResponse{State: "idle"}
		if deps.History != nil {
			if last, ok := deps.History.Latest(); ok {
				resp.State = "ok"
				resp.LastRun = &last
			}
		}

		b, err := json.Marshal(resp)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal status: %w", err)
		}

		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      req.Params.URI,
				MIMEType: "application/json",
				Text:     string(b),
			},
		}, nil
	}
}

func mcpText(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: text},
		},
	}
}

func mcpError(msg string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: msg},
		},
		IsError: true,
	}
}

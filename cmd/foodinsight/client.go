package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/7Spidy/foodinsight-ai/internal/api"
	"github.com/7Spidy/foodinsight-ai/internal/artifact"
)

type apiClient struct {
	baseURL    string
	httpClient *http.Client
}

func newAPIClient(port int) *apiClient {
	return &apiClient{
		baseURL:    fmt.Sprintf("http://127.0.0.1:%d", port),
		httpClient: &http.Client{Timeout: 5 * time.Second},
	}
}

func (c *apiClient) get(ctx context.Context, path string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("server not reachable — is foodinsight serve running? (%w)", err)
	}
	return resp, nil
}

func decodeJSON(resp *http.Response, v any) error {
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("server returned %d (failed to read body: %w)", resp.StatusCode, err)
		}
		return fmt.Errorf("server returned %d: %s", resp.StatusCode, string(body))
	}
	return json.NewDecoder(resp.Body).Decode(v)
}

func showStatus(ctx context.Context, client *apiClient) error {
	resp, err := client.get(ctx, "/status")
	if err != nil {
		printStatus("Server", "stopped")
		return nil
	}

	var st api.StatusResponse
	if err := decodeJSON(resp, &st); err != nil {
		printStatus("Server", "error (%v)", err)
		return nil
	}
	printStatus("Server", "running at %s", client.baseURL)

	if st.LastRun == nil {
		printStatus("Last run", "none yet")
	} else {
		printStatus("Last run", "%s", st.LastRun.FinishedAt.Format(time.RFC3339))
		printStatus("Processed", "%d of %d", st.LastRun.Processed, st.LastRun.Total)
		if st.LastRun.Deferred > 0 {
			printStatus("Deferred", "%d", st.LastRun.Deferred)
		}
		if st.LastRun.Failed > 0 {
			printStatus("Failed", "%d", st.LastRun.Failed)
		}
	}

	if reportsResp, err := client.get(ctx, "/reports"); err == nil {
		var reports []artifact.ReportInfo
		if decodeJSON(reportsResp, &reports) == nil {
			printStatus("Reports", "%d", len(reports))
		}
	}
	return nil
}

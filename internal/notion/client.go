package notion

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	defaultBaseURL = "https://api.notion.com/v1"
	apiVersion     = "2024-04-04"
	defaultTimeout = 15 * time.Second

	defaultDownloadTimeout = 10 * time.Second
	maxPhotoSize           = 20 << 20 // 20MB
)

// Status is the processing state of a meal record, stored as the
// "Status" select property. Only pending records are ever selected;
// processed and error are terminal within a run.
type Status string

const (
	StatusPending   Status = "pending"
	StatusProcessed Status = "processed"
	StatusError     Status = "error"
)

// MealRecord is one row of the meal database. PhotoURL is a short-lived
// signed URL; it must be re-fetched from the API before each download.
type MealRecord struct {
	ID        string
	Title     string
	PhotoURL  string
	PhotoName string
	Status    Status
	CreatedAt time.Time
}

// Photo is a downloaded meal photo.
type Photo struct {
	Name        string
	ContentType string
	Data        []byte
}

// Client communicates with the Notion API for a single meal database.
type Client struct {
	token           string
	databaseID      string
	baseURL         string
	httpClient      *http.Client
	downloadTimeout time.Duration
}

// NewClient creates a Notion client for the given database. The database
// ID is accepted dashed or undashed and canonicalized to dashed form.
func NewClient(token, databaseID string) (*Client, error) {
	id, err := normalizeDatabaseID(databaseID)
	if err != nil {
		return nil, err
	}
	return &Client{
		token:           token,
		databaseID:      id,
		baseURL:         defaultBaseURL,
		httpClient:      &http.Client{Timeout: defaultTimeout},
		downloadTimeout: defaultDownloadTimeout,
	}, nil
}

// NewClientWithBaseURL creates a client pointing at a custom base URL (for testing).
func NewClientWithBaseURL(token, databaseID, baseURL string) (*Client, error) {
	c, err := NewClient(token, databaseID)
	if err != nil {
		return nil, err
	}
	c.baseURL = strings.TrimRight(baseURL, "/")
	return c, nil
}

// SetDownloadTimeout overrides the per-photo download timeout.
func (c *Client) SetDownloadTimeout(d time.Duration) {
	if d > 0 {
		c.downloadTimeout = d
	}
}

func normalizeDatabaseID(id string) (string, error) {
	id = strings.TrimSpace(id)
	u, err := uuid.Parse(id)
	if err != nil {
		return "", fmt.Errorf("invalid database ID %q: %w", id, err)
	}
	return u.String(), nil
}

func (c *Client) do(ctx context.Context, method, path string, body any) (json.RawMessage, error) {
	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshalling request: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Notion-Version", apiVersion)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &APIError{StatusCode: resp.StatusCode, Body: truncate(string(raw), 512)}
	}
	return raw, nil
}

// APIError captures a non-200 Notion API response.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("notion API returned %d: %s", e.StatusCode, e.Body)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

// DatabaseInfo describes the meal database for connectivity checks.
type DatabaseInfo struct {
	Title      string
	Properties map[string]string // property name -> property type
}

// CheckAccess verifies the token can reach the configured database and
// returns its title and property map.
func (c *Client) CheckAccess(ctx context.Context) (DatabaseInfo, error) {
	raw, err := c.do(ctx, http.MethodGet, "/databases/"+c.databaseID, nil)
	if err != nil {
		return DatabaseInfo{}, fmt.Errorf("reading database: %w", err)
	}

	var db struct {
		Title []struct {
			PlainText string `json:"plain_text"`
		} `json:"title"`
		Properties map[string]struct {
			Type string `json:"type"`
		} `json:"properties"`
	}
	if err := json.Unmarshal(raw, &db); err != nil {
		return DatabaseInfo{}, fmt.Errorf("decoding database: %w", err)
	}

	info := DatabaseInfo{Properties: make(map[string]string, len(db.Properties))}
	for _, t := range db.Title {
		info.Title += t.PlainText
	}
	for name, p := range db.Properties {
		info.Properties[name] = p.Type
	}
	return info, nil
}

// DownloadPhoto fetches the record's photo. Notion file URLs expire
// after about an hour, so the record must come from a fresh query.
func (c *Client) DownloadPhoto(ctx context.Context, rec MealRecord) (Photo, error) {
	if rec.PhotoURL == "" {
		return Photo{}, fmt.Errorf("record %s has no photo", rec.ID)
	}

	ctx, cancel := context.WithTimeout(ctx, c.downloadTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rec.PhotoURL, nil)
	if err != nil {
		return Photo{}, fmt.Errorf("creating download request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Photo{}, fmt.Errorf("downloading photo: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Photo{}, fmt.Errorf("photo download returned %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxPhotoSize+1))
	if err != nil {
		return Photo{}, fmt.Errorf("reading photo: %w", err)
	}
	if len(data) > maxPhotoSize {
		return Photo{}, fmt.Errorf("photo exceeds %d bytes", maxPhotoSize)
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = http.DetectContentType(data)
	}

	return Photo{Name: rec.PhotoName, ContentType: contentType, Data: data}, nil
}

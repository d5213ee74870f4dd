package vision

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func chatResponseJSON(content string) string {
	b, _ := json.Marshal(map[string]any{
		"choices": []map[string]any{
			{"message": map[string]any{"role": "assistant", "content": content}},
		},
	})
	return string(b)
}

func TestAnalyze(t *testing.T) {
	var gotAuth string
	var gotBody map[string]any

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			http.NotFound(w, r)
			return
		}
		gotAuth = r.Header.Get("Authorization")
		json.NewDecoder(r.Body).Decode(&gotBody)
		fmt.Fprint(w, chatResponseJSON(`{"food_name": "Dal"}`))
	}))
	defer srv.Close()

	c := NewClient("test-key", WithBaseURL(srv.URL))
	got, err := c.Analyze(context.Background(), []byte{0xFF, 0xD8, 0xFF}, "image/jpeg", "analyze this")
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}

	if got != `{"food_name": "Dal"}` {
		t.Errorf("response = %q", got)
	}
	if gotAuth != "Bearer test-key" {
		t.Errorf("Authorization = %q, want %q", gotAuth, "Bearer test-key")
	}
	if gotBody["model"] != "gpt-4o-mini" {
		t.Errorf("model = %v, want gpt-4o-mini", gotBody["model"])
	}
	if gotBody["max_tokens"] != float64(1000) {
		t.Errorf("max_tokens = %v, want 1000", gotBody["max_tokens"])
	}
	if gotBody["temperature"] != 0.3 {
		t.Errorf("temperature = %v, want 0.3", gotBody["temperature"])
	}

	messages, _ := gotBody["messages"].([]any)
	if len(messages) != 1 {
		t.Fatalf("got %d messages, want 1", len(messages))
	}
	msg, _ := messages[0].(map[string]any)
	content, _ := msg["content"].([]any)
	if len(content) != 2 {
		t.Fatalf("got %d content parts, want 2", len(content))
	}

	img, _ := content[1].(map[string]any)
	imgURL, _ := img["image_url"].(map[string]any)
	url, _ := imgURL["url"].(string)
	if !strings.HasPrefix(url, "data:image/jpeg;base64,") {
		t.Errorf("image url = %q, want a base64 data URL", url)
	}
	if imgURL["detail"] != "high" {
		t.Errorf("detail = %v, want high", imgURL["detail"])
	}
}

func TestAnalyze_Options(t *testing.T) {
	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&gotBody)
		fmt.Fprint(w, chatResponseJSON("ok"))
	}))
	defer srv.Close()

	c := NewClient("k", WithBaseURL(srv.URL), WithModel("gpt-4o"), WithMaxTokens(500), WithTemperature(0))
	if _, err := c.Analyze(context.Background(), []byte{1}, "image/png", "x"); err != nil {
		t.Fatalf("Analyze: %v", err)
	}

	if gotBody["model"] != "gpt-4o" {
		t.Errorf("model = %v, want gpt-4o", gotBody["model"])
	}
	if gotBody["max_tokens"] != float64(500) {
		t.Errorf("max_tokens = %v, want 500", gotBody["max_tokens"])
	}
	if gotBody["temperature"] != float64(0) {
		t.Errorf("temperature = %v, want 0", gotBody["temperature"])
	}
}

func TestAnalyze_EmptyImage(t *testing.T) {
	c := NewClient("k")
	if _, err := c.Analyze(context.Background(), nil, "image/jpeg", "x"); err == nil {
		t.Fatal("expected error for empty image, got nil")
	}
}

func TestAnalyze_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprint(w, `{"error": {"message": "invalid image"}}`)
	}))
	defer srv.Close()

	c := NewClient("k", WithBaseURL(srv.URL))
	_, err := c.Analyze(context.Background(), []byte{1}, "image/jpeg", "x")
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if IsTransient(err) {
		t.Error("400 should not be transient")
	}
}

func TestAnalyze_NoChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"choices": []}`)
	}))
	defer srv.Close()

	c := NewClient("k", WithBaseURL(srv.URL))
	if _, err := c.Analyze(context.Background(), []byte{1}, "image/jpeg", "x"); err == nil {
		t.Fatal("expected error for empty choices, got nil")
	}
}

func TestIsTransient(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"rate limit", &HTTPStatusError{StatusCode: 429}, true},
		{"server error", &HTTPStatusError{StatusCode: 503}, true},
		{"bad request", &HTTPStatusError{StatusCode: 400}, false},
		{"unauthorized", &HTTPStatusError{StatusCode: 401}, false},
		{"deadline", context.DeadlineExceeded, true},
		{"wrapped rate limit", fmt.Errorf("vision call: %w", &HTTPStatusError{StatusCode: 429}), true},
		{"plain error", fmt.Errorf("parse failure"), false},
		{"nil", nil, false},
	}
	for _, tt := range tests {
		if got := IsTransient(tt.err); got != tt.want {
			t.Errorf("IsTransient(%s) = %v, want %v", tt.name, got, tt.want)
		}
	}
}

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// setRequired populates the secrets every load needs.
func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("NOTION_API_TOKEN", "ntn_test")
	t.Setenv("NOTION_DATABASE_ID", "4cff1f6434b8467d91e21a26bca86712")
	t.Setenv("OPENAI_API_KEY", "sk-test")
}

// clearOptional blanks the optional env overrides so defaults are observable.
func clearOptional(t *testing.T) {
	t.Helper()
	for _, s := range specs {
		switch s.env {
		case "NOTION_API_TOKEN", "NOTION_DATABASE_ID", "OPENAI_API_KEY":
			continue
		}
		t.Setenv(s.env, "")
	}
}

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDefaults(t *testing.T) {
	setRequired(t)
	clearOptional(t)

	cfg, err := loadWith(newFileBackend(filepath.Join(t.TempDir(), "missing.json")))
	if err != nil {
		t.Fatalf("loadWith: %v", err)
	}

	if cfg.OpenAI.Model != "gpt-4o-mini" {
		t.Errorf("OpenAI.Model = %q, want gpt-4o-mini", cfg.OpenAI.Model)
	}
	if cfg.OpenAI.MaxTokens != 1000 {
		t.Errorf("OpenAI.MaxTokens = %d, want 1000", cfg.OpenAI.MaxTokens)
	}
	if cfg.OpenAI.Temperature != 0.3 {
		t.Errorf("OpenAI.Temperature = %v, want 0.3", cfg.OpenAI.Temperature)
	}
	if cfg.OpenAI.Timeout != 30*time.Second {
		t.Errorf("OpenAI.Timeout = %v, want 30s", cfg.OpenAI.Timeout)
	}
	if cfg.Ingest.MaxEntries != 10 {
		t.Errorf("Ingest.MaxEntries = %d, want 10", cfg.Ingest.MaxEntries)
	}
	if cfg.Targets.DailyKcal != 2000 || cfg.Targets.DailyProteinG != 50 ||
		cfg.Targets.DailyCarbsG != 250 || cfg.Targets.DailyFatG != 65 {
		t.Errorf("Targets = %+v, want 2000/50/250/65", cfg.Targets)
	}
	if cfg.Profile.Age != 35 || cfg.Profile.Location != "Mumbai, India" {
		t.Errorf("Profile = %+v", cfg.Profile)
	}
	if !cfg.Features.PDFGeneration || cfg.Features.SaveImages || cfg.Features.UploadReports {
		t.Errorf("Features = %+v, want PDF on, others off", cfg.Features)
	}
	if cfg.Server.Port != 4747 {
		t.Errorf("Server.Port = %d, want 4747", cfg.Server.Port)
	}
	if cfg.Watch.Interval != 5*time.Minute {
		t.Errorf("Watch.Interval = %v, want 5m", cfg.Watch.Interval)
	}
	if cfg.Log.Level != "info" {
		t.Errorf("Log.Level = %q, want info", cfg.Log.Level)
	}
}

func TestFileBackendValues(t *testing.T) {
	setRequired(t)
	clearOptional(t)

	path := writeConfigFile(t, `{
		"openai.model": "gpt-4o",
		"ingest.max_entries": 3,
		"targets.daily_kcal": 1800,
		"profile.location": "Pune, India",
		"features.save_images": "true",
		"watch.interval": "90s",
		"server.port": 8080
	}`)

	cfg, err := loadWith(newFileBackend(path))
	if err != nil {
		t.Fatalf("loadWith: %v", err)
	}

	if cfg.OpenAI.Model != "gpt-4o" {
		t.Errorf("OpenAI.Model = %q, want gpt-4o", cfg.OpenAI.Model)
	}
	if cfg.Ingest.MaxEntries != 3 {
		t.Errorf("Ingest.MaxEntries = %d, want 3", cfg.Ingest.MaxEntries)
	}
	if cfg.Targets.DailyKcal != 1800 {
		t.Errorf("Targets.DailyKcal = %d, want 1800", cfg.Targets.DailyKcal)
	}
	if cfg.Profile.Location != "Pune, India" {
		t.Errorf("Profile.Location = %q", cfg.Profile.Location)
	}
	if !cfg.Features.SaveImages {
		t.Error("Features.SaveImages = false, want true")
	}
	if cfg.Watch.Interval != 90*time.Second {
		t.Errorf("Watch.Interval = %v, want 90s", cfg.Watch.Interval)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("Server.Port = %d, want 8080", cfg.Server.Port)
	}
}

func TestEnvOverridesFile(t *testing.T) {
	setRequired(t)
	clearOptional(t)

	path := writeConfigFile(t, `{"openai.model": "from-file"}`)
	t.Setenv("OPENAI_MODEL", "from-env")

	cfg, err := loadWith(newFileBackend(path))
	if err != nil {
		t.Fatalf("loadWith: %v", err)
	}
	if cfg.OpenAI.Model != "from-env" {
		t.Errorf("OpenAI.Model = %q, want env to win over file", cfg.OpenAI.Model)
	}
}

// Bare numbers in duration keys are seconds, matching the original env
// file format; Go duration syntax also works.
func TestDurationParsing(t *testing.T) {
	setRequired(t)
	clearOptional(t)

	t.Setenv("OPENAI_TIMEOUT", "45")
	t.Setenv("IMAGE_DOWNLOAD_TIMEOUT", "2m")

	cfg, err := loadWith(newFileBackend(filepath.Join(t.TempDir(), "missing.json")))
	if err != nil {
		t.Fatalf("loadWith: %v", err)
	}
	if cfg.OpenAI.Timeout != 45*time.Second {
		t.Errorf("OpenAI.Timeout = %v, want 45s", cfg.OpenAI.Timeout)
	}
	if cfg.Ingest.DownloadTimeout != 2*time.Minute {
		t.Errorf("Ingest.DownloadTimeout = %v, want 2m", cfg.Ingest.DownloadTimeout)
	}
}

func TestMalformedEnvKeepsDefault(t *testing.T) {
	setRequired(t)
	clearOptional(t)

	t.Setenv("MAX_ENTRIES_PER_RUN", "lots")
	t.Setenv("ENABLE_PDF_GENERATION", "yes please")

	cfg, err := loadWith(newFileBackend(filepath.Join(t.TempDir(), "missing.json")))
	if err != nil {
		t.Fatalf("loadWith: %v", err)
	}
	if cfg.Ingest.MaxEntries != 10 {
		t.Errorf("Ingest.MaxEntries = %d, want default 10 after parse failure", cfg.Ingest.MaxEntries)
	}
	if !cfg.Features.PDFGeneration {
		t.Error("Features.PDFGeneration = false, want default true after parse failure")
	}
}

func TestMissingRequiredSecrets(t *testing.T) {
	clearOptional(t)
	t.Setenv("NOTION_API_TOKEN", "")
	t.Setenv("NOTION_DATABASE_ID", "")
	t.Setenv("OPENAI_API_KEY", "")

	_, err := loadWith(newFileBackend(filepath.Join(t.TempDir(), "missing.json")))
	if err == nil {
		t.Fatal("expected error for missing secrets, got nil")
	}
	if !strings.Contains(err.Error(), "missing required config") {
		t.Errorf("error = %q, want it to name the missing config", err)
	}
}

func TestUploadEnabledRequiresBucket(t *testing.T) {
	setRequired(t)
	clearOptional(t)
	t.Setenv("ENABLE_REPORT_UPLOAD", "true")

	_, err := loadWith(newFileBackend(filepath.Join(t.TempDir(), "missing.json")))
	if err == nil {
		t.Fatal("expected error when upload is on without a bucket")
	}
}

func TestSetKey(t *testing.T) {
	b := newFileBackend(filepath.Join(t.TempDir(), "config.json"))

	if err := setKeyWith(b, "openai.model", "gpt-4o"); err != nil {
		t.Fatalf("setKeyWith: %v", err)
	}
	if v, ok, _ := b.GetString("openai.model"); !ok || v != "gpt-4o" {
		t.Errorf("stored value = %q, %v", v, ok)
	}

	if err := setKeyWith(b, "ingest.max_entries", "five"); err == nil {
		t.Error("expected error for non-integer value")
	}
	if err := setKeyWith(b, "watch.interval", "sometimes"); err == nil {
		t.Error("expected error for bad duration")
	}
	if err := setKeyWith(b, "nope.nope", "x"); err == nil {
		t.Error("expected error for unknown key")
	}
}

func TestSetKey_RefusesSecrets(t *testing.T) {
	b := newFileBackend(filepath.Join(t.TempDir(), "config.json"))

	err := setKeyWith(b, "notion.api_token", "ntn_123")
	if err == nil {
		t.Fatal("expected refusal for secret key")
	}
	if !strings.Contains(err.Error(), "NOTION_API_TOKEN") {
		t.Errorf("error = %q, want it to point at the env var", err)
	}
}

func TestShowAllAndValidKeysOmitSecrets(t *testing.T) {
	for _, k := range ValidKeys() {
		switch k {
		case "notion.api_token", "openai.api_key", "upload.access_key", "upload.secret_key":
			t.Errorf("ValidKeys includes secret %q", k)
		}
	}
	for _, info := range ShowAll(defaults()) {
		if strings.Contains(info.Key, "api_token") || strings.Contains(info.Key, "api_key") ||
			strings.Contains(info.Key, "secret") {
			t.Errorf("ShowAll includes secret %q", info.Key)
		}
	}
}

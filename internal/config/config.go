package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Notion    NotionConfig
	OpenAI    OpenAIConfig
	Ingest    IngestConfig
	Targets   TargetsConfig
	Profile   ProfileConfig
	Artifacts ArtifactsConfig
	Features  FeaturesConfig
	Upload    UploadConfig
	Server    ServerConfig
	Watch     WatchConfig
	Log       LogConfig
}

type NotionConfig struct {
	APIToken   string
	DatabaseID string
}

type OpenAIConfig struct {
	APIKey      string
	Model       string
	MaxTokens   int
	Temperature float64
	Timeout     time.Duration
}

type IngestConfig struct {
	MaxEntries      int
	DownloadTimeout time.Duration
}

type TargetsConfig struct {
	DailyKcal     int
	DailyProteinG int
	DailyCarbsG   int
	DailyFatG     int
}

type ProfileConfig struct {
	Age      int
	Location string
}

type ArtifactsConfig struct {
	Dir string
}

type FeaturesConfig struct {
	PDFGeneration bool
	SaveImages    bool
	UploadReports bool
}

type UploadConfig struct {
	Bucket        string
	Endpoint      string
	Region        string
	PublicBaseURL string
	AccessKey     string
	SecretKey     string
}

type ServerConfig struct {
	Port int
}

type WatchConfig struct {
	Interval time.Duration
}

type LogConfig struct {
	Level string
}

func defaults() Config {
	return Config{
		OpenAI: OpenAIConfig{
			Model:       "gpt-4o-mini",
			MaxTokens:   1000,
			Temperature: 0.3,
			Timeout:     30 * time.Second,
		},
		Ingest: IngestConfig{
			MaxEntries:      10,
			DownloadTimeout: 10 * time.Second,
		},
		Targets: TargetsConfig{
			DailyKcal:     2000,
			DailyProteinG: 50,
			DailyCarbsG:   250,
			DailyFatG:     65,
		},
		Profile: ProfileConfig{
			Age:      35,
			Location: "Mumbai, India",
		},
		Artifacts: ArtifactsConfig{
			Dir: "artifacts",
		},
		Features: FeaturesConfig{
			PDFGeneration: true,
		},
		Upload: UploadConfig{
			Region: "auto",
		},
		Server: ServerConfig{
			Port: 4747,
		},
		Watch: WatchConfig{
			Interval: 5 * time.Minute,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load reads configuration from the JSON file backend at
// $XDG_CONFIG_HOME/foodinsight/config.json, then applies environment
// overrides. A .env file in the working directory is loaded first
// without clobbering variables already set in the environment. Secrets
// (API tokens, bucket credentials) come from the environment only.
func Load() (Config, error) {
	_ = godotenv.Load()
	return loadWith(newFileBackend(configFilePath()))
}

func loadWith(b ConfigBackend) (Config, error) {
	cfg := defaults()

	if err := applyBackend(&cfg, b); err != nil {
		return Config{}, err
	}
	applyEnvOverrides(&cfg)

	if err := validate(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func validate(cfg Config) error {
	missing := ""
	switch {
	case cfg.Notion.APIToken == "":
		missing = "Notion API token (NOTION_API_TOKEN)"
	case cfg.Notion.DatabaseID == "":
		missing = "Notion database ID (NOTION_DATABASE_ID)"
	case cfg.OpenAI.APIKey == "":
		missing = "OpenAI API key (OPENAI_API_KEY)"
	}
	if missing != "" {
		return fmt.Errorf("missing required config: %s. Set it via the environment or a .env file", missing)
	}

	if cfg.Features.UploadReports {
		if cfg.Upload.Bucket == "" || cfg.Upload.PublicBaseURL == "" {
			return fmt.Errorf("report upload is enabled but REPORTS_BUCKET or REPORTS_PUBLIC_BASE_URL is not set")
		}
	}
	return nil
}

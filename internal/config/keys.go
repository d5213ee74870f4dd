package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type keyType int

const (
	kString keyType = iota
	kInt
	kBool
	kFloat
	kDuration
)

type keySpec struct {
	key     string
	typ     keyType
	env     string
	secret  bool
	apply   func(cfg *Config, v any)
	extract func(cfg Config) any
}

// Env names without a FOODINSIGHT_ prefix predate this implementation
// and are kept for .env compatibility.
var specs = []keySpec{
	{
		key: "notion.api_token", typ: kString, env: "NOTION_API_TOKEN",
		secret:  true,
		apply:   func(cfg *Config, v any) { cfg.Notion.APIToken = v.(string) },
		extract: func(cfg Config) any { return cfg.Notion.APIToken },
	},
	{
		key: "notion.database_id", typ: kString, env: "NOTION_DATABASE_ID",
		apply:   func(cfg *Config, v any) { cfg.Notion.DatabaseID = v.(string) },
		extract: func(cfg Config) any { return cfg.Notion.DatabaseID },
	},
	{
		key: "openai.api_key", typ: kString, env: "OPENAI_API_KEY",
		secret:  true,
		apply:   func(cfg *Config, v any) { cfg.OpenAI.APIKey = v.(string) },
		extract: func(cfg Config) any { return cfg.OpenAI.APIKey },
	},
	{
		key: "openai.model", typ: kString, env: "OPENAI_MODEL",
		apply:   func(cfg *Config, v any) { cfg.OpenAI.Model = v.(string) },
		extract: func(cfg Config) any { return cfg.OpenAI.Model },
	},
	{
		key: "openai.max_tokens", typ: kInt, env: "OPENAI_MAX_TOKENS",
		apply:   func(cfg *Config, v any) { cfg.OpenAI.MaxTokens = v.(int) },
		extract: func(cfg Config) any { return cfg.OpenAI.MaxTokens },
	},
	{
		key: "openai.temperature", typ: kFloat, env: "OPENAI_TEMPERATURE",
		apply:   func(cfg *Config, v any) { cfg.OpenAI.Temperature = v.(float64) },
		extract: func(cfg Config) any { return cfg.OpenAI.Temperature },
	},
	{
		key: "openai.timeout", typ: kDuration, env: "OPENAI_TIMEOUT",
		apply:   func(cfg *Config, v any) { cfg.OpenAI.Timeout = v.(time.Duration) },
		extract: func(cfg Config) any { return cfg.OpenAI.Timeout },
	},
	{
		key: "ingest.max_entries", typ: kInt, env: "MAX_ENTRIES_PER_RUN",
		apply:   func(cfg *Config, v any) { cfg.Ingest.MaxEntries = v.(int) },
		extract: func(cfg Config) any { return cfg.Ingest.MaxEntries },
	},
	{
		key: "ingest.download_timeout", typ: kDuration, env: "IMAGE_DOWNLOAD_TIMEOUT",
		apply:   func(cfg *Config, v any) { cfg.Ingest.DownloadTimeout = v.(time.Duration) },
		extract: func(cfg Config) any { return cfg.Ingest.DownloadTimeout },
	},
	{
		key: "targets.daily_kcal", typ: kInt, env: "DAILY_KCAL_TARGET",
		apply:   func(cfg *Config, v any) { cfg.Targets.DailyKcal = v.(int) },
		extract: func(cfg Config) any { return cfg.Targets.DailyKcal },
	},
	{
		key: "targets.daily_protein_g", typ: kInt, env: "DAILY_PROTEIN_TARGET",
		apply:   func(cfg *Config, v any) { cfg.Targets.DailyProteinG = v.(int) },
		extract: func(cfg Config) any { return cfg.Targets.DailyProteinG },
	},
	{
		key: "targets.daily_carbs_g", typ: kInt, env: "DAILY_CARBS_TARGET",
		apply:   func(cfg *Config, v any) { cfg.Targets.DailyCarbsG = v.(int) },
		extract: func(cfg Config) any { return cfg.Targets.DailyCarbsG },
	},
	{
		key: "targets.daily_fat_g", typ: kInt, env: "DAILY_FAT_TARGET",
		apply:   func(cfg *Config, v any) { cfg.Targets.DailyFatG = v.(int) },
		extract: func(cfg Config) any { return cfg.Targets.DailyFatG },
	},
	{
		key: "profile.age", typ: kInt, env: "USER_AGE",
		apply:   func(cfg *Config, v any) { cfg.Profile.Age = v.(int) },
		extract: func(cfg Config) any { return cfg.Profile.Age },
	},
	{
		key: "profile.location", typ: kString, env: "USER_LOCATION",
		apply:   func(cfg *Config, v any) { cfg.Profile.Location = v.(string) },
		extract: func(cfg Config) any { return cfg.Profile.Location },
	},
	{
		key: "artifacts.dir", typ: kString, env: "ARTIFACTS_DIR",
		apply:   func(cfg *Config, v any) { cfg.Artifacts.Dir = v.(string) },
		extract: func(cfg Config) any { return cfg.Artifacts.Dir },
	},
	{
		key: "features.pdf_generation", typ: kBool, env: "ENABLE_PDF_GENERATION",
		apply:   func(cfg *Config, v any) { cfg.Features.PDFGeneration = v.(bool) },
		extract: func(cfg Config) any { return cfg.Features.PDFGeneration },
	},
	{
		key: "features.save_images", typ: kBool, env: "ENABLE_LOCAL_IMAGE_STORAGE",
		apply:   func(cfg *Config, v any) { cfg.Features.SaveImages = v.(bool) },
		extract: func(cfg Config) any { return cfg.Features.SaveImages },
	},
	{
		key: "features.upload_reports", typ: kBool, env: "ENABLE_REPORT_UPLOAD",
		apply:   func(cfg *Config, v any) { cfg.Features.UploadReports = v.(bool) },
		extract: func(cfg Config) any { return cfg.Features.UploadReports },
	},
	{
		key: "upload.bucket", typ: kString, env: "REPORTS_BUCKET",
		apply:   func(cfg *Config, v any) { cfg.Upload.Bucket = v.(string) },
		extract: func(cfg Config) any { return cfg.Upload.Bucket },
	},
	{
		key: "upload.endpoint", typ: kString, env: "REPORTS_S3_ENDPOINT",
		apply:   func(cfg *Config, v any) { cfg.Upload.Endpoint = v.(string) },
		extract: func(cfg Config) any { return cfg.Upload.Endpoint },
	},
	{
		key: "upload.region", typ: kString, env: "REPORTS_S3_REGION",
		apply:   func(cfg *Config, v any) { cfg.Upload.Region = v.(string) },
		extract: func(cfg Config) any { return cfg.Upload.Region },
	},
	{
		key: "upload.public_base_url", typ: kString, env: "REPORTS_PUBLIC_BASE_URL",
		apply:   func(cfg *Config, v any) { cfg.Upload.PublicBaseURL = v.(string) },
		extract: func(cfg Config) any { return cfg.Upload.PublicBaseURL },
	},
	{
		key: "upload.access_key", typ: kString, env: "REPORTS_ACCESS_KEY",
		secret:  true,
		apply:   func(cfg *Config, v any) { cfg.Upload.AccessKey = v.(string) },
		extract: func(cfg Config) any { return cfg.Upload.AccessKey },
	},
	{
		key: "upload.secret_key", typ: kString, env: "REPORTS_SECRET_KEY",
		secret:  true,
		apply:   func(cfg *Config, v any) { cfg.Upload.SecretKey = v.(string) },
		extract: func(cfg Config) any { return cfg.Upload.SecretKey },
	},
	{
		key: "server.port", typ: kInt, env: "FOODINSIGHT_SERVER_PORT",
		apply:   func(cfg *Config, v any) { cfg.Server.Port = v.(int) },
		extract: func(cfg Config) any { return cfg.Server.Port },
	},
	{
		key: "watch.interval", typ: kDuration, env: "FOODINSIGHT_WATCH_INTERVAL",
		apply:   func(cfg *Config, v any) { cfg.Watch.Interval = v.(time.Duration) },
		extract: func(cfg Config) any { return cfg.Watch.Interval },
	},
	{
		key: "log.level", typ: kString, env: "FOODINSIGHT_LOG_LEVEL",
		apply:   func(cfg *Config, v any) { cfg.Log.Level = v.(string) },
		extract: func(cfg Config) any { return cfg.Log.Level },
	},
}

func applyBackend(cfg *Config, b ConfigBackend) error {
	for _, s := range specs {
		if s.secret {
			continue
		}
		switch s.typ {
		case kInt:
			v, ok, err := b.GetInt(s.key)
			if err != nil {
				return fmt.Errorf("reading %s: %w", s.key, err)
			}
			if ok {
				s.apply(cfg, v)
			}
		default:
			v, ok, err := b.GetString(s.key)
			if err != nil {
				return fmt.Errorf("reading %s: %w", s.key, err)
			}
			if ok && v != "" {
				applyRaw(cfg, s, v, "config key "+s.key)
			}
		}
	}
	return nil
}

func applyEnvOverrides(cfg *Config) {
	for _, s := range specs {
		if s.env == "" {
			continue
		}
		raw := os.Getenv(s.env)
		if raw == "" {
			continue
		}
		applyRaw(cfg, s, raw, "env var "+s.env)
	}
}

// applyRaw parses a raw string value per the key's type. Malformed
// values warn and keep whatever is already set.
func applyRaw(cfg *Config, s keySpec, raw, source string) {
	switch s.typ {
	case kString:
		s.apply(cfg, raw)
	case kInt:
		if i, err := strconv.Atoi(raw); err == nil {
			s.apply(cfg, i)
		} else {
			fmt.Fprintf(os.Stderr, "[WARN] could not parse integer from %s=%q: %v. Using default value.\n", source, raw, err)
		}
	case kBool:
		if b, err := strconv.ParseBool(raw); err == nil {
			s.apply(cfg, b)
		} else {
			fmt.Fprintf(os.Stderr, "[WARN] could not parse bool from %s=%q: %v. Using default value.\n", source, raw, err)
		}
	case kFloat:
		if f, err := strconv.ParseFloat(raw, 64); err == nil {
			s.apply(cfg, f)
		} else {
			fmt.Fprintf(os.Stderr, "[WARN] could not parse float from %s=%q: %v. Using default value.\n", source, raw, err)
		}
	case kDuration:
		if d, err := parseDuration(raw); err == nil {
			s.apply(cfg, d)
		} else {
			fmt.Fprintf(os.Stderr, "[WARN] could not parse duration from %s=%q: %v. Using default value.\n", source, raw, err)
		}
	}
}

// parseDuration accepts Go duration syntax plus bare numbers, which the
// original configuration treated as seconds.
func parseDuration(raw string) (time.Duration, error) {
	if secs, err := strconv.Atoi(raw); err == nil {
		return time.Duration(secs) * time.Second, nil
	}
	return time.ParseDuration(raw)
}

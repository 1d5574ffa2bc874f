package config

import (
	"fmt"
	"os"
	"strconv"
)

// GetEnv is a helper to read an environment variable or return a default value.
func GetEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if value, ok := os.LookupEnv(key); ok {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return fallback
}

// Config holds all runtime configuration for the dashboard server.
type Config struct {
	ListenAddr string

	// Document templates and the CJK font used for inserted values.
	TemplateDir          string
	ContractTemplateName string
	ConsentTemplateName  string
	FontPath             string

	// Report wizard prompt material.
	PromptDir     string
	ReferenceDir  string
	RefCachePath  string

	// AI provider selection: "vertex" (default) or "openai".
	Provider string

	// Vertex AI settings.
	ProjectID      string
	VertexAIRegion string
	ModelName      string
	MaxTokens      int
	Temperature    float64

	// OpenAI settings (used only when Provider == "openai").
	OpenAIAPIKey string
	OpenAIModel  string

	// Extraction fallback thresholds. Empirically tuned for the Korean
	// document corpus; keep configurable rather than hard-coded.
	MinHangulRatio float64
	MinTextLength  int

	// Session persistence: "memory" (default) or "firestore".
	SessionBackend      string
	SessionCollection   string

	// Optional GCS bucket for archiving generated documents. Empty disables
	// archiving.
	ArchiveBucket string
}

// Load reads configuration from the environment and validates the fields
// every deployment needs. Provider-specific fields are validated by the
// respective client constructors.
func Load() (*Config, error) {
	cfg := &Config{
		ListenAddr: GetEnv("LISTEN_ADDR", ":8080"),

		TemplateDir:          GetEnv("TEMPLATE_DIR", "templates"),
		ContractTemplateName: GetEnv("CONTRACT_TEMPLATE", "jisan_contract_2026.pdf"),
		ConsentTemplateName:  GetEnv("CONSENT_TEMPLATE", "medical_records_consent.pdf"),
		FontPath:             GetEnv("FONT_PATH", ""),

		PromptDir:    GetEnv("PROMPT_DIR", "prompts/report"),
		ReferenceDir: GetEnv("REFERENCE_DIR", "prompts/report/references"),
		RefCachePath: GetEnv("REFERENCE_CACHE", "prompts/report/references/_cache.json"),

		Provider:       GetEnv("AI_PROVIDER", "vertex"),
		ProjectID:      GetEnv("PROJECT_ID", ""),
		VertexAIRegion: GetEnv("VERTEX_AI_REGION", "us-central1"),
		ModelName:      GetEnv("MODEL_NAME", "gemini-2.5-flash"),
		MaxTokens:      getEnvInt("MAX_OUTPUT_TOKENS", 65536),
		Temperature:    getEnvFloat("MODEL_TEMPERATURE", 0.3),

		OpenAIAPIKey: GetEnv("OPENAI_API_KEY", ""),
		OpenAIModel:  GetEnv("OPENAI_MODEL", "gpt-4o"),

		MinHangulRatio: getEnvFloat("EXTRACT_MIN_HANGUL_RATIO", 0.10),
		MinTextLength:  getEnvInt("EXTRACT_MIN_TEXT_LENGTH", 100),

		SessionBackend:    GetEnv("SESSION_BACKEND", "memory"),
		SessionCollection: GetEnv("SESSION_COLLECTION", "reportSessions"),

		ArchiveBucket: GetEnv("ARCHIVE_BUCKET", ""),
	}

	if cfg.FontPath == "" {
		return nil, fmt.Errorf("FONT_PATH environment variable must be set")
	}
	if cfg.Provider == "vertex" && cfg.ProjectID == "" {
		return nil, fmt.Errorf("PROJECT_ID environment variable must be set for the vertex provider")
	}

	return cfg, nil
}

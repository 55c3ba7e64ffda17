package config

import (
	"log"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	Port            string
	Env             string
	DatabaseURL     string
	CORSAllowOrigin []string

	ObjectStoreType string
	LocalStoreDir   string
	AWSRegion       string
	S3Bucket        string
	S3Prefix        string
	SSEKMSKeyID     string
	MinioEndpoint   string
	MinioAccessKey  string
	MinioSecretKey  string
	MinioBucket     string
	MinioUseSSL     bool

	RemoteLLMBaseURL string
	RemoteLLMAPIKey  string
	RemoteLLMModel   string
	RemoteLLMRPS     float64
	LocalLLMBaseURL  string
	LocalLLMModel    string
	LocalFallback    bool

	RulesPath string

	WorkerPoolSize   int
	QueueDepth       int
	StageMaxAttempts int
	RetryBaseMs      int

	MaxUploadBytes     int64
	MaxPromptChars     int
	SummaryMaxTokens   int
	FallbackSummaryLen int
}

// Load reads configuration from .env (best effort) and environment variables.
func Load() Config {
	_ = godotenv.Load(".env", "cmd/.env")

	viper.AutomaticEnv()
	setDefaults()

	env := normalizeEnv(viper.GetString("ENV"))
	dbURL := viper.GetString("DATABASE_URL")
	if env == "production" && dbURL == "" {
		log.Printf("DATABASE_URL is required in production")
	}

	return Config{
		Port:            viper.GetString("PORT"),
		Env:             env,
		DatabaseURL:     dbURL,
		CORSAllowOrigin: splitAndTrim(viper.GetString("CORS_ALLOW_ORIGINS")),

		ObjectStoreType: normalizeStoreType(viper.GetString("OBJECT_STORE")),
		LocalStoreDir:   viper.GetString("LOCAL_STORE_DIR"),
		AWSRegion:       viper.GetString("AWS_REGION"),
		S3Bucket:        viper.GetString("S3_BUCKET"),
		S3Prefix:        viper.GetString("S3_PREFIX"),
		SSEKMSKeyID:     viper.GetString("SSE_KMS_KEY_ID"),
		MinioEndpoint:   viper.GetString("MINIO_ENDPOINT"),
		MinioAccessKey:  viper.GetString("MINIO_ACCESS_KEY"),
		MinioSecretKey:  viper.GetString("MINIO_SECRET_KEY"),
		MinioBucket:     viper.GetString("MINIO_BUCKET"),
		MinioUseSSL:     viper.GetBool("MINIO_USE_SSL"),

		RemoteLLMBaseURL: viper.GetString("REMOTE_LLM_BASE_URL"),
		RemoteLLMAPIKey:  viper.GetString("REMOTE_LLM_API_KEY"),
		RemoteLLMModel:   viper.GetString("REMOTE_LLM_MODEL"),
		RemoteLLMRPS:     viper.GetFloat64("REMOTE_LLM_RPS"),
		LocalLLMBaseURL:  viper.GetString("LOCAL_LLM_BASE_URL"),
		LocalLLMModel:    viper.GetString("LOCAL_LLM_MODEL"),
		LocalFallback:    viper.GetBool("LOCAL_FALLBACK_ENABLED"),

		RulesPath: viper.GetString("RULES_PATH"),

		WorkerPoolSize:   viper.GetInt("WORKER_POOL_SIZE"),
		QueueDepth:       viper.GetInt("QUEUE_DEPTH"),
		StageMaxAttempts: viper.GetInt("STAGE_MAX_ATTEMPTS"),
		RetryBaseMs:      viper.GetInt("RETRY_BASE_MS"),

		MaxUploadBytes:     viper.GetInt64("MAX_UPLOAD_BYTES"),
		MaxPromptChars:     viper.GetInt("MAX_PROMPT_CHARS"),
		SummaryMaxTokens:   viper.GetInt("SUMMARY_MAX_TOKENS"),
		FallbackSummaryLen: viper.GetInt("FALLBACK_SUMMARY_CHARS"),
	}
}

func setDefaults() {
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("ENV", "dev")
	viper.SetDefault("CORS_ALLOW_ORIGINS", "http://localhost:5173")
	viper.SetDefault("OBJECT_STORE", "local")
	viper.SetDefault("LOCAL_STORE_DIR", "./data")
	viper.SetDefault("MINIO_BUCKET", "dealflow")
	viper.SetDefault("REMOTE_LLM_BASE_URL", "https://api.openai.com/v1")
	viper.SetDefault("REMOTE_LLM_MODEL", "gpt-4o-mini")
	viper.SetDefault("REMOTE_LLM_RPS", 2.0)
	viper.SetDefault("LOCAL_LLM_BASE_URL", "http://localhost:11434")
	viper.SetDefault("LOCAL_LLM_MODEL", "llama3.1:8b")
	viper.SetDefault("LOCAL_FALLBACK_ENABLED", true)
	viper.SetDefault("RULES_PATH", "rules.yaml")
	viper.SetDefault("WORKER_POOL_SIZE", 10)
	viper.SetDefault("QUEUE_DEPTH", 100)
	viper.SetDefault("STAGE_MAX_ATTEMPTS", 3)
	viper.SetDefault("RETRY_BASE_MS", 300)
	viper.SetDefault("MAX_UPLOAD_BYTES", 50<<20)
	viper.SetDefault("MAX_PROMPT_CHARS", 24000)
	viper.SetDefault("SUMMARY_MAX_TOKENS", 512)
	viper.SetDefault("FALLBACK_SUMMARY_CHARS", 600)
}

func splitAndTrim(raw string) []string {
	parts := strings.Split(raw, ",")
	var out []string
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func normalizeEnv(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "production", "prod":
		return "production"
	case "staging":
		return "staging"
	case "local":
		return "local"
	default:
		return "dev"
	}
}

func normalizeStoreType(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "s3":
		return "s3"
	case "minio":
		return "minio"
	default:
		return "local"
	}
}

// Package config loads process configuration from flags and environment.
// A .env file is honored when present so local runs need no exported shell
// state.
package config

import (
	"flag"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port         string
	Env          string
	DesignSystem string
	LLM          LLMConfig
	Cache        CacheConfig
	Audit        AuditConfig
}

type LLMConfig struct {
	Provider      string
	Model         string
	APIKey        string
	MaxTokens     int
	RPS           int
	Burst         int
	RetryAttempts int
	RetryBase     time.Duration
}

type CacheConfig struct {
	Entries int
	TTL     time.Duration
}

type AuditConfig struct {
	Enabled   bool
	Endpoint  string
	Region    string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
	Dir       string
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	port := flag.String("port", ":8080", "server port")
	flag.Parse()

	if envPort := os.Getenv("PORT"); envPort != "" {
		if strings.HasPrefix(envPort, ":") {
			*port = envPort
		} else {
			*port = ":" + envPort
		}
	}

	env := strings.TrimSpace(os.Getenv("APP_ENV"))
	if env == "" {
		env = "local"
	}

	return &Config{
		Port:         *port,
		Env:          env,
		DesignSystem: firstNonEmpty(strings.TrimSpace(os.Getenv("DESIGN_SYSTEM_PATH")), "design_system.json"),
		LLM:          loadLLMConfig(),
		Cache:        loadCacheConfig(),
		Audit:        loadAuditConfig(env),
	}, nil
}

func loadLLMConfig() LLMConfig {
	return LLMConfig{
		Provider:      firstNonEmpty(strings.TrimSpace(os.Getenv("LLM_PROVIDER")), "groq"),
		Model:         strings.TrimSpace(os.Getenv("LLM_MODEL")),
		APIKey:        strings.TrimSpace(os.Getenv("LLM_API_KEY")),
		MaxTokens:     envInt("LLM_MAX_TOKENS", 4096),
		RPS:           envInt("LLM_RPS", 0),
		Burst:         envInt("LLM_RPS_BURST", 1),
		RetryAttempts: envInt("LLM_RETRY_ATTEMPTS", 1),
		RetryBase:     time.Duration(envInt("LLM_RETRY_BASE_MS", 300)) * time.Millisecond,
	}
}

func loadCacheConfig() CacheConfig {
	return CacheConfig{
		Entries: envInt("RESPONSE_CACHE_ENTRIES", 256),
		TTL:     time.Duration(envInt("RESPONSE_CACHE_TTL_SECONDS", 300)) * time.Second,
	}
}

func loadAuditConfig(env string) AuditConfig {
	endpoint := resolveAuditEndpoint(env)
	return AuditConfig{
		Enabled:   !envBool("AUDIT_DISABLED", false),
		Endpoint:  endpoint,
		Region:    firstNonEmpty(strings.TrimSpace(os.Getenv("AUDIT_S3_REGION")), "us-east-1"),
		AccessKey: firstNonEmpty(strings.TrimSpace(os.Getenv("AUDIT_S3_ACCESS_KEY")), strings.TrimSpace(os.Getenv("MINIO_ROOT_USER"))),
		SecretKey: firstNonEmpty(strings.TrimSpace(os.Getenv("AUDIT_S3_SECRET_KEY")), strings.TrimSpace(os.Getenv("MINIO_ROOT_PASSWORD"))),
		Bucket:    firstNonEmpty(strings.TrimSpace(os.Getenv("AUDIT_S3_BUCKET")), "forgeui-audit"),
		UseSSL:    resolveAuditUseSSL(env),
		Dir:       firstNonEmpty(strings.TrimSpace(os.Getenv("AUDIT_DIR")), "tmp/audit"),
	}
}

func resolveAuditEndpoint(env string) string {
	if strings.EqualFold(strings.TrimSpace(env), "local") {
		return strings.TrimSpace(os.Getenv("AUDIT_MINIO_ENDPOINT"))
	}
	return strings.TrimSpace(os.Getenv("AUDIT_S3_ENDPOINT"))
}

func resolveAuditUseSSL(env string) bool {
	if strings.EqualFold(strings.TrimSpace(env), "local") {
		return false
	}
	raw := strings.TrimSpace(os.Getenv("AUDIT_S3_USE_SSL"))
	if raw == "" {
		return true
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return true
	}
	return v
}

func envInt(key string, fallback int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return v
}

func envBool(key string, fallback bool) bool {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return fallback
	}
	return v
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

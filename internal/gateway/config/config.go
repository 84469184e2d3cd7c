package config

import (
	"flag"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"adcanvas/internal/llm"
)

type Config struct {
	Port       string
	Env        string
	CatalogDir string

	// CORSOrigins lists the browser origins allowed to call the API;
	// empty allows any.
	CORSOrigins []string

	Gemini     GeminiConfig
	Limits     LimitsConfig
	Gallery    GalleryConfig
	BoardStore BoardStoreConfig
}

type GeminiConfig struct {
	// Provider is "gemini" or "fake"; empty means gemini.
	Provider string
	APIKey   string
	Models   llm.Models
	RPS      float64
	Burst    int
	Retries  int
	Timeout  time.Duration
}

type LimitsConfig struct {
	// TaskTimeout bounds one generation task end to end.
	TaskTimeout    time.Duration
	MaxUploadBytes int64
	StreamBuffer   int
	BoardCache     int
}

type GalleryConfig struct {
	Enabled   bool
	Endpoint  string
	Region    string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// CanUseS3 reports whether every field the S3 store needs is present.
func (g GalleryConfig) CanUseS3() bool {
	return g.Enabled && g.Endpoint != "" && g.AccessKey != "" && g.SecretKey != "" && g.Bucket != ""
}

type BoardStoreConfig struct {
	DSN string
	Dir string
}

// Load reads .env, the -port flag and the environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	port := flag.String("port", ":8081", "server port")
	flag.Parse()

	cfg := FromEnv()
	if cfg.Port == "" {
		cfg.Port = normalizePort(*port)
	}
	return cfg, nil
}

// FromEnv builds the configuration from environment variables only. Port
// stays empty unless PORT is set.
func FromEnv() *Config {
	env := firstNonEmpty(strings.TrimSpace(os.Getenv("APP_ENV")), "development")
	cfg := &Config{
		Port:        normalizePort(os.Getenv("PORT")),
		Env:         env,
		CatalogDir:  strings.TrimSpace(os.Getenv("CATALOG_DIR")),
		CORSOrigins: splitList(os.Getenv("CORS_ORIGINS")),
		Gemini:      loadGeminiConfig(),
		Limits:      loadLimitsConfig(),
		Gallery:     loadGalleryConfig(env),
		BoardStore: BoardStoreConfig{
			DSN: strings.TrimSpace(os.Getenv("BOARD_STORE_PG_DSN")),
			Dir: firstNonEmpty(strings.TrimSpace(os.Getenv("BOARD_STORE_DIR")), "data/boards"),
		},
	}
	if IsLocal(env) {
		applyLocal(cfg)
	}
	return cfg
}

// IsLocal reports whether env is the docker-compose environment.
func IsLocal(env string) bool { return strings.EqualFold(strings.TrimSpace(env), "local") }

// IsProduction selects production logging.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Env, "production") || strings.EqualFold(c.Env, "prod")
}

// LLM converts the Gemini section into the provider configuration.
func (c *Config) LLM() llm.Config {
	return llm.Config{
		Provider: c.Gemini.Provider,
		APIKey:   c.Gemini.APIKey,
		Models:   c.Gemini.Models,
		RPS:      c.Gemini.RPS,
		Burst:    c.Gemini.Burst,
		Retries:  c.Gemini.Retries,
		Timeout:  c.Gemini.Timeout,
	}
}

func loadGeminiConfig() GeminiConfig {
	def := llm.DefaultModels()
	return GeminiConfig{
		Provider: strings.TrimSpace(os.Getenv("LLM_PROVIDER")),
		APIKey:   firstNonEmpty(strings.TrimSpace(os.Getenv("GEMINI_API_KEY")), strings.TrimSpace(os.Getenv("GOOGLE_API_KEY"))),
		Models: llm.Models{
			Reasoning: firstNonEmpty(strings.TrimSpace(os.Getenv("GEMINI_REASONING_MODEL")), def.Reasoning),
			Caption:   firstNonEmpty(strings.TrimSpace(os.Getenv("GEMINI_CAPTION_MODEL")), def.Caption),
			Image:     firstNonEmpty(strings.TrimSpace(os.Getenv("GEMINI_IMAGE_MODEL")), def.Image),
		},
		RPS:     envFloat("LLM_RPS", 2),
		Burst:   envInt("LLM_BURST", 4),
		Retries: envInt("LLM_RETRIES", 2),
		Timeout: envDuration("LLM_TIMEOUT", 90*time.Second),
	}
}

func loadLimitsConfig() LimitsConfig {
	return LimitsConfig{
		TaskTimeout:    envDuration("GENERATION_TIMEOUT", 3*time.Minute),
		MaxUploadBytes: int64(envInt("MAX_UPLOAD_BYTES", 20<<20)),
		StreamBuffer:   envInt("STREAM_BUFFER", 64),
		BoardCache:     envInt("BOARD_CACHE_SIZE", 128),
	}
}

func loadGalleryConfig(env string) GalleryConfig {
	endpoint := strings.TrimSpace(os.Getenv("GALLERY_S3_ENDPOINT"))
	return GalleryConfig{
		Enabled:   endpoint != "",
		Endpoint:  endpoint,
		Region:    firstNonEmpty(strings.TrimSpace(os.Getenv("GALLERY_S3_REGION")), "us-east-1"),
		AccessKey: firstNonEmpty(strings.TrimSpace(os.Getenv("GALLERY_S3_ACCESS_KEY")), strings.TrimSpace(os.Getenv("MINIO_ROOT_USER"))),
		SecretKey: firstNonEmpty(strings.TrimSpace(os.Getenv("GALLERY_S3_SECRET_KEY")), strings.TrimSpace(os.Getenv("MINIO_ROOT_PASSWORD"))),
		Bucket:    firstNonEmpty(strings.TrimSpace(os.Getenv("GALLERY_S3_BUCKET")), "adcanvas-gallery"),
		UseSSL:    envBool("GALLERY_S3_USE_SSL", !IsLocal(env)),
	}
}

func normalizePort(p string) string {
	p = strings.TrimSpace(p)
	if p == "" || strings.HasPrefix(p, ":") || strings.Contains(p, ":") {
		return p
	}
	return ":" + p
}

func splitList(raw string) []string {
	var out []string
	for _, v := range strings.Split(raw, ",") {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func envInt(key string, def int) int {
	v, err := strconv.Atoi(strings.TrimSpace(os.Getenv(key)))
	if err != nil {
		return def
	}
	return v
}

func envFloat(key string, def float64) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(os.Getenv(key)), 64)
	if err != nil {
		return def
	}
	return v
}

func envDuration(key string, def time.Duration) time.Duration {
	v, err := time.ParseDuration(strings.TrimSpace(os.Getenv(key)))
	if err != nil || v <= 0 {
		return def
	}
	return v
}

func envBool(key string, def bool) bool {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return def
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

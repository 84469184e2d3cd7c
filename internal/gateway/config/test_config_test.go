package config

import (
	"testing"
	"time"

	"adcanvas/internal/tester"
)

func TestFromEnv_Defaults(t *testing.T) {
	t.Setenv("APP_ENV", "")
	t.Setenv("PORT", "")
	t.Setenv("GALLERY_S3_ENDPOINT", "")
	t.Setenv("BOARD_STORE_PG_DSN", "")
	t.Setenv("LLM_RPS", "")

	cfg := FromEnv()
	tester.Eq(t, cfg.Env, "development")
	tester.Eq(t, cfg.Port, "")
	tester.False(t, cfg.Gallery.Enabled)
	tester.False(t, cfg.Gallery.CanUseS3())
	tester.Eq(t, cfg.BoardStore.Dir, "data/boards")
	tester.Eq(t, cfg.Gemini.RPS, 2.0)
	tester.Eq(t, cfg.Limits.TaskTimeout, 3*time.Minute)
}

func TestFromEnv_Overrides(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("PORT", "9000")
	t.Setenv("GEMINI_API_KEY", "k")
	t.Setenv("GEMINI_IMAGE_MODEL", "img-model")
	t.Setenv("LLM_TIMEOUT", "5s")
	t.Setenv("LLM_RETRIES", "nope")
	t.Setenv("GALLERY_S3_ENDPOINT", "s3.example.com")
	t.Setenv("GALLERY_S3_ACCESS_KEY", "a")
	t.Setenv("GALLERY_S3_SECRET_KEY", "s")

	cfg := FromEnv()
	tester.True(t, cfg.IsProduction())
	tester.Eq(t, cfg.Port, ":9000")
	tester.Eq(t, cfg.LLM().APIKey, "k")
	tester.Eq(t, cfg.LLM().Models.Image, "img-model")
	tester.Eq(t, cfg.LLM().Timeout, 5*time.Second)
	tester.Eq(t, cfg.Gemini.Retries, 2)
	tester.True(t, cfg.Gallery.UseSSL)
	tester.True(t, cfg.Gallery.CanUseS3())
}

func TestFromEnv_Local(t *testing.T) {
	t.Setenv("APP_ENV", "local")
	t.Setenv("GALLERY_S3_ENDPOINT", "")
	t.Setenv("GALLERY_MINIO_ENDPOINT", "")
	t.Setenv("GALLERY_S3_ACCESS_KEY", "")
	t.Setenv("MINIO_ROOT_USER", "")
	t.Setenv("BOARD_STORE_PG_DSN", "")

	cfg := FromEnv()
	tester.Eq(t, cfg.Gallery.Endpoint, "minio:9000")
	tester.Eq(t, cfg.Gallery.AccessKey, "adcanvas")
	tester.False(t, cfg.Gallery.UseSSL)
	tester.True(t, cfg.Gallery.CanUseS3())
	tester.True(t, cfg.BoardStore.DSN != "")
}

func TestNormalizePort(t *testing.T) {
	tester.Eq(t, normalizePort("8080"), ":8080")
	tester.Eq(t, normalizePort(":8080"), ":8080")
	tester.Eq(t, normalizePort("127.0.0.1:8080"), "127.0.0.1:8080")
	tester.Eq(t, normalizePort(" "), "")
}

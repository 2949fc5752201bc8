package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("SERVER_READ_TIMEOUT", "45s")
	t.Setenv("DB_CONNECT_ATTEMPTS", "3")
	t.Setenv("DB_CONNECT_DELAY", "500ms")
	t.Setenv("JWT_EXPIRATION_HOURS", "2")
	t.Setenv("LLM_PROVIDER", "gemini")
	t.Setenv("AI_TEMPERATURE", "0.2")
	t.Setenv("AI_MAX_INPUT_CHARS", "1000")
	t.Setenv("GIGACHAT_INSECURE_SKIP_VERIFY", "false")
	t.Setenv("STORAGE_BACKEND", "gcs")
	t.Setenv("GCS_BUCKET", "statements-bucket")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, 45*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, uint(3), cfg.Database.ConnectAttempts)
	assert.Equal(t, 500*time.Millisecond, cfg.Database.ConnectDelay)
	assert.Equal(t, 2*time.Hour, cfg.JWT.Expiration)
	assert.Equal(t, "gemini", cfg.LLM.Provider)
	assert.InDelta(t, 0.2, cfg.LLM.Temperature, 1e-6)
	assert.Equal(t, 1000, cfg.LLM.MaxInputChars)
	assert.False(t, cfg.LLM.GigaChat.InsecureSkipVerify)
	assert.Equal(t, "gcs", cfg.Storage.Backend)
	assert.Equal(t, "statements-bucket", cfg.Storage.GCSBucket)
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("LLM_PROVIDER", "groq")
	t.Setenv("STORAGE_BACKEND", "local")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "llama-3.1-8b-instant", cfg.LLM.Groq.Model)
	assert.Equal(t, "https://api.groq.com/openai/v1", cfg.LLM.Groq.BaseURL)
	assert.Equal(t, "fitz", cfg.Parser.PDFExtractor)
	assert.Equal(t, "auto", cfg.Parser.CSVHeaderMode)
	assert.Equal(t, "statements", cfg.Storage.AzureBlobName)
}

func TestLoad_Invalid(t *testing.T) {
	tests := map[string]map[string]string{
		"unknown provider":   {"LLM_PROVIDER": "openai"},
		"unknown extractor":  {"PDF_EXTRACTOR": "ocr"},
		"gcs without bucket": {"STORAGE_BACKEND": "gcs"},
		"azblob without url": {"STORAGE_BACKEND": "azblob"},
		"unknown storage":    {"STORAGE_BACKEND": "ftp"},
		"malformed duration": {"SERVER_READ_TIMEOUT": "soon"},
	}

	for name, env := range tests {
		t.Run(name, func(t *testing.T) {
			t.Setenv("GCS_BUCKET", "")
			t.Setenv("AZURE_BLOB_URL", "")
			for k, v := range env {
				t.Setenv(k, v)
			}
			_, err := Load()
			assert.Error(t, err)
		})
	}
}

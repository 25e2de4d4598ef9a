package config_test

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/accountill/internal/config"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, 5000, cfg.App.Port)
	assert.Equal(t, config.BackendMemory, cfg.Artifact.Backend)
	assert.Equal(t, time.Hour, cfg.Artifact.TTL)
	assert.Equal(t, "hello@accountill.com", cfg.Mail.FromAddress)
	assert.Equal(t, config.TransportLog, cfg.MailTransport())
	assert.Equal(t, slog.LevelInfo, cfg.Level())
	assert.Equal(t, "postgres://postgres:@localhost:5432/accountill?sslmode=disable", cfg.ConnectionString())
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv("PORT", "8081")
	t.Setenv("DB_URL", "postgres://u:p@db:5432/prod")
	t.Setenv("SMTP_HOST", "smtp.example.com")
	t.Setenv("SMTP_PORT", "465")
	t.Setenv("ARTIFACT_BACKEND", "FILE")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example,https://b.example")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, 8081, cfg.App.Port)
	assert.Equal(t, "postgres://u:p@db:5432/prod", cfg.ConnectionString())
	assert.Equal(t, config.TransportSMTP, cfg.MailTransport())
	assert.Equal(t, 465, cfg.SMTP.Port)
	assert.Equal(t, config.BackendFile, cfg.Artifact.Backend)
	assert.Equal(t, slog.LevelDebug, cfg.Level())
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORS.AllowedOrigins)
}

func TestLoad_Invalid(t *testing.T) {
	type testCase struct {
		name string
		env  map[string]string
	}

	tests := []testCase{
		{name: "UnknownBackend", env: map[string]string{"ARTIFACT_BACKEND": "floppy"}},
		{name: "S3WithoutBucket", env: map[string]string{"ARTIFACT_BACKEND": "s3"}},
		{name: "ResendWithoutKey", env: map[string]string{"MAIL_TRANSPORT": "resend"}},
		{name: "SMTPWithoutHost", env: map[string]string{"MAIL_TRANSPORT": "smtp"}},
		{name: "UnknownTransport", env: map[string]string{"MAIL_TRANSPORT": "pigeon"}},
		{name: "BadPort", env: map[string]string{"PORT": "http"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			_, err := config.Load()
			require.Error(t, err)
		})
	}
}

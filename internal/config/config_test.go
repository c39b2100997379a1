package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("GO_ENV", "test")
	t.Setenv("DATABASE_URL", "postgres://localhost:5432/jobportal?sslmode=disable")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9000", cfg.Server.Port)
	assert.Equal(t, 24*time.Hour, cfg.Auth.JWTExpiry)
	assert.Equal(t, "admin@example.com", cfg.Auth.AdminEmail)
	assert.Equal(t, "Admin@123", cfg.Auth.AdminPassword)
	assert.Equal(t, "local", cfg.Resume.Storage)
	assert.Equal(t, "/resumes/", cfg.Resume.PathPrefix)
	assert.Equal(t, int64(5*1024*1024), cfg.Resume.MaxBytes)
	assert.Equal(t, []string{".pdf", ".docx", ".doc"}, cfg.Resume.AllowedExtensions)
	assert.False(t, cfg.Lifecycle.StrictTransitions)
	assert.Equal(t, "memory", cfg.Cache.Provider)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("GO_ENV", "test")
	t.Setenv("DATABASE_URL", "postgres://localhost:5432/jobportal")
	t.Setenv("PORT", "8080")
	t.Setenv("APPLICATION_STRICT_TRANSITIONS", "true")
	t.Setenv("RESUME_ALLOWED_EXTENSIONS", " .PDF, .txt ,,")
	t.Setenv("JWT_EXPIRY", "2h")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.True(t, cfg.Lifecycle.StrictTransitions)
	assert.Equal(t, []string{".pdf", ".txt"}, cfg.Resume.AllowedExtensions)
	assert.Equal(t, 2*time.Hour, cfg.Auth.JWTExpiry)
}

func TestLoadRequiresDatabaseURL(t *testing.T) {
	t.Setenv("GO_ENV", "test")
	t.Setenv("DATABASE_URL", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DATABASE_URL")
}

func TestAuthConfigRejectsDefaultSecretInProduction(t *testing.T) {
	auth := AuthConfig{
		JWTSecret:  defaultJWTSecret,
		JWTExpiry:  time.Hour,
		BCryptCost: 10,
		AdminEmail: "admin@example.com",
	}

	assert.NoError(t, auth.Validate("development"))
	assert.Error(t, auth.Validate("production"))
}

func TestResumeConfigValidate(t *testing.T) {
	valid := ResumeConfig{
		Storage:           "local",
		Dir:               "./wwwroot/resumes",
		PathPrefix:        "/resumes/",
		MaxBytes:          1024,
		AllowedExtensions: []string{".pdf"},
	}
	assert.NoError(t, valid.Validate())

	unknown := valid
	unknown.Storage = "ftp"
	assert.Error(t, unknown.Validate())

	badPrefix := valid
	badPrefix.PathPrefix = "resumes/"
	assert.Error(t, badPrefix.Validate())
}

func TestCloudinaryRequiredOnlyWhenSelected(t *testing.T) {
	t.Setenv("GO_ENV", "test")
	t.Setenv("DATABASE_URL", "postgres://localhost:5432/jobportal")
	t.Setenv("RESUME_STORAGE", "cloudinary")
	t.Setenv("CLOUDINARY_CLOUD_NAME", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cloudinary")
}

package appinfo

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVersionPrefersEnvironment(t *testing.T) {
	t.Setenv("VERSION", "")
	t.Setenv("APP_VERSION", "1.4.2")
	assert.Equal(t, "1.4.2", Version())

	t.Setenv("VERSION", "2.0.0")
	assert.Equal(t, "2.0.0", Version())
}

func TestVersionFallsBackToBuildInfo(t *testing.T) {
	t.Setenv("VERSION", "")
	t.Setenv("APP_VERSION", "")
	assert.NotEmpty(t, Version())
}

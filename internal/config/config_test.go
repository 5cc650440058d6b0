package config_test

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/legalprop/propostas/internal/config"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("AUTH_JWT_SECRET", "secret")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.App.Port)
	assert.Equal(t, 30*24*time.Hour, cfg.Proposal.Validity)
	assert.Equal(t, 7*24*time.Hour, cfg.Team.InvitationTTL)
	assert.False(t, cfg.Proposal.EnforceValueCap)
	assert.Equal(t, "postgres://postgres:@localhost:5432/legalprop?sslmode=disable", cfg.ConnectionString())
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("AUTH_JWT_SECRET", "secret")
	t.Setenv("APP_BASE_URL", "https://app.legalprop.com.br/")
	t.Setenv("APP_ALLOWED_ORIGINS", "https://a.com,https://b.com")
	t.Setenv("PROPOSAL_ENFORCE_VALUE_CAP", "true")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "https://app.legalprop.com.br", cfg.ShareBaseURL())
	assert.Equal(t, []string{"https://a.com", "https://b.com"}, cfg.App.AllowedOrigins)
	assert.True(t, cfg.Proposal.EnforceValueCap)
}

func TestLoad_MissingSecret(t *testing.T) {
	t.Setenv("AUTH_JWT_SECRET", "restored after test")
	require.NoError(t, os.Unsetenv("AUTH_JWT_SECRET"))

	_, err := config.Load()
	assert.Error(t, err)
}

package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	v := viper.New()
	setDefaults(v)

	cfg := fromViper(v)
	require.Equal(t, EnvDevelopment, cfg.Env)
	require.Equal(t, "/api/v1", cfg.APIPrefix)
	require.False(t, cfg.Workflow.ForbidSelfReview)
	require.Equal(t, "ADMIN", cfg.Workflow.OverrideRole)
	require.Equal(t, 15*time.Minute, cfg.Compliance.JustificationCacheTTL)
	require.Equal(t, 2, cfg.Sweeps.WorkerConcurrency)
	require.Equal(t, "./exports", cfg.Exports.StorageDir)
}

func TestOverrides(t *testing.T) {
	v := viper.New()
	setDefaults(v)
	v.Set("WORKFLOW_FORBID_SELF_REVIEW", true)
	v.Set("WORKFLOW_OVERRIDE_ROLE", " curriculum_chair ")
	v.Set("ALLOWED_ORIGINS", "https://a.edu, https://b.edu ,")
	v.Set("SWEEP_RESULT_TTL", "not-a-duration")

	cfg := fromViper(v)
	require.True(t, cfg.Workflow.ForbidSelfReview)
	require.Equal(t, "CURRICULUM_CHAIR", cfg.Workflow.OverrideRole)
	require.Equal(t, []string{"https://a.edu", "https://b.edu"}, cfg.CORS.AllowedOrigins)
	require.Equal(t, 24*time.Hour, cfg.Sweeps.ResultTTL)
}

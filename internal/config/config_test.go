package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestLoadRequiresAPIKey tests that the gateway key is mandatory
func TestLoadRequiresAPIKey(t *testing.T) {
	t.Setenv("LLM_API_KEY", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "LLM_API_KEY")
}

// TestLoadDefaults tests the defaults with only the key set
func TestLoadDefaults(t *testing.T) {
	t.Setenv("LLM_API_KEY", "test-key")
	t.Setenv("DATABASE_URL", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "test-key", cfg.AI.APIKey)
	assert.Equal(t, "https://api.openai.com/v1", cfg.AI.BaseURL)
	assert.Equal(t, "gpt-4o-mini", cfg.AI.Model)
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "8081", cfg.Server.OpsPort)
	assert.Empty(t, cfg.Database.URL)

	run := cfg.Swarm.Run
	assert.Equal(t, 10, run.MaxIterations)
	assert.Equal(t, 3, run.CommitteeSize)
	assert.InDelta(t, 0.01, run.ConvergenceEpsilon, 1e-12)
	assert.Equal(t, 2, run.ConvergencePatience)
	assert.Equal(t, 10000, run.CredibleSamples)
	assert.InDelta(t, 0.95, run.CredibleConfidence, 1e-12)
	assert.Equal(t, 45*time.Second, run.PerMemberTimeout)
	assert.Equal(t, 2*time.Minute, run.IterationTimeout)
	assert.Equal(t, 3, run.MaxStarvedIterations)
}

// TestLoadOverrides tests environment overrides of the run tunables
func TestLoadOverrides(t *testing.T) {
	t.Setenv("LLM_API_KEY", "test-key")
	t.Setenv("MAX_ITERATIONS", "25")
	t.Setenv("COMMITTEE_SIZE", "5")
	t.Setenv("CONVERGENCE_EPSILON", "0.002")
	t.Setenv("PER_MEMBER_TIMEOUT", "10s")
	t.Setenv("SWARM_SEED", "1234")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 25, cfg.Swarm.Run.MaxIterations)
	assert.Equal(t, 5, cfg.Swarm.Run.CommitteeSize)
	assert.InDelta(t, 0.002, cfg.Swarm.Run.ConvergenceEpsilon, 1e-12)
	assert.Equal(t, 10*time.Second, cfg.Swarm.Run.PerMemberTimeout)
	assert.Equal(t, int64(1234), cfg.Swarm.Seed)
}

// TestLoadIgnoresMalformedNumbers tests that unparseable values fall back to
// defaults instead of failing the boot
func TestLoadIgnoresMalformedNumbers(t *testing.T) {
	t.Setenv("LLM_API_KEY", "test-key")
	t.Setenv("MAX_ITERATIONS", "many")
	t.Setenv("CONVERGENCE_EPSILON", "tiny")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 10, cfg.Swarm.Run.MaxIterations)
	assert.InDelta(t, 0.01, cfg.Swarm.Run.ConvergenceEpsilon, 1e-12)
}

package config

import (
	"os"
	"strconv"
	"time"

	"veritas/domain/swarm"
	"veritas/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Database DatabaseConfig
	AI       AIConfig
	Server   ServerConfig
	Swarm    SwarmConfig
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	URL     string
	SSLMode string
}

// AIConfig holds LLM gateway settings
type AIConfig struct {
	APIKey      string
	BaseURL     string
	Model       string
	MaxTokens   int
	Temperature float64
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Port    string
	OpsPort string
	GinMode string
}

// SwarmConfig holds the default run tunables, overridable per request
type SwarmConfig struct {
	Run  swarm.RunConfig
	Seed int64
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	config := &Config{}

	dbConfig, err := loadDatabaseConfig()
	if err != nil {
		return nil, errors.Wrap(err, "failed to load database configuration")
	}
	config.Database = *dbConfig

	aiConfig, err := loadAIConfig()
	if err != nil {
		return nil, errors.Wrap(err, "failed to load AI configuration")
	}
	config.AI = *aiConfig

	config.Server = *loadServerConfig()
	config.Swarm = *loadSwarmConfig()

	return config, nil
}

func loadDatabaseConfig() (*DatabaseConfig, error) {
	// The ledger is optional; without DATABASE_URL runs are not persisted
	return &DatabaseConfig{
		URL:     getEnvOrDefault("DATABASE_URL", ""),
		SSLMode: getEnvOrDefault("SSL_MODE", "disable"),
	}, nil
}

func loadAIConfig() (*AIConfig, error) {
	apiKey := os.Getenv("LLM_API_KEY")
	if apiKey == "" {
		return nil, errors.ConfigInvalid("LLM_API_KEY is required")
	}

	return &AIConfig{
		APIKey:      apiKey,
		BaseURL:     getEnvOrDefault("LLM_BASE_URL", "https://api.openai.com/v1"),
		Model:       getEnvOrDefault("LLM_MODEL", "gpt-4o-mini"),
		MaxTokens:   getEnvIntOrDefault("MAX_TOKENS", 1024),
		Temperature: getEnvFloatOrDefault("TEMPERATURE", 0.8),
	}, nil
}

func loadServerConfig() *ServerConfig {
	return &ServerConfig{
		Port:    getEnvOrDefault("PORT", "8080"),
		OpsPort: getEnvOrDefault("OPS_PORT", "8081"),
		GinMode: getEnvOrDefault("GIN_MODE", "debug"),
	}
}

func loadSwarmConfig() *SwarmConfig {
	run := swarm.DefaultRunConfig()
	run.MaxIterations = getEnvIntOrDefault("MAX_ITERATIONS", run.MaxIterations)
	run.CommitteeSize = getEnvIntOrDefault("COMMITTEE_SIZE", run.CommitteeSize)
	run.ConvergenceEpsilon = getEnvFloatOrDefault("CONVERGENCE_EPSILON", run.ConvergenceEpsilon)
	run.ConvergencePatience = getEnvIntOrDefault("CONVERGENCE_PATIENCE", run.ConvergencePatience)
	run.CredibleSamples = getEnvIntOrDefault("CREDIBLE_SAMPLES", run.CredibleSamples)
	run.CredibleConfidence = getEnvFloatOrDefault("CREDIBLE_CONFIDENCE", run.CredibleConfidence)
	run.PerMemberTimeout = getEnvDurationOrDefault("PER_MEMBER_TIMEOUT", run.PerMemberTimeout)
	run.IterationTimeout = getEnvDurationOrDefault("ITERATION_TIMEOUT", run.IterationTimeout)
	run.MaxStarvedIterations = getEnvIntOrDefault("MAX_STARVED_ITERATIONS", run.MaxStarvedIterations)
	run.Temperature = getEnvFloatOrDefault("TEMPERATURE", run.Temperature)

	return &SwarmConfig{
		Run:  run,
		Seed: int64(getEnvIntOrDefault("SWARM_SEED", 0)),
	}
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

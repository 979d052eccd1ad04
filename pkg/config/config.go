// Package config loads daemon configuration from environment variables.
package config

import (
	"os"
	"strconv"
)

// Config holds simulation daemon configuration.
type Config struct {
	// Backend selection.
	QueueBackend       string
	ArtifactRepository string
	TrustProvider      string
	WorkerConcurrency  int

	// Durable queue transport.
	RedisURL          string
	QueueName         string
	PopTimeoutSeconds int

	// Artifact storage.
	ArtifactRoot     string
	ArtifactBucket   string
	ArtifactPrefix   string
	ArtifactEndpoint string
	ArtifactRegion   string

	// Ambient.
	LogLevel       string
	MetricsEnabled bool
	OTLPEndpoint   string
}

// Load loads configuration from environment variables, applying defaults.
func Load() *Config {
	concurrency := intEnv("SIMULATION_WORKER_CONCURRENCY", 1)
	if concurrency < 1 {
		concurrency = 1
	}

	region := os.Getenv("SIMULATION_ARTIFACT_REGION")
	if region == "" {
		region = os.Getenv("AWS_REGION")
	}
	if region == "" {
		region = "us-east-1"
	}

	return &Config{
		QueueBackend:       getenv("SIMULATION_QUEUE_BACKEND", "memory"),
		ArtifactRepository: getenv("SIMULATION_ARTIFACT_REPOSITORY", "memory"),
		TrustProvider:      getenv("TRUST_PROVIDER", "allowlist"),
		WorkerConcurrency:  concurrency,

		RedisURL:          getenv("SIMULATION_REDIS_URL", "redis://localhost:6379/0"),
		QueueName:         getenv("SIMULATION_QUEUE_NAME", "simulation-jobs"),
		PopTimeoutSeconds: intEnv("SIMULATION_QUEUE_POP_TIMEOUT", 1),

		ArtifactRoot:     getenv("SIMULATION_ARTIFACT_ROOT", "data/simulations"),
		ArtifactBucket:   os.Getenv("SIMULATION_ARTIFACT_BUCKET"),
		ArtifactPrefix:   getenv("SIMULATION_ARTIFACT_PREFIX", "simulation-artifacts/"),
		ArtifactEndpoint: os.Getenv("SIMULATION_ARTIFACT_ENDPOINT"),
		ArtifactRegion:   region,

		LogLevel:       getenv("LOG_LEVEL", "INFO"),
		MetricsEnabled: os.Getenv("METRICS_ENABLED") == "true",
		OTLPEndpoint:   getenv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
	}
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func intEnv(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

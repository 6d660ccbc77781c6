package cmd

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConfigConstants(t *testing.T) {
	assert.Equal(t, "rocq", configBaseName)
	assert.Equal(t, "rocq.yaml", configFileName)
	assert.Equal(t, ".", configFolderPath)
	assert.Equal(t, "namespace", namespaceFlagName)
	assert.Equal(t, "max-steps", maxStepsFlagName)
	assert.Equal(t, "preload", preloadFlagName)
	assert.Equal(t, "verbose", verboseFlagName)
	assert.Equal(t, "jobs", jobsFlagName)
	assert.Equal(t, "elab.max-steps", maxStepsKey)
	assert.Equal(t, "check.jobs", checkJobsKey)
	assert.Equal(t, "Top", defaultNamespace)
	assert.Equal(t, 1, defaultCheckJobs)
	assert.Equal(t, "ROCQ", envPrefix)
}

func TestConfigVersionConstants(t *testing.T) {
	assert.Equal(t, "version", configVersionKey)
	assert.Equal(t, 1, currentConfigVersion)
}

func TestParseSlogLevel(t *testing.T) {
	tests := []struct {
		name  string
		value string
		want  slog.Level
	}{
		{"empty falls back", "", slog.LevelWarn},
		{"debug", "debug", slog.LevelDebug},
		{"info", "info", slog.LevelInfo},
		{"warn", "warn", slog.LevelWarn},
		{"warning", "warning", slog.LevelWarn},
		{"error", "error", slog.LevelError},
		{"mixed case", "Debug", slog.LevelDebug},
		{"numeric level", "-4", slog.LevelDebug},
		{"garbage falls back", "loud", slog.LevelWarn},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, parseSlogLevel(tt.value, slog.LevelWarn))
		})
	}
}

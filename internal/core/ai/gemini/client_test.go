package gemini

import (
	"testing"

	"food-analyzer/internal/core/ai/provider"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildConfig(t *testing.T) {
	cfg := buildConfig(&provider.Request{
		System:      "Eres un nutricionista.",
		Prompt:      "x",
		MaxTokens:   500,
		Temperature: 0.3,
	})

	require.NotNil(t, cfg.SystemInstruction)
	require.Len(t, cfg.SystemInstruction.Parts, 1)
	assert.Equal(t, "Eres un nutricionista.", cfg.SystemInstruction.Parts[0].Text)
	assert.Equal(t, int32(500), cfg.MaxOutputTokens)
	require.NotNil(t, cfg.Temperature)
	assert.InDelta(t, 0.3, float64(*cfg.Temperature), 1e-6)
}

func TestBuildConfig_Empty(t *testing.T) {
	cfg := buildConfig(&provider.Request{Prompt: "x"})

	assert.Nil(t, cfg.SystemInstruction)
	assert.Zero(t, cfg.MaxOutputTokens)
	assert.Nil(t, cfg.Temperature)
}

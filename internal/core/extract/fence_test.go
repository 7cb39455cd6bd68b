package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLocatePayload(t *testing.T) {
	tests := []struct {
		name      string
		raw       string
		candidate string
		tier      FenceTier
	}{
		{
			name:      "json fence with prose around it",
			raw:       "Here you go:\n```json\n{\"a\":1}\n```\nEnjoy!",
			candidate: `{"a":1}`,
			tier:      TierJSONFence,
		},
		{
			name:      "json fence wins over an earlier generic fence",
			raw:       "```\nnot this\n```\n```json\n{\"a\":2}\n```",
			candidate: `{"a":2}`,
			tier:      TierJSONFence,
		},
		{
			name:      "unclosed json fence runs to end of text",
			raw:       "```json\n{\"a\":3}\n",
			candidate: `{"a":3}`,
			tier:      TierJSONFence,
		},
		{
			name:      "empty json fence",
			raw:       "```json\n```",
			candidate: "",
			tier:      TierJSONFence,
		},
		{
			name:      "generic fence",
			raw:       "Result:\n```\n{\"a\":4}\n```",
			candidate: `{"a":4}`,
			tier:      TierGenericFence,
		},
		{
			name:      "generic fence with uppercase info string",
			raw:       "```JSON\n{\"a\":5}\n```",
			candidate: `{"a":5}`,
			tier:      TierGenericFence,
		},
		{
			name:      "generic fence on one line",
			raw:       "```{\"a\":6}```",
			candidate: `{"a":6}`,
			tier:      TierGenericFence,
		},
		{
			name:      "only the first generic pair is used",
			raw:       "```\n{\"a\":7}\n```\n```\n{\"a\":8}\n```",
			candidate: `{"a":7}`,
			tier:      TierGenericFence,
		},
		{
			name:      "bare text is trimmed",
			raw:       "  \n{\"a\":9}\n\t",
			candidate: `{"a":9}`,
			tier:      TierBare,
		},
		{
			name:      "empty input",
			raw:       "",
			candidate: "",
			tier:      TierBare,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			candidate, tier := locatePayload(tt.raw)
			assert.Equal(t, tt.candidate, candidate)
			assert.Equal(t, tt.tier, tier)
		})
	}
}

func TestDropInfoString(t *testing.T) {
	assert.Equal(t, "{}\n", dropInfoString("javascript\n{}\n"))
	assert.Equal(t, "\n{}\n", dropInfoString("\n{}\n"))
	assert.Equal(t, "{\"a\":1}\n", dropInfoString("{\"a\":1}\n"))
	assert.Equal(t, "{}", dropInfoString("{}"))
}

package ai

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{"clean object", `{"funFact":"x"}`, `{"funFact":"x"}`},
		{"preamble and trailer", "Here you go:\n{\"a\":{\"b\":1}}\nEnjoy!", `{"a":{"b":1}}`},
		{"braces inside strings", `{"funFact":"uses } and { freely"} tail`, `{"funFact":"uses } and { freely"}`},
		{"escaped quote", `{"funFact":"say \"}\" loud"}`, `{"funFact":"say \"}\" loud"}`},
		{"no object", "no JSON here", ""},
		{"unclosed", `{"funFact":"unclosed`, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, extractJSON(tt.text))
		})
	}
}

func TestDecodeJSON(t *testing.T) {
	t.Run("plain", func(t *testing.T) {
		var fact FunFact
		require.NoError(t, decodeJSON(`{"funFact":"ok"}`, &fact))
		assert.Equal(t, "ok", fact.Text)
	})

	t.Run("code fence", func(t *testing.T) {
		var fact FunFact
		require.NoError(t, decodeJSON("```json\n{\"funFact\":\"fenced\"}\n```", &fact))
		assert.Equal(t, "fenced", fact.Text)
	})

	t.Run("empty", func(t *testing.T) {
		var fact FunFact
		assert.ErrorIs(t, decodeJSON("   ", &fact), ErrEmptyResponse)
	})

	t.Run("prose only", func(t *testing.T) {
		var fact FunFact
		assert.ErrorIs(t, decodeJSON("I don't know that movie.", &fact), ErrInvalidResponse)
	})
}

package generation

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/ankigen/internal/domain"
)

func TestSelectPromptPerStyle(t *testing.T) {
	t.Parallel()

	cloze := SelectPrompt(domain.CardStyleCloze, Options{})
	assert.Contains(t, cloze.Instruction, "{{c1::text to hide}}")
	assert.Equal(t, []string{"text"}, cloze.Schema.Properties["cards"].Items.Required)

	basic := SelectPrompt(domain.CardStyleBasic, Options{})
	reversed := SelectPrompt(domain.CardStyleBasicReversed, Options{})
	assert.Equal(t, basic.Instruction, reversed.Instruction)
	assert.Contains(t, basic.Instruction, "atomic")
	assert.Equal(t, []string{"front", "back"}, basic.Schema.Properties["cards"].Items.Required)
	assert.Equal(t, []string{"cards"}, basic.Schema.Required)
	assert.Equal(t, TypeArray, basic.Schema.Properties["cards"].Type)
}

func TestSelectPromptOptions(t *testing.T) {
	t.Parallel()

	plain := SelectPrompt(domain.CardStyleBasic, Options{Count: 0, Instructions: "   "})
	assert.Equal(t, basicInstruction, plain.Instruction)

	custom := "Ignore dates; {{c2::keep}} braces as-is."
	withHints := SelectPrompt(domain.CardStyleCloze, Options{Count: 15, Instructions: custom})
	assert.True(t, strings.HasPrefix(withHints.Instruction, clozeInstruction))
	assert.True(t, strings.HasSuffix(withHints.Instruction,
		"Generate approximately 15 flashcards.\n\nAdditional instructions from the user: "+custom))
}

func TestCardSchemaJSON(t *testing.T) {
	t.Parallel()

	raw, err := json.Marshal(CardSchema(domain.CardStyleBasic))
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, "object", decoded["type"])
	assert.NotContains(t, string(raw), "PropertyOrder")
}

package gemini

import (
	"encoding/json"
	"testing"

	"github.com/google/generative-ai-go/genai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSchemaFromJSON(t *testing.T) {
	raw := json.RawMessage(`{
		"type": "object",
		"properties": {
			"action_type": {"type": "string", "enum": ["email_security"], "description": "scored action"},
			"email": {"type": "string"},
			"score_floor": {"type": "integer"},
			"signals": {"type": "array", "items": {"type": "string"}}
		},
		"required": ["action_type"]
	}`)

	schema, err := schemaFromJSON(raw)
	require.NoError(t, err)
	require.NotNil(t, schema)

	assert.Equal(t, genai.TypeObject, schema.Type)
	assert.Equal(t, []string{"action_type"}, schema.Required)

	action := schema.Properties["action_type"]
	require.NotNil(t, action)
	assert.Equal(t, genai.TypeString, action.Type)
	assert.Equal(t, []string{"email_security"}, action.Enum)
	assert.Equal(t, "scored action", action.Description)

	assert.Equal(t, genai.TypeInteger, schema.Properties["score_floor"].Type)

	signals := schema.Properties["signals"]
	require.NotNil(t, signals)
	assert.Equal(t, genai.TypeArray, signals.Type)
	require.NotNil(t, signals.Items)
	assert.Equal(t, genai.TypeString, signals.Items.Type)
}

func TestSchemaFromJSONAbsent(t *testing.T) {
	for _, raw := range []json.RawMessage{nil, json.RawMessage("null")} {
		schema, err := schemaFromJSON(raw)
		require.NoError(t, err)
		assert.Nil(t, schema)
	}
}

func TestSchemaFromJSONMalformed(t *testing.T) {
	_, err := schemaFromJSON(json.RawMessage(`{"type": 42`))
	require.Error(t, err)
}

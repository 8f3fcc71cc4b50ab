package middleware

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRedact_MasksSensitiveFieldsOnly(t *testing.T) {
	input := map[string]interface{}{
		"session_id": "abc123",
		"password":   "hunter2",
		"token":      "secret-token",
	}

	redacted := redact(input)

	assert.Equal(t, "abc123", redacted["session_id"])
	assert.Equal(t, "[REDACTED]", redacted["password"])
	assert.Equal(t, "[REDACTED]", redacted["token"])
}

func TestRedact_RecursesIntoNestedObjects(t *testing.T) {
	input := map[string]interface{}{
		"custom_data": map[string]interface{}{
			"apiKey": "live-key",
			"label":  "participant-7",
		},
	}

	redacted := redact(input)

	nested, ok := redacted["custom_data"].(map[string]interface{})
	assert.True(t, ok)
	assert.Equal(t, "[REDACTED]", nested["apiKey"])
	assert.Equal(t, "participant-7", nested["label"])
}

func TestIsNestedObject(t *testing.T) {
	assert.True(t, isNestedObject(map[string]interface{}{"a": 1}))
	assert.False(t, isNestedObject("a string"))
	assert.False(t, isNestedObject(42))
	assert.False(t, isNestedObject(nil))
}

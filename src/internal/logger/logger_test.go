package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizePayloadMasksSensitiveKeys(t *testing.T) {
	payload := map[string]any{
		"channelKey": "GreyhoundKey001",
		"user":       "bob.credeem.testnet",
		"nested": map[string]any{
			"Private-Key": "ed25519:abc",
		},
	}

	sanitized, ok := SanitizePayload(payload).(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "******", sanitized["channelKey"])
	assert.Equal(t, "bob.credeem.testnet", sanitized["user"])
	assert.Equal(t, "******", sanitized["nested"].(map[string]any)["Private-Key"])
}

func TestErrorWritesStructuredEntry(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	t.Cleanup(func() { SetOutput(nil) })

	Error("swap delivery failed", errors.New("receiver not registered"), Fields{
		"swapId":        "s-1",
		"authorization": "Basic abc",
	})

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "swap delivery failed", line["msg"])
	assert.Equal(t, "error", line["level"])
	assert.Equal(t, "receiver not registered", line["error"])
	assert.Equal(t, "s-1", line["swapId"])
	assert.Equal(t, "******", line["authorization"])
}

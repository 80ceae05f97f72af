package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_InvalidLevel(t *testing.T) {
	_, err := New(&Config{Level: "loud", Format: "json", Output: "stdout"})
	assert.Error(t, err)
}

func TestLogger_WritesStructuredFields(t *testing.T) {
	var buf bytes.Buffer
	l := NewWriter(&buf).With(String("component", "forecast"))

	l.Info("fit done",
		String("model", "ridge"),
		Int("points", 30),
		Float64("last", 104.5),
		Duration("took", 1500*time.Millisecond),
		Bool("clamped", true),
		Error(errors.New("boom")),
	)

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "info", entry["level"])
	assert.Equal(t, "fit done", entry["message"])
	assert.Equal(t, "forecast", entry["component"])
	assert.Equal(t, "ridge", entry["model"])
	assert.Equal(t, float64(30), entry["points"])
	assert.Equal(t, 104.5, entry["last"])
	assert.Equal(t, float64(1500), entry["took"])
	assert.Equal(t, true, entry["clamped"])
	assert.Equal(t, "boom", entry["error"])
}

func TestNop_DiscardsOutput(t *testing.T) {
	assert.NotPanics(t, func() {
		Nop().Error("ignored", String("k", "v"))
	})
}

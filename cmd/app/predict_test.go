package main

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"testing"

	"PriceCast/internal/forecast"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePrices(t *testing.T) {
	got, err := parsePrices(" 1, 2.5 ,,3")
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 2.5, 3}, got)

	_, err = parsePrices("1,abc")
	assert.Error(t, err)
}

func TestTail(t *testing.T) {
	assert.Equal(t, []float64{3, 4}, tail([]float64{1, 2, 3, 4}, 2))
	assert.Equal(t, []float64{1, 2}, tail([]float64{1, 2}, 5))
}

func TestPredictCmd_RequiresOneSource(t *testing.T) {
	root := newRootCmd()
	root.SetOut(&bytes.Buffer{})
	root.SetArgs([]string{"predict", "--days", "3"})
	assert.Error(t, root.Execute())
}

func TestPredictCmd_PrintsJSON(t *testing.T) {
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{
		"--config", filepath.Join(t.TempDir(), "missing.yaml"),
		"predict", "--prices", "10,11,12,13,14", "--model", "linear", "--days", "3",
	})

	require.NoError(t, root.Execute())

	var res forecast.Result
	require.NoError(t, json.Unmarshal(out.Bytes(), &res))
	assert.Equal(t, forecast.ModelLinear, res.Model)
	require.Len(t, res.Predictions, 3)
	assert.InDelta(t, 15, res.Predictions[0], 1e-6)
}

func TestPredictCmd_RejectsUnknownModel(t *testing.T) {
	root := newRootCmd()
	root.SetOut(&bytes.Buffer{})
	root.SetArgs([]string{
		"--config", filepath.Join(t.TempDir(), "missing.yaml"),
		"predict", "--prices", "1,2,3,4,5", "--model", "banana",
	})

	var verr *forecast.ValidationError
	err := root.Execute()
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "model", verr.Field)
}

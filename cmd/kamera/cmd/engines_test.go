package cmd

import (
	"encoding/json"
	"testing"

	"github.com/MeKo-Tech/kamera/internal/config"
	"github.com/MeKo-Tech/kamera/internal/engine"
	"github.com/MeKo-Tech/kamera/internal/engine/enginetest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnginesCheck(t *testing.T) {
	f := &enginetest.Factory{}
	useFakeEngines(t, f)

	out, _, err := executeCommand(t, "", "engines", "check", "--pool-size", "3", "--language", "eng")
	require.NoError(t, err)

	assert.Contains(t, out, "3 of 3 engines ready (eng, ./tessdata)")
	require.Len(t, f.Built(), 3)
	for _, e := range f.Built() {
		assert.True(t, e.Closed())
	}
}

func TestEnginesCheckRestartJSON(t *testing.T) {
	f := &enginetest.Factory{}
	useFakeEngines(t, f)

	out, _, err := executeCommand(t, "", "engines", "check", "--pool-size", "2", "--restart", "--format", "json")
	require.NoError(t, err)

	var status engineStatus
	require.NoError(t, json.Unmarshal([]byte(out), &status))
	assert.Equal(t, 2, status.Capacity)
	assert.Equal(t, 2, status.Available)
	// Two engines at startup and two more on restart.
	assert.Equal(t, 4, f.Attempts())
}

func TestEnginesCheckFailures(t *testing.T) {
	t.Run("construction", func(t *testing.T) {
		useFakeEngines(t, &enginetest.Factory{FailAt: 2})
		_, _, err := executeCommand(t, "", "engines", "check", "--pool-size", "2")
		require.ErrorIs(t, err, engine.ErrInit)
	})

	t.Run("restart", func(t *testing.T) {
		useFakeEngines(t, &enginetest.Factory{FailAt: 3})
		_, _, err := executeCommand(t, "", "engines", "check", "--pool-size", "2", "--restart")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "restart engines")
	})

	t.Run("no backend", func(t *testing.T) {
		prev := engineFactory
		engineFactory = func(*config.Config) engine.Factory {
			return func() (engine.Engine, error) { return nil, engine.ErrNoBackend }
		}
		t.Cleanup(func() { engineFactory = prev })

		_, _, err := executeCommand(t, "", "engines", "check", "--pool-size", "1")
		require.ErrorIs(t, err, engine.ErrNoBackend)
		assert.Contains(t, err.Error(), "-tags=tesseract ./cmd/kamera")
	})

	t.Run("invalid pool size", func(t *testing.T) {
		_, _, err := executeCommand(t, "", "engines", "check", "--pool-size", "0")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid engine pool size")
	})
}

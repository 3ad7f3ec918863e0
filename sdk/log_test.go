package sdk_test

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ridegov/sdk"
)

func TestNewLoggerJSON(t *testing.T) {
	var buf bytes.Buffer
	l := sdk.NewLogger(sdk.LogConfig{Level: zerolog.InfoLevel, JSON: true, Out: &buf})
	l.Debug().Msg("hidden")
	l.Info().Str("evt", "gi").Msg("hello")

	var line map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &line))
	assert.Equal(t, "ridegov", line["app"])
	assert.Equal(t, "gi", line["evt"])
	assert.Equal(t, "hello", line["message"])
	assert.NotContains(t, line, "time")
}

func TestNewLoggerConsole(t *testing.T) {
	var buf bytes.Buffer
	l := sdk.NewLogger(sdk.LogConfig{Level: zerolog.DebugLevel, NoColor: true, Out: &buf})
	l.Debug().Msg("plain text")
	assert.Contains(t, buf.String(), "plain text")
	assert.Contains(t, buf.String(), "app=ridegov")
}

func TestParseLevel(t *testing.T) {
	lvl, ok := sdk.ParseLevel("WARN")
	assert.True(t, ok)
	assert.Equal(t, zerolog.WarnLevel, lvl)

	lvl, ok = sdk.ParseLevel("off")
	assert.True(t, ok)
	assert.Equal(t, zerolog.Disabled, lvl)

	_, ok = sdk.ParseLevel("loud")
	assert.False(t, ok)
	_, ok = sdk.ParseLevel("")
	assert.False(t, ok)
}

func TestFixedClock(t *testing.T) {
	at := time.Date(2025, 9, 3, 12, 0, 0, 0, time.UTC)
	c := sdk.FixedClock(at)
	assert.Equal(t, at.Unix(), sdk.NowUnix(c))
	c.Add(90 * time.Second)
	assert.Equal(t, at.Unix()+90, sdk.NowUnix(c))
}

func TestConfigureTestsHonoursEnv(t *testing.T) {
	t.Setenv(sdk.EnvLogLevel, "error")
	sdk.ConfigureTests()
	assert.Equal(t, zerolog.ErrorLevel, sdk.Logger().GetLevel())

	// later calls keep the first logger
	t.Setenv(sdk.EnvLogLevel, "debug")
	sdk.ConfigureRuntime()
	assert.Equal(t, zerolog.ErrorLevel, sdk.Logger().GetLevel())
}

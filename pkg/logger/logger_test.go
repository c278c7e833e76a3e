package logger

import (
	"testing"
	"upwatch/config"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitProduction(t *testing.T) {
	log.Logger = zerolog.Nop()

	l := Init(&config.Config{Env: "production", ServiceName: "upwatch"})
	require.NotNil(t, l)

	assert.Equal(t, zerolog.InfoLevel, zerolog.GlobalLevel())
	assert.NotEqual(t, zerolog.Disabled, log.Logger.GetLevel(), "package-level logger follows Init")
}

func TestInitDevelopment(t *testing.T) {
	l := Init(&config.Config{Env: "development", ServiceName: "upwatch"})
	require.NotNil(t, l)

	assert.Equal(t, zerolog.DebugLevel, zerolog.GlobalLevel())
}

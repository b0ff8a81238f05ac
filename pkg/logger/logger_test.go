package logger

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zerolog.DebugLevel, parseLevel("debug"))
	assert.Equal(t, zerolog.WarnLevel, parseLevel("warn"))
	assert.Equal(t, zerolog.InfoLevel, parseLevel("cualquier-cosa"), "nivel desconocido cae en info")
}

func TestNop(t *testing.T) {
	log := Nop()
	// No debe entrar en pánico ni emitir nada.
	log.Info().Str("k", "v").Msg("descartado")
	assert.Equal(t, zerolog.Disabled, log.Zerolog().GetLevel())
}

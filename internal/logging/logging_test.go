package logging

import (
	"os"
	"path/filepath"
	"testing"

	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thenoetrevino/tablero/internal/config"
)

func TestConfigure_FileJSON(t *testing.T) {
	t.Parallel()
	logger := log.New()
	path := filepath.Join(t.TempDir(), "logs", "tablero.log")

	closer, err := Configure(logger, config.LoggingConfig{Level: "warn", Format: "json", File: path})
	require.NoError(t, err)

	logger.WithField("board_id", "b1").Info("hidden")
	logger.WithField("board_id", "b1").Warn("shown")
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "hidden")
	assert.Contains(t, string(data), `"board_id":"b1"`)
	assert.Contains(t, string(data), `"msg":"shown"`)
}

func TestConfigure_Invalid(t *testing.T) {
	t.Parallel()

	_, err := Configure(log.New(), config.LoggingConfig{Level: "loud"})
	assert.Error(t, err)

	_, err = Configure(log.New(), config.LoggingConfig{Level: "info", Format: "xml"})
	assert.Error(t, err)
}

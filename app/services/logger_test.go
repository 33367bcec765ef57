package services

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/amirphl/leadboard/config"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/natefinch/lumberjack.v2"
)

func TestConfigureLogging(t *testing.T) {
	t.Cleanup(func() {
		logrus.SetOutput(os.Stderr)
		logrus.SetLevel(logrus.InfoLevel)
	})

	t.Run("stdout", func(t *testing.T) {
		out := ConfigureLogging(config.LoggingConfig{Level: "debug", Format: "json", Output: "stdout"})
		assert.Equal(t, os.Stdout, out)
		assert.Equal(t, logrus.DebugLevel, logrus.GetLevel())
		_, isJSON := logrus.StandardLogger().Formatter.(*logrus.JSONFormatter)
		assert.True(t, isJSON)
	})

	t.Run("file output rotates through lumberjack", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "app.log")
		out := ConfigureLogging(config.LoggingConfig{Level: "warn", Output: "file", FilePath: path, MaxSize: 1})
		lj, ok := out.(*lumberjack.Logger)
		require.True(t, ok)
		t.Cleanup(func() { _ = lj.Close() })

		logrus.Warn("written")
		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Contains(t, string(data), "written")
	})

	t.Run("unknown level falls back to info", func(t *testing.T) {
		ConfigureLogging(config.LoggingConfig{Level: "loud", Output: "stdout", Format: "text"})
		assert.Equal(t, logrus.InfoLevel, logrus.GetLevel())
	})
}

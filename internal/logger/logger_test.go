package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, logrus.DebugLevel, ParseLevel("debug"))
	assert.Equal(t, logrus.WarnLevel, ParseLevel("WARN"))
	assert.Equal(t, logrus.InfoLevel, ParseLevel("chatty"))
}

func TestFormatter(t *testing.T) {
	assert.IsType(t, &logrus.JSONFormatter{}, Formatter("json"))
	assert.IsType(t, &logrus.TextFormatter{}, Formatter("text"))
	assert.IsType(t, &logrus.TextFormatter{}, Formatter(""))
}

func TestSetup(t *testing.T) {
	defer logrus.SetOutput(os.Stderr)
	defer logrus.SetLevel(logrus.InfoLevel)
	Setup(Options{Level: "debug", Format: "json", File: filepath.Join(t.TempDir(), "app.log"), MaxSizeMB: 1})
	assert.Equal(t, logrus.DebugLevel, logrus.GetLevel())
	assert.NotNil(t, Writer())
}

// internal/infrastructure/logger/logger_test.go
package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestJSONLogger(t *testing.T) {
	// Setup a buffer to capture output
	var buf bytes.Buffer
	logger := NewJSONLogger(&buf, DebugLevel)

	logger.Debug("Debug message", map[string]interface{}{
		"key1": "value1",
	})

	var logEntry map[string]interface{}
	err := json.Unmarshal(buf.Bytes(), &logEntry)

	assert.NoError(t, err)
	assert.Equal(t, "debug", logEntry["level"])
	assert.Equal(t, "Debug message", logEntry["message"])
	assert.Equal(t, "value1", logEntry["key1"])
	assert.Contains(t, logEntry, "time")

	// Test that log levels are respected
	buf.Reset()
	warnLogger := NewJSONLogger(&buf, WarnLevel)

	warnLogger.Debug("Should not appear", nil)
	assert.Equal(t, "", buf.String())

	warnLogger.Warn("Warning message", nil)
	assert.Contains(t, buf.String(), "Warning message")

	// Test WithField
	buf.Reset()
	fieldLogger := logger.WithField("context", "test")
	fieldLogger.Info("With field", nil)

	logEntry = map[string]interface{}{}
	err = json.Unmarshal(buf.Bytes(), &logEntry)

	assert.NoError(t, err)
	assert.Equal(t, "test", logEntry["context"])
	assert.Equal(t, "With field", logEntry["message"])

	// Test WithFields
	buf.Reset()
	fieldsLogger := logger.WithFields(map[string]interface{}{
		"app":     "currency-widget",
		"version": "1.0.0",
	})
	fieldsLogger.Info("With fields", nil)

	logEntry = map[string]interface{}{}
	err = json.Unmarshal(buf.Bytes(), &logEntry)

	assert.NoError(t, err)
	assert.Equal(t, "currency-widget", logEntry["app"])
	assert.Equal(t, "1.0.0", logEntry["version"])

	// Test log levels
	buf.Reset()
	infoLogger := NewJSONLogger(&buf, InfoLevel)

	infoLogger.Debug("Debug", nil)
	assert.Equal(t, "", buf.String())

	infoLogger.Info("Info", nil)
	assert.Contains(t, buf.String(), "Info")

	buf.Reset()
	infoLogger.Error("Error", nil)
	assert.Contains(t, buf.String(), "Error")
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, DebugLevel, ParseLevel("debug"))
	assert.Equal(t, WarnLevel, ParseLevel("warning"))
	assert.Equal(t, ErrorLevel, ParseLevel(" ERROR "))
	assert.Equal(t, InfoLevel, ParseLevel("nonsense"))
}

func TestDefaultLogger(t *testing.T) {
	original := GetDefaultLogger()
	assert.NotNil(t, original)

	var buf bytes.Buffer
	SetDefaultLogger(NewJSONLogger(&buf, DebugLevel))
	GetDefaultLogger().Info("through default", nil)
	assert.Contains(t, buf.String(), "through default")

	SetDefaultLogger(nil)
	assert.NotNil(t, GetDefaultLogger())

	SetDefaultLogger(original)
}

func TestNop(t *testing.T) {
	assert.NotPanics(t, func() {
		Nop().Info("discarded", map[string]interface{}{"k": "v"})
	})
}

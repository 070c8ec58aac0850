package logger

import (
	"path/filepath"
	"testing"

	"github.com/deppfellow/training-registry/internal/config"
	"github.com/jackc/pgx/v5/tracelog"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetPgxTraceLogLevel(t *testing.T) {
	assert.Equal(t, tracelog.LogLevelDebug, GetPgxTraceLogLevel(zerolog.DebugLevel))
	assert.Equal(t, tracelog.LogLevelInfo, GetPgxTraceLogLevel(zerolog.InfoLevel))
	assert.Equal(t, tracelog.LogLevelError, GetPgxTraceLogLevel(zerolog.FatalLevel))
	assert.Equal(t, tracelog.LogLevelNone, GetPgxTraceLogLevel(zerolog.Disabled))
}

func TestNewLoggerService_WithoutLicense(t *testing.T) {
	svc := NewLoggerService(config.DefaultObservabilityConfig())

	assert.Nil(t, svc.GetApplication())
	svc.Shutdown()

	var nilSvc *LoggerService
	assert.Nil(t, nilSvc.GetApplication())
}

func TestNewLogger_Level(t *testing.T) {
	cfg := config.DefaultObservabilityConfig()
	cfg.Logging.Level = "warn"

	logger := NewLogger(cfg)
	assert.Equal(t, zerolog.WarnLevel, logger.GetLevel())
}

func TestNewLogger_WritesRotatedFile(t *testing.T) {
	cfg := config.DefaultObservabilityConfig()
	cfg.Logging.File = filepath.Join(t.TempDir(), "registry.log")

	logger := NewLogger(cfg)
	logger.Info().Msg("hello")

	assert.FileExists(t, cfg.Logging.File)
}

func TestWithTraceContext_NilTransaction(t *testing.T) {
	logger := zerolog.New(nil).Level(zerolog.ErrorLevel)
	got := WithTraceContext(logger, nil)
	require.Equal(t, zerolog.ErrorLevel, got.GetLevel())
}

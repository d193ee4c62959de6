package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var Logger *zap.Logger

// Init builds the global logger. Development environments get a colored
// console encoder, everything else gets production JSON.
func Init(env string) error {
	var config zap.Config

	switch env {
	case "dev", "development":
		config = zap.NewDevelopmentConfig()
		config.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	default:
		config = zap.NewProductionConfig()
	}
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	var err error
	Logger, err = config.Build()
	if err != nil {
		return err
	}

	zap.ReplaceGlobals(Logger)
	return nil
}

// Sync flushes any buffered entries. Call on shutdown.
func Sync() {
	if Logger != nil {
		_ = Logger.Sync()
	}
}

func Info(msg string, fields ...zap.Field)  { zap.L().Info(msg, fields...) }
func Warn(msg string, fields ...zap.Field)  { zap.L().Warn(msg, fields...) }
func Error(msg string, fields ...zap.Field) { zap.L().Error(msg, fields...) }
func Debug(msg string, fields ...zap.Field) { zap.L().Debug(msg, fields...) }
func Fatal(msg string, fields ...zap.Field) { zap.L().Fatal(msg, fields...) }

// printf-style helpers for call sites without structured fields
func Infof(format string, args ...interface{})  { zap.S().Infof(format, args...) }
func Warnf(format string, args ...interface{})  { zap.S().Warnf(format, args...) }
func Errorf(format string, args ...interface{}) { zap.S().Errorf(format, args...) }
func Debugf(format string, args ...interface{}) { zap.S().Debugf(format, args...) }
func Fatalf(format string, args ...interface{}) { zap.S().Fatalf(format, args...) }

package logger

import (
	"coinbrief_backend/internal/config"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Log 在 InitLogger 之前为 Nop，测试中可以直接使用
var Log = zap.NewNop()

// InitLogger 文件写 JSON、控制台写文本；未配置级别时 debug 模式输出 Debug
func InitLogger(cfg *config.Config) {
	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.TimeKey = "time"
	encoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderConfig.EncodeDuration = zapcore.MillisDurationEncoder

	level := levelFor(cfg)

	core := zapcore.NewTee(
		zapcore.NewCore(zapcore.NewJSONEncoder(encoderConfig), zapcore.AddSync(rotatingFile(cfg.Log)), level),
		zapcore.NewCore(zapcore.NewConsoleEncoder(encoderConfig), zapcore.AddSync(os.Stdout), level),
	)

	Log = zap.New(core,
		zap.AddCaller(),
		zap.AddStacktrace(zap.ErrorLevel),
		zap.Fields(zap.String("service", serviceName(cfg))),
	)
}

func rotatingFile(cfg config.LogConfig) *lumberjack.Logger {
	filename := cfg.File
	if filename == "" {
		filename = "logs/app.log"
	}
	return &lumberjack.Logger{
		Filename:   filename,
		MaxSize:    positiveOr(cfg.MaxSizeMB, 100),
		MaxBackups: positiveOr(cfg.MaxBackups, 5),
		MaxAge:     positiveOr(cfg.MaxAgeDays, 30),
		Compress:   true,
	}
}

func levelFor(cfg *config.Config) zapcore.Level {
	if cfg.Log.Level != "" {
		if lvl, err := zapcore.ParseLevel(cfg.Log.Level); err == nil {
			return lvl
		}
	}
	if cfg.Server.Mode == "debug" {
		return zap.DebugLevel
	}
	return zap.InfoLevel
}

func serviceName(cfg *config.Config) string {
	if cfg.Tracing.ServiceName != "" {
		return cfg.Tracing.ServiceName
	}
	return "coinbrief"
}

func positiveOr(v, fallback int) int {
	if v > 0 {
		return v
	}
	return fallback
}

// File: pkg/logger/zap.go
package logger

import (
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Config 로거 설정
type Config struct {
	// Level 로그 레벨 (debug, info, warn, error)
	Level string `mapstructure:"level"`
	// Format 로그 포맷 (json, console)
	Format string `mapstructure:"format"`
	// Output 출력 대상 (stdout, stderr, file)
	Output string `mapstructure:"output"`
	// FilePath 파일 출력 경로
	FilePath string `mapstructure:"file_path"`
	// MaxSizeMB 로테이션 기준 파일 크기
	MaxSizeMB int `mapstructure:"max_size_mb"`
	// MaxBackups 보관할 로테이션 파일 수
	MaxBackups int `mapstructure:"max_backups"`
	// MaxAgeDays 로테이션 파일 보관 기간
	MaxAgeDays int `mapstructure:"max_age_days"`
	// Development 개발 모드 여부
	Development bool `mapstructure:"development"`
}

// NewZapLogger 설정으로 zap 로거를 생성합니다.
func NewZapLogger(config Config) (*zap.Logger, error) {
	level := zap.NewAtomicLevelAt(parseLevel(config.Level))

	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.TimeKey = "@timestamp"
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderConfig.LevelKey = "log.level"
	encoderConfig.MessageKey = "message"
	encoderConfig.CallerKey = "caller"

	if config.Development {
		encoderConfig = zap.NewDevelopmentEncoderConfig()
		encoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	var encoder zapcore.Encoder
	if config.Format == "console" {
		encoder = zapcore.NewConsoleEncoder(encoderConfig)
	} else {
		encoder = zapcore.NewJSONEncoder(encoderConfig)
	}

	core := zapcore.NewCore(encoder, newWriteSyncer(config), level)
	logger := zap.New(core, zap.AddStacktrace(zapcore.ErrorLevel))

	// 개발 모드에서만 호출자 정보 추가
	if config.Development {
		logger = logger.WithOptions(zap.AddCaller())
	}

	return logger, nil
}

// DefaultZapLogger 기본 설정(json, stdout, info)으로 로거를 생성합니다.
func DefaultZapLogger() *zap.Logger {
	logger, err := NewZapLogger(Config{Level: "info", Format: "json", Output: "stdout"})
	if err != nil {
		return zap.NewExample()
	}
	return logger
}

func parseLevel(level string) zapcore.Level {
	switch strings.ToLower(level) {
	case "debug":
		return zapcore.DebugLevel
	case "warn":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

// newWriteSyncer 파일 출력은 lumberjack 으로 로테이션합니다.
func newWriteSyncer(config Config) zapcore.WriteSyncer {
	switch config.Output {
	case "stderr":
		return zapcore.AddSync(os.Stderr)
	case "file":
		if config.FilePath == "" {
			return zapcore.AddSync(os.Stdout)
		}
		return zapcore.AddSync(&lumberjack.Logger{
			Filename:   config.FilePath,
			MaxSize:    orDefault(config.MaxSizeMB, 100),
			MaxBackups: orDefault(config.MaxBackups, 5),
			MaxAge:     orDefault(config.MaxAgeDays, 30),
			Compress:   true,
		})
	default:
		return zapcore.AddSync(os.Stdout)
	}
}

func orDefault(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}

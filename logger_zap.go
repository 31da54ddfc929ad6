package auth

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// ZapLogger adapts a zap logger to Logger
type ZapLogger struct {
	sugar *zap.SugaredLogger
}

var _ Logger = (*ZapLogger)(nil)

// NewZapLogger wraps the given zap logger. A nil logger yields a no-op one.
func NewZapLogger(l *zap.Logger) *ZapLogger {
	if l == nil {
		l = zap.NewNop()
	}
	return &ZapLogger{sugar: l.Sugar()}
}

// BuildZapLogger creates a console logger for development and a JSON
// logger otherwise, writing to stdout at level.
func BuildZapLogger(environment, level, name string) *zap.Logger {
	zapLevel, err := zapcore.ParseLevel(level)
	if err != nil {
		zapLevel = zap.InfoLevel
	}

	var encoder zapcore.Encoder
	if environment == "development" || environment == "dev" {
		encoder = zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig())
	} else {
		encoderConfig := zap.NewProductionEncoderConfig()
		encoderConfig.TimeKey = "time"
		encoderConfig.EncodeLevel = zapcore.LowercaseLevelEncoder
		encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
		encoderConfig.EncodeDuration = zapcore.SecondsDurationEncoder
		encoder = zapcore.NewJSONEncoder(encoderConfig)
	}

	core := zapcore.NewCore(encoder, zapcore.AddSync(os.Stdout), zap.NewAtomicLevelAt(zapLevel))

	return zap.New(core, zap.AddCaller(), zap.AddStacktrace(zap.ErrorLevel)).
		Named(name).
		With(zap.String("environment", environment))
}

// Named returns a child logger scoped to name.
func (z *ZapLogger) Named(name string) *ZapLogger {
	return &ZapLogger{sugar: z.sugar.Named(name)}
}

func (z *ZapLogger) Sync() error {
	return z.sugar.Sync()
}

func (z *ZapLogger) Debug(msg string, args ...any) { z.sugar.Debugw(msg, args...) }
func (z *ZapLogger) Info(msg string, args ...any)  { z.sugar.Infow(msg, args...) }
func (z *ZapLogger) Warn(msg string, args ...any)  { z.sugar.Warnw(msg, args...) }
func (z *ZapLogger) Error(msg string, args ...any) { z.sugar.Errorw(msg, args...) }

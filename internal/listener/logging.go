package listener

import (
	"context"

	"go.uber.org/zap/zapcore"

	domain "github.com/oshokin/catpoint/internal/domain/security"
	"github.com/oshokin/catpoint/internal/logger"
)

// Logging logs every callback at its own level.
type Logging struct {
	// level is the minimum level this listener writes at.
	level zapcore.Level
}

// NewLogging creates a listener writing at level through the context logger.
func NewLogging(level zapcore.Level) *Logging {
	return &Logging{
		level: level,
	}
}

// Notify logs the new alarm status, at warning level when the alarm rings.
func (l *Logging) Notify(ctx context.Context, status domain.AlarmStatus) {
	level := zapcore.InfoLevel
	if status == domain.Alarm {
		level = zapcore.WarnLevel
	}

	l.log(ctx, level, "Alarm status changed", "alarm_status", status)
}

// CatDetected logs the camera verdict.
func (l *Logging) CatDetected(ctx context.Context, detected bool) {
	l.log(ctx, zapcore.InfoLevel, "Camera verdict", "cat_detected", detected)
}

// SensorStatusChanged logs that sensors may have changed.
func (l *Logging) SensorStatusChanged(ctx context.Context) {
	l.log(ctx, zapcore.DebugLevel, "Sensor status changed")
}

func (l *Logging) log(ctx context.Context, level zapcore.Level, message string, kvs ...any) {
	log := logger.FromContext(ctx).
		WithOptions(logger.WithLevel(l.level)).
		Named("listener")

	switch level {
	case zapcore.DebugLevel:
		log.Debugw(message, kvs...)
	case zapcore.WarnLevel:
		log.Warnw(message, kvs...)
	default:
		log.Infow(message, kvs...)
	}
}

package cli

import "go.uber.org/zap"

// mixerLogger wraps zap for verbose debug output.
type mixerLogger struct {
	sugared *zap.SugaredLogger
}

func newMixerLogger(globals *Globals) *mixerLogger {
	if globals == nil || !globals.Verbose {
		return &mixerLogger{}
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	cfg.Encoding = "json"
	logger, _ := cfg.Build()
	return &mixerLogger{sugared: logger.Sugar()}
}

func (l *mixerLogger) Debug(format string, args ...interface{}) {
	if l.sugared == nil {
		return
	}
	l.sugared.Debugf(format, args...)
}

// Sugared exposes the underlying logger for components that take one
// directly. Never nil; quiet runs get a nop logger.
func (l *mixerLogger) Sugared() *zap.SugaredLogger {
	if l.sugared == nil {
		return zap.NewNop().Sugar()
	}
	return l.sugared
}

package logging

import (
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
)

// Module provides the process-wide logger to an fx application and routes
// fx's own lifecycle events through it.
var Module = fx.Options(
	fx.Provide(Logger),
	fx.WithLogger(NewEventLogger),
)

// NewEventLogger adapts log for fx lifecycle events.
func NewEventLogger(log *zap.Logger) fxevent.Logger {
	return &fxevent.ZapLogger{Logger: log.Named("fx")}
}

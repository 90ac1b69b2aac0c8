package graphql

import "go.uber.org/zap"

// LogObserver returns an Observer that writes one structured line per
// request: debug for successes, warn for failures.
func LogObserver(logger *zap.Logger) Observer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(e Event) {
		fields := []zap.Field{
			zap.String("requestID", e.RequestID),
			zap.String("query", e.Query),
			zap.Bool("preview", e.Preview),
			zap.Int("status", e.StatusCode),
			zap.Duration("duration", e.Duration),
		}
		if e.Err != nil {
			fields = append(fields, zap.String("kind", string(KindOf(e.Err))), zap.Error(e.Err))
			logger.Warn("cms request failed", fields...)
			return
		}
		logger.Debug("cms request", fields...)
	}
}

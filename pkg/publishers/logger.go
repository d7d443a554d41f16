package publishers

import "github.com/gw2sdk/gw2sdk-go/internal/logger"

// Logger is the structured logger sinks report deliveries to.
type Logger = logger.Logger

func ensureLogger(log Logger) Logger {
	if log == nil {
		return logger.NopLogger{}
	}
	return log
}

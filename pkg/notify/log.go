package notify

import "github.com/raykavin/backengine/pkg/logger"

// LogNotifier reports completion messages through the repo's logger
// instead of an external service. Useful as the default notifier for
// the CLI and in tests where no Telegram token is configured.
type LogNotifier struct {
	log logger.Logger
}

func NewLogNotifier(log logger.Logger) *LogNotifier {
	return &LogNotifier{log: log}
}

func (n *LogNotifier) Notify(message string) {
	n.log.Info(message)
}

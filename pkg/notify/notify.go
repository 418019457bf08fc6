// Package notify posts run-completion messages for backtest and
// optimizer jobs: a Telegram notifier for remote monitoring, and a log
// notifier as the always-available fallback.
package notify

// Notifier is the seam between a backtest/optimizer driver and however
// its completion is reported. Implementations must not block the
// caller on delivery failure; they log and move on.
type Notifier interface {
	Notify(message string)
}

// Package notifier provides desktop notifications for run outcomes
package notifier

import (
	"fmt"
	"time"

	"github.com/gen2brain/beeep"

	"github.com/ueforge/ueforge/pkg/logger"
	"github.com/ueforge/ueforge/pkg/types"
)

// notifyFunc is swapped out in tests
var notifyFunc = beeep.Notify

// RunNotifier sends a desktop notification when a run reaches a terminal
// phase. It is wired to Engine.OnFinish by the CLI.
type RunNotifier struct {
	enabled bool
	logger  logger.Logger
}

// New creates a run notifier
func New(enabled bool, log logger.Logger) *RunNotifier {
	return &RunNotifier{enabled: enabled, logger: log}
}

// NotifyFinish reports the outcome of a finished run
func (n *RunNotifier) NotifyFinish(snap types.ExecutionState) {
	if !n.enabled || !snap.Phase.IsTerminal() {
		return
	}

	duration := snap.FinishedAt.Sub(snap.StartedAt).Round(time.Second)

	var title, message string
	switch snap.Phase {
	case types.PhaseSucceeded:
		title = "✅ UEForge"
		message = fmt.Sprintf("%s succeeded in %s", snap.Operation, duration)
	case types.PhaseCancelled:
		title = "⛔ UEForge"
		message = fmt.Sprintf("%s cancelled", snap.Operation)
	default:
		title = "❌ UEForge"
		if snap.ExitInfo != nil && snap.ExitInfo.FailureKind == types.FailureExit {
			message = fmt.Sprintf("%s failed with exit code %d", snap.Operation, snap.ExitInfo.Code)
		} else if snap.ExitInfo != nil {
			message = fmt.Sprintf("%s failed to launch: %s", snap.Operation, snap.ExitInfo.Message)
		} else {
			message = fmt.Sprintf("%s failed", snap.Operation)
		}
	}

	if err := notifyFunc(title, message, ""); err != nil {
		n.logger.Debug("failed to send notification", logger.WithField("error", err))
	}
}

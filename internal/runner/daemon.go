package runner

import (
	"os/signal"
	"syscall"

	"github.com/nabbar/svc-fabric/internal/logger"
)

// applyDaemonMode implements the `run.run-as-damon` mode: a backgrounded
// process ignores SIGHUP so a terminal hangup doesn't kill it. Redirecting
// the log output itself is the embedding cmd's concern (it owns the log
// file path).
func applyDaemonMode(log *logger.Entry) {
	signal.Ignore(syscall.SIGHUP)

	if log != nil {
		log.Info("daemon mode: ignoring SIGHUP")
	}
}

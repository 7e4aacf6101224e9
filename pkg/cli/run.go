package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/fatih/color"

	"github.com/ueforge/ueforge/pkg/config"
	"github.com/ueforge/ueforge/pkg/engine"
	"github.com/ueforge/ueforge/pkg/logger"
	"github.com/ueforge/ueforge/pkg/notifier"
	"github.com/ueforge/ueforge/pkg/types"
	"github.com/ueforge/ueforge/pkg/watcher"
)

// renderTick is how often the progress line is repainted while a run is in
// flight. The engine is only ever polled via Snapshot; rendering never
// blocks it.
const renderTick = 100 * time.Millisecond

// newEngine wires up an engine with logging and notifications per config
func newEngine(cfg *config.Config, flags *runFlags) (*engine.Engine, logger.Logger) {
	log := logger.New(cfg.LogLevel)
	eng := engine.New(log)

	notify := notifier.New(cfg.NotificationsEnabled() && !flags.noNotify, log)
	eng.OnFinish = notify.NotifyFinish
	return eng, log
}

// runOperation executes one build or package run in the foreground,
// rendering progress until the run finalizes.
func runOperation(op types.Operation, arg string, flags *runFlags) error {
	req, cfg, err := resolveRequest(op, arg, flags)
	if err != nil {
		return err
	}
	eng, _ := newEngine(cfg, flags)
	return executeRun(eng, req)
}

// executeRun starts the request on eng and blocks until it reaches a
// terminal phase. Ctrl-C cancels the run instead of killing the CLI.
func executeRun(eng *engine.Engine, req types.BuildRequest) error {
	if err := eng.Start(req); err != nil {
		return err
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer func() {
		signal.Stop(sigCh)
		close(sigCh)
	}()
	go func() {
		if _, ok := <-sigCh; ok {
			printWarning("cancelling...")
			eng.Cancel()
		}
	}()

	ticker := time.NewTicker(renderTick)
	defer ticker.Stop()
	done := eng.Done()
	for {
		select {
		case <-ticker.C:
			renderProgress(eng.Snapshot())
		case <-done:
			fmt.Println()
			return reportOutcome(eng.Snapshot())
		}
	}
}

// renderProgress repaints a single status line from a snapshot
func renderProgress(snap types.ExecutionState) {
	const barWidth = 24
	filled := int(snap.Progress * barWidth)
	bar := strings.Repeat("█", filled) + strings.Repeat("░", barWidth-filled)

	lastLine := ""
	if len(snap.Log) > 0 {
		lastLine = snap.Log[len(snap.Log)-1]
		if len(lastLine) > 60 {
			lastLine = lastLine[:57] + "..."
		}
	}

	fmt.Printf("\r⚒ %s %3.0f%% %s\x1b[K",
		color.CyanString(bar), snap.Progress*100, lastLine)
}

// reportOutcome prints the terminal state and maps it onto the process
// exit: failure is an error, cancellation deliberately is not.
func reportOutcome(snap types.ExecutionState) error {
	switch snap.Phase {
	case types.PhaseSucceeded:
		printSuccess(fmt.Sprintf("%s succeeded in %s",
			snap.Operation, snap.FinishedAt.Sub(snap.StartedAt).Round(time.Second)))
		return nil
	case types.PhaseCancelled:
		printWarning(fmt.Sprintf("%s cancelled", snap.Operation))
		return nil
	default:
		if snap.ExitInfo != nil && snap.ExitInfo.FailureKind != types.FailureExit {
			printError(fmt.Sprintf("%s failed to launch: %s", snap.Operation, snap.ExitInfo.Message))
			return fmt.Errorf("launch failed (%s)", snap.ExitInfo.FailureKind)
		}
		code := -1
		if snap.ExitInfo != nil {
			code = snap.ExitInfo.Code
		}
		printError(fmt.Sprintf("%s failed with exit code %d", snap.Operation, code))
		return fmt.Errorf("%s failed with exit code %d", snap.Operation, code)
	}
}

// runWatch rebuilds the project whenever its sources settle after a change
func runWatch(arg string, flags *runFlags) error {
	req, cfg, err := resolveRequest(types.OperationBuild, arg, flags)
	if err != nil {
		return err
	}
	eng, log := newEngine(cfg, flags)

	w, err := watcher.New(log)
	if err != nil {
		return err
	}
	defer w.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		<-sigCh
		printWarning("stopping watch...")
		eng.Cancel()
		cancel()
	}()

	printInfo(fmt.Sprintf("watching %s; press Ctrl-C to stop", req.ProjectName))

	// initial build, then one rebuild per settled change burst
	if err := executeRun(eng, req); err != nil {
		printError(err.Error())
	}

	err = w.Watch(ctx, req.ProjectDir(), func(changed []string) {
		printInfo(fmt.Sprintf("%d file(s) changed, rebuilding %s", len(changed), req.ProjectName))
		if err := eng.Start(req); err != nil {
			// a run still in flight keeps running; the change burst is dropped
			printWarning(err.Error())
			return
		}
		<-eng.Done()
		if err := reportOutcome(eng.Snapshot()); err != nil {
			printError(err.Error())
		}
	})
	if err == context.Canceled {
		return nil
	}
	return err
}

// Package engine runs Unreal build and package operations and tracks their
// progress. One Engine owns one external process at a time: Start spawns it
// on a background goroutine, output is framed into lines, scanned for
// [current/total] progress markers, and folded into a mutex-guarded
// execution state that any number of callers may snapshot while the run is
// in flight.
package engine

import (
	"context"
	"errors"
	"io"
	"os"
	"os/exec"
	"sync"
	"syscall"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/ueforge/ueforge/pkg/command"
	"github.com/ueforge/ueforge/pkg/logger"
	"github.com/ueforge/ueforge/pkg/types"
)

// ErrAlreadyRunning is returned by Start while a run is in progress.
// The rejected call leaves the execution state untouched.
var ErrAlreadyRunning = errors.New("a run is already in progress")

const (
	// defaultShutdownGrace is how long Cancel waits after SIGTERM
	// before escalating to SIGKILL.
	defaultShutdownGrace = 5 * time.Second

	// readBufferSize is the chunk size for reading process output.
	readBufferSize = 32 * 1024
)

// Engine executes one Unreal operation at a time. Exported fields may be
// set between construction and the first Start; afterwards they must not
// be touched.
type Engine struct {
	// Factory creates the external command. Nil means os/exec.
	Factory CommandFactory

	// ShutdownGrace is the SIGTERM-to-SIGKILL window for Cancel.
	// Zero means defaultShutdownGrace.
	ShutdownGrace time.Duration

	// OnFinish, when set, is called once per run with the terminal
	// snapshot, outside the state lock.
	OnFinish func(types.ExecutionState)

	log logger.Logger

	mu              sync.Mutex
	state           types.ExecutionState
	cmd             Command
	cancelRequested bool
	done            chan struct{}
}

// New creates an idle engine
func New(log logger.Logger) *Engine {
	done := make(chan struct{})
	close(done)
	return &Engine{
		log:   log,
		state: types.ExecutionState{Phase: types.PhaseIdle},
		done:  done,
	}
}

// Start begins a run for the request and returns without blocking. It
// fails fast for malformed requests and with ErrAlreadyRunning while a run
// is in progress; in both cases the state is unchanged. Launch failures
// are not returned here: they finalize the run as Failed, observable via
// Snapshot.
func (e *Engine) Start(req types.BuildRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}
	inv := command.Resolve(req)

	factory := e.Factory
	if factory == nil {
		factory = DefaultCommandFactory
	}

	e.mu.Lock()
	if e.state.Phase == types.PhaseRunning {
		e.mu.Unlock()
		return ErrAlreadyRunning
	}

	runID := uuid.NewString()[:8]
	cmd := factory(inv.Program, inv.Args, inv.Dir)
	e.cmd = cmd
	e.cancelRequested = false
	e.done = make(chan struct{})
	e.state = types.ExecutionState{
		RunID:     runID,
		Operation: req.Operation,
		Phase:     types.PhaseRunning,
		Progress:  0,
		Log:       nil,
		StartedAt: time.Now(),
	}
	e.mu.Unlock()

	log := e.log.WithRun(runID)
	log.Info("starting run",
		logger.WithField("operation", req.Operation),
		logger.WithField("platform", req.Platform),
		logger.WithField("configuration", req.Configuration))
	log.Debug("resolved command", logger.WithField("invocation", inv.String()))

	go e.run(cmd, log)
	return nil
}

// Cancel requests best-effort termination of the running process. The
// phase stays Running until the process actually dies, then finalizes to
// Cancelled regardless of the raw exit status. Calling Cancel when no run
// is in progress is a no-op.
func (e *Engine) Cancel() {
	e.mu.Lock()
	if e.state.Phase != types.PhaseRunning || e.cmd == nil {
		e.mu.Unlock()
		return
	}
	e.cancelRequested = true
	cmd := e.cmd
	done := e.done
	grace := e.ShutdownGrace
	runID := e.state.RunID
	e.mu.Unlock()

	if grace <= 0 {
		grace = defaultShutdownGrace
	}

	e.log.WithRun(runID).Info("cancel requested")
	if err := cmd.Signal(syscall.SIGTERM); err != nil {
		e.log.WithRun(runID).Debug("SIGTERM failed", logger.WithField("error", err))
	}

	go func() {
		select {
		case <-done:
		case <-time.After(grace):
			if err := cmd.Kill(); err != nil {
				e.log.WithRun(runID).Debug("kill failed", logger.WithField("error", err))
			}
		}
	}()
}

// Snapshot returns a consistent copy of the execution state. The copy is
// safe to retain and mutate; log entries observed by any reader only grow
// within a run.
func (e *Engine) Snapshot() types.ExecutionState {
	e.mu.Lock()
	defer e.mu.Unlock()

	snap := e.state
	snap.Log = append([]string(nil), e.state.Log...)
	if e.state.ExitInfo != nil {
		info := *e.state.ExitInfo
		snap.ExitInfo = &info
	}
	return snap
}

// Done returns a channel closed when the current run reaches a terminal
// phase. When no run is in progress the channel is already closed.
func (e *Engine) Done() <-chan struct{} {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.done
}

// Wait blocks until the current run finalizes or the context is done.
// It returns immediately when no run is in progress.
func (e *Engine) Wait(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-e.Done():
		return nil
	}
}

// run drives one external process to completion on the worker goroutine.
func (e *Engine) run(cmd Command, log logger.Logger) {
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		e.finalizeLaunchFailure(err, log)
		return
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		e.finalizeLaunchFailure(err, log)
		return
	}

	if err := cmd.Start(); err != nil {
		e.finalizeLaunchFailure(err, log)
		return
	}

	// Stdout carries the UBT/UAT step counters; stderr is captured for
	// the log but never parsed for progress.
	var pumps errgroup.Group
	pumps.Go(func() error {
		e.pump(stdout, true)
		return nil
	})
	pumps.Go(func() error {
		e.pump(stderr, false)
		return nil
	})
	_ = pumps.Wait()

	e.finalize(cmd.Wait(), log)
}

// pump reads one output stream to EOF, framing chunks into lines and
// folding each line into the state.
func (e *Engine) pump(r io.Reader, parseProgress bool) {
	var framer LineFramer
	buf := make([]byte, readBufferSize)

	for {
		n, err := r.Read(buf)
		if n > 0 {
			for _, line := range framer.Feed(buf[:n]) {
				e.appendLine(line, parseProgress)
			}
		}
		if err != nil {
			if line, ok := framer.Flush(); ok {
				e.appendLine(line, parseProgress)
			}
			return
		}
	}
}

// appendLine records one output line and, for progress-bearing streams,
// applies any marker it carries. Later markers win even when they report a
// smaller fraction; only the log length is monotonic.
func (e *Engine) appendLine(line string, parseProgress bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.state.Log = append(e.state.Log, line)
	if !parseProgress {
		return
	}
	if marker, ok := ExtractMarker(line); ok {
		e.state.Progress = marker.Fraction()
	}
}

// finalizeLaunchFailure ends a run whose process never started
func (e *Engine) finalizeLaunchFailure(err error, log logger.Logger) {
	e.mu.Lock()
	cancelled := e.cancelRequested
	info := &types.ExitInfo{
		Code:        -1,
		FailureKind: classifyLaunchError(err),
		Message:     err.Error(),
	}
	if cancelled {
		e.state.Phase = types.PhaseCancelled
		info.FailureKind = ""
	} else {
		e.state.Phase = types.PhaseFailed
	}
	e.state.ExitInfo = info
	e.state.FinishedAt = time.Now()
	e.cmd = nil
	close(e.done)
	snap := e.snapshotLocked()
	e.mu.Unlock()

	log.Error("launch failed", logger.WithField("error", err))
	e.notifyFinish(snap)
}

// finalize classifies the exit status and moves the state machine to its
// terminal phase. A run that was asked to cancel finalizes as Cancelled no
// matter what the process reported.
func (e *Engine) finalize(waitErr error, log logger.Logger) {
	info := exitInfo(waitErr)

	e.mu.Lock()
	switch {
	case e.cancelRequested:
		e.state.Phase = types.PhaseCancelled
		info.FailureKind = ""
	case waitErr == nil:
		e.state.Phase = types.PhaseSucceeded
	default:
		e.state.Phase = types.PhaseFailed
	}
	e.state.ExitInfo = &info
	e.state.FinishedAt = time.Now()
	e.cmd = nil
	close(e.done)
	snap := e.snapshotLocked()
	e.mu.Unlock()

	switch snap.Phase {
	case types.PhaseSucceeded:
		log.Info("run succeeded",
			logger.WithField("duration", snap.FinishedAt.Sub(snap.StartedAt).Round(time.Millisecond)))
	case types.PhaseCancelled:
		log.Info("run cancelled")
	default:
		log.Error("run failed",
			logger.WithField("exitCode", info.Code),
			logger.WithField("kind", info.FailureKind))
	}

	e.notifyFinish(snap)
}

// snapshotLocked copies the state; callers must hold e.mu
func (e *Engine) snapshotLocked() types.ExecutionState {
	snap := e.state
	snap.Log = append([]string(nil), e.state.Log...)
	if e.state.ExitInfo != nil {
		info := *e.state.ExitInfo
		snap.ExitInfo = &info
	}
	return snap
}

func (e *Engine) notifyFinish(snap types.ExecutionState) {
	if e.OnFinish != nil {
		e.OnFinish(snap)
	}
}

// exitInfo derives ExitInfo from the error returned by Wait
func exitInfo(waitErr error) types.ExitInfo {
	if waitErr == nil {
		return types.ExitInfo{Code: 0}
	}
	var exitErr *exec.ExitError
	if errors.As(waitErr, &exitErr) {
		return types.ExitInfo{
			Code:        exitErr.ExitCode(),
			FailureKind: types.FailureExit,
			Message:     exitErr.Error(),
		}
	}
	return types.ExitInfo{
		Code:        -1,
		FailureKind: types.FailureSpawn,
		Message:     waitErr.Error(),
	}
}

// classifyLaunchError maps spawn errors onto the failure taxonomy
func classifyLaunchError(err error) types.FailureKind {
	switch {
	case errors.Is(err, exec.ErrNotFound), errors.Is(err, os.ErrNotExist):
		return types.FailureNotFound
	case errors.Is(err, os.ErrPermission):
		return types.FailurePermission
	default:
		return types.FailureSpawn
	}
}

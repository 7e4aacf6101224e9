package engine

import (
	"io"
	"os/exec"
	"syscall"
)

// Command abstracts a spawnable external process so runner behavior can be
// tested without touching os/exec. The production implementation wraps
// exec.Cmd.
type Command interface {
	// StdoutPipe must be called before Start
	StdoutPipe() (io.ReadCloser, error)
	// StderrPipe must be called before Start
	StderrPipe() (io.ReadCloser, error)
	// Start begins execution without waiting for completion
	Start() error
	// Wait blocks until exit; returns *exec.ExitError on nonzero status
	Wait() error
	// Signal delivers a termination signal to the running process
	Signal(sig syscall.Signal) error
	// Kill forcefully terminates the process
	Kill() error
}

// CommandFactory builds a Command from an executable path, argument vector
// and working directory.
type CommandFactory func(name string, args []string, dir string) Command

// DefaultCommandFactory spawns real processes with os/exec. It is used
// whenever Engine.Factory is nil.
func DefaultCommandFactory(name string, args []string, dir string) Command {
	cmd := exec.Command(name, args...)
	cmd.Dir = dir
	return &execCommand{cmd: cmd}
}

type execCommand struct {
	cmd *exec.Cmd
}

func (e *execCommand) StdoutPipe() (io.ReadCloser, error) { return e.cmd.StdoutPipe() }
func (e *execCommand) StderrPipe() (io.ReadCloser, error) { return e.cmd.StderrPipe() }
func (e *execCommand) Start() error                       { return e.cmd.Start() }
func (e *execCommand) Wait() error                        { return e.cmd.Wait() }

func (e *execCommand) Signal(sig syscall.Signal) error {
	if e.cmd.Process == nil {
		return nil
	}
	return e.cmd.Process.Signal(sig)
}

func (e *execCommand) Kill() error {
	if e.cmd.Process == nil {
		return nil
	}
	return e.cmd.Process.Kill()
}

// Package types provides core types shared across UEForge
package types

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"
)

// Operation represents the kind of Unreal invocation to run
type Operation string

const (
	OperationBuild   Operation = "build"
	OperationPackage Operation = "package"
)

// Configuration represents an Unreal build configuration
type Configuration string

const (
	ConfigurationDebug       Configuration = "Debug"
	ConfigurationDevelopment Configuration = "Development"
	ConfigurationShipping    Configuration = "Shipping"
)

// Platform represents a target platform understood by UBT/UAT
type Platform string

const (
	PlatformWin64      Platform = "Win64"
	PlatformLinux      Platform = "Linux"
	PlatformMac        Platform = "Mac"
	PlatformAndroid    Platform = "Android"
	PlatformIOS        Platform = "iOS"
	PlatformPS4        Platform = "PS4"
	PlatformPS5        Platform = "PS5"
	PlatformXBoxOne    Platform = "XBoxOne"
	PlatformXBoxSeries Platform = "XBoxSeries"
	PlatformSwitch     Platform = "Switch"
)

// Platforms lists every supported platform in display order
var Platforms = []Platform{
	PlatformWin64,
	PlatformLinux,
	PlatformMac,
	PlatformAndroid,
	PlatformIOS,
	PlatformPS4,
	PlatformPS5,
	PlatformXBoxOne,
	PlatformXBoxSeries,
	PlatformSwitch,
}

// Configurations lists every supported build configuration
var Configurations = []Configuration{
	ConfigurationDebug,
	ConfigurationDevelopment,
	ConfigurationShipping,
}

// ParsePlatform resolves a case-insensitive platform name
func ParsePlatform(s string) (Platform, error) {
	for _, p := range Platforms {
		if strings.EqualFold(string(p), s) {
			return p, nil
		}
	}
	return "", fmt.Errorf("unknown platform: %s", s)
}

// ParseConfiguration resolves a case-insensitive configuration name
func ParseConfiguration(s string) (Configuration, error) {
	for _, c := range Configurations {
		if strings.EqualFold(string(c), s) {
			return c, nil
		}
	}
	return "", fmt.Errorf("unknown configuration: %s", s)
}

// Phase represents the state of one execution attempt
type Phase string

const (
	PhaseIdle      Phase = "idle"
	PhaseRunning   Phase = "running"
	PhaseSucceeded Phase = "succeeded"
	PhaseFailed    Phase = "failed"
	PhaseCancelled Phase = "cancelled"
)

// IsTerminal reports whether the phase marks the end of a run
func (p Phase) IsTerminal() bool {
	switch p {
	case PhaseSucceeded, PhaseFailed, PhaseCancelled:
		return true
	}
	return false
}

// FailureKind classifies why a run ended in PhaseFailed
type FailureKind string

const (
	// FailureExit means the process started and exited nonzero
	FailureExit FailureKind = "exit"
	// FailureNotFound means the executable could not be resolved
	FailureNotFound FailureKind = "not-found"
	// FailurePermission means the executable could not be spawned due to permissions
	FailurePermission FailureKind = "permission"
	// FailureSpawn covers any other launch error
	FailureSpawn FailureKind = "spawn"
)

// ExitInfo describes how a run ended. It is only present in terminal phases.
type ExitInfo struct {
	// Code is the process exit code. It is -1 when the process never
	// started or was killed by a signal before reporting a code.
	Code int `json:"code"`

	// FailureKind is set when the run ended in PhaseFailed
	FailureKind FailureKind `json:"failureKind,omitempty"`

	// Message carries the underlying error text for launch failures
	Message string `json:"message,omitempty"`
}

// BuildRequest describes one Unreal invocation. It is created by the caller
// immediately before Start and never mutated afterwards.
type BuildRequest struct {
	Operation     Operation     `json:"operation"`
	Configuration Configuration `json:"configuration"`
	Platform      Platform      `json:"platform"`

	// ProjectName is the target name passed to UBT (the .uproject stem)
	ProjectName string `json:"projectName"`

	// ProjectPath is the absolute path to the .uproject file
	ProjectPath string `json:"projectPath"`

	// EngineRoot is the root directory of the engine checkout
	EngineRoot string `json:"engineRoot"`

	// WorkingDir overrides the working directory for the spawned command.
	// When empty the directory containing the .uproject is used.
	WorkingDir string `json:"workingDir,omitempty"`
}

// Validate checks that the request carries every required field.
// Path existence is deliberately not checked here; an unresolvable
// command surfaces as a launch failure when the run starts.
func (r BuildRequest) Validate() error {
	switch r.Operation {
	case OperationBuild, OperationPackage:
	default:
		return fmt.Errorf("invalid operation: %q", r.Operation)
	}
	if _, err := ParseConfiguration(string(r.Configuration)); err != nil {
		return err
	}
	if _, err := ParsePlatform(string(r.Platform)); err != nil {
		return err
	}
	if r.ProjectPath == "" {
		return fmt.Errorf("project path is required")
	}
	if r.EngineRoot == "" {
		return fmt.Errorf("engine root is required")
	}
	if r.Operation == OperationBuild && r.ProjectName == "" {
		return fmt.Errorf("project name is required for build")
	}
	return nil
}

// ProjectDir returns the directory containing the .uproject file
func (r BuildRequest) ProjectDir() string {
	return filepath.Dir(r.ProjectPath)
}

// ExecutionState is the snapshot of one engine instance as observed by a
// caller. Snapshots are copies; mutating one never affects the engine.
type ExecutionState struct {
	// RunID identifies the current (or most recent) run
	RunID string `json:"runId,omitempty"`

	// Operation of the current or most recent run
	Operation Operation `json:"operation,omitempty"`

	Phase Phase `json:"phase"`

	// Progress is the last parsed fraction in [0, 1]. It resets to 0 on
	// Start and is otherwise last-value-wins: readers must not assume it
	// is monotonic, only that the log length is.
	Progress float64 `json:"progress"`

	// Log holds captured output lines in arrival order, cleared on Start
	Log []string `json:"log"`

	// ExitInfo is non-nil only in terminal phases
	ExitInfo *ExitInfo `json:"exitInfo,omitempty"`

	StartedAt  time.Time `json:"startedAt,omitempty"`
	FinishedAt time.Time `json:"finishedAt,omitempty"`
}

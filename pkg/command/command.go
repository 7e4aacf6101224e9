// Package command assembles UBT and UAT invocations from build requests
package command

import (
	"fmt"
	"path/filepath"
	"runtime"

	"github.com/ueforge/ueforge/pkg/types"
)

// Invocation is a fully resolved external command: program, argument
// vector and working directory. The runner treats the program as opaque;
// an unresolvable path surfaces as a launch failure.
type Invocation struct {
	Program string
	Args    []string
	Dir     string
}

// String renders the invocation for logging
func (inv Invocation) String() string {
	return fmt.Sprintf("%s %v (in %s)", inv.Program, inv.Args, inv.Dir)
}

// buildScript returns the platform-specific UBT wrapper script name,
// relative to Engine/Build/BatchFiles.
func buildScript() string {
	switch runtime.GOOS {
	case "windows":
		return "Build.bat"
	case "darwin":
		return filepath.Join("Mac", "Build.sh")
	default:
		return filepath.Join("Linux", "Build.sh")
	}
}

// uatScript returns the platform-specific RunUAT wrapper script name.
func uatScript() string {
	if runtime.GOOS == "windows" {
		return "RunUAT.bat"
	}
	return "RunUAT.sh"
}

func batchFilesDir(engineRoot string) string {
	return filepath.Join(engineRoot, "Engine", "Build", "BatchFiles")
}

// Resolve produces the invocation for a request. The request must already
// be validated; Resolve does not check path existence.
func Resolve(req types.BuildRequest) Invocation {
	if req.Operation == types.OperationPackage {
		return resolvePackage(req)
	}
	return resolveBuild(req)
}

// resolveBuild drives UBT directly: Build.bat <Target> <Platform>
// <Configuration> <uproject> -waitmutex.
func resolveBuild(req types.BuildRequest) Invocation {
	return Invocation{
		Program: filepath.Join(batchFilesDir(req.EngineRoot), buildScript()),
		Args: []string{
			req.ProjectName,
			string(req.Platform),
			string(req.Configuration),
			req.ProjectPath,
			"-waitmutex",
		},
		Dir: workingDir(req),
	}
}

// resolvePackage drives UAT's BuildCookRun pipeline: cook, build, stage
// and package into <projectDir>/Builds.
func resolvePackage(req types.BuildRequest) Invocation {
	stagingDir := filepath.Join(req.ProjectDir(), "Builds")
	return Invocation{
		Program: filepath.Join(batchFilesDir(req.EngineRoot), uatScript()),
		Args: []string{
			"BuildCookRun",
			fmt.Sprintf("-project=%s", req.ProjectPath),
			"-noP4",
			fmt.Sprintf("-platform=%s", req.Platform),
			fmt.Sprintf("-clientconfig=%s", req.Configuration),
			fmt.Sprintf("-serverconfig=%s", req.Configuration),
			"-nocompileeditor",
			"-cook",
			"-allmaps",
			"-build",
			"-CookCultures=en",
			"-unversionedcookedcontent",
			"-stage",
			"-package",
			fmt.Sprintf("-stagingdirectory=%s", stagingDir),
		},
		Dir: workingDir(req),
	}
}

func workingDir(req types.BuildRequest) string {
	if req.WorkingDir != "" {
		return req.WorkingDir
	}
	return req.ProjectDir()
}

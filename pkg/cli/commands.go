package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ueforge/ueforge/pkg/config"
	"github.com/ueforge/ueforge/pkg/project"
	"github.com/ueforge/ueforge/pkg/types"
)

type runFlags struct {
	platform      string
	configuration string
	engineRoot    string
	noNotify      bool
}

func (f *runFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.platform, "platform", "p", "", "target platform (Win64, Linux, Mac, ...)")
	cmd.Flags().StringVarP(&f.configuration, "configuration", "c", "", "build configuration (Debug, Development, Shipping)")
	cmd.Flags().StringVar(&f.engineRoot, "engine", "", "engine root override")
	cmd.Flags().BoolVar(&f.noNotify, "no-notify", false, "suppress the desktop notification")
}

func newBuildCmd() *cobra.Command {
	flags := &runFlags{}
	cmd := &cobra.Command{
		Use:   "build [project]",
		Short: "Build a project with Unreal Build Tool",
		Long: `Run UBT for a project: ueforge build MyGame, or pass the path to a
.uproject file to build (and remember) a project not yet known.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOperation(types.OperationBuild, argOrEmpty(args), flags)
		},
	}
	flags.register(cmd)
	return cmd
}

func newPackageCmd() *cobra.Command {
	flags := &runFlags{}
	cmd := &cobra.Command{
		Use:   "package [project]",
		Short: "Cook, stage and package a project with UAT",
		Long: `Run UAT BuildCookRun for a project, staging the result into the
project's Builds directory. Only available for projects bound to a
source-built engine.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOperation(types.OperationPackage, argOrEmpty(args), flags)
		},
	}
	flags.register(cmd)
	return cmd
}

func newWatchCmd() *cobra.Command {
	flags := &runFlags{}
	cmd := &cobra.Command{
		Use:   "watch [project]",
		Short: "Rebuild a project whenever its sources change",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWatch(argOrEmpty(args), flags)
		},
	}
	flags.register(cmd)
	return cmd
}

func newProjectsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "projects",
		Short: "Manage known projects",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List known projects",
			RunE: func(cmd *cobra.Command, args []string) error {
				return runProjectsList()
			},
		},
		&cobra.Command{
			Use:   "add <uproject>",
			Short: "Record a project by its .uproject path",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return runProjectsAdd(args[0])
			},
		},
	)
	return cmd
}

func newEngineCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "engine",
		Short: "Manage the engine location",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "show",
			Short: "Show the recorded engine location",
			RunE: func(cmd *cobra.Command, args []string) error {
				return runEngineShow()
			},
		},
		&cobra.Command{
			Use:   "set <path>",
			Short: "Record the engine location (root directory or UE5.sln)",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return runEngineSet(args[0])
			},
		},
	)
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("⚒ UEForge v%s\n", version)
		},
	}
}

func argOrEmpty(args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return ""
}

// openStore loads the tool config and opens the project store
func openStore() (*config.Config, *project.Store, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}
	store, err := project.NewStore(cfg.StateDir)
	if err != nil {
		return nil, nil, err
	}
	return cfg, store, nil
}

// resolveProject maps the command argument onto a recorded project. A path
// to a .uproject is loaded and remembered; a bare name is looked up; an
// empty argument resolves only when exactly one project is known.
func resolveProject(store *project.Store, arg string) (project.Project, error) {
	if strings.EqualFold(filepath.Ext(arg), ".uproject") {
		abs, err := filepath.Abs(arg)
		if err != nil {
			return project.Project{}, err
		}
		return store.Add(abs)
	}
	if arg != "" {
		return store.Find(arg)
	}

	projects, err := store.Projects()
	if err != nil {
		return project.Project{}, err
	}
	switch len(projects) {
	case 0:
		return project.Project{}, fmt.Errorf("no projects recorded; run 'ueforge projects add <uproject>'")
	case 1:
		return projects[0], nil
	default:
		return project.Project{}, fmt.Errorf("multiple projects recorded; name one explicitly")
	}
}

// resolveRequest assembles the build request from project, store, config
// and flags
func resolveRequest(op types.Operation, arg string, flags *runFlags) (types.BuildRequest, *config.Config, error) {
	cfg, store, err := openStore()
	if err != nil {
		return types.BuildRequest{}, nil, err
	}

	proj, err := resolveProject(store, arg)
	if err != nil {
		return types.BuildRequest{}, nil, err
	}
	if op == types.OperationPackage && !proj.FromSource() {
		return types.BuildRequest{}, nil, fmt.Errorf(
			"packaging requires a source-built engine; %s is bound to %q", proj.Name, proj.EngineVersion)
	}

	engineRoot := flags.engineRoot
	if engineRoot == "" {
		engineRoot = cfg.EngineRoot
	}
	if engineRoot == "" {
		eng, err := store.Engine()
		if err != nil {
			return types.BuildRequest{}, nil, err
		}
		engineRoot = eng.Root()
	}
	if engineRoot == "" {
		return types.BuildRequest{}, nil, fmt.Errorf("no engine location; run 'ueforge engine set <path>'")
	}

	platform := cfg.DefaultPlatform
	if flags.platform != "" {
		platform, err = types.ParsePlatform(flags.platform)
		if err != nil {
			return types.BuildRequest{}, nil, err
		}
	}
	configuration := cfg.DefaultConfiguration
	if flags.configuration != "" {
		configuration, err = types.ParseConfiguration(flags.configuration)
		if err != nil {
			return types.BuildRequest{}, nil, err
		}
	}

	return types.BuildRequest{
		Operation:     op,
		Configuration: configuration,
		Platform:      platform,
		ProjectName:   proj.Name,
		ProjectPath:   proj.Location,
		EngineRoot:    engineRoot,
	}, cfg, nil
}

func runProjectsList() error {
	_, store, err := openStore()
	if err != nil {
		return err
	}
	projects, err := store.Projects()
	if err != nil {
		return err
	}
	if len(projects) == 0 {
		printInfo("no projects recorded")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tENGINE\tPLUGINS\tLOCATION")
	for _, proj := range projects {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
			proj.Name, proj.EngineVersion, strings.Join(proj.Plugins, ", "), proj.Location)
	}
	return w.Flush()
}

func runProjectsAdd(path string) error {
	_, store, err := openStore()
	if err != nil {
		return err
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	proj, err := store.Add(abs)
	if err != nil {
		return err
	}
	printSuccess(fmt.Sprintf("recorded %s (engine: %s)", proj.Name, proj.EngineVersion))
	return nil
}

func runEngineShow() error {
	_, store, err := openStore()
	if err != nil {
		return err
	}
	eng, err := store.Engine()
	if err != nil {
		return err
	}
	if eng.Location == "" {
		printInfo("no engine location recorded")
		return nil
	}
	printInfo(fmt.Sprintf("engine: %s (root: %s)", eng.Location, eng.Root()))
	return nil
}

func runEngineSet(path string) error {
	_, store, err := openStore()
	if err != nil {
		return err
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	if err := store.SaveEngine(project.Engine{Location: abs}); err != nil {
		return err
	}
	printSuccess(fmt.Sprintf("engine location saved: %s", abs))
	return nil
}

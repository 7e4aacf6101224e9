// Package cli provides the command-line interface for UEForge
package cli

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ueforge/ueforge/pkg/config"
)

var (
	cfgFile   string
	verbosity string
	version   string
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "ueforge",
	Short: "Headless Unreal Engine build and package runner",
	Long: `⚒ UEForge - drive Unreal Build Tool and UAT from the terminal

UEForge launches UBT and UAT invocations for your projects, streams their
output, and tracks a normalized progress fraction parsed from the build log.`,

	Run: func(cmd *cobra.Command, args []string) {
		if v, _ := cmd.Flags().GetBool("version"); v {
			fmt.Printf("⚒ UEForge v%s\n", version)
			return
		}
		cmd.Help()
	},
}

// Execute runs the CLI
func Execute(v string) error {
	version = v
	initializeRootCommand()
	return rootCmd.Execute()
}

// initializeRootCommand sets up the root command and its flags.
// Initialization is explicit rather than via init() so tests can rebuild
// the command tree.
func initializeRootCommand() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ueforge.config.json)")
	rootCmd.PersistentFlags().StringVarP(&verbosity, "verbosity", "v", "", "log level (debug, info, warn, error)")

	rootCmd.Flags().Bool("version", false, "Print version information and quit")

	rootCmd.AddCommand(newBuildCmd())
	rootCmd.AddCommand(newPackageCmd())
	rootCmd.AddCommand(newWatchCmd())
	rootCmd.AddCommand(newProjectsCmd())
	rootCmd.AddCommand(newEngineCmd())
	rootCmd.AddCommand(newVersionCmd())
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName("ueforge.config")
		viper.SetConfigType("json")
	}

	viper.SetEnvPrefix("UEFORGE")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		if verbosity == "debug" {
			fmt.Println("Using config file:", viper.ConfigFileUsed())
		}
	}
}

// loadConfig resolves the effective tool configuration: config file when
// one was found, defaults otherwise, with flag and env overrides applied.
func loadConfig() (*config.Config, error) {
	cfg := config.Default()
	if used := viper.ConfigFileUsed(); used != "" {
		loaded, err := config.Load(used)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	if root := viper.GetString("engine_root"); root != "" {
		cfg.EngineRoot = root
	}
	if verbosity != "" {
		cfg.LogLevel = verbosity
	}
	return cfg, nil
}

// Helper functions

func printSuccess(message string) {
	fmt.Printf("⚒ %s %s\n", color.GreenString("[UEForge]"), message)
}

func printError(message string) {
	fmt.Fprintf(os.Stderr, "⚒ %s %s\n", color.RedString("[UEForge]"), message)
}

func printInfo(message string) {
	fmt.Printf("⚒ %s %s\n", color.CyanString("[UEForge]"), message)
}

func printWarning(message string) {
	fmt.Printf("⚒ %s %s\n", color.YellowString("[UEForge]"), message)
}

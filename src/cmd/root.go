package cmd

import (
	"errors"
	"os"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"idesync/src/internal/appdir"
	"idesync/src/internal/idea"
	"idesync/src/internal/poetry"
	"idesync/src/internal/telemetry"
)

var (
	cfgFile     string
	profileFlag bool
	verboseFlag bool
)

var rootCmd = &cobra.Command{
	Use:   "idesync [project-path]",
	Short: "idesync points JetBrains IDEs at a project's Poetry interpreter",
	Long: `idesync resolves the Python interpreter of the project's Poetry virtual
environment and writes it into .idea/misc.xml as the project SDK, so
PyCharm and IntelliJ IDEA run the code with the same interpreter Poetry
does. Running idesync without a subcommand is the same as "idesync sync".`,
	Args:          cobra.MaximumNArgs(1),
	RunE:          runSync,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if profileFlag {
			if _, err := telemetry.Start(appdir.ProfileDir()); err != nil {
				pterm.Warning.Printf("Failed to start profiling session: %v\n", err)
			}
		}
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if profileFlag {
			if info, err := telemetry.Stop(); err == nil && info.LogPath != "" {
				pterm.Info.Printf("Profile written to %s\n", info.LogPath)
			}
		}
	},
}

// Exit codes are part of the CLI contract: scripts distinguish failure
// categories without parsing console output.
const (
	exitGeneric     = 1
	exitEnvNotFound = 2
	exitInterpreter = 3
	exitNoProject   = 4
	exitConfigParse = 5
	exitConfigWrite = 6
)

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		pterm.Error.Printf("%v\n", err)
		os.Exit(exitCode(err))
	}
}

func exitCode(err error) int {
	switch {
	case errors.Is(err, poetry.ErrEnvironmentNotFound):
		return exitEnvNotFound
	case errors.Is(err, poetry.ErrInterpreterInvalid):
		return exitInterpreter
	case errors.Is(err, idea.ErrProjectNotFound):
		return exitNoProject
	case errors.Is(err, idea.ErrConfigParse):
		return exitConfigParse
	case errors.Is(err, idea.ErrConfigWrite):
		return exitConfigWrite
	}
	return exitGeneric
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is "+appdir.ConfigFile()+")")
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().BoolVar(&profileFlag, "profile", false, "Record a trace and CPU profile for this run")
	_ = rootCmd.PersistentFlags().MarkHidden("profile")
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(appdir.MustHome())
		viper.SetConfigName("config")
	}

	viper.SetDefault("poetry_path", "poetry")
	viper.SetDefault("resolve_timeout_ms", 5000)
	viper.SetDefault("backup", true)
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		// Config file found and read
	}
}

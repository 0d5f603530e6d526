package cmd

import (
	"os"
	"time"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"idesync/src/internal/poetry"
	"idesync/src/internal/setup"
)

var (
	dryRunFlag bool
	forceFlag  bool
)

var syncCmd = &cobra.Command{
	Use:   "sync [project-path]",
	Short: "Write the Poetry interpreter into .idea/misc.xml",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runSync,
}

func runSync(cmd *cobra.Command, args []string) error {
	orch := setup.New()
	orch.Resolver = newResolver()
	orch.Patcher.Backup = viper.GetBool("backup")

	result, err := orch.Run(cmd.Context(), setup.Options{
		ProjectPath: targetPath(args),
		DryRun:      dryRunFlag,
		Force:       forceFlag,
		Verbose:     verboseFlag,
	})
	if err != nil {
		return err
	}

	report := result.Report
	if dryRunFlag {
		if !report.Changed {
			pterm.Success.Printf("Dry run: %s already up to date (%s)\n", result.ConfigFile, report.NewSDK)
			return nil
		}
		pterm.Info.Printf("Dry run: would update %s\n", result.ConfigFile)
		if report.PreviousSDK != "" {
			pterm.Info.Printf("  %s -> %s\n", report.PreviousSDK, report.NewSDK)
		} else {
			pterm.Info.Printf("  new project SDK: %s\n", report.NewSDK)
		}
		return nil
	}

	if !report.Changed {
		pterm.Success.Printf("Already up to date (%s)\n", report.NewSDK)
		return nil
	}
	pterm.Success.Printf("Project SDK set to %s\n", report.NewSDK)
	pterm.Info.Printf("Interpreter: %s\n", result.Interpreter.Path)
	if report.BackupPath != "" {
		pterm.Info.Printf("Backup written to %s\n", report.BackupPath)
	}
	return nil
}

func newResolver() *poetry.Resolver {
	r := poetry.NewResolver()
	if p := viper.GetString("poetry_path"); p != "" {
		r.Poetry = p
	}
	if ms := viper.GetInt("resolve_timeout_ms"); ms > 0 {
		r.Timeout = time.Duration(ms) * time.Millisecond
	}
	return r
}

func targetPath(args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	wd, _ := os.Getwd()
	return wd
}

func init() {
	for _, c := range []*cobra.Command{rootCmd, syncCmd} {
		c.Flags().BoolVar(&dryRunFlag, "dry-run", false, "Show what would change without writing anything")
		c.Flags().BoolVar(&forceFlag, "force", false, "Rewrite the configuration even when it already matches")
	}
	rootCmd.AddCommand(syncCmd)
}

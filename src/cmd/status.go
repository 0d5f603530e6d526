package cmd

import (
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"idesync/src/internal/idea"
)

var statusCmd = &cobra.Command{
	Use:   "status [project-path]",
	Short: "Show the configured project SDK and the resolved Poetry interpreter",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		project, err := idea.Locate(targetPath(args))
		if err != nil {
			return err
		}

		current, err := idea.CurrentSDK(project.MetadataDir)
		if err != nil {
			return err
		}
		if current == "" {
			pterm.Warning.Printf("%s: no project SDK configured\n", project.Name)
		} else {
			pterm.Info.Printf("%s: configured SDK is %s\n", project.Name, current)
		}

		resolved, err := newResolver().Resolve(cmd.Context(), project.Root)
		if err != nil {
			return err
		}
		pterm.Info.Printf("Poetry interpreter: %s\n", resolved.Path)

		target := idea.SDKName(resolved.EnvID)
		if current == target {
			pterm.Success.Println("In sync")
		} else {
			pterm.Warning.Printf("Out of sync; run `idesync sync` to set %s\n", target)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

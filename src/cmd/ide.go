package cmd

import (
	"fmt"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"idesync/src/internal/ide"
)

var ideCmd = &cobra.Command{
	Use:   "ide",
	Short: "Inspect JetBrains IDE installations on this machine",
}

var ideListCmd = &cobra.Command{
	Use:   "list",
	Short: "List installed JetBrains IDEs and their SDK tables",
	RunE: func(cmd *cobra.Command, args []string) error {
		installs, err := ide.FindInstallations()
		if err != nil {
			return err
		}
		if len(installs) == 0 {
			pterm.Info.Println("No JetBrains installations found")
			return nil
		}
		for _, in := range installs {
			fmt.Printf("%s\t%s\t%s\n", in.Product, in.Version, in.SDKTable)
		}
		return nil
	},
}

var ideDetectCmd = &cobra.Command{
	Use:   "detect",
	Short: "Detect whether idesync is running inside a JetBrains IDE",
	Run: func(cmd *cobra.Command, args []string) {
		rt := ide.DetectRuntime()
		switch {
		case rt.Product != "":
			pterm.Success.Printf("Running inside %s\n", rt.Product)
		case rt.Hosted:
			pterm.Info.Println("PYCHARM_HOSTED is set but the IDE could not be identified")
		default:
			pterm.Info.Println("Not running inside a JetBrains IDE")
		}
	},
}

func init() {
	ideCmd.AddCommand(ideListCmd)
	ideCmd.AddCommand(ideDetectCmd)
	rootCmd.AddCommand(ideCmd)
}

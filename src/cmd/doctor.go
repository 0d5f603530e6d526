package cmd

import (
	"fmt"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"idesync/src/internal/idea"
	"idesync/src/internal/poetry"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor [project-path]",
	Short: "Check Poetry and IDE project health",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := targetPath(args)
		resolver := newResolver()
		problems := 0

		if resolver.IsAvailable(cmd.Context()) {
			pterm.Success.Println("poetry is on PATH")
		} else {
			pterm.Error.Println("poetry is not on PATH")
			problems++
		}

		if poetry.IsPoetryProject(path) {
			pterm.Success.Println("pyproject.toml declares [tool.poetry]")
		} else {
			pterm.Warning.Println("no pyproject.toml with a [tool.poetry] section")
		}

		project, err := idea.Locate(path)
		if err != nil {
			pterm.Error.Printf("%v\n", err)
			problems++
		} else {
			pterm.Success.Printf(".idea directory found (project %s)\n", project.Name)
			if !project.IsPythonProject() {
				pterm.Warning.Println("project metadata does not look like a Python project")
			}

			current, sdkErr := idea.CurrentSDK(project.MetadataDir)
			switch {
			case sdkErr != nil:
				pterm.Error.Printf("misc.xml is unreadable: %v\n", sdkErr)
				problems++
			case current == "":
				pterm.Warning.Println("no project SDK configured yet")
			default:
				pterm.Success.Printf("configured SDK: %s\n", current)
			}
		}

		resolved, resErr := resolver.Resolve(cmd.Context(), path)
		if resErr != nil {
			pterm.Error.Printf("%v\n", resErr)
			problems++
		} else {
			pterm.Success.Printf("interpreter: %s\n", resolved.Path)
			if version, vErr := resolver.PythonVersion(cmd.Context(), resolved.Path); vErr == nil {
				pterm.Success.Printf("python version: %s\n", version)
			}
		}

		if problems > 0 {
			return fmt.Errorf("doctor found %d problem(s)", problems)
		}
		pterm.Success.Println("Everything looks healthy")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(doctorCmd)
}

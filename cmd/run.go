package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/studyloop/internal/app"
)

// runApp builds dependencies and launches the TUI.
func runApp(cmd *cobra.Command, opts app.Options) error {
	return withDeps(cmd, func(ctx context.Context, d *app.Deps) error {
		return app.Run(ctx, d, opts)
	})
}

var quizCmd = &cobra.Command{
	Use:   "quiz <file>",
	Short: "Upload a document and start a quiz",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		exportDir, _ := cmd.Flags().GetString("export-dir")
		return runApp(cmd, app.Options{Path: args[0], ExportDir: exportDir})
	},
}

var resumeCmd = &cobra.Command{
	Use:   "resume",
	Short: "Continue the last saved session",
	RunE: func(cmd *cobra.Command, args []string) error {
		exportDir, _ := cmd.Flags().GetString("export-dir")
		return withDeps(cmd, func(ctx context.Context, d *app.Deps) error {
			ok, err := d.Engine.Restore(ctx)
			if err != nil {
				return err
			}
			if !ok {
				fmt.Fprintln(cmd.OutOrStdout(), "No saved session. Run `studyloop quiz <file>` to start one.")
				return nil
			}
			return app.Run(ctx, d, app.Options{ExportDir: exportDir})
		})
	},
}

func init() {
	quizCmd.Flags().String("export-dir", "", "Directory for session exports (default current directory)")
	resumeCmd.Flags().String("export-dir", "", "Directory for session exports (default current directory)")
}

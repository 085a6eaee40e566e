package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/abhisek/studyloop/internal/app"
	"github.com/abhisek/studyloop/internal/config"
	"github.com/abhisek/studyloop/internal/session"
)

var generateCmd = &cobra.Command{
	Use:   "generate <file>",
	Short: "Generate questions from a document and print them as JSON",
	Long: "Generate questions from a document without opening the TUI. The session is " +
		"saved, so `studyloop resume` continues from it.",
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		num, _ := cmd.Flags().GetInt("num")
		mock, _ := cmd.Flags().GetBool("mock")

		override := func(c *config.Config) {
			if num > 0 {
				c.Generation.NumQuestions = num
			}
			if mock {
				c.Generation.Backend = config.BackendMock
			}
		}

		return withDeps(cmd, func(ctx context.Context, d *app.Deps) error {
			if _, err := d.Uploader.Run(ctx, args[0]); err != nil {
				return err
			}
			x, err := d.Engine.Export(time.Now())
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(x)
		}, override)
	},
}

var exportCmd = &cobra.Command{
	Use:   "export [path]",
	Short: "Write the saved session to a JSON file",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDeps(cmd, func(ctx context.Context, d *app.Deps) error {
			ok, err := d.Engine.Restore(ctx)
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("no saved session to export")
			}
			x, err := d.Engine.Export(time.Now())
			if err != nil {
				return err
			}

			path := session.ExportFileName(x.Session.ID)
			if len(args) == 1 {
				path = args[0]
			}
			if err := x.WriteFile(path); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Exported %d questions (%d answered, %d%% correct) to %s\n",
				x.Summary.Total, x.Summary.Answered, x.Summary.Accuracy, path)
			return nil
		})
	},
}

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete the saved session",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDeps(cmd, func(ctx context.Context, d *app.Deps) error {
			d.Engine.ClearCache(ctx)
			fmt.Fprintln(cmd.OutOrStdout(), "Saved session cleared.")
			return nil
		})
	},
}

func init() {
	generateCmd.Flags().IntP("num", "n", 0, "Number of questions (default from config)")
	generateCmd.Flags().Bool("mock", false, "Use the offline question generator")
}

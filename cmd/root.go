package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/abhisek/studyloop/internal/app"
)

var rootCmd = &cobra.Command{
	Use:   "studyloop",
	Short: "Turn your notes into a quiz",
	Long:  "StudyLoop reads a PDF or text document, generates questions from it and quizzes you in the terminal.",
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runApp(cmd, app.Options{})
	},
}

func Execute() error {
	return rootCmd.ExecuteContext(context.Background())
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "Path to a config file (default ./studyloop.yaml)")
	rootCmd.PersistentFlags().String("env-file", "", "Path to a .env file (default ./.env)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Log to stderr instead of the log file")

	rootCmd.AddCommand(quizCmd)
	rootCmd.AddCommand(resumeCmd)
	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(clearCmd)
	rootCmd.AddCommand(llmCmd)
	rootCmd.AddCommand(versionCmd)
}

package cli

import (
	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	"github.com/datar-psa/answereval/internal/bootstrap"
	"github.com/datar-psa/answereval/internal/mcptool"
)

//nolint:gochecknoglobals // Cobra boilerplate
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve the evaluate_answer tool over MCP stdio",
	RunE:  runMCP,
}

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.AddCommand(mcpCmd)
}

func runMCP(cmd *cobra.Command, _ []string) (err error) {
	app, err := loadApp(cmd.Context(), bootstrap.Options{SkipMetrics: true})
	if err != nil {
		return err
	}
	defer app.Close()

	return server.ServeStdio(mcptool.NewServer(app.Evaluator, Version))
}

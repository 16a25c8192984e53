package cli

import (
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/datar-psa/answereval/internal/bootstrap"
	"github.com/datar-psa/answereval/internal/server"
)

//nolint:gochecknoglobals // Cobra boilerplate
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the evaluation HTTP API",
	Long: `Starts the HTTP API:

  POST   /api/v1/evaluations    evaluate an answer
  POST   /api/v1/circuit/reset  retry the remote judge
  GET    /api/v1/health         judge and circuit status
  GET    /api/v1/usage          remote token usage
  DELETE /api/v1/usage          reset usage totals
  GET    /metrics               Prometheus metrics`,
	RunE: runServe,
}

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) (err error) {
	app, err := loadApp(cmd.Context(), bootstrap.Options{})
	if err != nil {
		return err
	}
	defer app.Close()

	httpApp := server.NewApp(server.NewHandler(app.Evaluator, app.Usage, app.Logger))

	go func() {
		stop := make(chan os.Signal, 1)
		signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
		<-stop
		app.Logger.Info().Msg("shutting down")
		if err := httpApp.ShutdownWithTimeout(10 * time.Second); err != nil {
			app.Logger.Error().Err(err).Msg("graceful shutdown failed")
		}
	}()

	addr := app.Config.HTTPAddress()
	app.Logger.Info().Str("addr", addr).Msg("listening")
	return httpApp.Listen(addr)
}

package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ppiankov/factlens/internal/pipeline"
	"github.com/ppiankov/factlens/internal/server"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	serveHost string
	servePort int
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the analysis API over HTTP",
	Long: `Serve exposes the analysis pipeline as a JSON API. The server holds a
single analysis session: a second submission while one is running is
rejected with 409 Conflict.

Endpoints:
  POST   /api/v1/analyze    submit text, a URL or a file (JSON or multipart)
  GET    /api/v1/session    current session state
  DELETE /api/v1/session    reset the session
  POST   /api/v1/report     render a result as pdf, markdown or html
  GET    /api/v1/history    recent analyses
  DELETE /api/v1/history    clear history
  GET    /health

Example:
  factlens serve --port 8080`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serveHost, "host", "", "listen address (default: server.host)")
	serveCmd.Flags().IntVar(&servePort, "port", 0, "listen port (default: server.port)")
	serveCmd.Flags().BoolVar(&fetchPage, "fetch", false, "prefetch the page behind bare URLs")
	serveCmd.Flags().BoolVar(&checkLinks, "links", false, "check evidence links after analysis")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := commandConfig()
	if err != nil {
		return err
	}
	applyRunFlags(cmd, cfg)
	if serveHost != "" {
		cfg.Server.Host = serveHost
	}
	if servePort != 0 {
		cfg.Server.Port = servePort
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	srv := server.NewServer(pipeline.NewSession(a.pipeline), a.history, &cfg.Server, a.logger)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()
	fmt.Fprintf(os.Stderr, "Listening on http://%s:%d\n", cfg.Server.Host, cfg.Server.Port)

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	a.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Stop(shutdownCtx); err != nil {
		a.logger.Warn("shutdown", zap.Error(err))
		return err
	}
	return <-errCh
}

package cmd

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"bakerypay/config"
	"bakerypay/web"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the payroll upload and report HTTP API",
	Long: `Start a local HTTP server.

Endpoints:
- POST   /api/payroll/upload         multipart form, one or more "file" parts
- GET    /api/branches
- GET    /api/periods?branch=
- GET    /api/periods/{id}/entries
- DELETE /api/periods/{id}
- GET    /api/summary?branch=&from=&to=
- GET    /api/files?search=
- GET    /files/{bucket}/{name}      stored workbook download`,
	Example: `
  # Start on the configured port
  bakerypay serve

  # Start on a custom port
  bakerypay serve --port 9090
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadAndValidate()
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("port") {
			applyServePort(cfg, servePort)
		}
		port := cfg.Server.Port

		a, err := openApp(cfg)
		if err != nil {
			return err
		}
		defer a.Close()

		server := &http.Server{
			Addr:              fmt.Sprintf(":%d", port),
			Handler:           web.NewServer(a.gateway, a.service, a.logger),
			ReadHeaderTimeout: 10 * time.Second,
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		listener, err := net.Listen("tcp", server.Addr)
		if err != nil {
			return fmt.Errorf("listen on %s: %w", server.Addr, err)
		}
		fmt.Printf("Listening on http://localhost:%d\n", port)
		a.logger.Info("payroll api started", "addr", server.Addr, "bucket", a.cfg.Storage.Bucket)

		return runServer(ctx, server, listener)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().IntVar(&servePort, "port", 8080, "HTTP port (overrides server.port from config)")
}

// applyServePort overrides the configured port. A public URL derived from the old port
// moves with it; an explicitly configured one is kept.
func applyServePort(cfg *config.Config, port int) {
	if cfg.Storage.PublicURL == config.DefaultPublicURL(cfg.Server.Port) {
		cfg.Storage.PublicURL = config.DefaultPublicURL(port)
	}
	cfg.Server.Port = port
}

// runServer serves until ctx is done and then shuts the server down gracefully.
func runServer(ctx context.Context, server *http.Server, listener net.Listener) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Serve(listener)
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown server: %w", err)
		}
		err := <-errCh
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

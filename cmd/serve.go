package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/gatewise/gatekeeper/internal/config"
	"github.com/gatewise/gatekeeper/internal/metrics"
	"github.com/gatewise/gatekeeper/internal/token"
	"github.com/gatewise/gatekeeper/internal/verify"
	"github.com/gatewise/gatekeeper/internal/web"
	"github.com/gatewise/gatekeeper/internal/web/handlers"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the gate verification server",
	Long: `Start the gatekeeper HTTP server.
The server issues QR gate passes, enrolls face embeddings and runs
two-factor verification. A background sweeper removes expired passes.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().Int("port", 8080, "Port to listen on")
	serveCmd.Flags().String("host", "0.0.0.0", "Host to bind to")
	serveCmd.Flags().Bool("index", false, "Build an HNSW index over enrolled embeddings")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := config.Load()
	ctx := context.Background()

	st, closeStore, err := buildStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	registry, closeRegistry, err := buildRegistry(cfg)
	if err != nil {
		return err
	}
	defer closeRegistry()

	engine := buildEngine(cfg, st)
	if mustGetBool(cmd, "index") || cfg.Match.HNSW {
		if err := engine.EnableIndex(ctx); err != nil {
			fmt.Printf("Warning: failed to build HNSW index: %v\n", err)
			fmt.Println("Identification will use a linear scan (slower)")
		} else {
			fmt.Printf("HNSW index built with %d embeddings\n", engine.IndexCount())
		}
	}

	tokenService := token.NewService(registry, cfg.Token.TTL)
	m := metrics.New(prometheus.DefaultRegisterer)
	orchestrator := verify.NewOrchestrator(tokenService, engine, m)

	sweeper := token.NewSweeper(tokenService, cfg.Token.SweepInterval)
	sweeper.Start()
	defer sweeper.Stop()

	port := mustGetInt(cmd, "port")
	host := mustGetString(cmd, "host")

	server := web.NewServer(port, host, handlers.Deps{
		Enroller: engine,
		Issuer:   tokenService,
		Verifier: orchestrator,
		Metrics:  m,
	})

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		fmt.Println("\nShutting down...")

		shutdownCtx, shutdownCancel := context.WithTimeout(ctx, 30*time.Second)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			fmt.Printf("Error during shutdown: %v\n", err)
		}
	}()

	fmt.Printf("Starting gatekeeper on http://%s:%d\n", host, port)
	fmt.Println("Press Ctrl+C to stop")

	if err := server.Start(); err != nil {
		return fmt.Errorf("starting server: %w", err)
	}
	return nil
}

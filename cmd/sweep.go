package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gatewise/gatekeeper/internal/config"
	"github.com/gatewise/gatekeeper/internal/token"
)

var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Remove expired gate passes from the token registry",
	RunE:  runSweep,
}

func init() {
	rootCmd.AddCommand(sweepCmd)
}

func runSweep(cmd *cobra.Command, args []string) error {
	cfg := config.Load()
	ctx := context.Background()

	registry, closeRegistry, err := buildRegistry(cfg)
	if err != nil {
		return err
	}
	defer closeRegistry()

	service := token.NewService(registry, cfg.Token.TTL)
	removed, err := service.Sweep(ctx)
	if err != nil {
		return fmt.Errorf("sweeping tokens: %w", err)
	}

	fmt.Printf("Removed %d expired gate passes\n", removed)
	return nil
}

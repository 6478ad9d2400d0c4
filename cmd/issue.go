package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gatewise/gatekeeper/internal/config"
	"github.com/gatewise/gatekeeper/internal/facematch"
	"github.com/gatewise/gatekeeper/internal/token"
)

var issueCmd = &cobra.Command{
	Use:   "issue",
	Short: "Issue a gate pass and print its QR content",
	RunE:  runIssue,
}

func init() {
	rootCmd.AddCommand(issueCmd)

	issueCmd.Flags().String("identity", "", "Identity key the pass asserts (required)")
	issueCmd.Flags().String("name", "", "Display name shown at the gate")
	_ = issueCmd.MarkFlagRequired("identity")
}

func runIssue(cmd *cobra.Command, args []string) error {
	cfg := config.Load()
	ctx := context.Background()

	registry, closeRegistry, err := buildRegistry(cfg)
	if err != nil {
		return err
	}
	defer closeRegistry()

	service := token.NewService(registry, cfg.Token.TTL)

	identity := facematch.NormalizeIdentityKey(mustGetString(cmd, "identity"))
	t, err := service.Issue(ctx, identity, mustGetString(cmd, "name"))
	if err != nil {
		return fmt.Errorf("issuing gate pass: %w", err)
	}

	content, err := token.EncodeContent(t)
	if err != nil {
		return fmt.Errorf("encoding gate pass: %w", err)
	}

	fmt.Printf("Token ID:  %s\n", t.TokenID)
	fmt.Printf("Identity:  %s\n", t.IdentityKey)
	fmt.Printf("Expires:   %s\n", t.ExpiresAt.Format("2006-01-02 15:04:05 MST"))
	fmt.Printf("QR content:\n%s\n", content)
	return nil
}

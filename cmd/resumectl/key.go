package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"resume-builder/internal/accesskey"
)

var keyCmd = &cobra.Command{
	Use:   "key",
	Short: "Print today's access key",
	RunE:  runKey,
}

var keySubject string

func init() {
	keyCmd.Flags().StringVar(&keySubject, "subject", "cli", "Subject recorded in the key")
	rootCmd.AddCommand(keyCmd)
}

func runKey(cmd *cobra.Command, _ []string) error {
	cfg, _, err := loadConfig()
	if err != nil {
		return err
	}
	if cfg.Access.Secret == "" {
		return fmt.Errorf("ACCESS_KEY_SECRET is not set")
	}
	svc, err := accesskey.NewService(cfg.Access.Secret, cfg.Access.TTL)
	if err != nil {
		return err
	}
	k, err := svc.Issue(keySubject)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), k.Token)
	fmt.Fprintf(cmd.ErrOrStderr(), "expires %s\n", k.ExpiresAt.UTC().Format(time.RFC3339))
	return nil
}

package cli

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/dohigg1/advisory-hub/internal/services"
)

// WebhookCmd returns the webhook command
func WebhookCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "webhook",
		Short: "Sign and verify webhook payloads",
	}
	cmd.AddCommand(webhookSignCmd())
	cmd.AddCommand(webhookVerifyCmd())
	return cmd
}

func readPayload(cmd *cobra.Command, path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(cmd.InOrStdin())
	}
	return os.ReadFile(path)
}

func webhookSignCmd() *cobra.Command {
	var secret string

	cmd := &cobra.Command{
		Use:   "sign <file>",
		Short: "Print the " + services.SignatureHeader + " value for a payload (use - for stdin)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if secret == "" {
				return errors.New("--secret is required")
			}
			body, err := readPayload(cmd, args[0])
			if err != nil {
				return fmt.Errorf("read payload: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), services.Sign(secret, body))
			return nil
		},
	}
	cmd.Flags().StringVar(&secret, "secret", "", "organization webhook secret")
	return cmd
}

func webhookVerifyCmd() *cobra.Command {
	var secret, signature string

	cmd := &cobra.Command{
		Use:   "verify <file>",
		Short: "Check a received signature against a payload (use - for stdin)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if secret == "" || signature == "" {
				return errors.New("--secret and --signature are required")
			}
			body, err := readPayload(cmd, args[0])
			if err != nil {
				return fmt.Errorf("read payload: %w", err)
			}
			if !services.Verify(secret, body, signature) {
				fmt.Fprintln(cmd.OutOrStdout(), color.New(color.FgRed).Sprint("signature mismatch"))
				return errors.New("signature mismatch")
			}
			fmt.Fprintln(cmd.OutOrStdout(), color.New(color.FgGreen).Sprint("signature ok"))
			return nil
		},
	}
	cmd.Flags().StringVar(&secret, "secret", "", "organization webhook secret")
	cmd.Flags().StringVar(&signature, "signature", "", "received "+services.SignatureHeader+" value")
	return cmd
}

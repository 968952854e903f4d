package cli

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/chiclet/backend/internal/infrastructure/payment"
)

func newWebhookCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "webhook",
		Short: "Helpers for testing the Razorpay webhook locally",
	}
	cmd.AddCommand(newWebhookSignCommand())
	return cmd
}

func newWebhookSignCommand() *cobra.Command {
	var secret, file string

	cmd := &cobra.Command{
		Use:   "sign",
		Short: "Print the X-Razorpay-Signature for a payload",
		Long: `Sign reads the exact payload bytes from --file ("-" for stdin) and
prints the hex HMAC-SHA256 the webhook endpoint expects.`,
		Example: `  chicletctl webhook sign --secret "$RAZORPAY_WEBHOOK_SECRET" --file payment_captured.json`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if secret == "" {
				return errors.New("--secret must not be empty")
			}
			payload, err := readPayload(cmd.InOrStdin(), file)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), payment.SignWebhook(secret, payload))
			return err
		},
	}
	cmd.Flags().StringVar(&secret, "secret", "", "webhook secret")
	cmd.Flags().StringVar(&file, "file", "-", "payload file")
	_ = cmd.MarkFlagRequired("secret")
	return cmd
}

func readPayload(stdin io.Reader, file string) ([]byte, error) {
	if file == "-" {
		return io.ReadAll(stdin)
	}
	payload, err := os.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("read payload: %w", err)
	}
	return payload, nil
}

package main

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ticketdesk/cookie-auth/internal/auth"
)

func keygenCmd() *cobra.Command {
	var size int

	cmd := &cobra.Command{
		Use:   "keygen",
		Short: "Print a random base64 signing key for AUTH_JWT_SECRET",
		RunE: func(cmd *cobra.Command, args []string) error {
			secret, err := generateSecret(size)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), secret)
			return nil
		},
	}

	cmd.Flags().IntVarP(&size, "bytes", "b", 64, "Key length in bytes (32 selects HS256, 48 HS384, 64 HS512)")
	return cmd
}

func generateSecret(size int) (string, error) {
	if size < auth.MinKeyBytes {
		return "", fmt.Errorf("key must be at least %d bytes", auth.MinKeyBytes)
	}
	key := make([]byte, size)
	if _, err := rand.Read(key); err != nil {
		return "", fmt.Errorf("read random bytes: %w", err)
	}
	return base64.StdEncoding.EncodeToString(key), nil
}

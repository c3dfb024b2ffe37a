package commands

import (
	"fmt"
	"os"
	"strings"

	"github.com/Erwane/openagenda-api-sub000/internal/constants"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"
)

// Masked replaces secrets in output.
const Masked = "***"

// NewTokenCommand creates the token command.
func NewTokenCommand() *cobra.Command {
	var show bool

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Request a write access token",
		Long: `Exchange the secret key for an access token.

The secret key is read from --secret-key, OPENAGENDA_SECRET_KEY or the config
file, and prompted for when missing on a terminal.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if viper.GetString("secret-key") == "" {
				secret, err := promptSecret(cmd)
				if err != nil {
					return err
				}

				viper.Set("secret-key", secret)
			}

			client, err := newClient(cmd.Context())
			if err != nil {
				return err
			}
			defer client.Close()

			token, err := client.AccessToken(cmd.Context())
			if err != nil {
				return err
			}

			if token == "" {
				return constants.ErrNoTokenReturned
			}

			display := Masked
			if show {
				display = token
			}

			info := map[string]interface{}{
				"access_token": display,
				"base_url":     client.BaseURL(),
			}

			done, err := encode(cmd.OutOrStdout(), info)
			if done || err != nil {
				return err
			}

			table := tablewriter.NewWriter(cmd.OutOrStdout())
			table.Header("Property", "Value")
			_ = table.Append([]string{"Access Token", display})
			_ = table.Append([]string{"Base URL", client.BaseURL()})

			if err := table.Render(); err != nil {
				return fmt.Errorf("failed to render table: %w", err)
			}

			return nil
		},
	}

	cmd.Flags().BoolVar(&show, "show", false, "print the token instead of masking it")

	return cmd
}

func promptSecret(cmd *cobra.Command) (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return "", constants.ErrNoSecretKey
	}

	_, _ = fmt.Fprint(cmd.ErrOrStderr(), "Secret key: ")

	secretBytes, err := term.ReadPassword(fd)

	_, _ = fmt.Fprintln(cmd.ErrOrStderr())

	if err != nil {
		return "", fmt.Errorf("failed to read secret key: %w", err)
	}

	secret := strings.TrimSpace(string(secretBytes))
	if secret == "" {
		return "", constants.ErrNoSecretKey
	}

	return secret, nil
}

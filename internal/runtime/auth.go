package runtime

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/CliForge/pinterest-ads-cli/internal/errs"
	"github.com/CliForge/pinterest-ads-cli/pkg/auth"
	"github.com/CliForge/pinterest-ads-cli/pkg/auth/storage"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// newAuthCmd creates the auth command group.
func (rt *Runtime) newAuthCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Manage stored credentials",
		Long: `Manage credentials.

Credentials are read from flags, PINTEREST_* environment variables and the
config file. An access token saved with "auth set-token" is used when none of
those provide one.`,
	}

	cmd.AddCommand(
		rt.newAuthStatusCmd(),
		rt.newAuthSetTokenCmd(),
		rt.newAuthClearCmd(),
		rt.newAuthRefreshCmd(),
	)
	return cmd
}

// newAuthStatusCmd shows where each credential slot is filled from.
func (rt *Runtime) newAuthStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show which credentials are configured",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			now := time.Now()

			slots := []struct {
				name       string
				flag       string
				envVar     string
				configured string
				stored     bool
			}{
				{"access_token", flagAccessToken, auth.EnvAccessToken, rt.cfg.AccessToken, true},
				{"client_id", flagClientID, auth.EnvClientID, rt.cfg.ClientID, false},
				{"client_secret", flagClientSecret, auth.EnvClientSecret, rt.cfg.ClientSecret, false},
				{"conversion_token", flagConversionToken, auth.EnvConversionToken, rt.cfg.ConversionToken, false},
			}

			rows := make([]any, 0, len(slots))
			for _, slot := range slots {
				opts := []auth.TokenResolverOption{auth.WithConfigToken(slot.configured)}
				if f := rt.rootCmd.PersistentFlags().Lookup(slot.flag); f != nil && f.Changed {
					opts = append(opts, auth.WithFlagToken(f.Value.String()))
				}
				if slot.stored {
					if store, err := rt.tokenStore(); err == nil {
						opts = append(opts, auth.WithStorage(store))
					} else {
						rt.logger.Debug("token storage unavailable", zap.Error(err))
					}
				}

				secret, source, err := auth.NewTokenResolver(slot.envVar, opts...).Resolve(ctx)
				if err != nil {
					rt.logger.Warn("failed to read token storage", zap.Error(err))
				}
				rows = append(rows, statusRow(auth.Describe(slot.name, secret, source, now)))
			}

			return rt.outputManager.Render(rt.stdout, rows, rt.renderOptions())
		},
	}
}

// statusRow converts a slot status to a generic row for the formatters.
func statusRow(s auth.SlotStatus) map[string]any {
	row := map[string]any{
		"slot":    s.Slot,
		"present": s.Present,
		"source":  string(s.Source),
	}
	if s.Masked != "" {
		row["masked"] = s.Masked
	}
	if s.Subject != "" {
		row["subject"] = s.Subject
	}
	if s.ExpiresAt != nil {
		row["expires_at"] = s.ExpiresAt.Format(time.RFC3339)
		row["expired"] = s.Expired
	}
	return row
}

// newAuthSetTokenCmd saves an access token to token storage.
func (rt *Runtime) newAuthSetTokenCmd() *cobra.Command {
	var (
		refreshToken string
		expiresIn    time.Duration
	)

	cmd := &cobra.Command{
		Use:   "set-token [TOKEN]",
		Short: "Save an access token to token storage",
		Long: `Save an access token to token storage. The token is read from the argument
or, when the argument is "-" or missing, from the first line of stdin.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			value := ""
			if len(args) == 1 {
				value = args[0]
			}
			if value == "" || value == "-" {
				line, err := readLine(cmd.InOrStdin())
				if err != nil {
					return err
				}
				value = line
			}
			if value == "" {
				return fmt.Errorf("%w: empty token", errs.ErrInput)
			}

			token := &storage.Token{
				AccessToken:  value,
				RefreshToken: refreshToken,
				TokenType:    "bearer",
			}
			if expiresIn > 0 {
				token.ExpiresAt = time.Now().Add(expiresIn).UTC()
			}

			store, err := rt.tokenStore()
			if err != nil {
				return err
			}
			if err := store.SaveToken(cmd.Context(), token); err != nil {
				return fmt.Errorf("failed to save token: %w", err)
			}

			_, err = fmt.Fprintf(rt.stdout, "Saved access token %s\n", auth.Mask(value))
			return err
		},
	}

	cmd.Flags().StringVar(&refreshToken, "refresh-token", "", "Refresh token used by `auth refresh`")
	cmd.Flags().DurationVar(&expiresIn, "expires-in", 0, "Lifetime of the access token, e.g. 720h")
	return cmd
}

// newAuthClearCmd removes the stored token.
func (rt *Runtime) newAuthClearCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove the stored access token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := rt.tokenStore()
			if err != nil {
				return err
			}
			if err := store.DeleteToken(cmd.Context()); err != nil {
				return fmt.Errorf("failed to delete token: %w", err)
			}
			_, err = fmt.Fprintln(rt.stdout, "Removed stored access token")
			return err
		},
	}
}

// newAuthRefreshCmd exchanges the stored refresh token for a new access
// token.
func (rt *Runtime) newAuthRefreshCmd() *cobra.Command {
	var scopes []string

	cmd := &cobra.Command{
		Use:   "refresh",
		Short: "Refresh the stored access token",
		Long: `Exchange the stored refresh token for a new access token at
<base_url>/oauth/token. The client ID and secret are sent with HTTP Basic
authentication.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			store, err := rt.tokenStore()
			if err != nil {
				return err
			}

			current, err := store.LoadToken(ctx)
			if errors.Is(err, storage.ErrNotFound) {
				return fmt.Errorf("%w: no stored token; run auth set-token first", errs.ErrInput)
			}
			if err != nil {
				return fmt.Errorf("failed to load token: %w", err)
			}

			tokenURL := auth.TokenURL(rt.cfg.BaseURL)
			rt.logger.Debug("refreshing access token", zap.String("token_url", tokenURL))

			refreshed, err := auth.RefreshToken(ctx, auth.RefreshConfig{
				ClientID:     rt.cfg.ClientID,
				ClientSecret: rt.cfg.ClientSecret,
				TokenURL:     tokenURL,
				Scopes:       scopes,
				HTTPClient:   rt.httpClient,
			}, current.RefreshToken)
			if err != nil {
				return err
			}
			if refreshed.RefreshToken == "" {
				refreshed.RefreshToken = current.RefreshToken
			}

			if err := store.SaveToken(ctx, refreshed); err != nil {
				return fmt.Errorf("failed to save token: %w", err)
			}

			status := auth.Describe("access_token", refreshed.AccessToken, auth.TokenSourceKeyring, time.Now())
			row := statusRow(status)
			if !refreshed.ExpiresAt.IsZero() {
				row["expires_at"] = refreshed.ExpiresAt.UTC().Format(time.RFC3339)
			}
			return rt.outputManager.Render(rt.stdout, row, rt.renderOptions())
		},
	}

	cmd.Flags().StringSliceVar(&scopes, "scope", nil, "Scopes to request")
	return cmd
}

// readLine reads one trimmed line from r.
func readLine(r io.Reader) (string, error) {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("failed to read token: %w", err)
	}
	return strings.TrimSpace(line), nil
}

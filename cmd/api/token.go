package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/Tomlord1122/todo-web/internal/session"
)

// newTokenCommand mints session tokens for local development, standing in
// for the external login service.
func newTokenCommand(opts *rootOptions) *cobra.Command {
	var (
		userID   uint
		username string
		ttl      time.Duration
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Print a signed session token for a user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if userID == 0 {
				return errors.New("--user-id must be greater than zero")
			}
			if username == "" {
				username = fmt.Sprintf("user%d", userID)
			}

			cfg, log, err := opts.load(cmd)
			if err != nil {
				return err
			}
			if ttl == 0 {
				ttl = cfg.Session.TTL
			}

			token, err := session.NewJWT(cfg.Session.Secret, cfg.Session.CookieName, log).
				Issue(session.Identity{ID: userID, Username: username}, ttl)
			if err != nil {
				return err
			}

			_, err = fmt.Fprintln(cmd.OutOrStdout(), token)
			return err
		},
	}

	cmd.Flags().UintVar(&userID, "user-id", 0, "numeric id of the user")
	cmd.Flags().StringVar(&username, "username", "", "username carried in the token (default user<ID>)")
	cmd.Flags().DurationVar(&ttl, "ttl", 0, "token lifetime (default SESSION_TTL)")

	return cmd
}

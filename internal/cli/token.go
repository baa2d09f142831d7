package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/johnquangdev/standup-assistant/pkg/jwt"
)

func newTokenCommand() *cobra.Command {
	var (
		subject string
		role    string
		expiry  time.Duration
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue a bearer token for the /v1 API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if role != jwt.RoleOperator && role != jwt.RoleScheduler {
				return fmt.Errorf("role must be %q or %q", jwt.RoleOperator, jwt.RoleScheduler)
			}
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if expiry == 0 {
				expiry = cfg.JWT.Expiry
			}

			token, err := jwt.NewManager(cfg.JWT.Secret, cfg.JWT.Issuer, expiry).GenerateToken(subject, role)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}

	cmd.Flags().StringVarP(&subject, "subject", "s", "", "Who the token is for (required)")
	cmd.Flags().StringVar(&role, "role", jwt.RoleOperator, "operator or scheduler")
	cmd.Flags().DurationVar(&expiry, "expiry", 0, "Lifetime (default JWT_EXPIRY)")
	_ = cmd.MarkFlagRequired("subject")
	return cmd
}

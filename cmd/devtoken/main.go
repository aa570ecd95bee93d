package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"realtorcrm/internal/config"
	jwtsvc "realtorcrm/internal/pkg/jwt"
)

// devtoken issues a bearer token signed with JWT_SECRET for local testing.
func main() {
	var userID, email, name, avatar string

	cmd := &cobra.Command{
		Use:   "devtoken",
		Short: "Print a development JWT for the CRM API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if cfg.IsProduction() {
				return fmt.Errorf("devtoken refuses to run with APP_ENV=%s", cfg.AppEnv)
			}
			token, err := jwtsvc.New(cfg.JWTSecret, cfg.JWTTTL).GenerateToken(userID, email, name, avatar)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().StringVar(&userID, "user", "", "user id (required)")
	cmd.Flags().StringVar(&email, "email", "", "email claim")
	cmd.Flags().StringVar(&name, "name", "", "display name claim")
	cmd.Flags().StringVar(&avatar, "avatar", "", "avatar url claim")
	_ = cmd.MarkFlagRequired("user")

	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

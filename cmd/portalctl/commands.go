package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/tendant/idm-portal/pkg/bootstrap"
	"github.com/tendant/idm-portal/pkg/crypto"
	"github.com/tendant/idm-portal/pkg/oidc"
	"github.com/tendant/idm-portal/pkg/role"
	"github.com/tendant/idm-portal/pkg/seed"
	"github.com/tendant/idm-portal/pkg/sessiontoken"
)

// cipherFromEnv builds the secret cipher from APP_KEY.
func cipherFromEnv() (*crypto.Service, error) {
	cfg, err := bootstrap.LoadConfig()
	if err != nil {
		return nil, err
	}
	if err := cfg.Crypto.Validate(); err != nil {
		return nil, err
	}
	return crypto.New(cfg.Crypto.AppKey)
}

func newEncryptCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "encrypt <plaintext>",
		Short: "Encrypt a value with APP_KEY",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cipher, err := cipherFromEnv()
			if err != nil {
				return err
			}
			out, err := cipher.Encrypt(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), out)
			return nil
		},
	}
}

func newDecryptCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "decrypt <ciphertext>",
		Short: "Decrypt a stored client secret with APP_KEY",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cipher, err := cipherFromEnv()
			if err != nil {
				return err
			}
			out, err := cipher.Decrypt(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), out)
			return nil
		},
	}
}

func newTokenCmd() *cobra.Command {
	var (
		userID string
		name   string
		email  string
		roles  string
		expiry time.Duration
		format string
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue a portal session token signed with JWT_SECRET",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := bootstrap.LoadConfig()
			if err != nil {
				return err
			}

			var roleNames []string
			for _, r := range strings.Split(roles, ",") {
				r = strings.TrimSpace(r)
				if r == "" {
					continue
				}
				parsed, ok := role.ParseAppRole(r)
				if !ok {
					return fmt.Errorf("unknown role %q", r)
				}
				roleNames = append(roleNames, parsed.String())
			}

			gen := sessiontoken.NewGenerator(cfg.Jwt.JwtSecret, cfg.Jwt.Issuer, expiry)
			token, expiresAt, err := gen.Generate(sessiontoken.Subject{
				UserID: userID,
				Name:   name,
				Email:  email,
				Roles:  roleNames,
			})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			switch format {
			case "compact":
				fmt.Fprintln(out, token)
			case "full":
				fmt.Fprintf(out, "Token: %s\nExpires: %s\n", token, expiresAt.Format(time.RFC3339))
			default:
				return fmt.Errorf("unknown output format: %s", format)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&userID, "user", "", "user id (sub claim)")
	cmd.Flags().StringVar(&name, "name", "", "display name")
	cmd.Flags().StringVar(&email, "email", "", "email address")
	cmd.Flags().StringVar(&roles, "roles", "", "comma separated role names, e.g. Dev,Clerk")
	cmd.Flags().DurationVar(&expiry, "expiry", time.Hour, "token lifetime")
	cmd.Flags().StringVar(&format, "format", "compact", "output format: compact or full")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}

func newSeedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Create the role catalogue, the admin user and the default apps",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := bootstrap.LoadConfig()
			if err != nil {
				return err
			}

			ctx := context.Background()
			services, err := bootstrap.Build(ctx, cfg)
			if err != nil {
				return err
			}
			defer services.Close()

			result, err := seed.Run(ctx, services.SeedDeps(), cfg.Admin)
			if err != nil {
				return err
			}
			seed.PrintResult(cmd.OutOrStdout(), result)
			return nil
		},
	}
}

func newKeygenCmd() *cobra.Command {
	var path string

	cmd := &cobra.Command{
		Use:   "keygen",
		Short: "Create the identity token signing key if it does not exist",
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := oidc.EnsureSigningKey(path)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", path, key.KeyID)
			return nil
		},
	}
	cmd.Flags().StringVar(&path, "path", "private.pem", "PEM file for the signing key")
	return cmd
}

package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/tendant/simple-token/pkg/authz"
	"github.com/tendant/simple-token/pkg/client"
	"github.com/tendant/simple-token/pkg/config"
	"github.com/tendant/simple-token/pkg/credential"
	"github.com/tendant/simple-token/pkg/token"
)

func withService(cmd *cobra.Command, open StoreOpener, fn func(ctx context.Context, svc *token.Service) error) error {
	ctx := authz.WithSystemCaller(cmd.Context())
	stores, closeFn, err := open(ctx)
	if err != nil {
		return err
	}
	defer closeFn()

	return fn(ctx, token.NewService(stores, authz.NewRoleAuthorizer(config.AuthzConfig{}), token.WithPublisher(token.SlogPublisher{})))
}

func newGetTokenCmd(open StoreOpener) *cobra.Command {
	var idType, idValue, service, remoteAddr string

	cmd := &cobra.Command{
		Use:   "get-token",
		Short: "Return the token of the identity matching a field value",
		Example: `  tokenctl get-token --idtype username --idvalue bob --service "fake WS"
  tokenctl get-token --idtype profile_staffid --idvalue S-100 --service mobile`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withService(cmd, open, func(ctx context.Context, svc *token.Service) error {
				if remoteAddr != "" {
					ctx = credential.WithRemoteAddr(ctx, remoteAddr)
				}
				resp, err := svc.GetToken(ctx, idType, idValue, service)
				if err != nil {
					return err
				}
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(resp)
			})
		},
	}

	cmd.Flags().StringVar(&idType, "idtype", "", "Field to match, e.g. username, email or profile_<shortname>")
	cmd.Flags().StringVar(&idValue, "idvalue", "", "Value the field must equal")
	cmd.Flags().StringVar(&service, "service", "", "Service shortname")
	cmd.Flags().StringVar(&remoteAddr, "remote-addr", "", "Address checked against IP-restricted tokens")
	_ = cmd.MarkFlagRequired("idtype")
	_ = cmd.MarkFlagRequired("service")
	return cmd
}

func newFieldsCmd(open StoreOpener) *cobra.Command {
	return &cobra.Command{
		Use:   "fields",
		Short: "List the fields identities can be matched by",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withService(cmd, open, func(ctx context.Context, svc *token.Service) error {
				list, err := svc.ListFields(ctx)
				if err != nil {
					return err
				}
				tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "KEY\tLABEL\tCUSTOM\tENABLED")
				for _, f := range list {
					fmt.Fprintf(tw, "%s\t%s\t%t\t%t\n", f.Key, f.Label, f.Custom, f.Enabled)
				}
				return tw.Flush()
			})
		},
	}
}

func newServicesCmd(open StoreOpener) *cobra.Command {
	return &cobra.Command{
		Use:   "services",
		Short: "List registered services and whether tokens may be issued for them",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withService(cmd, open, func(ctx context.Context, svc *token.Service) error {
				list, err := svc.ListServices(ctx)
				if err != nil {
					return err
				}
				tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "ID\tSHORTNAME\tNAME\tENABLED\tTOKENS")
				for _, s := range list {
					fmt.Fprintf(tw, "%d\t%s\t%s\t%t\t%t\n", s.ID, s.Shortname, s.Name, s.Enabled, s.TokenEnabled)
				}
				return tw.Flush()
			})
		},
	}
}

func newCallerTokenCmd(defaults Defaults) *cobra.Command {
	var (
		userID, roles, username  string
		secret, issuer, audience string
		ttl                      time.Duration
	)

	cmd := &cobra.Command{
		Use:   "caller-token",
		Short: "Mint an HS256 JWT for calling the token API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := (config.JwtConfig{Secret: secret}).Validate(); err != nil {
				return err
			}
			var roleList []string
			for _, r := range config.ParseList(roles) {
				roleList = append(roleList, strings.TrimSpace(r))
			}

			signed, err := client.CallerToken{
				UserID:   userID,
				Extra:    client.ExtraClaims{Username: username, Roles: roleList},
				Issuer:   issuer,
				Audience: audience,
				TTL:      ttl,
			}.Sign([]byte(secret))
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), signed)
			return nil
		},
	}

	cmd.Flags().StringVar(&userID, "user", "", "Caller user ID (sub claim)")
	cmd.Flags().StringVar(&username, "username", "", "Caller username")
	cmd.Flags().StringVar(&roles, "roles", "", "Comma-separated caller roles")
	cmd.Flags().StringVar(&secret, "secret", defaults.JwtSecret, "HS256 signing secret")
	cmd.Flags().StringVar(&issuer, "issuer", defaults.JwtIssuer, "iss claim")
	cmd.Flags().StringVar(&audience, "audience", defaults.JwtAudience, "aud claim")
	defaultTTL := defaults.CallerTTL
	if defaultTTL <= 0 {
		defaultTTL = time.Hour
	}
	cmd.Flags().DurationVar(&ttl, "ttl", defaultTTL, "Token lifetime")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}

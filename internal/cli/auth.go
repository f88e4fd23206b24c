package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	goCareer "github.com/MrEthical07/goCareer"
	"github.com/MrEthical07/goCareer/gateway"
	"github.com/MrEthical07/goCareer/session"
	"github.com/spf13/cobra"
)

func newLoginCommand(opts *options) *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in as a platform user",
		Example: `  careerctl login --email alice@example.com --password correct-horse
  CAREERCTL_PASSWORD=correct-horse careerctl login --email alice@example.com`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return opts.withClient(cmd, func(ctx context.Context, c *goCareer.Client) error {
				identity, err := c.Login(ctx, email, passwordFrom(password))
				if err != nil {
					return loginError(err)
				}
				return opts.render(cmd.OutOrStdout(), identity, func(w io.Writer) {
					fmt.Fprintf(w, "signed in as %s (%s)\n", displayName(identity), roleOf(identity))
				})
			})
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVar(&password, "password", "", "account password (or "+envPassword+")")
	_ = cmd.MarkFlagRequired("email")

	return cmd
}

func newAdminLoginCommand(opts *options) *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "admin-login",
		Short: "Sign in through the admin pathway",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return opts.withClient(cmd, func(ctx context.Context, c *goCareer.Client) error {
				admin, err := c.AdminLogin(ctx, email, passwordFrom(password))
				if err != nil {
					return loginError(err)
				}
				return opts.render(cmd.OutOrStdout(), admin, func(w io.Writer) {
					fmt.Fprintf(w, "signed in as administrator %s %s\n", admin.Prenom, admin.Nom)
				})
			})
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "admin email")
	cmd.Flags().StringVar(&password, "password", "", "admin password (or "+envPassword+")")
	_ = cmd.MarkFlagRequired("email")

	return cmd
}

func newRegisterCommand(opts *options) *cobra.Command {
	var (
		in     goCareer.RegisterInput
		signIn bool
	)

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account",
		Example: `  careerctl register --name "Alice Martin" --email alice@example.com \
    --password correct-horse --competence go,sql --interest backend --login`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			in.Password = passwordFrom(in.Password)
			return opts.withClient(cmd, func(ctx context.Context, c *goCareer.Client) error {
				register := c.Register
				if signIn {
					register = c.RegisterAndLogin
				}
				identity, err := register(ctx, in)
				if err != nil {
					return errors.New(gateway.UserMessage(err, "registration failed"))
				}
				return opts.render(cmd.OutOrStdout(), identity, func(w io.Writer) {
					fmt.Fprintf(w, "registered %s (id %d)\n", identity.Email, identity.ID)
					if signIn {
						fmt.Fprintln(w, "signed in")
					}
				})
			})
		},
	}

	f := cmd.Flags()
	f.StringVar(&in.FullName, "name", "", "full name, first word is the family name")
	f.StringVar(&in.Email, "email", "", "account email")
	f.StringVar(&in.Password, "password", "", "account password (or "+envPassword+")")
	f.StringSliceVar(&in.Competence, "competence", nil, "skills, comma separated")
	f.StringSliceVar(&in.Interests, "interest", nil, "interests, comma separated")
	f.BoolVar(&signIn, "login", false, "sign in after registering")
	_ = cmd.MarkFlagRequired("email")

	return cmd
}

func newLogoutCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Clear the stored session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return opts.withClient(cmd, func(ctx context.Context, c *goCareer.Client) error {
				if err := c.Logout(ctx); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "signed out")
				return nil
			})
		},
	}
}

type whoami struct {
	State    string                 `json:"state" yaml:"state"`
	Role     string                 `json:"role,omitempty" yaml:"role,omitempty"`
	Identity *session.Identity      `json:"identity,omitempty" yaml:"identity,omitempty"`
	Admin    *session.AdminIdentity `json:"admin,omitempty" yaml:"admin,omitempty"`
}

func newWhoamiCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in identity",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return opts.withClient(cmd, func(ctx context.Context, c *goCareer.Client) error {
				state, role := c.Guard().Current(ctx)
				snap := c.Session(ctx)
				out := whoami{State: state.String(), Role: role, Identity: snap.Identity, Admin: snap.Admin}
				return opts.render(cmd.OutOrStdout(), out, func(w io.Writer) {
					switch {
					case out.Identity != nil:
						fmt.Fprintf(w, "%s <%s> role=%s\n", displayName(*out.Identity), out.Identity.Email, role)
					case out.Admin != nil:
						fmt.Fprintf(w, "%s %s <%s> role=%s\n", out.Admin.Prenom, out.Admin.Nom, out.Admin.Email, role)
					default:
						fmt.Fprintln(w, "not signed in")
					}
				})
			})
		},
	}
}

func loginError(err error) error {
	if errors.Is(err, goCareer.ErrInvalidCredentials) {
		return goCareer.ErrInvalidCredentials
	}
	return errors.New(gateway.UserMessage(err, "login failed"))
}

func displayName(id session.Identity) string {
	return strings.TrimSpace(id.Prenom + " " + id.Nom)
}

func roleOf(id session.Identity) string {
	if id.Role == "" {
		return "user"
	}
	return id.Role
}

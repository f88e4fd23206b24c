package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	goCareer "github.com/MrEthical07/goCareer"
	"github.com/MrEthical07/goCareer/guard"
	"github.com/spf13/cobra"
)

// ErrDenied is returned by check --strict when a route is not allowed.
var ErrDenied = errors.New("navigation denied")

type checkResult struct {
	Route    string `json:"route" yaml:"route"`
	Outcome  string `json:"outcome" yaml:"outcome"`
	Location string `json:"location,omitempty" yaml:"location,omitempty"`
	Required string `json:"required,omitempty" yaml:"required,omitempty"`
}

func newCheckCommand(opts *options) *cobra.Command {
	var strict bool

	cmd := &cobra.Command{
		Use:   "check ROUTE...",
		Short: "Decide whether the current session may open routes",
		Example: `  careerctl check /dashboard /manage-jobs /admin
  careerctl check --strict /admin && echo "admin ok"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withClient(cmd, func(ctx context.Context, c *goCareer.Client) error {
				results := make([]checkResult, 0, len(args))
				denied := false
				for _, route := range args {
					d := c.Guard().Evaluate(ctx, route)
					if !d.Allowed() {
						denied = true
					}
					results = append(results, checkResult{
						Route:    d.Route,
						Outcome:  d.Outcome.String(),
						Location: d.Location,
						Required: string(d.Required),
					})
				}

				err := opts.render(cmd.OutOrStdout(), results, func(w io.Writer) {
					tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
					fmt.Fprintln(tw, "ROUTE\tOUTCOME\tLOCATION\tREQUIRED")
					for _, r := range results {
						fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", r.Route, r.Outcome, dash(r.Location), dash(r.Required))
					}
					_ = tw.Flush()
				})
				if err != nil {
					return err
				}
				if strict && denied {
					return ErrDenied
				}
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&strict, "strict", false, "exit non-zero when any route is denied")

	return cmd
}

type statusReport struct {
	State    string                  `json:"state" yaml:"state"`
	Role     string                  `json:"role,omitempty" yaml:"role,omitempty"`
	API      string                  `json:"api" yaml:"api"`
	Security goCareer.SecurityReport `json:"security" yaml:"security"`
	Warnings []string                `json:"warnings,omitempty" yaml:"warnings,omitempty"`
}

func newStatusCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show session state and configuration posture",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return opts.withClient(cmd, func(ctx context.Context, c *goCareer.Client) error {
				state, role := c.Guard().Current(ctx)
				cfg := c.Config()

				report := statusReport{
					State:    state.String(),
					Role:     role,
					API:      cfg.API.BaseURL,
					Security: c.SecurityReport(),
				}
				for _, w := range cfg.Lint() {
					report.Warnings = append(report.Warnings, fmt.Sprintf("[%s] %s: %s", w.Severity, w.Code, w.Message))
				}

				return opts.render(cmd.OutOrStdout(), report, func(w io.Writer) {
					sec := report.Security
					fmt.Fprintf(w, "session:  %s", report.State)
					if state == guard.StateAuthorized {
						fmt.Fprintf(w, " (%s)", report.Role)
					}
					fmt.Fprintln(w)
					fmt.Fprintf(w, "api:      %s (tls=%t, timeout=%s)\n", report.API, sec.TLS, sec.RequestTimeout)
					fmt.Fprintf(w, "backend:  %s (shared=%t)\n", sec.SessionBackend, sec.SharedSession)
					fmt.Fprintf(w, "guard:    verify=%t trust-admin-slot=%t resolve-timeout=%s\n",
						sec.VerifyOnBootstrap, sec.TrustAdminSlot, sec.ResolveTimeout)
					if len(report.Warnings) > 0 {
						fmt.Fprintln(w, "warnings:")
						fmt.Fprintln(w, "  "+strings.Join(report.Warnings, "\n  "))
					}
				})
			})
		},
	}
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	goCareer "github.com/MrEthical07/goCareer"
	"github.com/MrEthical07/goCareer/gateway"
	"github.com/spf13/cobra"
)

// ErrNotSignedIn is returned by commands that need a user session.
var ErrNotSignedIn = errors.New("not signed in, run careerctl login")

func newJobsCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "jobs",
		Short: "List job offers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return opts.withClient(cmd, func(ctx context.Context, c *goCareer.Client) error {
				jobs, err := c.API().ListJobs(ctx)
				if err != nil {
					return apiError(err, "could not load jobs")
				}
				return opts.render(cmd.OutOrStdout(), jobs, func(w io.Writer) {
					tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
					fmt.Fprintln(tw, "ID\tTITLE\tCOMPANY\tLOCATION\tREQUIREMENTS")
					for _, j := range jobs {
						fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n", j.ID, j.Title, dash(j.Company), dash(j.Location), strings.Join(j.Requirements, ","))
					}
					_ = tw.Flush()
				})
			})
		},
	}
}

func newFormationsCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "formations",
		Short: "List training courses",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return opts.withClient(cmd, func(ctx context.Context, c *goCareer.Client) error {
				formations, err := c.API().ListFormations(ctx)
				if err != nil {
					return apiError(err, "could not load formations")
				}
				return opts.render(cmd.OutOrStdout(), formations, func(w io.Writer) {
					tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
					fmt.Fprintln(tw, "ID\tTITLE\tCATEGORY")
					for _, f := range formations {
						fmt.Fprintf(tw, "%d\t%s\t%d\n", f.ID, f.Titre, f.CategoryID)
					}
					_ = tw.Flush()
				})
			})
		},
	}
}

func newRecommendCommand(opts *options) *cobra.Command {
	var (
		mode string
		topN int
		goal string
	)

	cmd := &cobra.Command{
		Use:   "recommend",
		Short: "Ask for a skill path",
		Long: `recommend asks the recommender for a skill path. Without --goal the stored
profile of the signed-in user is used; with --goal the profile's competences and
interests are submitted alongside the goal.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			m := gateway.RecommendMode(strings.ToLower(mode))
			if m != gateway.ModeKeyword && m != gateway.ModeAI {
				return fmt.Errorf("unknown mode %q", mode)
			}

			return opts.withClient(cmd, func(ctx context.Context, c *goCareer.Client) error {
				identity, ok := c.Store().GetIdentity(ctx)
				if !ok {
					return ErrNotSignedIn
				}

				var (
					rec gateway.Recommendation
					err error
				)
				switch {
				case goal != "":
					rec, err = c.API().SubmitRecommendation(ctx, gateway.RecommendSubmission{
						Goal:        goal,
						Competences: identity.Competence,
						Interests:   identity.Interests,
						Mode:        m,
						TopN:        topN,
					})
				case m == gateway.ModeAI:
					rec, err = c.API().RecommendAI(ctx, identity.ID, "", topN)
				default:
					rec, err = c.API().RecommendKeyword(ctx, identity.ID, topN)
				}
				if err != nil {
					return apiError(err, "recommendation failed")
				}

				return opts.render(cmd.OutOrStdout(), rec, func(w io.Writer) {
					fmt.Fprintf(w, "source: %s\n", rec.Source)
					if rec.FellBack() {
						fmt.Fprintf(w, "fallback: %s\n", rec.FallbackReason)
					}
					fmt.Fprintf(w, "%s\n", rec.Skillpath)
				})
			})
		},
	}

	cmd.Flags().StringVar(&mode, "mode", string(gateway.ModeKeyword), "recommender: keyword or ai")
	cmd.Flags().IntVar(&topN, "top", gateway.DefaultTopN, "number of results")
	cmd.Flags().StringVar(&goal, "goal", "", "career goal for a form-driven request")

	return cmd
}

// apiError turns a forced logout into ErrNotSignedIn and keeps backend details
// otherwise.
func apiError(err error, fallback string) error {
	if errors.Is(err, gateway.ErrUnauthenticated) {
		return ErrNotSignedIn
	}
	return errors.New(gateway.UserMessage(err, fallback))
}

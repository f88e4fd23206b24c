// Package cli implements the careerctl command tree.
//
// Every invocation builds one goCareer client over a file-backed session, so a
// login in one process is visible to the next.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	goCareer "github.com/MrEthical07/goCareer"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

const (
	envConfig   = "CAREERCTL_CONFIG"
	envPassword = "CAREERCTL_PASSWORD"
)

type options struct {
	configPath  string
	sessionFile string
	apiURL      string
	output      string
	verbose     bool
}

// NewRootCommand returns the careerctl command tree.
func NewRootCommand() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:   "careerctl",
		Short: "Career platform client",
		Long: `careerctl signs in to the career platform, keeps the session on disk and
checks which pages the current session may open.

The session file defaults to $HOME/.careerctl/session.json. A YAML config file
can be given with --config or CAREERCTL_CONFIG.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := root.PersistentFlags()
	flags.StringVar(&opts.configPath, "config", os.Getenv(envConfig), "YAML config file")
	flags.StringVar(&opts.sessionFile, "session-file", "", "session file (default $HOME/.careerctl/session.json)")
	flags.StringVar(&opts.apiURL, "api", "", "API base URL, overrides the config")
	flags.StringVarP(&opts.output, "output", "o", "text", "output format: text, json or yaml")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "log at debug level")

	root.AddCommand(
		newLoginCommand(opts),
		newAdminLoginCommand(opts),
		newRegisterCommand(opts),
		newLogoutCommand(opts),
		newWhoamiCommand(opts),
		newCheckCommand(opts),
		newStatusCommand(opts),
		newJobsCommand(opts),
		newFormationsCommand(opts),
		newRecommendCommand(opts),
	)

	return root
}

// Execute runs the command tree with os.Args.
func Execute() error {
	return NewRootCommand().Execute()
}

func (o *options) config() (goCareer.Config, error) {
	cfg := goCareer.DefaultConfig()
	if o.configPath != "" {
		loaded, err := goCareer.LoadConfig(o.configPath)
		if err != nil {
			return goCareer.Config{}, err
		}
		cfg = loaded
	}

	if o.apiURL != "" {
		cfg.API.BaseURL = o.apiURL
	}
	if cfg.Session.Backend == goCareer.BackendMemory {
		cfg.Session.Backend = goCareer.BackendFile
	}
	if o.sessionFile != "" {
		cfg.Session.Path = o.sessionFile
	}
	if cfg.Session.Backend == goCareer.BackendFile && cfg.Session.Path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return goCareer.Config{}, fmt.Errorf("resolve home directory: %w", err)
		}
		cfg.Session.Path = filepath.Join(home, ".careerctl", "session.json")
	}

	if o.verbose {
		cfg.Logging.Level = "debug"
	} else if o.configPath == "" {
		cfg.Logging.Level = "warn"
	}

	return cfg, cfg.Validate()
}

// withClient builds a client for one command and bootstraps the stored session.
func (o *options) withClient(cmd *cobra.Command, fn func(ctx context.Context, c *goCareer.Client) error) error {
	cfg, err := o.config()
	if err != nil {
		return err
	}

	logger, err := cfg.Logging.NewLogger(cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	b := goCareer.New().WithConfig(cfg).WithLogger(logger)
	if cfg.Audit.Enabled {
		b = b.WithAuditSink(goCareer.NewJSONWriterSink(cmd.ErrOrStderr()))
	}
	client, err := b.Build()
	if err != nil {
		return err
	}
	defer client.Close()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	client.Bootstrap(ctx)

	return fn(ctx, client)
}

// render writes v in the selected format; text falls back to textFn.
func (o *options) render(w io.Writer, v any, textFn func(io.Writer)) error {
	switch strings.ToLower(o.output) {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case "yaml":
		enc := yaml.NewEncoder(w)
		defer enc.Close()
		return enc.Encode(v)
	case "", "text":
		textFn(w)
		return nil
	default:
		return fmt.Errorf("unknown output format %q", o.output)
	}
}

func passwordFrom(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	return os.Getenv(envPassword)
}

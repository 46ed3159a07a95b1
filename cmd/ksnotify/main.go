// Ksnotify posts a noise-filtered Kubernetes manifest diff to the merge
// request of the current CI build.
//
// Usage:
//
//	kubectl diff -f manifests/ | ksnotify --ci gitlab --target production
//	skaffold render | kubectl diff -f - | ksnotify --suppress-skaffold --patch
//
// Re-running the same build with --patch edits the earlier comment in place.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/drewdunne/ksnotify/internal/config"
	"github.com/drewdunne/ksnotify/internal/logging"
	"github.com/drewdunne/ksnotify/internal/notify"
	"github.com/drewdunne/ksnotify/internal/registry"
)

var version = "0.1.0"

// defaultConfigPath is read when present and --config is not given.
const defaultConfigPath = "ksnotify.yaml"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := execute(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr, os.LookupEnv)
	stop()
	os.Exit(code)
}

// app carries the process boundaries so commands can run against fakes.
type app struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
	lookup config.LookupFunc
}

type rootFlags struct {
	configPath       string
	envFile          string
	ci               string
	suppressSkaffold bool
	ignoreTagImages  []string
	patch            bool
	target           string
	link             string
	debug            bool
}

// execute runs the CLI and returns the process exit code.
func execute(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer, lookup config.LookupFunc) int {
	a := &app{stdin: stdin, stdout: stdout, stderr: stderr, lookup: lookup}

	cmd := newRootCmd(a)
	cmd.SetArgs(args)
	if err := cmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(stderr, "ksnotify: %v\n", err)
		return 1
	}
	return 0
}

func newRootCmd(a *app) *cobra.Command {
	flags := &rootFlags{}

	cmd := &cobra.Command{
		Use:   "ksnotify",
		Short: "Post Kubernetes manifest diffs to merge requests",
		Long: "Ksnotify reads a kubectl diff from stdin, removes noise, and posts the result " +
			"as a single comment on the merge request of the current CI build.",
		Args:          cobra.NoArgs,
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(cmd, flags)
		},
	}
	cmd.SetIn(a.stdin)
	cmd.SetOut(a.stdout)
	cmd.SetErr(a.stderr)

	f := cmd.Flags()
	f.StringVarP(&flags.configPath, "config", "c", "", "Path to config file (default ksnotify.yaml when present)")
	f.StringVar(&flags.envFile, "env-file", "", "Path to .env file (optional)")
	f.StringVar(&flags.ci, "ci", "", "CI kind (gitlab, github, local)")
	f.BoolVar(&flags.suppressSkaffold, "suppress-skaffold", false, "Hide skaffold.dev/run-id label changes")
	f.StringSliceVar(&flags.ignoreTagImages, "ignore-tag-images", nil, "Images whose tag changes are ignored (comma-separated)")
	f.BoolVar(&flags.patch, "patch", false, "Update the previous comment of the same build instead of posting a new one")
	f.StringVar(&flags.target, "target", "", "Label identifying the build, shown in the comment title")
	f.StringVar(&flags.link, "link", "", "Link shown in the comment (default: CI job URL)")
	f.BoolVar(&flags.debug, "debug", false, "Enable debug logging")

	cmd.AddCommand(newVersionCmd())
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print ksnotify version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "ksnotify v%s\n", version)
		},
	}
}

func (a *app) run(cmd *cobra.Command, flags *rootFlags) error {
	loadEnvFile(flags.envFile)

	cfg, err := a.loadConfig(cmd, flags)
	if err != nil {
		return err
	}
	logging.Setup(a.stderr, cfg.Debug)

	inv, err := config.DetectInvocation(cfg.CI, a.lookup)
	if err != nil {
		return fmt.Errorf("detecting %s environment: %w", cfg.CI, err)
	}

	opts, err := notify.OptionsFromConfig(cfg, inv)
	if err != nil {
		return err
	}

	reg := registry.New(cfg, inv, a.stdout)
	p := reg.Get(string(cfg.CI))
	if p == nil {
		return fmt.Errorf("no %s provider configured", cfg.CI)
	}
	log.Debugf("Using %s provider", p.Name())

	action, err := notify.New(p, a.stdout).Run(cmd.Context(), a.stdin, notify.IdentityFor(cfg, inv), opts)
	if err != nil {
		return err
	}
	log.Debugf("Finished with %s", action.Kind)
	return nil
}

// loadConfig layers the config file, the environment and explicit flags,
// in that order, and validates the result.
func (a *app) loadConfig(cmd *cobra.Command, flags *rootFlags) (*config.Config, error) {
	cfg := config.DefaultConfig()

	path := flags.configPath
	if path == "" {
		if _, err := os.Stat(defaultConfigPath); err == nil {
			path = defaultConfigPath
		}
	}
	if path != "" {
		loaded, err := config.Load(path, a.lookup)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if err := cfg.ApplyEnv(a.lookup); err != nil {
		return nil, err
	}

	f := cmd.Flags()
	if f.Changed("ci") {
		kind, err := config.ParseCIKind(flags.ci)
		if err != nil {
			return nil, fmt.Errorf("--ci: %w", err)
		}
		cfg.CI = kind
	}
	if f.Changed("suppress-skaffold") {
		cfg.SuppressSkaffold = flags.suppressSkaffold
	}
	if f.Changed("ignore-tag-images") {
		cfg.IgnoreTagImages = flags.ignoreTagImages
	}
	if f.Changed("patch") {
		cfg.Patch = flags.patch
	}
	if f.Changed("target") {
		cfg.Target = flags.target
	}
	if f.Changed("link") {
		cfg.Link = flags.link
	}
	if f.Changed("debug") {
		cfg.Debug = flags.debug
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// loadEnvFile loads an explicit .env file, or ./.env when present. Variables
// already set in the environment win.
func loadEnvFile(path string) {
	if path != "" {
		if err := godotenv.Load(path); err != nil {
			log.Warnf("Could not load env file %s: %v", path, err)
		}
		return
	}
	if err := godotenv.Load(".env"); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Warnf("Could not load .env: %v", err)
	}
}

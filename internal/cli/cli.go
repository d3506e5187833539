package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/spf13/cobra"

	"github.com/specialistvlad/extforge/internal/app"
	"github.com/specialistvlad/extforge/internal/config"
	"github.com/specialistvlad/extforge/internal/natsdispatch"
	"github.com/specialistvlad/extforge/internal/registry"
)

// Version is the extforge release, overridden at link time.
var Version = "dev"

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

func usageError(format string, args ...any) error {
	return &ExitError{Code: 2, Message: fmt.Sprintf(format, args...)}
}

// options holds the flags shared by every command.
type options struct {
	configPath string
	logLevel   string
	logFormat  string
	sources    []string
	outDir     string
	dbURL      string
	notifyURL  string
	workers    int
	addr       string
	natsURL    string

	outW    io.Writer
	errW    io.Writer
	modules []registry.Module
}

// Execute runs the command line in args. Results go to outW, logs to errW.
// With no modules the core modules are loaded.
func Execute(ctx context.Context, args []string, outW, errW io.Writer, modules ...registry.Module) error {
	root := NewRootCmd(outW, errW, modules...)
	root.SetArgs(args)
	return root.ExecuteContext(ctx)
}

// NewRootCmd builds the extforge command tree.
func NewRootCmd(outW, errW io.Writer, modules ...registry.Module) *cobra.Command {
	o := &options{outW: outW, errW: errW, modules: modules}

	cmd := &cobra.Command{
		Use:   "extforge",
		Short: "Compile and dispatch host platform extensions",
		Long: `extforge compiles declared custom objects and rules into host XML
definitions and dispatches rule invocations to registered Go executables.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.SetOut(outW)
	cmd.SetErr(errW)
	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return &ExitError{Code: 2, Message: err.Error()}
	})

	pf := cmd.PersistentFlags()
	pf.StringVarP(&o.configPath, "config", "c", "", "Config file path (YAML)")
	pf.StringVar(&o.logLevel, "log-level", "info", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")
	pf.StringVar(&o.logFormat, "log-format", "text", "Log output format. Options: 'text' or 'json'.")
	pf.StringSliceVarP(&o.sources, "source", "s", nil, "Declaration file, directory or glob (repeatable).")
	pf.StringVarP(&o.outDir, "out", "o", "", "Directory receiving compiled definitions.")
	pf.StringVar(&o.dbURL, "database-url", "", "Postgres URL of the definition store.")
	pf.StringVar(&o.notifyURL, "notify-url", "", "socket.io endpoint notified of compiled definitions.")
	pf.IntVar(&o.workers, "workers", 0, "Number of declarations compiled concurrently.")
	pf.StringVar(&o.addr, "addr", "", "HTTP listen address for serve.")
	pf.StringVar(&o.natsURL, "nats-url", "", "NATS server URL for the dispatch transport.")

	cmd.AddCommand(
		o.compileCmd(),
		o.serveCmd(),
		o.dispatchCmd(),
		o.classesCmd(),
		o.migrateCmd(),
		versionCmd(),
	)
	return cmd
}

// load reads the config file, applies changed flags on top and validates
// the result.
func (o *options) load(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.Default()
	if o.configPath != "" {
		var err error
		if cfg, err = config.LoadFromFile(o.configPath); err != nil {
			return nil, usageError("%v", err)
		}
	}

	flags := cmd.Flags()
	override := &config.Config{}
	if flags.Changed("log-level") {
		override.Log.Level = strings.ToLower(o.logLevel)
	}
	if flags.Changed("log-format") {
		override.Log.Format = strings.ToLower(o.logFormat)
	}
	if flags.Changed("source") {
		override.Sources = o.sources
	}
	override.Output.Dir = o.outDir
	override.Output.DatabaseURL = o.dbURL
	override.Output.NotifyURL = o.notifyURL
	override.Compile.Workers = o.workers
	override.Server.Addr = o.addr
	override.NATS.URL = o.natsURL
	cfg.Merge(override)

	if err := cfg.Validate(); err != nil {
		return nil, usageError("invalid configuration: %v", err)
	}
	return cfg, nil
}

func (o *options) newApp(cmd *cobra.Command) (*app.App, error) {
	cfg, err := o.load(cmd)
	if err != nil {
		return nil, err
	}
	return app.New(o.errW, cfg, o.modules...)
}

func (o *options) compileCmd() *cobra.Command {
	var watch bool
	cmd := &cobra.Command{
		Use:   "compile",
		Short: "Compile every declaration into host definitions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := o.newApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			if watch {
				return a.Watch(cmd.Context())
			}
			results, err := a.Compile(cmd.Context())
			failed := 0
			for _, r := range results {
				if r.Err != nil {
					failed++
					continue
				}
				fmt.Fprintf(o.outW, "%s\t%s\n", r.Document.Kind, r.Document.LogicalName)
			}
			if err != nil {
				return fmt.Errorf("%d of %d declarations failed: %w", failed, len(results), err)
			}
			return nil
		},
	}
	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "Recompile when declaration files change.")
	return cmd
}

func (o *options) serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the dispatch API over HTTP and NATS",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := o.newApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()
			return a.Serve(cmd.Context())
		},
	}
}

func (o *options) dispatchCmd() *cobra.Command {
	var (
		pairs    []string
		argsJSON string
		remote   bool
		timeout  time.Duration
	)
	cmd := &cobra.Command{
		Use:   "dispatch <class>",
		Short: "Run one rule and print its result as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			bag, err := argumentBag(argsJSON, pairs)
			if err != nil {
				return err
			}

			var result any
			if remote {
				result, err = o.dispatchRemote(cmd, args[0], bag, timeout)
			} else {
				var a *app.App
				if a, err = o.newApp(cmd); err != nil {
					return err
				}
				defer a.Close()
				result, err = a.Dispatch(cmd.Context(), args[0], bag)
			}
			if err != nil {
				return err
			}

			enc := json.NewEncoder(o.outW)
			enc.SetIndent("", "  ")
			return enc.Encode(map[string]any{"class": args[0], "result": result})
		},
	}
	cmd.Flags().StringArrayVarP(&pairs, "arg", "a", nil, "Argument as name=value (repeatable).")
	cmd.Flags().StringVar(&argsJSON, "args-json", "", "Arguments as a JSON object; --arg values override its keys.")
	cmd.Flags().BoolVar(&remote, "remote", false, "Send the request over NATS instead of running it in-process.")
	cmd.Flags().DurationVar(&timeout, "timeout", 10*time.Second, "Remote dispatch timeout.")
	return cmd
}

func (o *options) dispatchRemote(cmd *cobra.Command, class string, bag map[string]any, timeout time.Duration) (any, error) {
	cfg, err := o.load(cmd)
	if err != nil {
		return nil, err
	}
	if cfg.NATS.URL == "" {
		return nil, usageError("--remote requires nats.url or --nats-url")
	}
	nc, err := nats.Connect(cfg.NATS.URL, nats.Name("extforge-cli"))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}
	defer nc.Close()

	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()
	return natsdispatch.NewClient(nc, cfg.NATS.Subject).Dispatch(ctx, class, bag)
}

// argumentBag merges a JSON object with name=value pairs. Pair values stay
// strings; the dispatcher coerces them against the rule's signature.
func argumentBag(argsJSON string, pairs []string) (map[string]any, error) {
	bag := make(map[string]any)
	if argsJSON != "" {
		if err := json.Unmarshal([]byte(argsJSON), &bag); err != nil {
			return nil, usageError("invalid --args-json: %v", err)
		}
	}
	for _, p := range pairs {
		name, value, ok := strings.Cut(p, "=")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, usageError("invalid --arg %q: want name=value", p)
		}
		bag[name] = value
	}
	return bag, nil
}

func (o *options) classesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "classes",
		Short: "List registered rule classes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := o.newApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()
			for _, class := range a.Registry().Classes() {
				fmt.Fprintln(o.outW, class)
			}
			return nil
		},
	}
}

func (o *options) migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply the definition store migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := o.newApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()
			applied, err := a.Migrate(cmd.Context())
			if err != nil {
				return err
			}
			if applied {
				fmt.Fprintln(o.outW, "migrations applied")
			} else {
				fmt.Fprintln(o.outW, "already up to date")
			}
			return nil
		},
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "extforge version %s\n", Version)
		},
	}
}

// Package runtime wires the command tree, configuration, credentials and
// output into an executable CLI.
//
// # Initialization Flow
//
//  1. Load the command tree (embedded, or --command-tree / PINTEREST_COMMAND_TREE)
//  2. Build the Cobra command tree, one group per resource
//  3. Add global flags
//  4. Add built-in commands (list, describe, tree, raw, media upload, auth, version)
//  5. Before each command: resolve configuration and create the logger
//  6. Execute the command and render its result
//
// # Example Usage
//
//	func main() {
//	    os.Exit(runtime.Main(context.Background(), os.Args[1:], runtime.WithVersion(version)))
//	}
//
// Every failure is printed as "error: <message>" on stderr with exit code 1.
// A closed stdout pipe ends the process quietly with exit code 0.
package runtime

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/CliForge/pinterest-ads-cli/internal/builder"
	"github.com/CliForge/pinterest-ads-cli/internal/logging"
	"github.com/CliForge/pinterest-ads-cli/internal/media"
	"github.com/CliForge/pinterest-ads-cli/internal/sources"
	"github.com/CliForge/pinterest-ads-cli/pkg/auth/storage"
	"github.com/CliForge/pinterest-ads-cli/pkg/commandtree"
	"github.com/CliForge/pinterest-ads-cli/pkg/config"
	"github.com/CliForge/pinterest-ads-cli/pkg/output"
	"github.com/CliForge/pinterest-ads-cli/pkg/progress"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// Application identity.
const (
	AppName   = "pinterest-ads"
	EnvPrefix = "PINTEREST"
)

// Runtime represents the runtime environment of the CLI.
type Runtime struct {
	tree          *commandtree.CommandTree
	loader        *config.Loader
	version       string
	rootCmd       *cobra.Command
	builder       *builder.Builder
	outputManager *output.Manager

	stdout io.Writer
	stderr io.Writer

	httpClient     *http.Client
	tokenStorage   storage.TokenStorage
	sourceOptions  []sources.Option
	mediaOptions   []media.Option
	progressConfig *progress.Config
	newLogger      func(debug bool) (*zap.Logger, error)

	// Resolved by setup before each command runs.
	cfg    *config.Config
	logger *zap.Logger
}

// Option configures a Runtime.
type Option func(*Runtime)

// WithTree uses tree instead of loading one.
func WithTree(tree *commandtree.CommandTree) Option {
	return func(rt *Runtime) { rt.tree = tree }
}

// WithVersion sets the version reported by `version`.
func WithVersion(version string) Option {
	return func(rt *Runtime) { rt.version = version }
}

// WithOutput redirects stdout and stderr.
func WithOutput(stdout, stderr io.Writer) Option {
	return func(rt *Runtime) {
		rt.stdout = stdout
		rt.stderr = stderr
	}
}

// WithHTTPClient sets the client used for API calls and token refresh.
func WithHTTPClient(client *http.Client) Option {
	return func(rt *Runtime) { rt.httpClient = client }
}

// WithTokenStorage replaces the configured token storage.
func WithTokenStorage(s storage.TokenStorage) Option {
	return func(rt *Runtime) { rt.tokenStorage = s }
}

// WithSourceOptions configures the resolver for file references.
func WithSourceOptions(opts ...sources.Option) Option {
	return func(rt *Runtime) { rt.sourceOptions = append(rt.sourceOptions, opts...) }
}

// WithMediaOptions configures the media upload workflow.
func WithMediaOptions(opts ...media.Option) Option {
	return func(rt *Runtime) { rt.mediaOptions = append(rt.mediaOptions, opts...) }
}

// WithProgress sets the progress indicator configuration.
func WithProgress(cfg *progress.Config) Option {
	return func(rt *Runtime) { rt.progressConfig = cfg }
}

// WithLoggerFactory replaces the zap logger constructor.
func WithLoggerFactory(fn func(debug bool) (*zap.Logger, error)) Option {
	return func(rt *Runtime) { rt.newLogger = fn }
}

// NewRuntime creates a Runtime for args, the command line without the
// program name. args are only inspected to locate the command tree.
func NewRuntime(args []string, opts ...Option) (*Runtime, error) {
	rt := &Runtime{
		loader:        config.NewLoader(AppName, EnvPrefix),
		version:       "dev",
		outputManager: output.NewManager(),
		stdout:        os.Stdout,
		stderr:        os.Stderr,
		newLogger:     logging.New,
		logger:        zap.NewNop(),
	}
	for _, opt := range opts {
		opt(rt)
	}
	rt.stdout = &pipeWriter{w: rt.stdout}

	if rt.tree == nil {
		tree, err := rt.loadTree(args)
		if err != nil {
			return nil, err
		}
		rt.tree = tree
	}

	if err := rt.buildCommandTree(); err != nil {
		return nil, fmt.Errorf("failed to build command tree: %w", err)
	}
	return rt, nil
}

// loadTree reads the tree named by --command-tree, the environment or the
// config file, in that order, falling back to the embedded tree.
func (rt *Runtime) loadTree(args []string) (*commandtree.CommandTree, error) {
	path := scanFlag(args, flagCommandTree)
	if path == "" {
		cfg, err := rt.loader.Load(nil)
		if err != nil {
			return nil, err
		}
		path = cfg.CommandTree
	}
	if path == "" {
		return commandtree.Default()
	}
	return commandtree.LoadFile(path)
}

// scanFlag finds the value of a long flag before cobra parses the command
// line. Scanning stops at "--".
func scanFlag(args []string, name string) string {
	long := "--" + name
	for i, arg := range args {
		switch {
		case arg == "--":
			return ""
		case arg == long && i+1 < len(args):
			return args[i+1]
		case strings.HasPrefix(arg, long+"="):
			return strings.TrimPrefix(arg, long+"=")
		}
	}
	return ""
}

// buildCommandTree builds the Cobra command tree.
func (rt *Runtime) buildCommandTree() error {
	rt.builder = builder.NewBuilder(rt.tree, &builder.BuilderConfig{
		RootName:        AppName,
		RootDescription: "Pinterest Ads API command-line client",
		ReservedFlags:   []string{flagAdAccountID},
		DefaultExecutor: rt.runOperation,
	})

	root, err := rt.builder.Build()
	if err != nil {
		return err
	}
	root.Version = rt.version
	root.PersistentPreRunE = rt.setup
	root.SetOut(rt.stdout)
	root.SetErr(rt.stderr)
	rt.rootCmd = root

	rt.addGlobalFlags()
	rt.addBuiltinCommands()
	return nil
}

// addBuiltinCommands adds the commands that are not part of the tree.
func (rt *Runtime) addBuiltinCommands() {
	rt.rootCmd.AddCommand(
		rt.newListCmd(),
		rt.newDescribeCmd(),
		rt.newTreeCmd(),
		rt.newRawCmd(),
		rt.newAuthCmd(),
		rt.newVersionCmd(),
	)

	mediaCmd, ok := rt.builder.GetCommandByPath("media")
	if !ok {
		mediaCmd = &cobra.Command{Use: "media", Short: "media operations"}
		rt.rootCmd.AddCommand(mediaCmd)
	}
	mediaCmd.AddCommand(rt.newMediaUploadCmd())
}

// setup resolves configuration and the logger before every command.
func (rt *Runtime) setup(cmd *cobra.Command, _ []string) error {
	cfg, err := rt.loader.Load(rt.rootCmd.PersistentFlags())
	if err != nil {
		return err
	}
	cfg.MergeTree(rt.tree)

	logger, err := rt.newLogger(cfg.Debug)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}

	rt.cfg = cfg
	rt.logger = logger
	if cfg.Output != "" {
		rt.outputManager.SetDefaultFormat(cfg.Output)
	}

	rt.logger.Debug("configuration loaded",
		zap.String("command", cmd.CommandPath()),
		zap.String("base_url", cfg.BaseURL),
		zap.String("config_file", cfg.File))
	return nil
}

// Root returns the root command.
func (rt *Runtime) Root() *cobra.Command {
	return rt.rootCmd
}

// Execute runs the CLI with args.
func (rt *Runtime) Execute(ctx context.Context, args []string) error {
	rt.rootCmd.SetArgs(args)
	defer func() { _ = rt.logger.Sync() }()
	return rt.rootCmd.ExecuteContext(ctx)
}

// Main builds and runs the CLI and returns the process exit code.
func Main(ctx context.Context, args []string, opts ...Option) int {
	// Writes to a closed stdout pipe report EPIPE instead of killing the
	// process.
	signal.Ignore(syscall.SIGPIPE)

	stderr := io.Writer(os.Stderr)
	probe := &Runtime{}
	for _, opt := range opts {
		opt(probe)
	}
	if probe.stderr != nil {
		stderr = probe.stderr
	}

	rt, err := NewRuntime(args, opts...)
	if err != nil {
		return ExitCode(stderr, err)
	}
	return ExitCode(stderr, rt.Execute(ctx, args))
}

// ExitCode prints err and returns the matching exit code: 0 for success and
// for a closed stdout pipe, 1 for every other failure.
func ExitCode(stderr io.Writer, err error) int {
	if err == nil || errors.Is(err, syscall.EPIPE) {
		return 0
	}
	PrintError(stderr, err)
	return 1
}

// PrintError writes "error: <message>". API error messages carry the
// decoded response body as compact JSON.
func PrintError(w io.Writer, err error) {
	fmt.Fprintf(w, "error: %v\n", err)
}

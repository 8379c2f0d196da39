package cli

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"
	"time"

	"sales_dashboard/internal/alerts"
	"sales_dashboard/internal/analytics"
	"sales_dashboard/internal/auth"
	"sales_dashboard/internal/config"
	"sales_dashboard/internal/dashboard"
	"sales_dashboard/internal/llm"
	"sales_dashboard/internal/logging"
	"sales_dashboard/internal/session"

	"go.uber.org/zap"
)

const programName = "sales-dashboard"

// ErrUsage is returned after usage text has been printed for bad arguments.
var ErrUsage = errors.New("usage error")

type Runner struct {
	cfg       config.Config
	options   Options
	root      *zap.Logger
	logger    *zap.Logger
	store     *session.Store
	dashboard *dashboard.Service
	auth      *auth.Service
	stream    *alerts.Stream
	llmClient *llm.Client
	sink      *logging.Sink

	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
}

type command struct {
	name    string
	summary string
	run     func(ctx context.Context, r *Runner, args []string) error
}

var commands = []command{
	{"health", "Check whether the analytics backend is reachable", runHealth},
	{"kpi", "Show sales KPIs", runKPI},
	{"stores", "List store summaries", runStores},
	{"top", "Show the top stores by total sales", runTopStores},
	{"forecast", "Show the weekly sales forecast with its confidence band", runForecast},
	{"recommendations", "Show actionable recommendations", runRecommendations},
	{"inventory", "Show the inventory stockout snapshot", runInventory},
	{"overview", "Show every dashboard panel at once", runOverview},
	{"risk", "Score a week of sales for risk and alerts", runRisk},
	{"anomaly", "Run anomaly detection on a week of sales", runAnomaly},
	{"cluster", "Assign a week of sales to a behaviour cluster", runCluster},
	{"iot", "Push a sensor reading through the IoT ingest pipeline", runIoT},
	{"alerts", "Follow the live alert stream", runAlerts},
	{"login", "Log in as dashboard admin", runLogin},
	{"logout", "Log out and forget the stored token", runLogout},
	{"whoami", "Show the logged-in admin", runWhoami},
	{"export", "Export the overview to an Excel workbook", runExport},
	{"ask", "Ask the assistant about the dashboard (REPL without a question)", runAsk},
}

func NewRunner(cfg config.Config, logger *zap.Logger, store *session.Store, dash *dashboard.Service, authSvc *auth.Service, stream *alerts.Stream, llmClient *llm.Client, sink *logging.Sink) *Runner {
	return &Runner{
		cfg:       cfg,
		options:   optionsFromConfig(cfg),
		root:      logger,
		logger:    logger.Named("cli"),
		store:     store,
		dashboard: dash,
		auth:      authSvc,
		stream:    stream,
		llmClient: llmClient,
		sink:      sink,
		stdin:     os.Stdin,
		stdout:    os.Stdout,
		stderr:    os.Stderr,
	}
}

// newRunnerFromConfig wires every service directly from cfg, for flag
// overrides and tests. sink may be nil.
func newRunnerFromConfig(cfg config.Config, logger *zap.Logger, sink *logging.Sink) (*Runner, error) {
	store := session.NewStore(cfg, logger)
	client, err := analytics.NewClient(cfg, store, logger)
	if err != nil {
		return nil, err
	}
	stream, err := alerts.NewStream(cfg, store, logger)
	if err != nil {
		return nil, err
	}
	return NewRunner(
		cfg,
		logger,
		store,
		dashboard.NewService(client, logger),
		auth.NewService(client, store, logger),
		stream,
		llm.NewClient(cfg, logger),
		sink,
	), nil
}

func (r *Runner) Execute(args []string) error {
	fs := flag.NewFlagSet(programName, flag.ContinueOnError)
	fs.SetOutput(r.stderr)
	fs.Usage = func() { r.usage(fs) }

	opts := r.options
	var timeoutSeconds int
	fs.StringVar(&opts.APIEnv, "env", opts.APIEnv, "Backend environment: local or production (API_ENV)")
	fs.StringVar(&opts.BaseURL, "base-url", opts.BaseURL, "Backend base URL, overrides --env (API_BASE_URL)")
	fs.StringVar(&opts.SessionFile, "session-file", opts.SessionFile, "Session token file (SESSION_FILE)")
	fs.BoolVar(&opts.JSON, "json", false, "Output JSON")
	fs.BoolVar(&opts.Debug, "debug", opts.Debug, "Enable debug logging")
	fs.StringVar(&opts.LogFile, "log-file", opts.LogFile, "Log file path")
	fs.IntVar(&timeoutSeconds, "timeout", int(opts.Timeout.Seconds()), "Request timeout in seconds")
	fs.StringVar(&opts.LLMBaseURL, "llm-base-url", opts.LLMBaseURL, "LLM base URL (LLM_BASE_URL)")
	fs.StringVar(&opts.LLMAPIKey, "llm-api-key", opts.LLMAPIKey, "LLM API key (LLM_API_KEY)")
	fs.StringVar(&opts.LLMModel, "llm-model", opts.LLMModel, "LLM model (LLM_MODEL)")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return ErrUsage
	}
	if timeoutSeconds > 0 {
		opts.Timeout = time.Duration(timeoutSeconds) * time.Second
	}

	rest := fs.Args()
	if len(rest) == 0 {
		r.usage(fs)
		return ErrUsage
	}

	cmd, ok := findCommand(rest[0])
	if !ok {
		fmt.Fprintf(r.stderr, "unknown command %q\n\n", rest[0])
		r.usage(fs)
		return ErrUsage
	}

	if err := r.applyLogging(opts); err != nil {
		return err
	}

	runner := r
	if cfg, changed := opts.apply(r.cfg); changed {
		rebuilt, err := newRunnerFromConfig(cfg, r.root, r.sink)
		if err != nil {
			return err
		}
		rebuilt.stdin, rebuilt.stdout, rebuilt.stderr = r.stdin, r.stdout, r.stderr
		runner = rebuilt
	}
	runner.options = opts

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)
	go func() {
		select {
		case <-sigChan:
			cancel()
		case <-ctx.Done():
		}
	}()

	r.logger.Debug("command", zap.String("name", cmd.name), zap.Strings("args", rest[1:]))
	return friendlyError(cmd.run(ctx, runner, rest[1:]))
}

// applyLogging points the log sink at the --log-file, --debug and --env
// values. Loggers already handed to services follow the sink.
func (r *Runner) applyLogging(opts Options) error {
	if r.sink == nil {
		return nil
	}
	if opts.LogFile == r.cfg.LogFile && opts.Debug == r.cfg.Debug && opts.APIEnv == r.cfg.APIEnv {
		return nil
	}
	return r.sink.Reconfigure(opts.LogFile, opts.Debug, opts.APIEnv)
}

func findCommand(name string) (command, bool) {
	for _, cmd := range commands {
		if cmd.name == name {
			return cmd, true
		}
	}
	return command{}, false
}

func (r *Runner) usage(fs *flag.FlagSet) {
	fmt.Fprintf(r.stderr, "Usage: %s [flags] <command> [command flags]\n\nCommands:\n", fs.Name())
	names := make([]string, 0, len(commands))
	summaries := map[string]string{}
	for _, cmd := range commands {
		names = append(names, cmd.name)
		summaries[cmd.name] = cmd.summary
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(r.stderr, "  %-16s %s\n", name, summaries[name])
	}
	fmt.Fprintln(r.stderr, "\nFlags:")
	fs.PrintDefaults()
}

// newCommandFlags returns a flag set for a subcommand; parse errors are
// reported as ErrUsage.
func (r *Runner) newCommandFlags(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(programName+" "+name, flag.ContinueOnError)
	fs.SetOutput(r.stderr)
	return fs
}

// parseCommandFlags reports ok=false when only help was requested.
func parseCommandFlags(fs *flag.FlagSet, args []string) (bool, error) {
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return false, nil
		}
		return false, ErrUsage
	}
	if fs.NArg() > 0 {
		fmt.Fprintf(fs.Output(), "unexpected arguments: %s\n", strings.Join(fs.Args(), " "))
		return false, ErrUsage
	}
	return true, nil
}

func (r *Runner) writeJSON(payload any) error {
	enc := json.NewEncoder(r.stdout)
	return enc.Encode(payload)
}

func (r *Runner) printf(format string, args ...any) {
	fmt.Fprintf(r.stdout, format, args...)
}

func (r *Runner) println(args ...any) {
	fmt.Fprintln(r.stdout, args...)
}

func sectionTitle(title string, demo bool) string {
	if demo {
		return title + " (demo data)"
	}
	return title
}

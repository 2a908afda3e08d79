package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/spf13/pflag"
	zaplogfmt "github.com/sykesm/zap-logfmt"
	"github.com/thecodeteam/goodbye"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/simplesurance/fedora-bot/internal/bot"
	"github.com/simplesurance/fedora-bot/internal/cfg"
	"github.com/simplesurance/fedora-bot/internal/cmdrun"
	"github.com/simplesurance/fedora-bot/internal/krb"
	"github.com/simplesurance/fedora-bot/internal/logfields"
	"github.com/simplesurance/fedora-bot/internal/metrics"
	"github.com/simplesurance/fedora-bot/internal/notify"
	"github.com/simplesurance/fedora-bot/internal/prfilter"
	"github.com/simplesurance/fedora-bot/internal/registry"
)

const appName = "fedora-bot"

var logger = zap.NewNop()

// Version is set via a ldflag on compilation
var Version = "unknown"

func printErr(msg string, err error) {
	fmt.Fprintln(os.Stderr, "ERROR:", msg+", error:", err.Error())
}

func panicHandler() {
	if r := recover(); r != nil {
		logger.Info(
			"panic caught , terminating gracefully",
			zap.String("panic", fmt.Sprintf("%v", r)),
			zap.StackSkip("stacktrace", 1),
		)

		ctx, cancelFn := context.WithTimeout(context.Background(), time.Minute)
		defer cancelFn()

		goodbye.Exit(ctx, 1)
	}
}

type arguments struct {
	Verbose     *bool
	ConfigFile  *string
	ShowVersion *bool
	DryRun      *bool
	User        *string
	Password    *string
	APIKey      *string
	GithubToken *string
	Components  *[]string

	cfgFileSet bool
}

// hasFedoraCredentials returns true if the account credentials for kinit
// and bodhi were passed.
func (a *arguments) hasFedoraCredentials() bool {
	return *a.User != "" && *a.Password != ""
}

const defConfigFile = "/etc/fedora-bot/config.toml"

func parseCommandlineParams(argv []string) (*arguments, error) {
	flags := pflag.NewFlagSet(appName, pflag.ContinueOnError)

	args := arguments{
		Verbose: flags.BoolP(
			"verbose",
			"v",
			false,
			"enable verbose logging",
		),
		ConfigFile: flags.StringP(
			"cfg-file",
			"c",
			defConfigFile,
			"path to the fedora-bot configuration file, ignored if it does not exist",
		),
		ShowVersion: flags.Bool(
			"version",
			false,
			"print the version and exit",
		),
		DryRun: flags.Bool(
			"dry-run",
			false,
			"do not merge pull requests, create updates or acquire a kerberos ticket, only log what would be done",
		),
		User: flags.StringP(
			"user",
			"u",
			"",
			"Fedora account name, used for kinit and bodhi, bodhi updates are skipped without it",
		),
		Password: flags.StringP(
			"password",
			"p",
			"",
			"password of the Fedora account, bodhi updates are skipped without it",
		),
		APIKey: flags.StringP(
			"apikey",
			"k",
			"",
			"dist-git API token, merging of pull requests is skipped without it",
		),
		GithubToken: flags.String(
			"github-token",
			os.Getenv("GITHUB_TOKEN"),
			"GitHub API token, used to look up upstream releases (env: GITHUB_TOKEN)",
		),
		Components: flags.StringArray(
			"component",
			nil,
			"component to process in the format PACKAGE:NUM_CHECKS[:UPSTREAM], can be specified multiple times",
		),
	}

	flags.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [OPTION]\nMerge Packit pull requests and create Bodhi updates for new upstream releases.\n", appName)
		fmt.Fprintf(os.Stderr, "\nOptions:\n")
		flags.PrintDefaults()
	}

	if err := flags.Parse(argv); err != nil {
		return nil, err
	}

	if flags.NArg() != 0 {
		return nil, fmt.Errorf("unexpected positional arguments: %v", flags.Args())
	}

	args.cfgFileSet = flags.Changed("cfg-file")

	return &args, nil
}

// loadCfg reads the configuration file.
// The default configuration is returned if the default file does not exist.
func loadCfg(args *arguments) (*cfg.Config, error) {
	file, err := os.Open(*args.ConfigFile)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) && !args.cfgFileSet {
			return cfg.Default(), nil
		}

		return nil, err
	}
	defer file.Close()

	return cfg.Load(file)
}

func buildRegistry(config *cfg.Config, args *arguments) (*registry.Registry, error) {
	reg := registry.New()

	if err := config.RegisterComponents(reg); err != nil {
		return nil, fmt.Errorf("invalid component in configuration file %s: %w", *args.ConfigFile, err)
	}

	if err := reg.AddSpecs(*args.Components); err != nil {
		return nil, fmt.Errorf("invalid --component argument: %w", err)
	}

	if reg.Len() == 0 {
		return nil, errors.New("no components defined, define components with --component or in the configuration file")
	}

	return reg, nil
}

func initLogFmtLogger(config *cfg.Config, logLevel zapcore.Level) *zap.Logger {
	cfg := zapEncoderConfig(config)

	logger := zap.New(zapcore.NewCore(
		zaplogfmt.NewEncoder(cfg),
		os.Stdout,
		logLevel),
	)

	return logger
}

func zapEncoderConfig(config *cfg.Config) zapcore.EncoderConfig {
	cfg := zap.NewProductionEncoderConfig()

	cfg.LevelKey = "loglevel"
	cfg.TimeKey = config.LogTimeKey
	cfg.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.EncodeDuration = zapcore.StringDurationEncoder

	return cfg
}

func initZapFormatLogger(config *cfg.Config, logLevel zapcore.Level) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Sampling = nil
	cfg.EncoderConfig = zapEncoderConfig(config)
	cfg.OutputPaths = []string{"stdout"}
	cfg.Encoding = config.LogFormat
	cfg.Level = zap.NewAtomicLevelAt(logLevel)

	return cfg.Build()
}

func initLogger(config *cfg.Config, args *arguments) error {
	var logLevel zapcore.Level
	if *args.Verbose {
		logLevel = zapcore.DebugLevel
	} else {
		if err := (&logLevel).Set(config.LogLevel); err != nil {
			return fmt.Errorf("can not set log level to %q: %w", config.LogLevel, err)
		}
	}

	switch config.LogFormat {
	case "logfmt":
		logger = initLogFmtLogger(config, logLevel)
	case "console", "json":
		var err error
		logger, err = initZapFormatLogger(config, logLevel)
		if err != nil {
			return fmt.Errorf("could not initialize logger: %w", err)
		}
	default:
		return fmt.Errorf("unsupported log-format argument: %q", config.LogFormat)
	}

	logger = logger.Named("main")
	zap.ReplaceGlobals(logger)

	goodbye.Register(func(context.Context, os.Signal) {
		if err := logger.Sync(); err != nil {
			fmt.Fprintf(os.Stderr, "flushing logs failed: %s\n", err)
		}
	})

	return nil
}

func hide(in string) string {
	if in == "" {
		return in
	}

	return "**hidden**"
}

func acquireTicket(ctx context.Context, runner cmdrun.Runner, args *arguments) error {
	if *args.DryRun {
		logger.Info(
			"dry-run mode, not acquiring kerberos ticket",
			logfields.Event("krb_ticket_skipped"),
		)
		return nil
	}

	if !args.hasFedoraCredentials() {
		logger.Info(
			"no Fedora account credentials supplied, not acquiring kerberos ticket",
			logfields.Event("krb_ticket_skipped"),
		)
		return nil
	}

	ticket, err := krb.Acquire(ctx, runner, *args.User, *args.Password)
	if err != nil {
		return err
	}

	logger.Info(
		"kerberos ticket acquired",
		logfields.Event("krb_ticket_acquired"),
		zap.String("krb.principal", ticket.Principal),
		zap.String("krb.ccache", ticket.CCache),
	)

	return nil
}

func pushMetrics(config *cfg.Config, collector *metrics.Collector) {
	if config.PushgatewayURL == "" {
		return
	}

	if err := collector.Push(config.PushgatewayURL); err != nil {
		logger.Warn(
			"pushing metrics failed",
			logfields.Event("metrics_push_failed"),
			zap.String("pushgateway_url", config.PushgatewayURL),
			zap.Error(err),
		)
		return
	}

	logger.Debug(
		"metrics pushed",
		logfields.Event("metrics_pushed"),
		zap.String("pushgateway_url", config.PushgatewayURL),
	)
}

// botConfig returns the bot configuration.
// Outside of dry-run mode, merging is disabled when no dist-git API key was
// passed and updates are disabled when no Fedora credentials were passed.
func botConfig(config *cfg.Config, args *arguments, filter *prfilter.Filter) bot.Config {
	result := bot.Config{
		AutomationIdentity: config.AutomationIdentity,
		PullRequestFilter:  filter,
		UpdateParams:       config.UpdateParams(),
	}

	if *args.DryRun {
		return result
	}

	if *args.APIKey == "" {
		logger.Info(
			"no dist-git API key supplied, merging of pull requests is disabled",
			logfields.Event("merging_disabled"),
		)
		result.DisableMerge = true
	}

	if !args.hasFedoraCredentials() {
		logger.Info(
			"no Fedora account credentials supplied, bodhi updates are disabled",
			logfields.Event("updates_disabled"),
		)
		result.DisableUpdates = true
	}

	return result
}

// run processes all components and returns the exit code of the process.
// It returns 1 when a failure happens before components are processed,
// otherwise 0.
func run(ctx context.Context, argv []string, clients clientFactory) int {
	args, err := parseCommandlineParams(argv)
	if err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return 0
		}

		printErr("invalid arguments", err)
		return 1
	}

	if *args.ShowVersion {
		fmt.Printf("%s %s\n", appName, Version)
		return 0
	}

	config, err := loadCfg(args)
	if err != nil {
		printErr(fmt.Sprintf("could not load configuration file: %s", *args.ConfigFile), err)
		return 1
	}

	reg, err := buildRegistry(config, args)
	if err != nil {
		printErr("invalid components", err)
		return 1
	}

	if err := initLogger(config, args); err != nil {
		printErr("initializing logger failed", err)
		return 1
	}

	filter, err := prfilter.New(config.PullRequestFilter)
	if err != nil {
		logger.Error(
			"parsing pull_request_filter failed",
			logfields.Event("cfg_invalid"),
			zap.Error(err),
		)
		return 1
	}

	logger.Info(
		"loaded cfg",
		logfields.Event("cfg_loaded"),
		zap.String("cfg_file", *args.ConfigFile),
		zap.String("koji_tag", config.KojiTag),
		zap.String("distgit_url", config.DistGitURL),
		zap.String("bodhi_url", config.BodhiURL),
		zap.Bool("release_updates", config.ReleaseUpdates),
		zap.String("upstream_owner", config.UpstreamOwner),
		zap.String("automation_identity", config.AutomationIdentity),
		zap.Stringer("pull_request_filter", filter),
		zap.String("pushgateway_url", config.PushgatewayURL),
		zap.String("log_format", config.LogFormat),
		zap.String("log_time_key", config.LogTimeKey),
		zap.String("log_level", config.LogLevel),
		zap.String("user", *args.User),
		zap.String("password", hide(*args.Password)),
		zap.String("apikey", hide(*args.APIKey)),
		zap.String("github_token", hide(*args.GithubToken)),
		zap.Bool("dry_run", *args.DryRun),
		zap.Stringer("components", reg),
	)

	runner := clients.Runner()

	if err := acquireTicket(ctx, runner, args); err != nil {
		logger.Error(
			"acquiring kerberos ticket failed",
			logfields.Event("krb_ticket_acquisition_failed"),
			zap.Error(err),
		)
		return 1
	}

	distGit, err := clients.DistGit(config, *args.APIKey)
	if err != nil {
		logger.Error(
			"creating dist-git client failed",
			logfields.Event("distgit_client_creation_failed"),
			zap.Error(err),
		)
		return 1
	}

	updates := clients.UpdateGate(config, *args.User, runner)

	if *args.DryRun {
		distGit = bot.NewDryDistGit(distGit, logger)
		updates = bot.NewDryUpdateGate(updates, logger)
	}

	collector := metrics.New()

	opts := []bot.Option{bot.WithMetrics(collector)}
	if config.ReleaseUpdates {
		opts = append(opts, bot.WithReleases(clients.ReleaseService(config)))
	}

	b := bot.New(
		botConfig(config, args, filter),
		clients.BuildService(config, runner),
		clients.UpstreamService(config, *args.GithubToken),
		distGit,
		updates,
		notify.New(os.Getenv("SLACK_WEBHOOK_URL"), notify.WithPrefix(notify.CIRunPrefix())),
		opts...,
	)

	startTime := time.Now()
	b.Run(ctx, reg.Components())
	collector.RunFinished(time.Since(startTime), time.Now())

	pushMetrics(config, collector)

	return 0
}

func main() {
	defer panicHandler()

	goodbye.Notify(context.Background())

	ctx, cancelFn := context.WithCancel(context.Background())
	defer cancelFn()

	goodbye.Register(func(_ context.Context, sig os.Signal) {
		if sig != nil {
			logger.Info(fmt.Sprintf("terminating, received signal %s", sig.String()))
		}
		cancelFn()
	})

	exitCode := run(ctx, os.Args[1:], &fedoraClients{})

	goodbye.Exit(context.Background(), exitCode)
}

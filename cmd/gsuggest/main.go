package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/atinylittleshell/gsuggest/internal/catalog"
	"github.com/atinylittleshell/gsuggest/internal/config"
	"github.com/atinylittleshell/gsuggest/internal/core"
	"github.com/atinylittleshell/gsuggest/internal/lookup"
	"github.com/atinylittleshell/gsuggest/internal/server"
	"github.com/atinylittleshell/gsuggest/pkg/suggestinput"
	"github.com/muesli/termenv"
	"go.uber.org/zap"
	"golang.org/x/term"
)

var BUILD_VERSION = "dev"

var configFile = flag.String("config", "", "use a custom config file instead of ~/.config/gsuggest/config.yaml")
var lookupURL = flag.String("url", "", "lookup endpoint, overrides lookup.url")
var addr = flag.String("addr", "", "listen address for serve, overrides server.addr")

var helpFlag = flag.Bool("h", false, "display help information")
var versionFlag = flag.Bool("ver", false, "display build version")

func usage() {
	fmt.Println("Usage of gsuggest:")
	fmt.Println("  gsuggest [flags]               interactive field with suggestions")
	fmt.Println("  gsuggest [flags] serve         run the lookup service")
	fmt.Println("  gsuggest [flags] lookup QUERY  print the matches for QUERY")
	fmt.Println()
	flag.PrintDefaults()
}

func main() {
	flag.Parse()

	if *versionFlag {
		fmt.Println(BUILD_VERSION)
		return
	}

	if *helpFlag {
		usage()
		return
	}

	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "gsuggest: %v\n", err)
		os.Exit(2)
	}

	logger, err := initializeLogger(cfg, flag.Arg(0) == "serve")
	if err != nil {
		panic(err)
	}
	defer func() {
		_ = logger.Sync() // Flush any buffered log entries
	}()

	logger.Info("-------- new gsuggest session --------", zap.Any("args", os.Args))

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	err = run(ctx, cfg, logger)
	if errors.Is(err, core.ErrInterrupted) {
		os.Exit(130)
	}
	if err != nil {
		logger.Error("unhandled error", zap.Error(err))
		fmt.Fprintf(os.Stderr, "gsuggest: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	switch flag.Arg(0) {
	case "serve":
		return serve(ctx, cfg, logger)

	case "lookup":
		query := strings.Join(flag.Args()[1:], " ")
		return lookupOnce(ctx, cfg, query, os.Stdout, logger)

	case "":
		if !term.IsTerminal(int(os.Stdin.Fd())) {
			return errors.New("the interactive field needs a terminal; use `gsuggest lookup QUERY` instead")
		}
		client, err := lookup.NewClient(cfg.Lookup.URL, logger)
		if err != nil {
			return err
		}
		value, err := core.RunInteractiveField(ctx, cfg.Lookup, client, logger)
		if err != nil {
			return err
		}
		fmt.Println(value)
		return nil

	default:
		usage()
		return fmt.Errorf("unknown command %q", flag.Arg(0))
	}
}

func loadConfig() (*config.Config, error) {
	path := *configFile
	if path == "" {
		path = core.ConfigFile()
	}

	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	cfg.ApplyEnv(os.Getenv)

	if *lookupURL != "" {
		cfg.Lookup.URL = *lookupURL
	}
	if *addr != "" {
		cfg.Server.Addr = *addr
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func initializeLogger(cfg *config.Config, toStderr bool) (*zap.Logger, error) {
	logLevel, err := zap.ParseAtomicLevel(cfg.Log.Level)
	if err != nil {
		return nil, err
	}
	if BUILD_VERSION == "dev" {
		logLevel = zap.NewAtomicLevelAt(zap.DebugLevel)
	}

	logFile := cfg.Log.File
	if logFile == "" {
		logFile = core.LogFile()
	}
	if cfg.Log.Clean {
		_ = os.Remove(logFile)
	}

	loggerConfig := zap.NewProductionConfig()
	loggerConfig.Level = logLevel
	loggerConfig.OutputPaths = []string{logFile}
	if toStderr {
		loggerConfig.OutputPaths = append(loggerConfig.OutputPaths, "stderr")
	}

	return loggerConfig.Build()
}

func newMatcher(cfg config.ServerConfig) (catalog.Matcher, func(), error) {
	switch cfg.Backend {
	case config.BackendSQLite:
		dbPath := cfg.Database
		if dbPath == "" {
			dbPath = core.CatalogDB()
		}
		store, err := catalog.NewStore(dbPath)
		if err != nil {
			return nil, nil, err
		}
		return store, func() { _ = store.Close() }, nil

	default:
		idx := catalog.NewIndex(nil)
		idx.Fuzzy = cfg.Fuzzy
		return idx, func() {}, nil
	}
}

func serve(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	matcher, closeMatcher, err := newMatcher(cfg.Server)
	if err != nil {
		return err
	}
	defer closeMatcher()

	if err := catalog.Reload(matcher, cfg.Server.Catalog, logger); err != nil {
		return err
	}
	if cfg.Server.Watch {
		if err := catalog.Watch(ctx, matcher, cfg.Server.Catalog, logger); err != nil {
			return err
		}
	}

	handler := &server.Handler{
		Matcher: matcher,
		Limit:   cfg.Server.Limit,
		Logger:  logger,
	}
	return server.New(cfg.Server.Addr, cfg.Server.BasePath, handler, logger).Run(ctx)
}

func lookupOnce(ctx context.Context, cfg *config.Config, query string, w io.Writer, logger *zap.Logger) error {
	if query == "" {
		return errors.New("lookup needs a query")
	}

	client, err := lookup.NewClient(cfg.Lookup.URL, logger)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, cfg.Lookup.Timeout)
	defer cancel()

	matches, err := client.Fetch(ctx, query)
	if err != nil {
		return err
	}

	printMatches(termenv.NewOutput(w), query, matches)
	return nil
}

// printMatches writes one match per line, emphasising the part that
// completes the query.
func printMatches(out *termenv.Output, query string, matches []suggestinput.Match) {
	for _, match := range matches {
		name := match.Name
		if len(query) <= len(name) && strings.EqualFold(name[:len(query)], query) {
			name = name[:len(query)] + out.String(name[len(query):]).Bold().String()
		}
		fmt.Fprintln(out, name)
	}
}

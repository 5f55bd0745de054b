package main

import (
	"context"
	"fmt"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/alexanderramin/kanbantree/internal/cli"
	"github.com/alexanderramin/kanbantree/internal/config"
	"github.com/alexanderramin/kanbantree/internal/db"
	"github.com/alexanderramin/kanbantree/internal/idgen"
	"github.com/alexanderramin/kanbantree/internal/loader"
	"github.com/alexanderramin/kanbantree/internal/persist"
	"github.com/alexanderramin/kanbantree/internal/repository"
	"github.com/alexanderramin/kanbantree/internal/seed"
	"github.com/alexanderramin/kanbantree/internal/service"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	app := &cli.App{}

	// Detect interactive terminal for the TUI default and huh prompts.
	app.IsInteractive = func() bool {
		return isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd())
	}

	var closers []func()
	defer func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}()

	app.Connect = func(flags cli.GlobalFlags) error {
		cfg, err := loadConfig(flags)
		if err != nil {
			return err
		}

		log, err := newLogger(cfg.LogLevel, flags.Verbose)
		if err != nil {
			return fmt.Errorf("building logger: %w", err)
		}
		closers = append(closers, func() { _ = log.Sync() })

		kv, closeKV, err := openKV(cfg)
		if err != nil {
			return err
		}
		closers = append(closers, closeKV)
		log.Debug("Storage ready", zap.String("backend", string(cfg.Backend)))

		policy, err := cfg.Policy()
		if err != nil {
			return err
		}

		// Wire persistence
		cardIDs := idgen.NewCardGenerator()
		nodeIDs := idgen.NewNodeGenerator()
		boardSaved := persist.NewSavedIndicator(cfg.SavedIndicator())
		treeSaved := persist.NewSavedIndicator(cfg.SavedIndicator())
		closers = append(closers, boardSaved.Stop, treeSaved.Stop)

		boardStore := persist.NewBoardStore(kv, cardIDs, log,
			persist.WithBoardKey(cfg.BoardKey), persist.WithBoardIndicator(boardSaved))
		treeStore := persist.NewTreeStore(kv, nodeIDs, log,
			persist.WithTreeKey(cfg.TreeKey), persist.WithTreeIndicator(treeSaved))

		// Wire the lazy loader
		fetcher := loader.NewMockFetcher(seed.Children(), loader.WithLatency(cfg.FetchLatency()))

		// Wire services
		ctx := context.Background()
		observer := service.NewLogUseCaseObserver(log)
		app.Board = service.NewBoardService(ctx, boardStore, cardIDs, observer)
		treeSvc := service.NewTreeService(ctx, treeStore, nodeIDs, loader.New(fetcher, policy), log, observer)
		app.Tree = treeSvc
		closers = append(closers, treeSvc.Close)
		app.SavedFor = cfg.SavedIndicator()
		return nil
	}

	rootCmd := cli.NewRootCmd(app)
	return rootCmd.Execute()
}

// loadConfig reads the config file and lets the global flags override it.
func loadConfig(flags cli.GlobalFlags) (config.Config, error) {
	cfg, err := config.Load(flags.ConfigPath)
	if err != nil {
		return config.Config{}, err
	}
	if flags.Backend != "" {
		cfg.Backend = config.Backend(flags.Backend)
	}
	if flags.DBPath != "" {
		cfg.DBPath = flags.DBPath
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

func newLogger(level string, verbose bool) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("log_level: %w", err)
	}
	if verbose {
		lvl = zapcore.DebugLevel
	}
	zcfg := zap.NewProductionConfig()
	zcfg.Level = zap.NewAtomicLevelAt(lvl)
	zcfg.Encoding = "console"
	zcfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	zcfg.OutputPaths = []string{"stderr"}
	return zcfg.Build()
}

func openKV(cfg config.Config) (repository.KVStore, func(), error) {
	switch cfg.Backend {
	case config.BackendRedis:
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		if err := client.Ping(context.Background()).Err(); err != nil {
			client.Close()
			return nil, nil, fmt.Errorf("connecting to redis at %s: %w", cfg.RedisAddr, err)
		}
		return repository.NewRedisKVStore(client, repository.DefaultRedisPrefix), func() { _ = client.Close() }, nil
	case config.BackendMemory:
		return repository.NewMemoryKVStore(), func() {}, nil
	default:
		database, err := db.OpenDB(cfg.DBPath)
		if err != nil {
			return nil, nil, fmt.Errorf("opening database: %w", err)
		}
		return repository.NewSQLiteKVStore(database), func() { _ = database.Close() }, nil
	}
}

package main

import (
	"errors"
	"fmt"
	"net/http"

	apppkg "github.com/kk-code-lab/rtree/internal/app"
	"github.com/kk-code-lab/rtree/internal/config"
	"github.com/kk-code-lab/rtree/internal/logging"
	"github.com/kk-code-lab/rtree/internal/metrics"
	statepkg "github.com/kk-code-lab/rtree/internal/state"
	"github.com/kk-code-lab/rtree/internal/store"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type rootOptions struct {
	configPath  string
	logLevel    string
	logFile     string
	dbPath      string
	metricsAddr string
	reveal      string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:   "rtree [paths...]",
		Short: "Project tree panel for the terminal",
		Long: `rtree shows one or more directories as an expandable tree.

Each path becomes a root of the tree; without paths the working directory
is used. Press ? inside the panel for the key bindings.`,
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPanel(opts, args)
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&opts.configPath, "config", config.DefaultPath(), "settings file")
	flags.StringVar(&opts.logLevel, "log-level", "", "log level: debug, info, warn, error")
	flags.StringVar(&opts.logFile, "log-file", "", "write logs to this file")
	flags.StringVar(&opts.dbPath, "db", "", "panel state database (default: user cache directory)")

	cmd.Flags().StringVar(&opts.metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address, e.g. :9090")
	cmd.Flags().StringVar(&opts.reveal, "reveal", "", "select this path at startup")

	cmd.AddCommand(newListCmd(opts), newConfigCmd(opts))
	return cmd
}

// load reads the settings file, applies flag overrides and starts logging.
func (o *rootOptions) load() (config.Config, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return cfg, err
	}
	if o.logLevel != "" {
		cfg.Log.Level = o.logLevel
	}
	if o.logFile != "" {
		cfg.Log.Path = o.logFile
	}
	if o.dbPath != "" {
		cfg.Store.Path = o.dbPath
	}
	if err := logging.Init(logging.Config{Level: cfg.Log.Level, OutputPath: cfg.Log.Path}); err != nil {
		return cfg, fmt.Errorf("init logging: %w", err)
	}
	return cfg, nil
}

func runPanel(opts *rootOptions, paths []string) error {
	cfg, err := opts.load()
	if err != nil {
		return err
	}
	defer func() { _ = logging.Sync() }()
	logger := logging.L()

	if opts.metricsAddr != "" {
		metricsServer := &http.Server{
			Addr:    opts.metricsAddr,
			Handler: metrics.Handler(),
		}
		go func() {
			logger.Info("metrics server listening", zap.String("addr", opts.metricsAddr))
			if err := metricsServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
				logger.Error("metrics server error", zap.Error(err))
			}
		}()
		defer func() { _ = metricsServer.Close() }()
	}

	var kv statepkg.KVStore
	if db, err := openStore(cfg.Store.Path); err != nil {
		logger.Warn("panel state will not be persisted", zap.Error(err))
	} else {
		defer func() { _ = db.Close() }()
		kv = db
	}

	app, err := apppkg.NewApplication(paths, apppkg.Options{
		Config: cfg,
		Store:  kv,
		Logger: logger,
		Reveal: opts.reveal,
	})
	if err != nil {
		return fmt.Errorf("initializing application: %w", err)
	}
	defer func() { _ = app.Close() }()

	app.Run()
	return nil
}

func openStore(path string) (*store.DB, error) {
	if path == "" {
		var err error
		if path, err = store.DefaultPath(); err != nil {
			return nil, err
		}
	}
	return store.Open(path)
}

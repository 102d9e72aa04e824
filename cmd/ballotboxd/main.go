// Command ballotboxd runs a ballotbox node: the election ledger on a local
// pebble database served over the HTTP API.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"github.com/vocdoni/ballotbox/config"
	"github.com/vocdoni/ballotbox/ledger"
	"github.com/vocdoni/ballotbox/log"
	"github.com/vocdoni/ballotbox/service"
	"github.com/vocdoni/ballotbox/storage"
	"go.vocdoni.io/dvote/db/metadb"
	"golang.org/x/sync/errgroup"
)

var conf = config.Default()

func init() {
	flags := rootCmd.Flags()
	flags.StringVarP(&conf.DataDir, "datadir", "d", conf.DataDir, "directory where the ledger database is stored")
	flags.StringVar(&conf.DBType, "dbType", conf.DBType, "database backend")
	flags.StringVarP(&conf.LogLevel, "logLevel", "l", conf.LogLevel, "log level (debug, info, warn, error)")
	flags.StringVarP(&conf.LogOutput, "logOutput", "o", conf.LogOutput, "log output (stdout, stderr or a file path)")
	flags.StringVar(&conf.LogErrorFile, "logErrorFile", conf.LogErrorFile, "file where warnings and errors are also written")
	flags.StringVar(&conf.APIHost, "listenHost", conf.APIHost, "API listen address")
	flags.IntVarP(&conf.APIPort, "listenPort", "p", conf.APIPort, "API listen port")
	flags.BoolVar(&conf.MetricsEnabled, "metrics", conf.MetricsEnabled, "expose prometheus metrics on /metrics")
}

var rootCmd = &cobra.Command{
	Use:   "ballotboxd",
	Short: "Run a ballotbox node",
	Long:  "Run a ballotbox node. Flags may also be set with BALLOTBOX_* environment variables, flags take precedence.",
	Args:  cobra.NoArgs,
	PreRunE: func(cmd *cobra.Command, _ []string) error {
		// environment values only apply where no flag was given
		env := config.Default()
		if err := env.LoadEnv(os.LookupEnv); err != nil {
			return err
		}
		flags := cmd.Flags()
		if !flags.Changed("datadir") {
			conf.DataDir = env.DataDir
		}
		if !flags.Changed("dbType") {
			conf.DBType = env.DBType
		}
		if !flags.Changed("logLevel") {
			conf.LogLevel = env.LogLevel
		}
		if !flags.Changed("logOutput") {
			conf.LogOutput = env.LogOutput
		}
		if !flags.Changed("logErrorFile") {
			conf.LogErrorFile = env.LogErrorFile
		}
		if !flags.Changed("listenHost") {
			conf.APIHost = env.APIHost
		}
		if !flags.Changed("listenPort") {
			conf.APIPort = env.APIPort
		}
		if !flags.Changed("metrics") {
			conf.MetricsEnabled = env.MetricsEnabled
		}
		return conf.Validate()
	},
	RunE: func(cmd *cobra.Command, _ []string) error {
		return run(cmd.Context())
	},
}

func run(ctx context.Context) error {
	var errorOutput io.Writer
	if conf.LogErrorFile != "" {
		f, err := os.OpenFile(conf.LogErrorFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
		if err != nil {
			return fmt.Errorf("cannot open log error file: %w", err)
		}
		defer f.Close()
		errorOutput = f
	}
	log.Init(conf.LogLevel, conf.LogOutput, errorOutput)

	database, err := metadb.New(conf.DBType, conf.DBDir())
	if err != nil {
		return fmt.Errorf("cannot open database: %w", err)
	}
	stg := storage.New(database)
	defer stg.Close()
	l := ledger.New(stg)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	metrics, err := service.NewMetrics(l, prometheus.DefaultRegisterer)
	if err != nil {
		return err
	}
	apiService := service.NewAPI(l, conf.APIHost, conf.APIPort, conf.MetricsEnabled)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return metrics.Start(gctx)
	})
	g.Go(func() error {
		return apiService.Start(gctx)
	})
	if err := g.Wait(); err != nil {
		metrics.Stop()
		_ = apiService.Stop()
		return err
	}
	log.Infow("ballotbox node started", "datadir", conf.DataDir, "host", conf.APIHost, "port", conf.APIPort)

	<-ctx.Done()
	log.Info("shutting down")
	if err := apiService.Stop(); err != nil {
		log.Warnw("failed to stop api", "error", err)
	}
	metrics.Stop()
	return nil
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

package main

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/markkevins109/prop-panda-webscape-05-sub000/internal/config"
	"github.com/markkevins109/prop-panda-webscape-05-sub000/internal/ingest"
	"github.com/markkevins109/prop-panda-webscape-05-sub000/internal/logging"
	"github.com/markkevins109/prop-panda-webscape-05-sub000/internal/storage"

	// register all backends with the storage factory.
	_ "github.com/markkevins109/prop-panda-webscape-05-sub000/internal/storage/all"
)

// app is the state shared by every subcommand of one invocation.
type app struct {
	env    map[string]string // nil reads the process environment and .env files
	in     io.Reader
	out    io.Writer
	errOut io.Writer

	cfg            config.Config
	log            *logrus.Logger
	metricsHandler http.Handler

	cleanup []func()
}

// globalFlags mirror config fields; a flag wins only when set.
type globalFlags struct {
	storage        string
	dsn            string
	table          string
	logLevel       string
	metricsBackend string
}

func run(args []string, env map[string]string, in io.Reader, out, errOut io.Writer) int {
	a := &app{env: env, in: in, out: out, errOut: errOut}
	root := newRootCmd(a)
	root.SetArgs(args)
	root.SetIn(in)
	root.SetOut(out)
	root.SetErr(errOut)

	err := root.Execute()
	a.close()
	if err != nil {
		fmt.Fprintf(errOut, "error: %s\n", ingest.Describe(err))
	}
	return exitCode(err)
}

func newRootCmd(a *app) *cobra.Command {
	var gf globalFlags

	cmd := &cobra.Command{
		Use:           "propimport",
		Short:         "Validate and import property listing CSV files",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd, gf)
		},
	}
	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error { return usageError(err) })

	pf := cmd.PersistentFlags()
	pf.StringVar(&gf.storage, "storage", "", "storage kind: sqlite, postgres, mssql or memory (env PROPIMPORT_STORAGE_KIND)")
	pf.StringVar(&gf.dsn, "dsn", "", "storage DSN (env PROPIMPORT_STORAGE_DSN)")
	pf.StringVar(&gf.table, "table", "", "destination table (env PROPIMPORT_STORAGE_TABLE)")
	pf.StringVar(&gf.logLevel, "log-level", "", "log level (env PROPIMPORT_LOG_LEVEL)")
	pf.StringVar(&gf.metricsBackend, "metrics-backend", "", "none, pushgateway, prometheus or datadog (env PROPIMPORT_METRICS_BACKEND)")

	cmd.AddCommand(newCheckCmd(a), newImportCmd(a), newServeCmd(a), newInitDBCmd(a))
	return cmd
}

// setup resolves configuration (flag → env → default), validates it and
// builds the logger and metrics backend.
func (a *app) setup(cmd *cobra.Command, gf globalFlags) error {
	var (
		cfg config.Config
		err error
	)
	if a.env != nil {
		cfg, err = config.FromMap(a.env)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return usageError(err)
	}

	flags := cmd.Flags()
	if flags.Changed("storage") {
		cfg.StorageKind = gf.storage
	}
	if flags.Changed("dsn") {
		cfg.StorageDSN = gf.dsn
	}
	if flags.Changed("table") {
		cfg.StorageTable = gf.table
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = gf.logLevel
	}
	if flags.Changed("metrics-backend") {
		cfg.MetricsBackend = gf.metricsBackend
	}

	issues := config.Validate(cfg)
	for _, iss := range issues {
		fmt.Fprintf(a.errOut, "%s: %s: %s\n", iss.Severity, iss.Path, iss.Message)
	}
	if err := config.Err(issues); err != nil {
		return usageError(fmt.Errorf("invalid configuration: %w", err))
	}
	a.cfg = cfg

	log, err := logging.NewWithOutput(a.errOut, cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return usageError(err)
	}
	a.log = log

	return a.setupMetrics()
}

// openStore opens the configured store and, when enabled, creates the
// destination table.
func (a *app) openStore(ctx context.Context) (storage.Store, error) {
	s, err := storage.New(ctx, storage.Config{
		Kind:  a.cfg.StorageKind,
		DSN:   a.cfg.StorageDSN,
		Table: a.cfg.StorageTable,
	})
	if err != nil {
		return nil, storageError(err)
	}
	a.cleanup = append(a.cleanup, s.Close)

	if a.cfg.AutoCreateTable {
		if err := storage.EnsureTable(ctx, a.cfg.StorageKind, s, a.cfg.StorageTable); err != nil {
			return nil, storageError(err)
		}
	}
	return s, nil
}

func (a *app) pipeline() *ingest.Pipeline {
	p := ingest.NewPipeline(a.log)
	p.Job = a.cfg.Job
	return p
}

func (a *app) committer(s ingest.RecordStore, policy ingest.CommitPolicy) *ingest.Committer {
	c := ingest.NewCommitter(s, a.log)
	c.Job = a.cfg.Job
	c.Policy = policy
	return c
}

// close runs cleanups in reverse order.
func (a *app) close() {
	for i := len(a.cleanup) - 1; i >= 0; i-- {
		a.cleanup[i]()
	}
	a.cleanup = nil
}

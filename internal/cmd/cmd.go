// Package cmd is responsible for the program's command-line interface.
package cmd

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"runtime"
	"time"

	"github.com/AdguardTeam/golibs/errors"
	"github.com/AdguardTeam/golibs/log"
	"github.com/AdguardTeam/golibs/netutil"
	"github.com/ameshkov/nodeadmin/internal/adminsrv"
	"github.com/ameshkov/nodeadmin/internal/config"
	"github.com/ameshkov/nodeadmin/internal/metrics"
	"github.com/ameshkov/nodeadmin/internal/store"
	"github.com/ameshkov/nodeadmin/internal/version"
	"github.com/getsentry/sentry-go"
	goFlags "github.com/jessevdk/go-flags"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Main is the entry point of the program.
func Main() {
	if len(os.Args) == 2 && os.Args[1] == "--version" {
		fmt.Printf("nodeadmin version: %s\n", version.Version())

		os.Exit(0)
	}

	o, err := parseOptions()
	var flagErr *goFlags.Error
	if errors.As(err, &flagErr) && flagErr.Type == goFlags.ErrHelp {
		// This is a special case when we exit process here as we received
		// --help.
		os.Exit(0)
	}

	check("parse args", err)

	envs, err := readEnvs()
	check("read environment", err)

	if o.Verbose {
		log.SetLevel(log.DEBUG)
	}

	if o.CheckPath != "" {
		os.Exit(checkDraft(os.Stdout, o.CheckPath))
	}

	cfg, err := config.Load(o.ConfigPath)
	check("load config file", err)

	if envs.DatabasePath != "" {
		cfg.Database.Path = envs.DatabasePath
	}

	if cfg.Sentry != nil {
		err = sentry.Init(sentry.ClientOptions{
			Dsn:     cfg.Sentry.DSN,
			Release: version.Version(),
		})
		check("init sentry", err)
	}

	storeCfg, err := cfg.ToStoreConfig()
	check("parse database config", err)

	st, err := store.Open(storeCfg)
	check("open database", err)

	adminCfg, err := cfg.ToAdminConfig(st)
	check("parse admin config", err)

	adminSrv, err := adminsrv.New(adminCfg)
	check("init admin server", err)

	err = adminSrv.Start()
	check("start admin server", err)

	metrics.SetUpGauge(version.Version(), version.Branch(), version.Revision(), runtime.Version())

	if cfg.Prometheus != nil {
		go serveMetrics(cfg.Prometheus.Addr, cfg.Prometheus.Port)
	}

	sigHandler := newSignalHandler(
		service{Closer: adminSrv, name: "admin server"},
		service{Closer: st, name: "database"},
	)
	os.Exit(sigHandler.handle())
}

// check reports err and exits if err is not nil.
func check(operationName string, err error) {
	if err != nil {
		log.Error("failed to %s: %v", operationName, err)

		sentry.CaptureException(fmt.Errorf("%s: %w", operationName, err))
		sentry.Flush(sentryFlushTimeout)

		os.Exit(statusError)
	}
}

// serveMetrics starts the prometheus metrics server.
func serveMetrics(listenAddr string, port uint16) {
	defer log.OnPanic("serveMetrics")

	metricsAddr := netutil.JoinHostPort(listenAddr, port)
	log.Info("Starting metrics at %s", metricsAddr)

	mux := &http.ServeMux{}
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/health-check", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, "OK")
	})

	srv := &http.Server{
		Addr:         metricsAddr,
		Handler:      mux,
		ReadTimeout:  time.Minute,
		WriteTimeout: time.Minute,
	}

	if err := srv.ListenAndServe(); err != nil {
		log.Fatalf("Metrics failed to listen to %s: %v", metricsAddr, err)
	}
}

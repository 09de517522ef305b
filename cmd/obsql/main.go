package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/opentracing/opentracing-go"
	"go.uber.org/zap"

	"github.com/hugozhu/obclient/config"
	"github.com/hugozhu/obclient/errors"
	"github.com/hugozhu/obclient/logutil"
	"github.com/hugozhu/obclient/metrics"
	"github.com/hugozhu/obclient/obwire"
	"github.com/hugozhu/obclient/signal"
	"github.com/hugozhu/obclient/sys/linux"
	"github.com/hugozhu/obclient/systimemon"
)

var (
	configPath = flag.String("config", "", "config file path")
	host       = flag.String("host", "", "server host (overrides config)")
	port       = flag.Uint("port", 0, "server port (overrides config)")
	logLevel   = flag.String("L", "", "log level: debug, info, warn, error, fatal")
)

func main() {
	flag.Parse()
	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: obsql [flags] <sql>")
		os.Exit(2)
	}
	sql := flag.Arg(0)

	cfg := loadConfig()
	err := logutil.InitLogger(cfg.Log.ToLogConfig())
	errors.MustNil(err)
	printInfo(cfg)

	setupTracing(cfg)
	metrics.RegisterMetrics()
	var statusServer interface{ Close() error }
	if cfg.Status.ReportStatus {
		statusServer = obwire.StartStatusServer(cfg)
	}
	go systimemon.StartMonitor(time.Now, func() {
		metrics.TimeJumpBackCounter.Inc()
	}, func() {})

	ctx := context.Background()
	conn, err := obwire.Open(ctx, cfg)
	errors.MustNil(err)
	signal.SetupSignalHandler(func(_ bool) {
		errors.Log(conn.Close())
		os.Exit(1)
	})

	err = conn.Query(ctx, sql, printHandler{})
	if err != nil {
		if _, ok := errors.Cause(err).(*obwire.ServerError); !ok {
			errors.MustNil(err)
		}
	}

	errors.Log(conn.Close())
	if statusServer != nil {
		errors.Log(statusServer.Close())
	}
}

func loadConfig() *config.Config {
	cfg := config.NewConfig()
	if *configPath != "" {
		err := cfg.Load(*configPath)
		errors.MustNil(err)
	}
	if *host != "" {
		cfg.Host = *host
	}
	if *port != 0 {
		cfg.Port = uint16(*port)
	}
	if *logLevel != "" {
		cfg.Log.Level = *logLevel
	}
	err := cfg.Valid()
	errors.MustNil(err)
	config.StoreGlobalConfig(cfg)
	return cfg
}

func printInfo(cfg *config.Config) {
	osVersion, err := linux.OSVersion()
	if err != nil {
		osVersion = ""
	}
	logutil.BgLogger().Info("connecting",
		zap.String("target", cfg.Addr()),
		zap.String("pool", cfg.PoolKey()),
		zap.String("os", osVersion),
	)
}

func setupTracing(cfg *config.Config) {
	tracingCfg := cfg.OpenTracing.ToTracingConfig()
	tracingCfg.ServiceName = "obsql"
	tracer, _, err := tracingCfg.NewTracer()
	errors.MustNil(err)
	opentracing.SetGlobalTracer(tracer)
}

// printHandler writes result units to stdout as they arrive.
type printHandler struct{}

func (printHandler) OnColumns(names []string) {
	for i, name := range names {
		if i > 0 {
			fmt.Print("\t")
		}
		fmt.Print(name)
	}
	fmt.Println()
}

func (printHandler) OnRow(values [][]byte) {
	for i, v := range values {
		if i > 0 {
			fmt.Print("\t")
		}
		if v == nil {
			fmt.Print("NULL")
		} else {
			fmt.Print(string(v))
		}
	}
	fmt.Println()
}

func (printHandler) OnServerError(err *obwire.ServerError) {
	fmt.Fprintln(os.Stderr, err.Error())
}

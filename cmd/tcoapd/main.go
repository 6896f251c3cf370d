// Tencent is pleased to support the open source community by making tRPC available.
// Copyright (C) 2023 THL A29 Limited, a Tencent company. All rights reserved.
// If you have downloaded a copy of the tRPC source code from Tencent,
// please note that tRPC source code is licensed under the Apache 2.0 License,
// A copy of the Apache 2.0 License is included in this file.

// Command tcoapd serves static resources over CoAP/UDP.
package main

import (
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"trpc.group/trpc-go/tcoap"
	"trpc.group/trpc-go/tcoap/log"
	"trpc.group/trpc-go/tcoap/metrics"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:           "tcoapd",
	Short:         "CoAP over UDP resource server",
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return run()
	},
}

func init() {
	rootCmd.Flags().StringVarP(&configPath, "config", "c", "tcoapd.yaml", "path to configuration file")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Errorf("tcoapd: %v", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := LoadConfig(configPath)
	if err != nil {
		return err
	}
	initLogger(cfg.Logging.Level)

	opts := []tcoap.Option{
		tcoap.WithReusePort(cfg.Server.ReusePort),
	}
	if cfg.Server.Workers > 0 {
		opts = append(opts, tcoap.WithWorkerCount(cfg.Server.Workers))
	}
	if cfg.Server.MaxPacketSize > 0 {
		opts = append(opts, tcoap.WithMaxPacketSize(cfg.Server.MaxPacketSize))
	}
	if cfg.Server.Overload == "reject" {
		opts = append(opts, tcoap.WithOverloadPolicy(tcoap.OverloadReject))
	}
	srv, err := tcoap.NewServer(cfg.Server.Listen, opts...)
	if err != nil {
		return err
	}
	defer srv.Close()

	if cfg.Admin.Enabled {
		startAdmin(cfg.Admin.Listen)
	}

	if err := srv.Start(newResourceHandler(cfg.Resources)); err != nil {
		return err
	}
	log.Infof("tcoapd: serving %d resources on %s", len(cfg.Resources), srv.Addr())

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	s := <-sig
	log.Infof("tcoapd: received %s, shutting down", s)
	srv.Stop()
	return nil
}

// initLogger replaces the default logger with one at the configured
// level. Levels are validated during config loading.
func initLogger(level string) {
	lvl := zapcore.InfoLevel
	switch level {
	case "debug":
		lvl = zapcore.DebugLevel
	case "warn":
		lvl = zapcore.WarnLevel
	case "error":
		lvl = zapcore.ErrorLevel
	}
	log.Default = zap.New(
		zapcore.NewCore(
			zapcore.NewConsoleEncoder(zap.NewProductionEncoderConfig()),
			zapcore.AddSync(os.Stdout),
			zap.NewAtomicLevelAt(lvl),
		),
		zap.AddCaller(),
		zap.AddCallerSkip(1),
	).Sugar()
}

// startAdmin exposes dispatch counters over HTTP for prometheus
// scraping.
func startAdmin(listen string) {
	reg := prometheus.NewRegistry()
	reg.MustRegister(metrics.NewCollector())
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	go func() {
		if err := http.ListenAndServe(listen, mux); err != nil {
			log.Errorf("tcoapd: admin endpoint: %v", err)
		}
	}()
	log.Infof("tcoapd: admin endpoint on %s", listen)
}

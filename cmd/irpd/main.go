// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

// Command irpd runs one intra-domain routing daemon instance: it loads
// a YAML configuration, instantiates the configured protocol engine,
// and drives the UDP event loop until terminated.
package main

import (
	"context"
	"flag"
	"fmt"
	"net"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"grimm.is/flywall/internal/config"
	"grimm.is/flywall/internal/daemon"
	"grimm.is/flywall/internal/forwarding"
	"grimm.is/flywall/internal/logging"
	"grimm.is/flywall/internal/mgmt"
	"grimm.is/flywall/internal/qos"
	"grimm.is/flywall/internal/telemetry"
)

func main() {
	os.Exit(run())
}

func run() int {
	configPath := flag.String("config", "/etc/irpd/irpd.yaml", "path to the daemon's YAML configuration")
	logFormat := flag.String("log-format", "text", "log output format: text or json")
	flag.Parse()

	logCfg := logging.DefaultConfig()
	if *logFormat == "json" {
		logCfg.Format = logging.FormatJSON
	}
	logger := logging.New(logCfg)
	logging.SetDefault(logger)

	result, err := config.LoadFileWithOptions(*configPath, config.DefaultLoadOptions())
	if err != nil {
		logger.Error("failed to load configuration", "path", *configPath, "error", err)
		return 1
	}
	for _, w := range result.Warnings {
		logger.Warn("configuration warning", "detail", w)
	}
	cfg := result.Config

	engine, err := daemon.NewProtocolEngine(cfg)
	if err != nil {
		logger.Error("failed to build protocol engine", "error", err)
		return 1
	}

	applier, cleanupApplier := buildApplier(cfg, logger)
	defer cleanupApplier()

	qdiscCtl := buildQdiscController(cfg, logger)

	var store *mgmt.Store
	var metrics *telemetry.Metrics
	var mgmtSrv *mgmt.Server
	if cfg.Management.HTTP.Enabled {
		store = mgmt.NewStore()
		metrics = telemetry.NewMetrics(prometheus.DefaultRegisterer)
		addr := net.JoinHostPort(cfg.Management.HTTP.Address, strconv.Itoa(cfg.Management.HTTP.Port))
		mgmtSrv = mgmt.NewServer(addr, store, logger)
	}

	d, err := daemon.New(cfg, engine, applier, qdiscCtl, store, metrics, logger)
	if err != nil {
		logger.Error("failed to construct daemon", "error", err)
		return 1
	}
	defer d.Close()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if mgmtSrv != nil {
		go func() {
			if err := mgmtSrv.Serve(ctx); err != nil {
				logger.Warn("management server stopped with error", "error", err)
			}
		}()
	}

	logger.Info("irpd starting", "router_id", cfg.RouterID, "protocol", cfg.Protocol, "bind", fmt.Sprintf("%s:%d", cfg.Bind.Address, cfg.Bind.Port))
	if err := d.Run(ctx); err != nil {
		logger.Error("daemon loop exited with error", "error", err)
		return 1
	}
	logger.Info("irpd stopped")
	return 0
}

func buildApplier(cfg *config.Config, logger *logging.Logger) (forwarding.Applier, func()) {
	if !cfg.Forwarding.Enabled {
		return nil, func() {}
	}
	if cfg.Forwarding.DryRun {
		return forwarding.NewDryRunApplier(logger), func() {}
	}
	return newPlatformApplier(logger)
}

func buildQdiscController(cfg *config.Config, logger *logging.Logger) *qos.Controller {
	if !cfg.Qdisc.Enabled {
		return nil
	}
	driver := newPlatformQdiscDriver(cfg, logger)
	var defaultProfile *qos.Profile
	if cfg.Qdisc.Default != nil {
		defaultProfile = &qos.Profile{Kind: cfg.Qdisc.Default.Kind, Handle: cfg.Qdisc.Default.Handle, Parent: cfg.Qdisc.Default.Parent, Params: cfg.Qdisc.Default.Params}
	}
	ctl := qos.NewController(driver, logger, defaultProfile)
	idx := 0
	for iface, p := range cfg.Qdisc.PerInterface {
		ctl.SetInterfaceProfile(iface, idx, qos.Profile{Kind: p.Kind, Handle: p.Handle, Parent: p.Parent, Params: p.Params})
		idx++
	}
	return ctl
}

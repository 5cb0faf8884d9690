// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// farmd serves the gem farm engine over HTTP.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
	cli "gopkg.in/urfave/cli.v1"

	"github.com/vechain/gemfarm/api"
	"github.com/vechain/gemfarm/api/admin"
	"github.com/vechain/gemfarm/engine"
	"github.com/vechain/gemfarm/kv"
	"github.com/vechain/gemfarm/log"
	"github.com/vechain/gemfarm/lvldb"
	"github.com/vechain/gemfarm/metrics"
	"github.com/vechain/gemfarm/store"
)

var (
	version   string
	gitCommit string
	gitTag    string

	logger = log.WithContext("pkg", "farmd")

	flags = []cli.Flag{
		dataDirFlag,
		persistFlag,
		cacheFlag,
		configFlag,
		apiAddrFlag,
		apiCorsFlag,
		apiLogsFlag,
		apiSlowQueriesThresholdFlag,
		adminAddrFlag,
		devFlag,
		verbosityFlag,
		jsonLogsFlag,
		logFileFlag,
		logMaxSizeFlag,
		enableMetricsFlag,
		metricsAddrFlag,
	}
)

func fullVersion() string {
	versionMeta := "release"
	if gitTag == "" {
		versionMeta = "dev"
	}
	return fmt.Sprintf("%s-%s-%s", version, gitCommit, versionMeta)
}

func openDatabase(ctx *cli.Context) (kv.StoreCloser, error) {
	if !ctx.Bool(persistFlag.Name) {
		return lvldb.NewMem()
	}
	dir := ctx.String(dataDirFlag.Name)
	if dir == "" {
		return nil, errors.New("unable to infer default data dir, use -data-dir to specify")
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, errors.Wrap(err, "create data dir")
	}
	return lvldb.New(filepath.Join(dir, "farm.db"), lvldb.Options{})
}

func run(ctx *cli.Context) error {
	logLevel, flushLog, err := initLogger(ctx)
	if err != nil {
		return errors.Wrap(err, "init logger")
	}
	defer flushLog()

	if ctx.Bool(enableMetricsFlag.Name) {
		metrics.InitializePrometheusMetrics()
	}

	db, err := openDatabase(ctx)
	if err != nil {
		return errors.Wrap(err, "open database")
	}
	defer db.Close()

	repo, err := store.New(db, ctx.Int(cacheFlag.Name))
	if err != nil {
		return err
	}
	vault, err := engine.LoadMemVault(repo)
	if err != nil {
		return errors.WithMessage(err, "load vaults")
	}
	custody, err := engine.LoadMemCustody(repo)
	if err != nil {
		return errors.WithMessage(err, "load custody")
	}
	farm := engine.New(repo, vault, custody)

	if path := ctx.String(configFlag.Name); path != "" {
		b, err := loadBootstrap(path)
		if err != nil {
			return err
		}
		if err := b.apply(farm); err != nil {
			return errors.WithMessage(err, "bootstrap")
		}
		logger.Info("bootstrap applied", "file", path, "pools", len(b.Pools))
	}

	var apiLogs atomic.Bool
	apiLogs.Store(ctx.Bool(apiLogsFlag.Name))
	opts := api.Options{
		AllowedOrigins:       ctx.String(apiCorsFlag.Name),
		EnableReqLogger:      &apiLogs,
		SlowQueriesThreshold: time.Duration(ctx.Uint64(apiSlowQueriesThresholdFlag.Name)) * time.Millisecond,
		EnableMetrics:        ctx.Bool(enableMetricsFlag.Name),
	}
	if ctx.Bool(devFlag.Name) {
		opts.DevVault = vault
		opts.DevCustody = custody
	}

	apiServer, err := listen("api", ctx.String(apiAddrFlag.Name), "/pools", api.New(farm, opts))
	if err != nil {
		return err
	}
	servers := []*server{apiServer}
	if ctx.Bool(enableMetricsFlag.Name) {
		metricsServer, err := listen("metrics", ctx.String(metricsAddrFlag.Name), "/metrics", metricsHandler())
		if err != nil {
			apiServer.listener.Close()
			return err
		}
		servers = append(servers, metricsServer)
	}
	if addr := ctx.String(adminAddrFlag.Name); addr != "" {
		adminServer, err := listen("admin", addr, "/admin", admin.New(logLevel, &apiLogs, farm).NewHTTPHandler())
		if err != nil {
			for _, s := range servers {
				s.listener.Close()
			}
			return err
		}
		servers = append(servers, adminServer)
	}

	exitCtx, stop := handleExitSignal()
	defer stop()
	g, gctx := errgroup.WithContext(exitCtx)
	serve(gctx, g, servers...)

	logger.Info("farmd started", "version", fullVersion(), "persist", ctx.Bool(persistFlag.Name), "dev", ctx.Bool(devFlag.Name))
	return g.Wait()
}

func main() {
	app := cli.App{
		Version:   fullVersion(),
		Name:      "farmd",
		Usage:     "Gem farm staking reward service",
		Copyright: "2025 VeChain Foundation <https://vechain.org/>",
		Flags:     flags,
		Action:    run,
	}
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

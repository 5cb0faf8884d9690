// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	cli "gopkg.in/urfave/cli.v1"

	"github.com/vechain/gemfarm/log"
)

func envVar(name string) string {
	return "FARMD_" + name
}

var (
	dataDirFlag = cli.StringFlag{
		Name:   "data-dir",
		Value:  defaultDataDir(),
		Usage:  "directory for the farm database",
		EnvVar: envVar("DATA_DIR"),
	}
	persistFlag = cli.BoolFlag{
		Name:   "persist",
		Usage:  "store farm records in data-dir instead of memory",
		EnvVar: envVar("PERSIST"),
	}
	cacheFlag = cli.IntFlag{
		Name:   "cache",
		Value:  1024,
		Usage:  "number of decoded pools kept in memory",
		EnvVar: envVar("CACHE"),
	}
	configFlag = cli.StringFlag{
		Name:   "config",
		Usage:  "pool bootstrap file (.yaml, .yml or .toml)",
		EnvVar: envVar("CONFIG"),
	}
	apiAddrFlag = cli.StringFlag{
		Name:   "api-addr",
		Value:  "localhost:8700",
		Usage:  "API service listening address",
		EnvVar: envVar("API_ADDR"),
	}
	apiCorsFlag = cli.StringFlag{
		Name:   "api-cors",
		Value:  "",
		Usage:  "comma separated list of domains from which to accept cross origin requests to API",
		EnvVar: envVar("API_CORS"),
	}
	apiLogsFlag = cli.BoolFlag{
		Name:   "api-logs",
		Usage:  "log every API request",
		EnvVar: envVar("API_LOGS"),
	}
	apiSlowQueriesThresholdFlag = cli.Uint64Flag{
		Name:   "api-slow-queries-threshold",
		Value:  0,
		Usage:  "log API requests slower than this many milliseconds, 0 disables",
		EnvVar: envVar("API_SLOW_QUERIES_THRESHOLD"),
	}
	adminAddrFlag = cli.StringFlag{
		Name:   "admin-addr",
		Usage:  "admin service listening address, disabled when empty",
		EnvVar: envVar("ADMIN_ADDR"),
	}
	devFlag = cli.BoolFlag{
		Name:   "dev",
		Usage:  "expose the in-memory vault and custody ledgers under /dev",
		EnvVar: envVar("DEV"),
	}
	verbosityFlag = cli.Uint64Flag{
		Name:   "verbosity",
		Value:  log.LegacyLevelInfo,
		Usage:  "log verbosity (0-9)",
		EnvVar: envVar("VERBOSITY"),
	}
	jsonLogsFlag = cli.BoolFlag{
		Name:   "json-logs",
		Usage:  "output logs in JSON format",
		EnvVar: envVar("JSON_LOGS"),
	}
	logFileFlag = cli.StringFlag{
		Name:   "log-file",
		Usage:  "also write logs to this file, rotated by size",
		EnvVar: envVar("LOG_FILE"),
	}
	logMaxSizeFlag = cli.IntFlag{
		Name:   "log-max-size",
		Value:  100,
		Usage:  "megabytes a log file may grow to before rotation",
		EnvVar: envVar("LOG_MAX_SIZE"),
	}
	enableMetricsFlag = cli.BoolFlag{
		Name:   "enable-metrics",
		Usage:  "enables metrics collection",
		EnvVar: envVar("ENABLE_METRICS"),
	}
	metricsAddrFlag = cli.StringFlag{
		Name:   "metrics-addr",
		Value:  "localhost:2112",
		Usage:  "metrics service listening address",
		EnvVar: envVar("METRICS_ADDR"),
	}
)

// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"context"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"os/user"
	"path/filepath"
	"syscall"

	"github.com/mattn/go-isatty"
	"github.com/pkg/errors"
	"gopkg.in/natefinch/lumberjack.v2"
	cli "gopkg.in/urfave/cli.v1"

	"github.com/vechain/gemfarm/log"
)

func defaultDataDir() string {
	if home := homeDir(); home != "" {
		return filepath.Join(home, ".gemfarm")
	}
	return ""
}

func homeDir() string {
	if home := os.Getenv("HOME"); home != "" {
		return home
	}
	if usr, err := user.Current(); err == nil {
		return usr.HomeDir
	}
	return ""
}

// initLogger installs the root logger. Logs go to stderr, and to a rotated
// file when one is configured. JSON is used when asked for, or when stderr is
// not a terminal and nothing else was asked for.
func initLogger(ctx *cli.Context) (*slog.LevelVar, func(), error) {
	verbosity := ctx.Uint64(verbosityFlag.Name)
	if verbosity > 9 {
		return nil, nil, errors.Errorf("verbosity %d out of range", verbosity)
	}
	var level slog.LevelVar
	level.Set(log.FromLegacyLevel(int(verbosity)))

	var (
		out   io.Writer = os.Stderr
		flush           = func() {}
	)
	if path := ctx.String(logFileFlag.Name); path != "" {
		if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
			return nil, nil, errors.Wrap(err, "create log dir")
		}
		file := &lumberjack.Logger{
			Filename:   path,
			MaxSize:    ctx.Int(logMaxSizeFlag.Name),
			MaxBackups: 10,
			Compress:   true,
		}
		out = io.MultiWriter(os.Stderr, file)
		flush = func() { file.Close() }
	}

	useJSON := ctx.Bool(jsonLogsFlag.Name)
	if !ctx.IsSet(jsonLogsFlag.Name) && !isatty.IsTerminal(os.Stderr.Fd()) && !isatty.IsCygwinTerminal(os.Stderr.Fd()) {
		useJSON = true
	}

	var handler slog.Handler
	if useJSON {
		handler = log.JSONHandlerWithLevel(out, &level)
	} else {
		handler = log.LogfmtHandlerWithLevel(out, &level)
	}
	log.SetDefault(log.NewLogger(handler))
	return &level, flush, nil
}

// handleExitSignal returns a context cancelled on SIGINT or SIGTERM.
func handleExitSignal() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package admin serves the operator endpoints: log verbosity, request
// logging and health.
package admin

import (
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/vechain/gemfarm/api/utils"
	"github.com/vechain/gemfarm/log"
)

// Pools is the part of the engine health looks at.
type Pools interface {
	Pools() ([]common.Address, error)
}

type LogLevel struct {
	Level string `json:"level"`
}

type LogStatus struct {
	Enabled bool `json:"enabled"`
}

type Health struct {
	Healthy bool   `json:"healthy"`
	Uptime  uint64 `json:"uptimeSec"`
	Pools   int    `json:"pools"`
	Error   string `json:"error,omitempty"`
}

type Admin struct {
	logLevel *slog.LevelVar
	apiLogs  *atomic.Bool
	pools    Pools
	started  time.Time
}

func New(logLevel *slog.LevelVar, apiLogs *atomic.Bool, pools Pools) *Admin {
	return &Admin{logLevel: logLevel, apiLogs: apiLogs, pools: pools, started: time.Now()}
}

func (a *Admin) getLogLevel(w http.ResponseWriter, _ *http.Request) error {
	return utils.WriteJSON(w, LogLevel{Level: log.LevelString(a.logLevel.Level())})
}

func (a *Admin) postLogLevel(w http.ResponseWriter, r *http.Request) error {
	var req LogLevel
	if err := utils.ParseJSON(r.Body, &req); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	switch req.Level {
	case "trace":
		a.logLevel.Set(log.LevelTrace)
	case "debug":
		a.logLevel.Set(log.LevelDebug)
	case "info":
		a.logLevel.Set(log.LevelInfo)
	case "warn":
		a.logLevel.Set(log.LevelWarn)
	case "error":
		a.logLevel.Set(log.LevelError)
	case "crit":
		a.logLevel.Set(log.LevelCrit)
	default:
		return utils.BadRequest(errors.Errorf("invalid verbosity level %q", req.Level))
	}
	log.Info("log level changed", "pkg", "admin", "level", req.Level)
	return a.getLogLevel(w, r)
}

func (a *Admin) getAPILogs(w http.ResponseWriter, _ *http.Request) error {
	return utils.WriteJSON(w, LogStatus{Enabled: a.apiLogs.Load()})
}

func (a *Admin) postAPILogs(w http.ResponseWriter, r *http.Request) error {
	var req LogStatus
	if err := utils.ParseJSON(r.Body, &req); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	a.apiLogs.Store(req.Enabled)
	log.Info("api logs updated", "pkg", "admin", "enabled", req.Enabled)
	return a.getAPILogs(w, r)
}

func (a *Admin) getHealth(w http.ResponseWriter, _ *http.Request) error {
	h := Health{Healthy: true, Uptime: uint64(time.Since(a.started).Seconds())}
	ids, err := a.pools.Pools()
	if err != nil {
		h.Healthy = false
		h.Error = err.Error()
		w.Header().Set("Content-Type", utils.JSONContentType)
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	h.Pools = len(ids)
	return utils.WriteJSON(w, h)
}

// NewHTTPHandler returns the admin router mounted under /admin.
func (a *Admin) NewHTTPHandler() http.Handler {
	router := mux.NewRouter()
	sub := router.PathPrefix("/admin").Subrouter()

	sub.Path("/loglevel").Methods(http.MethodGet).Name("get-log-level").HandlerFunc(utils.WrapHandlerFunc(a.getLogLevel))
	sub.Path("/loglevel").Methods(http.MethodPost).Name("post-log-level").HandlerFunc(utils.WrapHandlerFunc(a.postLogLevel))
	sub.Path("/apilogs").Methods(http.MethodGet).Name("get-api-logs-enabled").HandlerFunc(utils.WrapHandlerFunc(a.getAPILogs))
	sub.Path("/apilogs").Methods(http.MethodPost).Name("post-api-logs-enabled").HandlerFunc(utils.WrapHandlerFunc(a.postAPILogs))
	sub.Path("/health").Methods(http.MethodGet).Name("get-health").HandlerFunc(utils.WrapHandlerFunc(a.getHealth))

	return handlers.CompressHandler(router)
}

// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package api exposes the farm engine over HTTP.
package api

import (
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	"github.com/vechain/gemfarm/api/dev"
	"github.com/vechain/gemfarm/api/middleware"
	"github.com/vechain/gemfarm/api/pools"
	"github.com/vechain/gemfarm/engine"
	"github.com/vechain/gemfarm/log"
)

var logger = log.WithContext("pkg", "api")

type Options struct {
	AllowedOrigins       string
	EnableReqLogger      *atomic.Bool
	SlowQueriesThreshold time.Duration
	EnableMetrics        bool
	// DevVault and DevCustody, when both set, are exposed under /dev.
	DevVault   *engine.MemVault
	DevCustody *engine.MemCustody
}

// New return api router
func New(e *engine.Engine, opts Options) http.Handler {
	origins := strings.Split(strings.TrimSpace(opts.AllowedOrigins), ",")
	for i, o := range origins {
		origins[i] = strings.ToLower(strings.TrimSpace(o))
	}

	router := mux.NewRouter()
	pools.New(e).Mount(router, "/pools")
	if opts.DevVault != nil && opts.DevCustody != nil {
		dev.New(opts.DevVault, opts.DevCustody).Mount(router, "/dev")
	}

	if opts.EnableMetrics {
		router.Use(metricsMiddleware)
	}
	enabled := opts.EnableReqLogger
	if enabled == nil {
		enabled = &atomic.Bool{}
	}
	router.Use(middleware.RequestLoggerMiddleware(logger, enabled, opts.SlowQueriesThreshold))

	handler := handlers.CompressHandler(router)
	return handlers.CORS(
		handlers.AllowedOrigins(origins),
		handlers.AllowedHeaders([]string{"content-type", middleware.RequestIDHeader}),
		handlers.ExposedHeaders([]string{middleware.RequestIDHeader, "X-Revert-Kind"}),
	)(handler)
}

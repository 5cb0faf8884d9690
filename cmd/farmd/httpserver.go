// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/vechain/gemfarm/metrics"
)

// server is a listening http server, served until its context ends.
type server struct {
	name     string
	url      string
	listener net.Listener
	srv      *http.Server
}

func listen(name, addr, path string, handler http.Handler) (*server, error) {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, errors.Wrapf(err, "listen %s addr [%v]", name, addr)
	}
	return &server{
		name:     name,
		url:      "http://" + listener.Addr().String() + path,
		listener: listener,
		srv:      &http.Server{Handler: handler, ReadHeaderTimeout: time.Second, ReadTimeout: 5 * time.Second},
	}, nil
}

func metricsHandler() http.Handler {
	router := mux.NewRouter()
	router.PathPrefix("/metrics").Handler(metrics.HTTPHandler())
	return handlers.CompressHandler(router)
}

// serve runs every server in g and shuts them all down once ctx is done.
func serve(ctx context.Context, g *errgroup.Group, servers ...*server) {
	for _, s := range servers {
		g.Go(func() error {
			logger.Info("server started", "name", s.name, "url", s.url)
			if err := s.srv.Serve(s.listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return errors.Wrapf(err, "serve %s", s.name)
			}
			return nil
		})
		g.Go(func() error {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			err := s.srv.Shutdown(shutdownCtx)
			logger.Info("server stopped", "name", s.name)
			return err
		})
	}
}

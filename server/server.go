// Nodeflow
// Copyright (C) 2013-2024+ James Shubin and the project contributors
// Written by James Shubin <james@shubin.ca> and the project contributors
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <http://www.gnu.org/licenses/>.


// Package server serves the node metadata, and checks flows over http, for
// use by a browser editor or by scripts.
package server

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/purpleidea/nodeflow/editor"
	"github.com/purpleidea/nodeflow/flowformat"
	"github.com/purpleidea/nodeflow/meta"
	"github.com/purpleidea/nodeflow/prometheus"
	"github.com/purpleidea/nodeflow/unification"
	"github.com/purpleidea/nodeflow/util/errwrap"

	"github.com/gin-gonic/gin"
)

const (
	// DefaultListen is the default listen address of the server.
	DefaultListen = "127.0.0.1:8000"

	// MaxBodySize is the largest flow that will be read.
	MaxBodySize = 16 * 1024 * 1024

	// shutdownTimeout is how long open requests get to finish on exit.
	shutdownTimeout = 5 * time.Second
)

func init() {
	gin.SetMode(gin.ReleaseMode) // for production
}

// Server is the http server. Run Init() on it.
type Server struct {
	// Listen is the address to listen on. If empty, the default is used.
	Listen string

	// Metas is the node type registry which is served, and which every flow
	// is checked against.
	Metas meta.Registry

	// StartKind is the node type of the start node.
	StartKind string

	// Solver is optional.
	Solver unification.Solver

	// Prometheus counts the decisions made while checking, and serves them
	// on /metrics, if it is set.
	Prometheus *prometheus.Prometheus

	Debug bool
	Logf  func(format string, v ...interface{})
}

// Init validates the server.
func (obj *Server) Init() error {
	if obj.Metas == nil {
		return fmt.Errorf("no node metadata")
	}
	if err := obj.Metas.Validate(); err != nil {
		return errwrap.Wrapf(err, "invalid metadata")
	}
	if obj.Listen == "" {
		obj.Listen = DefaultListen
	}
	if obj.Logf == nil {
		obj.Logf = func(format string, v ...interface{}) {}
	}
	return nil
}

// editor returns a fresh editor for one request.
func (obj *Server) editor() (*editor.Editor, error) {
	e := &editor.Editor{
		Metas:     obj.Metas,
		StartKind: obj.StartKind,
		Solver:    obj.Solver,
		Debug:     obj.Debug,
		Logf: func(format string, v ...interface{}) {
			obj.Logf("editor: "+format, v...)
		},
	}
	if obj.Prometheus != nil { // avoid a typed nil in the interface
		e.Observer = obj.Prometheus
	}
	if err := e.Init(); err != nil {
		return nil, err
	}
	return e, nil
}

// ginLogger is a helper to get structured logs out of gin.
func (obj *Server) ginLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		method := c.Request.Method
		path := c.Request.URL.Path
		status := c.Writer.Status()
		clientIP := c.ClientIP()
		obj.Logf("%v %s %s (%d)", clientIP, method, path, status)
	}
}

// success sends the usual response envelope.
func success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, gin.H{"status": "success", "data": data})
}

// failure sends an error in the usual response envelope.
func failure(c *gin.Context, code int, err error) {
	c.JSON(code, gin.H{"status": "error", "message": errwrap.String(err)})
}

// readFlow decodes the request body as a flow.
func readFlow(c *gin.Context) (*flowformat.Flow, error) {
	data, err := io.ReadAll(io.LimitReader(c.Request.Body, MaxBodySize))
	if err != nil {
		return nil, errwrap.Wrapf(err, "could not read body")
	}
	return flowformat.Decode(data)
}

// Router builds the http handler.
func (obj *Server) Router() *gin.Engine {
	router := gin.New()
	router.Use(obj.ginLogger(), gin.Recovery())

	router.GET("/ping", func(c *gin.Context) {
		c.String(http.StatusOK, "pong")
	})

	router.GET("/node-metas", func(c *gin.Context) {
		success(c, obj.Metas)
	})

	// execution-types lists the choices for the execution mode of a node,
	// with a description of each for display.
	router.GET("/execution-types", func(c *gin.Context) {
		choices := []gin.H{}
		for _, x := range meta.ExecutionTypes() {
			choices = append(choices, gin.H{"name": x, "tip": x.Tip()})
		}
		success(c, choices)
	})

	// check replays every stored edge of a flow, and returns the decisions
	// along with the flow as it was rebuilt.
	router.POST("/check", func(c *gin.Context) {
		reset := false
		if s := c.Query("reset"); s != "" {
			b, err := strconv.ParseBool(s)
			if err != nil {
				failure(c, http.StatusBadRequest, errwrap.Wrapf(err, "invalid reset value"))
				return
			}
			reset = b
		}
		flow, err := readFlow(c)
		if err != nil {
			failure(c, http.StatusBadRequest, err)
			return
		}
		e, err := obj.editor()
		if err != nil {
			failure(c, http.StatusInternalServerError, err)
			return
		}
		report, err := e.Replay(flow, reset)
		if err != nil {
			failure(c, http.StatusBadRequest, err)
			return
		}
		success(c, gin.H{"report": report, "flow": e.Export()})
	})

	// execute-request returns the body which would be sent to run a flow.
	router.POST("/execute-request", func(c *gin.Context) {
		flow, err := readFlow(c)
		if err != nil {
			failure(c, http.StatusBadRequest, err)
			return
		}
		e, err := obj.editor()
		if err != nil {
			failure(c, http.StatusInternalServerError, err)
			return
		}
		if err := e.Import(flow); err != nil {
			failure(c, http.StatusBadRequest, err)
			return
		}
		success(c, e.ExecuteRequest())
	})

	if obj.Prometheus != nil {
		router.GET("/metrics", gin.WrapH(obj.Prometheus.Handler()))
	}

	return router
}

// Run serves until the context is cancelled, or the server fails.
func (obj *Server) Run(ctx context.Context) error {
	server := &http.Server{
		Addr:    obj.Listen,
		Handler: obj.Router(),
	}

	errCh := make(chan error, 1)
	go func() {
		obj.Logf("listening on %s", obj.Listen)
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err // never nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return errwrap.Wrapf(err, "shutdown failed")
	}
	if err := <-errCh; err != http.ErrServerClosed {
		return err
	}
	return nil
}

/*
 * Cherry - An OpenFlow Controller
 *
 * Copyright (C) 2015 Samjung Data Service, Inc. All rights reserved.
 * Kitae Kim <superkkt@sds.co.kr>
 *
 * This program is free software; you can redistribute it and/or modify
 * it under the terms of the GNU General Public License as published by
 * the Free Software Foundation; either version 2 of the License, or
 * any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU General Public License along
 * with this program; if not, write to the Free Software Foundation, Inc.,
 * 51 Franklin Street, Fifth Floor, Boston, MA 02110-1301 USA.
 */

package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/YusufShahp/CSE461Proj2/network"
	"github.com/YusufShahp/CSE461Proj2/policy"

	"github.com/ant0ine/go-json-rest/rest"
	"github.com/op/go-logging"
)

var (
	logger = logging.MustGetLogger("api")
)

type Server struct {
	Port uint16
	TLS  struct {
		Cert string // Path for a TLS certification file.
		Key  string // Path for a TLS private key file.
	}
	Controller Controller
}

// Controller is the read-only view of the controller served by the API.
type Controller interface {
	Sessions() []*network.Session
	Session(dpid uint64) (*network.Session, bool)
	CompiledRules(dpid uint64) ([]policy.FlowRule, error)
}

func (r *Server) validate() error {
	if r.Controller == nil {
		return errors.New("nil controller")
	}

	return nil
}

func (r *Server) handler() (http.Handler, error) {
	if err := r.validate(); err != nil {
		return nil, err
	}

	api := rest.NewApi()
	// Middleware to set the CORS header.
	api.Use(rest.MiddlewareSimple(func(handler rest.HandlerFunc) rest.HandlerFunc {
		return func(writer rest.ResponseWriter, request *rest.Request) {
			writer.Header().Set("Access-Control-Allow-Origin", "*")
			handler(writer, request)
		}
	}))
	router, err := rest.MakeRouter(
		rest.Get("/api/v1/switch", r.listSwitch),
		rest.Get("/api/v1/switch/:dpid/learning", r.listLearning),
		rest.Get("/api/v1/switch/:dpid/policy", r.listPolicy),
		rest.Post("/api/v1/evaluate", r.evaluate),
	)
	if err != nil {
		return nil, err
	}
	api.SetApp(router)

	return api.MakeHandler(), nil
}

// Serve blocks until the HTTP server fails.
func (r *Server) Serve() error {
	handler, err := r.handler()
	if err != nil {
		return err
	}

	// Listen on all interfaces.
	addr := fmt.Sprintf(":%v", r.Port)
	logger.Infof("serving the status API on %v (TLS=%v)", addr, r.TLS.Cert != "" && r.TLS.Key != "")
	if r.TLS.Cert != "" && r.TLS.Key != "" {
		err = http.ListenAndServeTLS(addr, r.TLS.Cert, r.TLS.Key, handler)
	} else {
		err = http.ListenAndServe(addr, handler)
	}

	return err
}

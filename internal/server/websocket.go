// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"go.uber.org/zap"
	"golang.org/x/net/websocket"
)

// maxDecodeErrorsPerConn closes connections that keep sending garbage.
const maxDecodeErrorsPerConn = 3

// wsHandler serves GET /ws. Each text frame holds one RouteRequest and is
// answered by one RouteResponse, in order.
func (s *Server) wsHandler() http.Handler {
	return websocket.Server{
		// chat bridges are not browsers; the bearer token is the access check
		Handshake: func(*websocket.Config, *http.Request) error { return nil },
		Handler:   s.handleWSConn,
	}
}

func (s *Server) handleWSConn(conn *websocket.Conn) {
	defer func() {
		_ = conn.Close()
	}()

	ctx := conn.Request().Context()
	conn.MaxPayloadBytes = MaxRequestBodySize
	decoder := json.NewDecoder(conn)
	encoder := json.NewEncoder(conn)
	decodeErrors := 0

	for {
		var req RouteRequest
		if err := decoder.Decode(&req); err != nil {
			if errors.Is(err, io.EOF) || ctx.Err() != nil {
				return
			}
			var syntaxErr *json.SyntaxError
			var typeErr *json.UnmarshalTypeError
			if !errors.As(err, &syntaxErr) && !errors.As(err, &typeErr) {
				s.logger.Debug("Websocket read failed", zap.Error(err))
				return
			}
			decodeErrors++
			if encoder.Encode(invalid("invalid frame payload")) != nil || decodeErrors >= maxDecodeErrorsPerConn {
				return
			}
			// the decoder cannot resync after a syntax error
			decoder = json.NewDecoder(conn)
			continue
		}
		decodeErrors = 0

		resp := invalid("")
		if msg := validate(req); msg != "" {
			resp.Error.Message = msg
		} else {
			_, resp = s.route(ctx, req)
		}
		if err := encoder.Encode(resp); err != nil {
			s.logger.Debug("Websocket write failed", zap.Error(err))
			return
		}
	}
}

// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package server exposes a command router over HTTP and websockets.
//
// Chat bridges post each message together with its author and receive the
// reply, or a classified error, as JSON.
//
// # Endpoints
//
//   - GET  /health   - Health check, never authenticated
//   - POST /v1/route - Dispatch one message
//   - GET  /ws       - Websocket, one JSON message frame in, one result frame out
//
// # Security
//
//   - Bearer token authentication with constant-time comparison
//   - Request body limits and security headers
//   - Panic recovery with stack trace logging
//
// # Usage
//
//	srv := server.New(router,
//		server.WithAddr("127.0.0.1:8090"),
//		server.WithAuthToken(token),
//		server.WithLogger(logger),
//	)
//	if err := srv.Run(ctx, 5*time.Second); err != nil {
//		return err
//	}
package server

// Package main is the entry point of the application
package main

import (
	"net/http"
	"slices"

	"go.uber.org/zap"
)

// checkOrigin allows browsers from the configured origins. An empty list
// allows everyone, and clients that send no Origin header are not browsers.
func checkOrigin(allowed []string) func(r *http.Request) bool {
	return func(r *http.Request) bool {
		if len(allowed) == 0 {
			return true
		}
		origin := r.Header.Get("Origin")
		return origin == "" || slices.Contains(allowed, origin)
	}
}

// handleWebSocket handles WebSocket connections
func (app *application) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	// Upgrade HTTP connection to WebSocket
	ws, err := app.upgrader.Upgrade(w, r, nil)
	if err != nil {
		app.Logger.Warn("Failed to upgrade to WebSocket",
			zap.String("remote_addr", r.RemoteAddr),
			zap.Error(err))
		return
	}

	// Register the connection and start its read/write goroutines
	conn := app.Hub.Serve(ws)

	app.Logger.Info("WebSocket connection established",
		zap.String("connection_id", conn.Session().ID),
		zap.String("remote_addr", r.RemoteAddr))
}

// Package main is the entry point of the application
package main

import (
	"encoding/json"
	"net/http"
	"time"

	"go.uber.org/zap"
)

type healthResponse struct {
	Status      string `json:"status"`
	Uptime      string `json:"uptime"`
	Connections int    `json:"connections"`
	Sessions    int    `json:"sessions"`
	Games       int    `json:"games"`
}

// handleHealth handles the GET /health endpoint
func (app *application) handleHealth(w http.ResponseWriter, _ *http.Request) {
	stats := app.Hub.Stats()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)

	err := json.NewEncoder(w).Encode(healthResponse{
		Status:      "ok",
		Uptime:      time.Since(app.StartTime).Round(time.Second).String(),
		Connections: app.Hub.Len(),
		Sessions:    stats.Sessions,
		Games:       stats.Games,
	})
	if err != nil {
		app.Logger.Warn("write health response", zap.Error(err))
	}
}

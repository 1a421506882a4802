package controllers

import (
	"net/http"

	"quill/app/logger"
)

// Pinger reports whether a backing store is reachable.
type Pinger interface {
	Ping() error
}

// HealthController answers liveness probes
type HealthController struct {
	store Pinger
}

func NewHealthController(store Pinger) *HealthController {
	return &HealthController{store: store}
}

// Check reports 200 when storage answers and 503 otherwise.
func (hc *HealthController) Check(w http.ResponseWriter, r *http.Request) {
	if err := hc.store.Ping(); err != nil {
		logger.Log.Warnf("Health check failed: %v", err)
		sendJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	sendJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

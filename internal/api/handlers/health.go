package handlers

import (
	"net/http"
)

// Ping is the liveness check; it never touches upstreams or storage.
func Ping(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
}

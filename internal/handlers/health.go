package handlers

import "net/http"

// Health is the liveness probe. Plain text by contract: deployment platforms
// poll it before routing traffic.
func Health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("Server is running"))
}

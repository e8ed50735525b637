package handler

import "net/http"

// HealthCheck answers 200 with an empty body while the process is serving.
func HealthCheck(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
}

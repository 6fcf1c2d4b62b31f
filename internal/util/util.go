package util

import (
	"encoding/json"
	"net/http"

	log "github.com/sirupsen/logrus"
)

//WithBodyAndStatus writes the given body as JSON along with the status code
func WithBodyAndStatus(body interface{}, statusCode int, w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if body == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.WithError(err).Error("failed to encode response body")
	}
}

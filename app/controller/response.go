package controller

import (
	"encoding/json"
	"net/http"

	"github.com/sirupsen/logrus"
)

// maxBodyBytes bounds every JSON request body
const maxBodyBytes = 64 << 10

func decodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	return json.NewDecoder(r.Body).Decode(v)
}

func writeJSON(w http.ResponseWriter, log logrus.FieldLogger, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Errorf("❌ Error encoding response: %v", err)
	}
}

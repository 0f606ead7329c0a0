package handler

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func serverError(w http.ResponseWriter, log *zap.Logger, op string, err error) {
	if log != nil {
		log.Error(op, zap.Error(err))
	}
	http.Error(w, "server error", http.StatusInternalServerError)
}

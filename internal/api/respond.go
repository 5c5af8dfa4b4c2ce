package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/tablewave/reserve-server/internal/store"
)

// envelope is the uniform error body: {"code": int, "message": str, "data": any}.
type envelope struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data"`
}

func writeData(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Error("api: encode response", zap.Error(err))
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeData(w, status, envelope{Code: status, Message: message, Data: nil})
}

// writeStoreError maps store sentinels onto their HTTP codes; anything else
// is a 500 with the message suppressed from the client.
func writeStoreError(w http.ResponseWriter, err error, notFoundMsg string) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, notFoundMsg)
	case errors.Is(err, store.ErrConflict):
		writeError(w, http.StatusConflict, "duplicate entry")
	default:
		zap.L().Error("api: store operation failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

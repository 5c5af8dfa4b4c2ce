package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
)

type startCallRequest struct {
	OrderID      int64  `json:"order_id"`
	FirstMessage string `json:"first_message"`
	SystemPrompt string `json:"system_prompt"`
}

func (s *Server) handleStartCall(w http.ResponseWriter, r *http.Request) {
	var req startCallRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.OrderID == 0 {
		writeError(w, http.StatusBadRequest, "order_id is required")
		return
	}

	taskID := s.caller.Start(req.OrderID, req.FirstMessage, req.SystemPrompt)
	writeData(w, http.StatusAccepted, map[string]string{"task_id": taskID})
}

func (s *Server) handleCallStatus(w http.ResponseWriter, r *http.Request) {
	taskID := chi.URLParam(r, "taskID")
	writeData(w, http.StatusOK, map[string]string{
		"task_id": taskID,
		"status":  s.registry.Get(taskID),
	})
}

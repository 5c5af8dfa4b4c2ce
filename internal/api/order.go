package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/tablewave/reserve-server/internal/model"
)

type orderPayload struct {
	CustomerName string    `json:"customer_name"`
	PartySize    int       `json:"party_size"`
	Phone        string    `json:"phone"`
	ArriveTime   time.Time `json:"arrive_time"`
	Remark       *string   `json:"remark"`
	ShopID       int64     `json:"shop_id"`
	UserID       int64     `json:"user_id"`
}

func (p orderPayload) validate() string {
	switch {
	case p.CustomerName == "":
		return "customer_name is required"
	case p.PartySize <= 0:
		return "party_size must be positive"
	case p.Phone == "":
		return "phone is required"
	case p.ArriveTime.IsZero():
		return "arrive_time is required"
	case p.ShopID == 0:
		return "shop_id is required"
	}
	return ""
}

func (s *Server) handleCreateOrder(w http.ResponseWriter, r *http.Request) {
	var req orderPayload
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if msg := req.validate(); msg != "" {
		writeError(w, http.StatusUnprocessableEntity, msg)
		return
	}

	order, err := s.store.CreateOrder(r.Context(), model.Order{
		CustomerName: req.CustomerName,
		PartySize:    req.PartySize,
		Phone:        req.Phone,
		ArriveTime:   req.ArriveTime,
		Remark:       req.Remark,
		ShopID:       req.ShopID,
		UserID:       req.UserID,
	})
	if err != nil {
		writeStoreError(w, err, "order not found")
		return
	}
	writeData(w, http.StatusCreated, order)
}

func (s *Server) handleListOrders(w http.ResponseWriter, r *http.Request) {
	limit, offset := pageParams(r)
	orders, err := s.store.ListOrders(r.Context(), limit, offset)
	if err != nil {
		writeStoreError(w, err, "order not found")
		return
	}
	writeData(w, http.StatusOK, orders)
}

func (s *Server) handleGetOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	order, err := s.store.GetOrder(r.Context(), id)
	if err != nil {
		writeStoreError(w, err, "order not found")
		return
	}
	writeData(w, http.StatusOK, order)
}

func (s *Server) handleUpdateOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var req orderPayload
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if msg := req.validate(); msg != "" {
		writeError(w, http.StatusUnprocessableEntity, msg)
		return
	}

	// Status is owned by the call orchestrator; carry it through unchanged.
	existing, err := s.store.GetOrder(r.Context(), id)
	if err != nil {
		writeStoreError(w, err, "order not found")
		return
	}

	order, err := s.store.UpdateOrder(r.Context(), model.Order{
		ID:           id,
		CustomerName: req.CustomerName,
		PartySize:    req.PartySize,
		Phone:        req.Phone,
		ArriveTime:   req.ArriveTime,
		Remark:       req.Remark,
		ShopID:       req.ShopID,
		Status:       existing.Status,
		UserID:       req.UserID,
	})
	if err != nil {
		writeStoreError(w, err, "order not found")
		return
	}
	writeData(w, http.StatusOK, order)
}

func (s *Server) handleDeleteOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := s.store.DeleteOrder(r.Context(), id); err != nil {
		writeStoreError(w, err, "order not found")
		return
	}
	writeData(w, http.StatusOK, map[string]int64{"id": id})
}

// pathID parses the {id} path segment; on failure it writes the error
// response and reports false.
func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "invalid id")
		return 0, false
	}
	return id, true
}

func pageParams(r *http.Request) (limit, offset int) {
	q := r.URL.Query()
	limit, _ = strconv.Atoi(q.Get("limit"))
	offset, _ = strconv.Atoi(q.Get("skip"))
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

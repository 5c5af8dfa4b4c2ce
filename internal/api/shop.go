package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/tablewave/reserve-server/internal/extract"
	"github.com/tablewave/reserve-server/internal/model"
)

type shopPayload struct {
	Name         string  `json:"name"`
	Rating       float64 `json:"rating"`
	Phone        string  `json:"phone"`
	Address      string  `json:"address"`
	ImageURL     *string `json:"image_url"`
	OpenHours    *string `json:"open_hours"`
	GoogleMapURL *string `json:"google_map_url"`
	UserID       int64   `json:"user_id"`
}

func (p shopPayload) validate() string {
	switch {
	case p.Name == "":
		return "name is required"
	case p.Address == "":
		return "address is required"
	}
	return ""
}

func (p shopPayload) toModel(id int64) model.Shop {
	phone := p.Phone
	if phone == "" {
		phone = model.PhoneUnspecified
	}
	return model.Shop{
		ID:           id,
		Name:         p.Name,
		Rating:       p.Rating,
		Phone:        phone,
		Address:      p.Address,
		ImageURL:     p.ImageURL,
		OpenHours:    p.OpenHours,
		GoogleMapURL: p.GoogleMapURL,
		UserID:       p.UserID,
	}
}

func (s *Server) handleCreateShop(w http.ResponseWriter, r *http.Request) {
	var req shopPayload
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if msg := req.validate(); msg != "" {
		writeError(w, http.StatusUnprocessableEntity, msg)
		return
	}

	shop, err := s.store.CreateShop(r.Context(), req.toModel(0))
	if err != nil {
		writeStoreError(w, err, "shop not found")
		return
	}
	writeData(w, http.StatusCreated, shop)
}

func (s *Server) handleListShops(w http.ResponseWriter, r *http.Request) {
	limit, offset := pageParams(r)
	shops, err := s.store.ListShops(r.Context(), limit, offset)
	if err != nil {
		writeStoreError(w, err, "shop not found")
		return
	}
	writeData(w, http.StatusOK, shops)
}

func (s *Server) handleGetShop(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	shop, err := s.store.GetShop(r.Context(), id)
	if err != nil {
		writeStoreError(w, err, "shop not found")
		return
	}
	writeData(w, http.StatusOK, shop)
}

func (s *Server) handleUpdateShop(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var req shopPayload
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if msg := req.validate(); msg != "" {
		writeError(w, http.StatusUnprocessableEntity, msg)
		return
	}

	shop, err := s.store.UpdateShop(r.Context(), req.toModel(id))
	if err != nil {
		writeStoreError(w, err, "shop not found")
		return
	}
	writeData(w, http.StatusOK, shop)
}

func (s *Server) handleDeleteShop(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := s.store.DeleteShop(r.Context(), id); err != nil {
		writeStoreError(w, err, "shop not found")
		return
	}
	writeData(w, http.StatusOK, map[string]int64{"id": id})
}

type parseMapRequest struct {
	GoogleMapURL string `json:"google_map_url"`
	UserID       int64  `json:"user_id"`
}

// handleParseGoogleMap extracts a shop from a Google Maps link and persists
// it behind the dedup gate: an existing (name, address, owner) match is
// returned as-is with no write.
func (s *Server) handleParseGoogleMap(w http.ResponseWriter, r *http.Request) {
	var req parseMapRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.GoogleMapURL == "" {
		writeError(w, http.StatusBadRequest, "google_map_url is required")
		return
	}

	candidate, err := s.extractor.Extract(r.Context(), req.GoogleMapURL)
	if err != nil {
		if errors.Is(err, extract.ErrExhausted) {
			writeError(w, http.StatusBadGateway, "shop extraction failed")
			return
		}
		zap.L().Error("api: extract shop", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	existing, err := s.store.FindShopByIdentity(r.Context(), candidate.Name, candidate.Address, req.UserID)
	if err != nil {
		writeStoreError(w, err, "shop not found")
		return
	}
	if existing != nil {
		writeData(w, http.StatusOK, existing)
		return
	}

	shop, err := s.store.CreateShop(r.Context(), model.Shop{
		Name:         candidate.Name,
		Rating:       candidate.Rating,
		Phone:        candidate.Phone,
		Address:      candidate.Address,
		ImageURL:     candidate.ImageURL,
		OpenHours:    candidate.OpenHours,
		GoogleMapURL: &req.GoogleMapURL,
		UserID:       req.UserID,
	})
	if err != nil {
		writeStoreError(w, err, "shop not found")
		return
	}
	writeData(w, http.StatusCreated, shop)
}

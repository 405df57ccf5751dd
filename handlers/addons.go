package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/gorilla/mux"

	"streamhub/models"
	"streamhub/services/addons"
)

type addonService interface {
	Register(ctx context.Context, rawURL string) (models.Addon, error)
	List(ctx context.Context) ([]models.Addon, error)
	SetEnabled(ctx context.Context, id string, enabled bool) (models.Addon, error)
	Remove(ctx context.Context, id string) error
	Reorder(ctx context.Context, ids []string) ([]models.Addon, error)
	Refresh(ctx context.Context, id string) (models.Addon, error)
}

var _ addonService = (*addons.Service)(nil)

// AddonsHandler exposes the addon registry.
type AddonsHandler struct {
	Service addonService
}

func NewAddonsHandler(s addonService) *AddonsHandler {
	return &AddonsHandler{Service: s}
}

type addonsListResponse struct {
	Addons []models.Addon `json:"addons"`
}

func (h *AddonsHandler) List(w http.ResponseWriter, r *http.Request) {
	list, err := h.Service.List(r.Context())
	if err != nil {
		writeAddonError(w, err)
		return
	}
	if list == nil {
		list = []models.Addon{}
	}
	writeJSON(w, http.StatusOK, addonsListResponse{Addons: list})
}

func (h *AddonsHandler) Register(w http.ResponseWriter, r *http.Request) {
	var body struct {
		URL string `json:"url"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSONError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	addon, err := h.Service.Register(r.Context(), body.URL)
	if err != nil {
		writeAddonError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, addon)
}

func (h *AddonsHandler) Update(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Enabled *bool `json:"enabled"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSONError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if body.Enabled == nil {
		writeJSONError(w, "enabled is required", http.StatusBadRequest)
		return
	}

	addon, err := h.Service.SetEnabled(r.Context(), mux.Vars(r)["id"], *body.Enabled)
	if err != nil {
		writeAddonError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, addon)
}

func (h *AddonsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.Service.Remove(r.Context(), mux.Vars(r)["id"]); err != nil {
		writeAddonError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *AddonsHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	addon, err := h.Service.Refresh(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeAddonError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, addon)
}

func (h *AddonsHandler) Reorder(w http.ResponseWriter, r *http.Request) {
	var body struct {
		IDs []string `json:"ids"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSONError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	list, err := h.Service.Reorder(r.Context(), body.IDs)
	if err != nil {
		writeAddonError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, addonsListResponse{Addons: list})
}

func writeAddonError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, addons.ErrAddonNotFound):
		writeJSONError(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, addons.ErrAddonExists):
		writeJSONError(w, err.Error(), http.StatusConflict)
	case errors.Is(err, addons.ErrInvalidURL),
		errors.Is(err, addons.ErrInvalidManifest),
		errors.Is(err, addons.ErrInvalidOrder):
		writeJSONError(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, addons.ErrManifestUnreachable):
		writeJSONError(w, err.Error(), http.StatusBadGateway)
	default:
		log.Printf("[handlers] addons: %v", err)
		writeJSONError(w, "internal error", http.StatusInternalServerError)
	}
}

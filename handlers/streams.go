package handlers

import (
	"context"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"streamhub/models"
	"streamhub/services/streams"
)

type streamsService interface {
	GetStreams(ctx context.Context, req streams.StreamRequest) (*models.StreamsResponse, error)
}

var _ streamsService = (*streams.Service)(nil)

// StreamsHandler serves aggregated stream lookups.
type StreamsHandler struct {
	Service streamsService
}

func NewStreamsHandler(s streamsService) *StreamsHandler {
	return &StreamsHandler{Service: s}
}

// GetStreams handles GET /api/streams/{type}/{id}?season=&episode=.
// Every expected empty state is a 200 with a reason.
func (h *StreamsHandler) GetStreams(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	kind, err := models.ParseContentKind(vars["type"])
	if err != nil {
		writeJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	id := strings.TrimSpace(vars["id"])
	if id == "" {
		writeJSONError(w, "id is required", http.StatusBadRequest)
		return
	}

	season, err := optionalInt(r, "season")
	if err != nil {
		writeJSONError(w, "invalid season", http.StatusBadRequest)
		return
	}
	episode, err := optionalInt(r, "episode")
	if err != nil {
		writeJSONError(w, "invalid episode", http.StatusBadRequest)
		return
	}

	resp, err := h.Service.GetStreams(r.Context(), streams.StreamRequest{
		Kind:    kind,
		ID:      id,
		Season:  season,
		Episode: episode,
	})
	if err != nil {
		log.Printf("[handlers] streams %s/%s: %v", kind, id, err)
		writeJSONError(w, "internal error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// optionalInt reads a non-negative integer query parameter. Missing values are nil.
func optionalInt(r *http.Request, name string) (*int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return nil, err
	}
	if v < 0 {
		return nil, strconv.ErrRange
	}
	return &v, nil
}

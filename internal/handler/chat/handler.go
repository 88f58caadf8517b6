package chat

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/echolab/parrot/internal/model/chat"
	chatService "github.com/echolab/parrot/internal/service/chat"
)

// Handler exposes the conversation intents over HTTP.
type Handler struct {
	store      *chatService.Store
	controller *chatService.Controller
}

// New creates the chat handler.
func New(store *chatService.Store, controller *chatService.Controller) *Handler {
	return &Handler{
		store:      store,
		controller: controller,
	}
}

// RegisterRoutes registers the chat routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/chat", func(r chi.Router) {
		r.Get("/state", h.handleState)
		r.Get("/transcript", h.handleTranscript)
		r.Post("/draft", h.handleDraft)
		r.Post("/send", h.handleSend)
		r.Post("/messages", h.handleReplaceMessages)
		r.Post("/reset", h.handleReset)
	})
}

// handleState returns the current projection.
func (h *Handler) handleState(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.controller.State())
}

// handleTranscript returns the store's log, oldest first.
func (h *Handler) handleTranscript(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.store.Transcript())
}

// handleDraft replaces the draft text verbatim.
func (h *Handler) handleDraft(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Text string `json:"text"`
	}

	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	h.controller.DraftChanged(payload.Text)
	respondJSON(w, http.StatusOK, h.controller.State())
}

// handleSend submits the current draft. A draft that trims to nothing is
// silently ignored; the response carries the projection either way.
func (h *Handler) handleSend(w http.ResponseWriter, r *http.Request) {
	h.controller.SendRequested()
	respondJSON(w, http.StatusAccepted, h.controller.State())
}

// handleReplaceMessages bulk-replaces the projected message list.
func (h *Handler) handleReplaceMessages(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Messages []chat.Message `json:"messages"`
	}

	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	h.controller.MessagesReplaced(payload.Messages)
	respondJSON(w, http.StatusOK, h.controller.State())
}

// handleReset clears the log and restarts identifiers at 1.
func (h *Handler) handleReset(w http.ResponseWriter, r *http.Request) {
	h.store.Reset()
	respondJSON(w, http.StatusOK, map[string]string{"status": "reset"})
}

// respondJSON sends a JSON response.
func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

// respondError sends an error response.
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

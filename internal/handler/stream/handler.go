package stream

import (
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	chatService "github.com/echolab/parrot/internal/service/chat"
	"github.com/echolab/parrot/pkg/utils"
)

// heartbeatInterval paces keep-alive chunks between state changes.
const heartbeatInterval = 8 * time.Second

// Handler streams the conversation projection via Server-Sent Events.
type Handler struct {
	controller *chatService.Controller
}

// New creates a new stream handler.
func New(controller *chatService.Controller) *Handler {
	return &Handler{controller: controller}
}

// RegisterRoutes registers the SSE route.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/stream", h.handleStream)
}

// handleStream pushes the current projection immediately, then every change
// until the client disconnects. Heartbeats keep idle connections open.
func (h *Handler) handleStream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		utils.RespondError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	utils.SetupSSEHeaders(w)

	ctx := r.Context()
	updates, subID := h.controller.Subscribe(ctx)
	log.Printf("[sse] stream opened sub=%s", subID)

	ticker := time.NewTicker(heartbeatInterval)
	defer ticker.Stop()

	utils.SendSSEEvent(w, flusher, "state", h.controller.State())

	for {
		select {
		case <-ctx.Done():
			log.Printf("[sse] stream closed sub=%s", subID)
			return
		case state, open := <-updates:
			if !open {
				log.Printf("[sse] controller closed, ending stream sub=%s", subID)
				return
			}
			utils.SendSSEEvent(w, flusher, "state", state)
		case t := <-ticker.C:
			utils.SendSSEChunk(w, flusher, map[string]any{
				"event": "heartbeat",
				"time":  t.UTC().Format(time.RFC3339),
			})
		}
	}
}

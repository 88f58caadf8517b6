package live

import (
	"context"
	"encoding/json"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/echolab/parrot/internal/model/chat"
	chatService "github.com/echolab/parrot/internal/service/chat"
)

// Handler bridges a websocket connection to the conversation controller:
// inbound frames carry intents, outbound frames carry the projected state.
type Handler struct {
	controller *chatService.Controller
	upgrader   websocket.Upgrader
}

// New creates the websocket handler.
func New(controller *chatService.Controller) *Handler {
	return &Handler{
		controller: controller,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
}

// RegisterRoutes registers the websocket route.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/ws", h.handleSocket)
}

type inboundFrame struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

type draftPayload struct {
	Text string `json:"text"`
}

type replacePayload struct {
	Messages []chat.Message `json:"messages"`
}

type outboundFrame struct {
	Type  string       `json:"type"`
	State chat.UIState `json:"state"`
}

// handleSocket upgrades the connection, pushes the current projection, and
// then runs a read loop dispatching intent frames until the peer hangs up.
func (h *Handler) handleSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[ws] upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	updates, _ := h.controller.Subscribe(ctx)

	// Writer: the projection flows one way, reads never touch conn writes.
	go func() {
		if err := conn.WriteJSON(outboundFrame{Type: "state", State: h.controller.State()}); err != nil {
			cancel()
			return
		}
		for state := range updates {
			if err := conn.WriteJSON(outboundFrame{Type: "state", State: state}); err != nil {
				cancel()
				return
			}
		}
	}()

	for {
		var frame inboundFrame
		if err := conn.ReadJSON(&frame); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Printf("[ws] read failed: %v", err)
			}
			return
		}
		h.dispatch(frame)
	}
}

// dispatch routes one intent frame to the controller.
func (h *Handler) dispatch(frame inboundFrame) {
	switch frame.Type {
	case "draft":
		var payload draftPayload
		if err := json.Unmarshal(frame.Data, &payload); err != nil {
			log.Printf("[ws] bad draft payload: %v", err)
			return
		}
		h.controller.DraftChanged(payload.Text)
	case "send":
		h.controller.SendRequested()
	case "replace":
		var payload replacePayload
		if err := json.Unmarshal(frame.Data, &payload); err != nil {
			log.Printf("[ws] bad replace payload: %v", err)
			return
		}
		h.controller.MessagesReplaced(payload.Messages)
	default:
		log.Printf("[ws] unknown frame type %q", frame.Type)
	}
}

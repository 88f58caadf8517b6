package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	chatHandler "github.com/echolab/parrot/internal/handler/chat"
	"github.com/echolab/parrot/internal/handler/live"
	"github.com/echolab/parrot/internal/handler/stream"
	middlewarePkg "github.com/echolab/parrot/internal/middleware"
	chatService "github.com/echolab/parrot/internal/service/chat"
)

// NewRouter wires HTTP routes to the conversation core.
func NewRouter(store *chatService.Store, controller *chatService.Controller) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middlewarePkg.CORS)

	chatH := chatHandler.New(store, controller)
	streamH := stream.New(controller)
	liveH := live.New(controller)

	r.Route("/api", func(api chi.Router) {
		chatH.RegisterRoutes(api)
		streamH.RegisterRoutes(api)
		liveH.RegisterRoutes(api)
	})

	return r
}

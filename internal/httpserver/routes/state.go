package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/webclipper/internal/httpserver/deps"
	"github.com/MrSnakeDoc/webclipper/internal/httpserver/handlers"
)

func init() { RegisterAPI(registerState) }

func registerState(r chi.Router, d deps.Deps) {
	r.Get("/state", handlers.GetState(d))
	r.Put("/route", handlers.PutRoute(d))
	r.Put("/clips", handlers.PutClip(d))
	r.Get("/notifications", handlers.Notifications(d))
}

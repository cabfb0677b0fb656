package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/webclipper/internal/httpserver/deps"
	"github.com/MrSnakeDoc/webclipper/internal/httpserver/handlers"
)

func init() { RegisterAPI(registerExtensions) }

func registerExtensions(r chi.Router, d deps.Deps) {
	r.Get("/extensions", handlers.ListExtensions(d))
	r.Post("/extensions/{name}/run", handlers.RunExtension(d))
	r.Post("/tools/{action}", handlers.ToolAction(d))
	r.Post("/manifest/reload", handlers.ReloadManifest(d))
}

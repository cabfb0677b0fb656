package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/webclipper/internal/httpserver/deps"
	"github.com/MrSnakeDoc/webclipper/internal/httpserver/handlers"
)

func init() { RegisterAPI(registerAccounts) }

func registerAccounts(r chi.Router, d deps.Deps) {
	r.Post("/accounts/verify", handlers.VerifyAccount(d))
	r.Post("/accounts", handlers.AddAccount(d))
	r.Put("/accounts/current", handlers.SetCurrentAccount(d))
	r.Delete("/accounts/{id}", handlers.DeleteAccount(d))
	r.Post("/preferences/{toggle}", handlers.Toggle(d))
	r.Put("/preferences/plugin", handlers.SetDefaultPlugin(d))
}

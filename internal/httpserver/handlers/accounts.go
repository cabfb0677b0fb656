package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/webclipper/internal/coordinator"
	"github.com/MrSnakeDoc/webclipper/internal/httpserver/deps"
)

// execute decodes an optional body into cmd, runs it and writes the result.
func execute[C coordinator.Command](d deps.Deps, status int, withBody bool, build func(*http.Request, *C) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var cmd C
		if withBody {
			if err := decode(w, r, &cmd); err != nil {
				writeError(w, d.Logger, err)
				return
			}
		}
		if build != nil {
			if err := build(r, &cmd); err != nil {
				writeError(w, d.Logger, err)
				return
			}
		}

		out, err := d.Coordinator.Execute(r.Context(), cmd)
		if err != nil {
			writeError(w, d.Logger, err)
			return
		}
		writeJSON(w, status, out)
	}
}

// VerifyAccount checks credentials and fills the add-account form.
func VerifyAccount(d deps.Deps) http.HandlerFunc {
	return execute(d, http.StatusOK, true, func(_ *http.Request, cmd *coordinator.VerifyAccount) error {
		if cmd.Type == "" {
			return badRequest("type is required")
		}
		return nil
	})
}

// AddAccount stores the verified form as a new account.
func AddAccount(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var cmd coordinator.AddAccount
		if r.ContentLength != 0 {
			if err := decode(w, r, &cmd); err != nil {
				writeError(w, d.Logger, err)
				return
			}
		}
		out, err := d.Coordinator.Execute(r.Context(), cmd)
		if err != nil {
			writeError(w, d.Logger, err)
			return
		}
		writeJSON(w, http.StatusCreated, out)
	}
}

// DeleteAccount removes an account by id.
func DeleteAccount(d deps.Deps) http.HandlerFunc {
	return execute(d, http.StatusOK, false, func(r *http.Request, cmd *coordinator.DeleteAccount) error {
		cmd.ID = chi.URLParam(r, "id")
		return nil
	})
}

// SetCurrentAccount selects the default account.
func SetCurrentAccount(d deps.Deps) http.HandlerFunc {
	return execute(d, http.StatusOK, true, func(_ *http.Request, cmd *coordinator.SetCurrentAccount) error {
		if cmd.ID == "" {
			return badRequest("id is required")
		}
		return nil
	})
}

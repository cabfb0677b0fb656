package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/webclipper/internal/coordinator"
	"github.com/MrSnakeDoc/webclipper/internal/httpserver/deps"
)

// ToolAction hides or removes the in-page clipper tool.
func ToolAction(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var cmd coordinator.Command
		switch chi.URLParam(r, "action") {
		case "hide":
			cmd = coordinator.HideTool{}
		case "remove":
			cmd = coordinator.RemoveTool{}
		default:
			writeJSON(w, http.StatusNotFound, errorResponse{Error: "unknown tool action"})
			return
		}

		if _, err := d.Coordinator.Execute(r.Context(), cmd); err != nil {
			writeError(w, d.Logger, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

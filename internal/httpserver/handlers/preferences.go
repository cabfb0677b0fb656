package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/webclipper/internal/coordinator"
	"github.com/MrSnakeDoc/webclipper/internal/httpserver/deps"
)

type toggleRequest struct {
	Value bool `json:"value"`
}

type toggleResponse struct {
	Toggle string `json:"toggle"`
	Value  any    `json:"value"`
}

var toggles = map[string]func(bool) coordinator.Command{
	"showLineNumber":        func(v bool) coordinator.Command { return coordinator.SetShowLineNumber{Value: v} },
	"liveRendering":         func(v bool) coordinator.Command { return coordinator.SetLiveRendering{Value: v} },
	"showQuickResponseCode": func(v bool) coordinator.Command { return coordinator.SetShowQuickResponseCode{Value: v} },
}

// Toggle flips a boolean preference. The body carries the value currently
// shown and the response the value now stored.
func Toggle(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name := chi.URLParam(r, "toggle")
		build, ok := toggles[name]
		if !ok {
			writeJSON(w, http.StatusNotFound, errorResponse{Error: "unknown preference " + name})
			return
		}

		var req toggleRequest
		if err := decode(w, r, &req); err != nil {
			writeError(w, d.Logger, err)
			return
		}

		out, err := d.Coordinator.Execute(r.Context(), build(req.Value))
		if err != nil {
			writeError(w, d.Logger, err)
			return
		}
		writeJSON(w, http.StatusOK, toggleResponse{Toggle: name, Value: out})
	}
}

// SetDefaultPlugin stores the extension opened by default; "" clears it.
func SetDefaultPlugin(d deps.Deps) http.HandlerFunc {
	return execute[coordinator.SetDefaultPlugin](d, http.StatusOK, true, nil)
}

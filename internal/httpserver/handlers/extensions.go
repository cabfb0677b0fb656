package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/webclipper/internal/coordinator"
	"github.com/MrSnakeDoc/webclipper/internal/domain"
	"github.com/MrSnakeDoc/webclipper/internal/extension"
	"github.com/MrSnakeDoc/webclipper/internal/httpserver/deps"
)

// ListExtensions returns enabled extensions. With ?applicable=1 only those
// applicable to the current route and account are returned.
func ListExtensions(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var exts []extension.Extension
		if r.URL.Query().Get("applicable") == "1" {
			ic := extension.InitContext{
				Pathname:    d.State.Pathname(),
				AccountType: d.State.CurrentAccountType(),
			}
			exts = d.Registry.Applicable(ic)
		} else {
			exts = d.Registry.All()
		}

		metas := make([]domain.ExtensionMeta, 0, len(exts))
		for _, ext := range exts {
			metas = append(metas, ext.Meta())
		}
		writeJSON(w, http.StatusOK, metas)
	}
}

// RunExtension runs one extension against the current route.
func RunExtension(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name := chi.URLParam(r, "name")
		out, err := d.Coordinator.Execute(r.Context(), coordinator.RunExtension{Name: name})
		if err != nil {
			writeError(w, d.Logger, err)
			return
		}
		writeJSON(w, http.StatusOK, out)
	}
}

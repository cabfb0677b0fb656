package handlers

import (
	"net/http"
	"strings"

	"github.com/MrSnakeDoc/webclipper/internal/blob"
	"github.com/MrSnakeDoc/webclipper/internal/domain"
	"github.com/MrSnakeDoc/webclipper/internal/httpserver/deps"
	"github.com/MrSnakeDoc/webclipper/internal/state"
)

// GetState returns a snapshot of the whole application state.
func GetState(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, d.State.Snapshot())
	}
}

type routeRequest struct {
	Pathname string `json:"pathname"`
	Title    string `json:"title,omitempty"`
	URL      string `json:"url,omitempty"`
}

// PutRoute moves the router and optionally records the page being clipped.
func PutRoute(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req routeRequest
		if err := decode(w, r, &req); err != nil {
			writeError(w, d.Logger, err)
			return
		}
		if !strings.HasPrefix(req.Pathname, "/") {
			writeError(w, d.Logger, badRequest("pathname must start with /"))
			return
		}

		d.State.SetRoute(req.Pathname)
		if req.Title != "" || req.URL != "" {
			d.State.SetPage(req.Title, req.URL)
		}
		writeJSON(w, http.StatusOK, state.Router{Pathname: d.State.Pathname()})
	}
}

type clipRequest struct {
	Pathname string `json:"pathname,omitempty"`
	Text     string `json:"text,omitempty"`
	DataURL  string `json:"dataUrl,omitempty"`
}

// PutClip stores captured content for a route (the current one by default).
// A dataUrl makes it an image clip; its dimensions are read from the payload.
func PutClip(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req clipRequest
		if err := decode(w, r, &req); err != nil {
			writeError(w, d.Logger, err)
			return
		}

		pathname := req.Pathname
		if pathname == "" {
			pathname = d.State.Pathname()
		}

		clip := domain.TextClip(req.Text)
		if req.DataURL != "" {
			img, err := blob.LoadImage(req.DataURL)
			if err != nil {
				writeError(w, d.Logger, badRequest(err.Error()))
				return
			}
			clip = domain.Clip{Image: &img}
		}

		d.State.SetClip(pathname, clip)
		writeJSON(w, http.StatusOK, map[string]any{"pathname": pathname, "clip": clip})
	}
}

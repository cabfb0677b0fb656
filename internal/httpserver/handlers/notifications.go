package handlers

import (
	"net/http"

	"github.com/MrSnakeDoc/webclipper/internal/httpserver/deps"
)

// Notifications lists recent user notifications; ?drain=1 also clears them.
func Notifications(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("drain") == "1" {
			writeJSON(w, http.StatusOK, d.Notifications.Drain())
			return
		}
		writeJSON(w, http.StatusOK, d.Notifications.Recent())
	}
}

package handlers

import (
	"errors"
	"net/http"

	"videogen/internal/storage"
)

const indexPage = "index.html"

// Static serves files from the media directory under /static/.
func (a *App) Static() http.Handler {
	return http.StripPrefix("/static/", http.FileServer(http.Dir(a.Media.BasePath())))
}

// Index serves the single-page front end.
func (a *App) Index(w http.ResponseWriter, r *http.Request) {
	f, _, err := a.Media.Open(indexPage)
	if errors.Is(err, storage.ErrNotExist) {
		a.error(w, http.StatusNotFound, "not_found", "index page missing")
		return
	}
	if err != nil {
		a.error(w, http.StatusInternalServerError, "internal", "failed to open index page")
		return
	}
	defer f.Close()
	info, err := f.Stat()
	if err != nil {
		a.error(w, http.StatusInternalServerError, "internal", "failed to stat index page")
		return
	}
	http.ServeContent(w, r, indexPage, info.ModTime(), f)
}

package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"imageserver/internal/storage"
	"imageserver/pkg/zip"
)

// ArtifactsList scans the images root and returns every stored artifact. The
// filesystem is the source of truth; no in-memory history exists.
func (a *App) ArtifactsList(w http.ResponseWriter, r *http.Request) {
	items, err := a.Store.List()
	if err != nil {
		a.error(w, http.StatusInternalServerError, "internal", "failed to list artifacts")
		return
	}
	if items == nil {
		items = []storage.StoredArtifact{}
	}
	a.json(w, http.StatusOK, map[string]any{"items": items})
}

// ArtifactGet returns one artifact's metadata by key.
func (a *App) ArtifactGet(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")
	meta, err := a.Store.Get(key)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			a.error(w, http.StatusNotFound, "not_found", "artifact not found")
			return
		}
		a.error(w, http.StatusBadRequest, "bad_request", err.Error())
		return
	}
	a.json(w, http.StatusOK, storage.StoredArtifact{Key: key, Metadata: meta})
}

// ArtifactArchive streams one artifact's files as a zip download.
func (a *App) ArtifactArchive(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")
	files, err := a.Store.Files(key)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			a.error(w, http.StatusNotFound, "not_found", "artifact not found")
			return
		}
		a.error(w, http.StatusBadRequest, "bad_request", err.Error())
		return
	}
	archive := make([]zip.File, 0, len(files))
	for name, data := range files {
		archive = append(archive, zip.File{Name: name, Data: data})
	}
	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=artifact-%s.zip", key))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(zip.Archive(archive))
}

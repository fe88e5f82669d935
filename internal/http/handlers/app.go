package handlers

import (
	"encoding/json"
	"net/http"

	"imageserver/internal/infra"
	"imageserver/internal/storage"
	"imageserver/internal/tool"
)

// App is the handler container: it carries the tool registry, the artifact
// store and the logger the route handlers need.
type App struct {
	Logger   infra.Logger
	Registry *tool.Registry
	Store    *storage.ArtifactStore
}

func NewApp(logger infra.Logger, registry *tool.Registry, store *storage.ArtifactStore) *App {
	return &App{Logger: logger, Registry: registry, Store: store}
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *App) error(w http.ResponseWriter, status int, code, message string) {
	a.json(w, status, map[string]any{
		"error": map[string]string{"code": code, "message": message},
	})
}

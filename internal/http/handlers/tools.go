package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"imageserver/internal/tool"
)

// ToolsList returns the descriptors of every registered tool.
func (a *App) ToolsList(w http.ResponseWriter, r *http.Request) {
	a.json(w, http.StatusOK, map[string]any{"tools": a.Registry.List()})
}

// ToolsInvoke runs one tool with the request body as its JSON arguments. A
// tool-level failure is still a 200: the result payload carries the
// success/error shape, and transport status codes are reserved for transport
// problems.
func (a *App) ToolsInvoke(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if name == "" {
		a.error(w, http.StatusBadRequest, "bad_request", "tool name required")
		return
	}
	body, err := io.ReadAll(r.Body)
	if err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "unreadable body")
		return
	}
	args := json.RawMessage(body)
	if len(body) > 0 && !json.Valid(body) {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}

	result, err := a.Registry.Invoke(r.Context(), name, args)
	if err != nil {
		if errors.Is(err, tool.ErrNotFound) {
			a.error(w, http.StatusNotFound, "not_found", "unknown tool")
			return
		}
		a.error(w, http.StatusBadRequest, "bad_request", err.Error())
		return
	}
	a.json(w, http.StatusOK, result)
}

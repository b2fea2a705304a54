// Package api holds the JSON response helpers shared by the HTTP handlers.
package api

import (
	"net/http"

	"github.com/unrolled/render"
)

var renderer = render.New(render.Options{
	UnEscapeHTML: true,
})

// JSON writes v as a JSON body with the given status.
func JSON(w http.ResponseWriter, status int, v any) {
	_ = renderer.JSON(w, status, v)
}

// Error writes {"error": message} with the given status.
func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, map[string]string{"error": message})
}

// NoContent writes an empty 204 response.
func NoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}

package handler

import (
	"fmt"
	"log/slog"
	"net/http"

	"sigs.k8s.io/yaml"
)

// OpenAPIHandler serves the API description as JSON.
type OpenAPIHandler struct {
	spec []byte
}

// NewOpenAPIHandler converts the YAML document once so a broken document is
// reported at startup rather than on the first request.
func NewOpenAPIHandler(yamlSpec []byte) (*OpenAPIHandler, error) {
	spec, err := yaml.YAMLToJSON(yamlSpec)
	if err != nil {
		return nil, fmt.Errorf("converting OpenAPI document: %w", err)
	}
	return &OpenAPIHandler{spec: spec}, nil
}

// ServeHTTP writes the cached JSON document.
func (h *OpenAPIHandler) ServeHTTP(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "public, max-age=300")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(h.spec); err != nil {
		slog.Error("failed to write OpenAPI document", "error", err)
	}
}

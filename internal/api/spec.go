// Package api holds the OpenAPI contract of the HTTP surface.
package api

import (
	_ "embed"
	"fmt"
	"net/http"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/getkin/kin-openapi/routers"
	"github.com/getkin/kin-openapi/routers/legacy"
	"github.com/swaggo/swag"
)

// DocName is the name the document is registered under with swag.
const DocName = "academy"

//go:embed openapi.yaml
var document []byte

type doc struct{}

func (doc) ReadDoc() string {
	return string(document)
}

func init() {
	swag.Register(DocName, doc{})
}

// Document returns the raw OpenAPI YAML.
func Document() []byte {
	return document
}

// LoadSwagger parses and validates the embedded document.
func LoadSwagger() (*openapi3.T, error) {
	loader := openapi3.NewLoader()
	swagger, err := loader.LoadFromData(document)
	if err != nil {
		return nil, fmt.Errorf("load openapi document: %w", err)
	}
	if err := swagger.Validate(loader.Context); err != nil {
		return nil, fmt.Errorf("validate openapi document: %w", err)
	}
	// Match routes on path alone regardless of host.
	swagger.Servers = nil
	return swagger, nil
}

// NewRouter builds a route matcher for request validation.
func NewRouter(swagger *openapi3.T) (routers.Router, error) {
	return legacy.NewRouter(swagger)
}

// RegisterDocsRoutes serves the contract at /docs/openapi.yaml.
func RegisterDocsRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /docs/openapi.yaml", func(w http.ResponseWriter, r *http.Request) {
		body, err := swag.ReadDoc(DocName)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/yaml")
		_, _ = w.Write([]byte(body))
	})
}

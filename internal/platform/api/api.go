// Package api builds the huma API layered on the chi router.
package api

import (
	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	_ "github.com/danielgtaylor/huma/v2/formats/cbor" // registers application/cbor
	"github.com/go-chi/chi/v5"
)

const (
	// Title names the API in huma's operation metadata.
	Title = "Hello Server"
	// Version is the API contract version, independent of the build version.
	Version = "1.0.0"
)

// Config returns huma's defaults minus the auxiliary routes (OpenAPI
// document, docs UI, schemas) and minus the schema link transformer, so
// response bodies carry only the fields their types declare.
func Config() huma.Config {
	cfg := huma.DefaultConfig(Title, Version)
	cfg.OpenAPIPath = ""
	cfg.DocsPath = ""
	cfg.SchemasPath = ""
	cfg.CreateHooks = nil
	return cfg
}

// New registers a huma API on router.
func New(router chi.Router) huma.API {
	return humachi.New(router, Config())
}

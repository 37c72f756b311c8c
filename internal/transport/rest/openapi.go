package rest

import (
	"fmt"

	"github.com/getkin/kin-openapi/openapi3"
)

// ValidateOpenAPISpec loads and validates the served OpenAPI document
// so a malformed spec fails loudly at boot instead of surfacing as a
// broken swagger page.
func ValidateOpenAPISpec(path string) error {
	loader := openapi3.NewLoader()

	doc, err := loader.LoadFromFile(path)
	if err != nil {
		return fmt.Errorf("load openapi spec %s: %w", path, err)
	}

	if err := doc.Validate(loader.Context); err != nil {
		return fmt.Errorf("validate openapi spec %s: %w", path, err)
	}

	return nil
}

// Package loader reads a generated OpenAPI document back through libopenapi and
// reports problems a consumer of the document would hit.
package loader

import (
	"fmt"
	"os"
	"strings"

	"github.com/pb33f/libopenapi"
	validator "github.com/pb33f/libopenapi-validator"
	v3 "github.com/pb33f/libopenapi/datamodel/high/v3"
)

type Result struct {
	Document *libopenapi.DocumentModel[v3.Document]
	Version  string
	Warnings []string
}

func LoadFile(path string) (*Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading openapi document: %w", err)
	}
	return Load(data)
}

// Load parses data, validates it against the OpenAPI schema and checks the
// cross references the schema cannot express. Schema and reference problems are
// collected as warnings; only unparseable documents fail.
func Load(data []byte) (*Result, error) {
	doc, err := libopenapi.NewDocument(data)
	if err != nil {
		return nil, fmt.Errorf("parsing OpenAPI document: %w", err)
	}

	version := doc.GetVersion()
	if !strings.HasPrefix(version, "3.") {
		return nil, fmt.Errorf("unsupported OpenAPI version: %s (only 3.x supported)", version)
	}

	model, err := doc.BuildV3Model()
	if err != nil {
		return nil, fmt.Errorf("building OpenAPI model: %w", err)
	}

	result := &Result{
		Document: model,
		Version:  version,
	}

	v, errs := validator.NewValidator(doc)
	if len(errs) > 0 {
		return nil, fmt.Errorf("creating validator: %w", errs[0])
	}
	if valid, verrs := v.ValidateDocument(); !valid {
		for _, e := range verrs {
			result.Warnings = append(result.Warnings, describe(e.Message, e.Reason))
			for _, se := range e.SchemaValidationErrors {
				result.Warnings = append(result.Warnings, describe("schema", se.Reason))
			}
		}
	}

	dups, err := DuplicateKeys(data)
	if err != nil {
		return nil, err
	}
	result.Warnings = append(result.Warnings, dups...)
	result.Warnings = append(result.Warnings, Inspect(model).Problems()...)
	return result, nil
}

func describe(message, reason string) string {
	if reason == "" || reason == message {
		return message
	}
	return message + ": " + reason
}

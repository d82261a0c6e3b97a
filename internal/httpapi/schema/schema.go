// Package schema проверяет тела запросов по встроенным JSON Schema.
package schema

import (
	"bytes"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"path"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed schemas/*.json
var files embed.FS

// Имена схем запросов.
const (
	AddressNormalize  = "address_normalize"
	AddressSimilarity = "address_similarity"
	Fingerprint       = "fingerprint"
	IngestionRun      = "ingestion_run"
	ComparablesRank   = "comparables_rank"
	ComparablesScored = "comparables_scored"
	Facts             = "facts"
)

var (
	ErrUnknownSchema = errors.New("unknown schema")
	ErrInvalidJSON   = errors.New("request body is not valid JSON")
)

// Validator хранит скомпилированные схемы. Безопасен для конкурентного использования.
type Validator struct {
	schemas map[string]*jsonschema.Schema
}

// New компилирует все встроенные схемы.
func New() (*Validator, error) {
	entries, err := files.ReadDir("schemas")
	if err != nil {
		return nil, fmt.Errorf("read embedded schemas: %w", err)
	}

	compiler := jsonschema.NewCompiler()
	compiler.AssertFormat = true

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		data, err := files.ReadFile(path.Join("schemas", e.Name()))
		if err != nil {
			return nil, fmt.Errorf("read schema %s: %w", e.Name(), err)
		}
		name := strings.TrimSuffix(e.Name(), ".json")
		if err := compiler.AddResource(resourceURL(name), bytes.NewReader(data)); err != nil {
			return nil, fmt.Errorf("add schema %s: %w", name, err)
		}
		names = append(names, name)
	}

	v := &Validator{schemas: make(map[string]*jsonschema.Schema, len(names))}
	for _, name := range names {
		s, err := compiler.Compile(resourceURL(name))
		if err != nil {
			return nil, fmt.Errorf("compile schema %s: %w", name, err)
		}
		v.schemas[name] = s
	}
	return v, nil
}

// MustNew — как New, но паникует при ошибке (схемы встроены в бинарник).
func MustNew() *Validator {
	v, err := New()
	if err != nil {
		panic(err)
	}
	return v
}

// Validate проверяет тело запроса по схеме name.
func (v *Validator) Validate(name string, body []byte) error {
	s, ok := v.schemas[name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownSchema, name)
	}

	var doc any
	if err := json.Unmarshal(body, &doc); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidJSON, err)
	}

	if err := s.Validate(doc); err != nil {
		return fmt.Errorf("schema validation failed: %w", err)
	}
	return nil
}

func resourceURL(name string) string {
	return "mem://schemas/" + name + ".json"
}

// lint/schema.go
package lint

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const schemaURL = "https://pipekit.dev/schema/codemagic.schema.json"

var (
	//go:embed schema/codemagic.schema.json
	schemaBytes []byte

	schemaOnce     sync.Once
	schemaCompiled *jsonschema.Schema
	schemaErr      error

	schemaPrinter = message.NewPrinter(language.English)
)

func compiledSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(schemaBytes))
		if err != nil {
			schemaErr = fmt.Errorf("parse pipeline schema: %w", err)
			return
		}
		c := jsonschema.NewCompiler()
		if err := c.AddResource(schemaURL, doc); err != nil {
			schemaErr = fmt.Errorf("add pipeline schema: %w", err)
			return
		}
		schemaCompiled, schemaErr = c.Compile(schemaURL)
	})
	return schemaCompiled, schemaErr
}

// CheckShape validates the decoded document against the embedded schema and
// returns one warning per violation, sorted by instance location. The rules
// still run on documents with warnings.
func CheckShape(d *Document) ([]string, error) {
	sch, err := compiledSchema()
	if err != nil {
		return nil, err
	}

	v, err := d.Value()
	if err != nil {
		return []string{"cannot decode document: " + err.Error()}, nil
	}
	// Normalize YAML values (int, time.Time, ...) to JSON types.
	raw, err := json.Marshal(v)
	if err != nil {
		return []string{"cannot check structure: " + err.Error()}, nil
	}
	inst, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("normalize document: %w", err)
	}

	err = sch.Validate(inst)
	if err == nil {
		return nil, nil
	}
	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		return nil, err
	}

	var warnings []string
	collectLeaves(ve, &warnings)
	sort.Strings(warnings)
	return warnings, nil
}

// collectLeaves flattens the error tree to its leaf causes.
func collectLeaves(ve *jsonschema.ValidationError, out *[]string) {
	if len(ve.Causes) == 0 {
		loc := "/" + strings.Join(ve.InstanceLocation, "/")
		*out = append(*out, fmt.Sprintf("at '%s': %s", loc, ve.ErrorKind.LocalizedString(schemaPrinter)))
		return
	}
	for _, c := range ve.Causes {
		collectLeaves(c, out)
	}
}

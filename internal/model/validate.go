package model

import (
	_ "embed"
	"fmt"
	"sync"

	"github.com/xeipuuv/gojsonschema"
)

//go:embed schema/resume.schema.json
var resumeSchema []byte

var (
	schemaOnce sync.Once
	schema     *gojsonschema.Schema
	schemaErr  error
)

func compiledSchema() (*gojsonschema.Schema, error) {
	schemaOnce.Do(func() {
		schema, schemaErr = gojsonschema.NewSchema(gojsonschema.NewBytesLoader(resumeSchema))
	})
	return schema, schemaErr
}

// SchemaWarnings validates a generic map against the embedded resume schema
// and reports each violation as a warning. Violations never reject a
// snapshot; the decoder already degrades the offending fields to empty.
func SchemaWarnings(m map[string]interface{}) []string {
	s, err := compiledSchema()
	if err != nil {
		return []string{fmt.Sprintf("schema unavailable: %v", err)}
	}
	res, err := s.Validate(gojsonschema.NewGoLoader(m))
	if err != nil {
		return []string{fmt.Sprintf("schema validation error: %v", err)}
	}
	if res.Valid() {
		return nil
	}
	out := make([]string, 0, len(res.Errors()))
	for _, e := range res.Errors() {
		out = append(out, "schema: "+e.String())
	}
	return out
}

// Issues lists rule violations in an already decoded snapshot. The
// renderer tolerates all of them; callers use the list for diagnostics.
func (r Resume) Issues() []string {
	var out []string
	for i, e := range r.Experience {
		if e.Current && !Blank(e.EndDate) {
			out = append(out, fmt.Sprintf("experience[%d]: ongoing entry has an end date", i))
		}
		if e.IsEmpty() {
			out = append(out, fmt.Sprintf("experience[%d]: empty entry", i))
		}
	}
	for i, e := range r.Education {
		if e.Current && !Blank(e.EndDate) {
			out = append(out, fmt.Sprintf("education[%d]: ongoing entry has an end date", i))
		}
		if e.IsEmpty() {
			out = append(out, fmt.Sprintf("education[%d]: empty entry", i))
		}
	}
	for i, c := range r.Certifications {
		if c.IsEmpty() {
			out = append(out, fmt.Sprintf("certifications[%d]: empty entry", i))
		}
	}
	if Blank(r.Name) {
		out = append(out, "name: missing")
	}
	return out
}

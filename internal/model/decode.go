package model

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
)

// ErrNotObject is returned when a snapshot payload is not a JSON object.
var ErrNotObject = errors.New("resume snapshot must be a JSON object")

// DecodeSnapshot parses a raw snapshot leniently. Structural problems inside
// the object never fail the decode: the offending field is treated as empty
// and a warning is returned instead.
func DecodeSnapshot(raw []byte) (Resume, []string, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || raw[0] != '{' {
		return Resume{}, nil, ErrNotObject
	}
	var m map[string]interface{}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&m); err != nil {
		return Resume{}, nil, fmt.Errorf("%w: %v", ErrNotObject, err)
	}
	r, warnings := FromMap(m)
	warnings = append(warnings, SchemaWarnings(m)...)
	return r, warnings, nil
}

// FromMap converts a generic map into a Resume, normalising the input shapes
// the editor has produced over time.
func FromMap(m map[string]interface{}) (Resume, []string) {
	d := &decoder{}
	r := Resume{
		Name:             d.str(m, "name"),
		Title:            d.str(m, "title"),
		Email:            d.str(m, "email"),
		Phone:            d.str(m, "phone"),
		Location:         d.str(m, "location"),
		Website:          d.str(m, "website"),
		Photo:            d.str(m, "photo"),
		Summary:          d.str(m, "summary"),
		SelectedTemplate: d.str(m, "selectedTemplate"),
	}

	for i, it := range d.list(m, "experience") {
		rec, ok := d.record("experience", i, it)
		if !ok {
			continue
		}
		e := Experience{
			Title:       d.str(rec, "title"),
			Company:     d.str(rec, "company"),
			Location:    d.str(rec, "location"),
			StartDate:   d.str(rec, "startDate"),
			EndDate:     d.str(rec, "endDate"),
			Current:     d.flag(rec, "current"),
			Description: d.str(rec, "description"),
		}
		if e.Current && !Blank(e.EndDate) {
			d.warn("experience[%d]: ongoing entry has an end date; end date ignored", i)
			e.EndDate = ""
		}
		r.Experience = append(r.Experience, e)
	}

	for i, it := range d.list(m, "education") {
		rec, ok := d.record("education", i, it)
		if !ok {
			continue
		}
		e := Education{
			Degree:      d.str(rec, "degree"),
			Institution: d.str(rec, "institution"),
			Location:    d.str(rec, "location"),
			StartDate:   d.str(rec, "startDate"),
			EndDate:     d.str(rec, "endDate"),
			Current:     d.flag(rec, "current"),
			Description: d.str(rec, "description"),
		}
		if e.Current && !Blank(e.EndDate) {
			d.warn("education[%d]: ongoing entry has an end date; end date ignored", i)
			e.EndDate = ""
		}
		r.Education = append(r.Education, e)
	}

	for i, it := range d.list(m, "certifications") {
		rec, ok := d.record("certifications", i, it)
		if !ok {
			continue
		}
		r.Certifications = append(r.Certifications, Certification{
			Name:          d.str(rec, "name"),
			Issuer:        d.str(rec, "issuer"),
			Date:          d.str(rec, "date"),
			CredentialID:  d.str(rec, "credentialId"),
			CredentialURL: d.str(rec, "credentialUrl"),
			Description:   d.str(rec, "description"),
		})
	}

	for i, it := range d.list(m, "skills") {
		if s, ok := it.(string); ok {
			r.Skills = append(r.Skills, Skill{Name: s})
			continue
		}
		rec, ok := d.record("skills", i, it)
		if !ok {
			continue
		}
		r.Skills = append(r.Skills, Skill{Name: d.str(rec, "name"), Level: d.str(rec, "level")})
	}

	for i, it := range d.list(m, "languages") {
		if s, ok := it.(string); ok {
			r.Languages = append(r.Languages, Language{Name: s})
			continue
		}
		rec, ok := d.record("languages", i, it)
		if !ok {
			continue
		}
		r.Languages = append(r.Languages, Language{Name: d.str(rec, "name"), Level: d.str(rec, "level")})
	}

	return r, d.warnings
}

type decoder struct {
	warnings []string
}

func (d *decoder) warn(format string, args ...interface{}) {
	d.warnings = append(d.warnings, fmt.Sprintf(format, args...))
}

func (d *decoder) str(m map[string]interface{}, key string) string {
	v, ok := m[key]
	if !ok || v == nil {
		return ""
	}
	switch t := v.(type) {
	case string:
		return t
	case json.Number:
		return t.String()
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		d.warn("%s: expected a string, got %T; treated as empty", key, v)
		return ""
	}
}

func (d *decoder) flag(m map[string]interface{}, key string) bool {
	switch t := m[key].(type) {
	case bool:
		return t
	case string:
		b, _ := strconv.ParseBool(t)
		return b
	default:
		return false
	}
}

func (d *decoder) list(m map[string]interface{}, key string) []interface{} {
	v, ok := m[key]
	if !ok || v == nil {
		return nil
	}
	arr, ok := v.([]interface{})
	if !ok {
		d.warn("%s: expected an array, got %T; treated as empty", key, v)
		return nil
	}
	return arr
}

func (d *decoder) record(section string, i int, v interface{}) (map[string]interface{}, bool) {
	rec, ok := v.(map[string]interface{})
	if !ok {
		d.warn("%s[%d]: expected an object, got %T; dropped", section, i, v)
	}
	return rec, ok
}

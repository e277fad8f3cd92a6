package placeholder

import (
	"strings"

	"resume-builder/internal/domain"
	"resume-builder/internal/model"
)

// Resolver applies the view-mode rules for blank fields. It is immutable and
// safe for concurrent use.
type Resolver struct {
	catalog Catalog
}

// New returns a resolver over the given catalog.
func New(c Catalog) *Resolver {
	return &Resolver{catalog: c}
}

// Catalog returns the examples the resolver draws from.
func (r *Resolver) Catalog() Catalog { return r.catalog }

// Resolve returns a new snapshot in which every field is either the real
// value, a catalog example (draft mode) or blank (final mode). Empty records
// are dropped in both modes. The input is never modified.
func (r *Resolver) Resolve(in model.Resume, mode domain.ViewMode) model.Resume {
	out := in.Clone()
	out.Experience = keep(out.Experience, model.Experience.IsEmpty)
	out.Education = keep(out.Education, model.Education.IsEmpty)
	out.Certifications = keep(out.Certifications, model.Certification.IsEmpty)
	out.Skills = keep(out.Skills, model.Skill.IsEmpty)
	out.Languages = keep(out.Languages, model.Language.IsEmpty)

	if mode != domain.ModeDraft {
		return out
	}

	c := r.catalog
	out.Name = or(out.Name, c.Name)
	out.Title = or(out.Title, c.Title)
	out.Email = or(out.Email, c.Email)
	out.Phone = or(out.Phone, c.Phone)
	out.Location = or(out.Location, c.Location)
	out.Website = or(out.Website, c.Website)
	out.Photo = or(out.Photo, c.Photo)
	out.Summary = or(out.Summary, c.Summary)

	if len(out.Experience) == 0 {
		out.Experience = []model.Experience{{}}
	}
	for i, e := range out.Experience {
		ex := c.Experience
		e.Title = or(e.Title, ex.Title)
		e.Company = or(e.Company, ex.Company)
		e.Location = or(e.Location, ex.Location)
		e.Description = or(e.Description, ex.Description)
		if !e.Current && model.Blank(e.StartDate) && model.Blank(e.EndDate) {
			e.StartDate = c.StartDate
		}
		out.Experience[i] = e
	}

	if len(out.Education) == 0 {
		out.Education = []model.Education{{}}
	}
	for i, e := range out.Education {
		ex := c.Education
		e.Degree = or(e.Degree, ex.Degree)
		e.Institution = or(e.Institution, ex.Institution)
		e.Location = or(e.Location, ex.Location)
		e.Description = or(e.Description, ex.Description)
		if !e.Current && model.Blank(e.StartDate) && model.Blank(e.EndDate) {
			e.StartDate = c.StartDate
		}
		out.Education[i] = e
	}

	if len(out.Certifications) == 0 {
		out.Certifications = []model.Certification{{}}
	}
	for i, cert := range out.Certifications {
		ex := c.Certification
		cert.Name = or(cert.Name, ex.Name)
		cert.Issuer = or(cert.Issuer, ex.Issuer)
		cert.Date = or(cert.Date, ex.Date)
		cert.Description = or(cert.Description, ex.Description)
		out.Certifications[i] = cert
	}

	// Levels are optional labels; only whole example entries carry one.
	if len(out.Skills) == 0 {
		out.Skills = append([]model.Skill(nil), c.Skills...)
	}
	if len(c.Skills) > 0 {
		for i := range out.Skills {
			out.Skills[i].Name = or(out.Skills[i].Name, c.Skills[0].Name)
		}
	}
	if len(out.Languages) == 0 {
		out.Languages = append([]model.Language(nil), c.Languages...)
	}
	if len(c.Languages) > 0 {
		for i := range out.Languages {
			out.Languages[i].Name = or(out.Languages[i].Name, c.Languages[0].Name)
		}
	}

	return out
}

func or(v, example string) string {
	if model.Blank(v) {
		return example
	}
	return strings.TrimSpace(v)
}

func keep[T any](in []T, empty func(T) bool) []T {
	out := in[:0]
	for _, v := range in {
		if !empty(v) {
			out = append(out, v)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

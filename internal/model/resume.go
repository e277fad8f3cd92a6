package model

import "strings"

// Go models for a resume snapshot. Field names match the JSON the editor
// posts and the JSONB stored by the repository.

type Experience struct {
	Title       string `json:"title"`
	Company     string `json:"company"`
	Location    string `json:"location,omitempty"`
	StartDate   string `json:"startDate,omitempty"`
	EndDate     string `json:"endDate,omitempty"`
	Current     bool   `json:"current,omitempty"`
	Description string `json:"description,omitempty"`
}

type Education struct {
	Degree      string `json:"degree"`
	Institution string `json:"institution"`
	Location    string `json:"location,omitempty"`
	StartDate   string `json:"startDate,omitempty"`
	EndDate     string `json:"endDate,omitempty"`
	Current     bool   `json:"current,omitempty"`
	Description string `json:"description,omitempty"`
}

type Certification struct {
	Name          string `json:"name"`
	Issuer        string `json:"issuer,omitempty"`
	Date          string `json:"date,omitempty"`
	CredentialID  string `json:"credentialId,omitempty"`
	CredentialURL string `json:"credentialUrl,omitempty"`
	Description   string `json:"description,omitempty"`
}

type Skill struct {
	Name  string `json:"name"`
	Level string `json:"level,omitempty"`
}

type Language struct {
	Name  string `json:"name"`
	Level string `json:"level,omitempty"`
}

// Resume is the root aggregate. Sections are ordered and the order is
// preserved through every stage of the pipeline.
type Resume struct {
	Name     string `json:"name"`
	Title    string `json:"title,omitempty"`
	Email    string `json:"email,omitempty"`
	Phone    string `json:"phone,omitempty"`
	Location string `json:"location,omitempty"`
	Website  string `json:"website,omitempty"`
	// Photo is a data: URI or an http(s) URL.
	Photo   string `json:"photo,omitempty"`
	Summary string `json:"summary,omitempty"`

	Experience     []Experience    `json:"experience"`
	Education      []Education     `json:"education"`
	Certifications []Certification `json:"certifications"`
	Skills         []Skill         `json:"skills"`
	Languages      []Language      `json:"languages"`

	SelectedTemplate string `json:"selectedTemplate,omitempty"`
}

// Blank reports whether s is empty after trimming whitespace.
func Blank(s string) bool { return strings.TrimSpace(s) == "" }

func allBlank(ss ...string) bool {
	for _, s := range ss {
		if !Blank(s) {
			return false
		}
	}
	return true
}

func (e Experience) IsEmpty() bool {
	return !e.Current && allBlank(e.Title, e.Company, e.Location, e.StartDate, e.EndDate, e.Description)
}

func (e Education) IsEmpty() bool {
	return !e.Current && allBlank(e.Degree, e.Institution, e.Location, e.StartDate, e.EndDate, e.Description)
}

func (c Certification) IsEmpty() bool {
	return allBlank(c.Name, c.Issuer, c.Date, c.CredentialID, c.CredentialURL, c.Description)
}

func (s Skill) IsEmpty() bool    { return allBlank(s.Name, s.Level) }
func (l Language) IsEmpty() bool { return allBlank(l.Name, l.Level) }

// Clone returns a deep copy so the render pipeline can never alias the
// caller's slices.
func (r Resume) Clone() Resume {
	out := r
	out.Experience = append([]Experience(nil), r.Experience...)
	out.Education = append([]Education(nil), r.Education...)
	out.Certifications = append([]Certification(nil), r.Certifications...)
	out.Skills = append([]Skill(nil), r.Skills...)
	out.Languages = append([]Language(nil), r.Languages...)
	return out
}

// Package placeholder supplies example content for blank resume fields so a
// draft preview never looks broken.
package placeholder

import "resume-builder/internal/model"

// Catalog holds one canonical example per field and per section type. All
// templates draw from the same catalog.
type Catalog struct {
	Name     string
	Title    string
	Email    string
	Phone    string
	Location string
	Website  string
	Photo    string
	Summary  string

	// StartDate stands in for a record with no dates at all; the open end
	// renders as "Present".
	StartDate string

	Experience    model.Experience
	Education     model.Education
	Certification model.Certification
	Skills        []model.Skill
	Languages     []model.Language
}

const avatarSVG = "data:image/svg+xml;base64," +
	"PHN2ZyB4bWxucz0iaHR0cDovL3d3dy53My5vcmcvMjAwMC9zdmciIHZpZXdCb3g9IjAgMCA5NiA5NiI+" +
	"PHJlY3Qgd2lkdGg9Ijk2IiBoZWlnaHQ9Ijk2IiBmaWxsPSIjZTVlN2ViIi8+PGNpcmNsZSBjeD0iNDgi" +
	"IGN5PSIzOCIgcj0iMTgiIGZpbGw9IiM5Y2EzYWYiLz48cGF0aCBkPSJNMTYgOTZjNC0yMCAxNi0zMCAz" +
	"Mi0zMHMyOCAxMCAzMiAzMHoiIGZpbGw9IiM5Y2EzYWYiLz48L3N2Zz4="

// Default is the catalog shared by every template.
var Default = Catalog{
	Name:      "Your Name",
	Title:     "Professional Title",
	Email:     "you@example.com",
	Phone:     "+1 555 010 0199",
	Location:  "City, Country",
	Website:   "https://example.com",
	Photo:     avatarSVG,
	Summary:   "A short professional summary describing your experience, strengths and the kind of role you are looking for.",
	StartDate: "Jan 2020",
	Experience: model.Experience{
		Title:       "Job Title",
		Company:     "Company Name",
		Location:    "City, Country",
		Description: "Describe a key responsibility or achievement\nQuantify the impact where you can",
	},
	Education: model.Education{
		Degree:      "Degree and Field of Study",
		Institution: "University Name",
		Location:    "City, Country",
		Description: "Relevant coursework, honours or thesis",
	},
	Certification: model.Certification{
		Name:        "Certification Name",
		Issuer:      "Issuing Organization",
		Date:        "2023",
		Description: "What the certification covers",
	},
	Skills: []model.Skill{
		{Name: "Skill", Level: "Advanced"},
		{Name: "Another Skill", Level: "Intermediate"},
	},
	Languages: []model.Language{
		{Name: "Language", Level: "Fluent"},
	},
}

package layout

import (
	"net/url"
	"strconv"
	"strings"

	"golang.org/x/net/publicsuffix"

	"resume-builder/internal/model"
)

// SectionAttr marks a section element with its identifier.
const SectionAttr = "data-section"

// Section identifiers, in the canonical order.
const (
	SectionSummary        = "summary"
	SectionExperience     = "experience"
	SectionEducation      = "education"
	SectionCertifications = "certifications"
	SectionSkills         = "skills"
	SectionLanguages      = "languages"
)

var headings = map[string]string{
	SectionSummary:        "SUMMARY",
	SectionExperience:     "EXPERIENCE",
	SectionEducation:      "EDUCATION",
	SectionCertifications: "CERTIFICATIONS",
	SectionSkills:         "SKILLS",
	SectionLanguages:      "LANGUAGES",
}

// Heading returns the visible heading of a section.
func Heading(id string) string { return headings[id] }

// Present is shown in place of a missing end date.
const Present = "Present"

var bulletGlyphs = "•-*–·▪◦"

// SplitBullets splits a free-text description into bullet items: one per
// line, leading bullet glyphs stripped, empty lines dropped.
func SplitBullets(s string) []string {
	var out []string
	for _, line := range strings.Split(strings.ReplaceAll(s, "\r\n", "\n"), "\n") {
		line = strings.TrimSpace(line)
		line = strings.TrimSpace(strings.TrimLeft(line, bulletGlyphs))
		if line != "" {
			out = append(out, line)
		}
	}
	return out
}

// FormatDates renders a date pair. An open or ongoing range ends in
// "Present"; an end date alone renders by itself. Both blank yields "".
func FormatDates(start, end string, current bool) string {
	start, end = strings.TrimSpace(start), strings.TrimSpace(end)
	if current {
		end = ""
	}
	switch {
	case start != "" && end != "":
		return start + " – " + end
	case start != "":
		return start + " – " + Present
	case end != "":
		return end
	case current:
		return Present
	}
	return ""
}

// LevelLabel renders "name — level", or just the name.
func LevelLabel(name, level string) string {
	name, level = strings.TrimSpace(name), strings.TrimSpace(level)
	if level == "" {
		return name
	}
	return name + " — " + level
}

// LinkLabel shortens a URL to its registrable domain, falling back to the
// raw value when it cannot be parsed.
func LinkLabel(raw string) string {
	raw = strings.TrimSpace(raw)
	u, err := url.Parse(raw)
	if err != nil || u.Hostname() == "" {
		return raw
	}
	host := strings.TrimPrefix(u.Hostname(), "www.")
	if d, err := publicsuffix.EffectiveTLDPlusOne(host); err == nil {
		return d
	}
	return host
}

func section(id string, body ...*Node) *Node {
	s := El("section", "section section-"+id).Set(SectionAttr, id)
	s.Append(El("h2", "section-title", Text(Heading(id))))
	return s.Append(body...)
}

func entry(i int, children ...*Node) *Node {
	return El("div", "entry", children...).Set("data-index", strconv.Itoa(i))
}

func textEl(tag, class, s string) *Node {
	if model.Blank(s) {
		return nil
	}
	return El(tag, class, Text(strings.TrimSpace(s)))
}

func bullets(desc string) *Node {
	items := SplitBullets(desc)
	if len(items) == 0 {
		return nil
	}
	ul := El("ul", "bullets")
	for _, it := range items {
		ul.Append(El("li", "", Text(it)))
	}
	return ul
}

func dates(start, end string, current bool) *Node {
	return textEl("span", "dates", FormatDates(start, end, current))
}

func nonEmpty(n *Node) *Node {
	if len(n.Children) == 0 {
		return nil
	}
	return n
}

func joinNonBlank(sep string, parts ...string) string {
	var keep []string
	for _, p := range parts {
		if !model.Blank(p) {
			keep = append(keep, strings.TrimSpace(p))
		}
	}
	return strings.Join(keep, sep)
}

// Section builders shared by every template. Each returns nil when the
// section has nothing to show.

func summarySection(r model.Resume) *Node {
	if model.Blank(r.Summary) {
		return nil
	}
	return section(SectionSummary, El("p", "summary", Text(strings.TrimSpace(r.Summary))))
}

func experienceSection(r model.Resume) *Node {
	if len(r.Experience) == 0 {
		return nil
	}
	s := section(SectionExperience)
	for i, e := range r.Experience {
		s.Append(entry(i,
			nonEmpty(El("div", "entry-head",
				textEl("h3", "entry-title", e.Title),
				dates(e.StartDate, e.EndDate, e.Current),
			)),
			textEl("div", "entry-sub", joinNonBlank(" · ", e.Company, e.Location)),
			bullets(e.Description),
		))
	}
	return s
}

func educationSection(r model.Resume) *Node {
	if len(r.Education) == 0 {
		return nil
	}
	s := section(SectionEducation)
	for i, e := range r.Education {
		s.Append(entry(i,
			nonEmpty(El("div", "entry-head",
				textEl("h3", "entry-title", e.Degree),
				dates(e.StartDate, e.EndDate, e.Current),
			)),
			textEl("div", "entry-sub", joinNonBlank(" · ", e.Institution, e.Location)),
			bullets(e.Description),
		))
	}
	return s
}

func certificationsSection(r model.Resume) *Node {
	if len(r.Certifications) == 0 {
		return nil
	}
	s := section(SectionCertifications)
	for i, c := range r.Certifications {
		var link *Node
		if !model.Blank(c.CredentialURL) {
			link = El("a", "credential-link", Text(LinkLabel(c.CredentialURL))).
				Set("href", strings.TrimSpace(c.CredentialURL))
		}
		var id *Node
		if !model.Blank(c.CredentialID) {
			id = El("span", "credential-id", Text("ID "+strings.TrimSpace(c.CredentialID)))
		}
		s.Append(entry(i,
			nonEmpty(El("div", "entry-head",
				textEl("h3", "entry-title", c.Name),
				textEl("span", "dates", c.Date),
			)),
			textEl("div", "entry-sub", c.Issuer),
			nonEmpty(El("div", "credential", id, link)),
			bullets(c.Description),
		))
	}
	return s
}

func skillsSection(r model.Resume) *Node {
	if len(r.Skills) == 0 {
		return nil
	}
	ul := El("ul", "tags")
	for i, sk := range r.Skills {
		ul.Append(El("li", "tag", Text(LevelLabel(sk.Name, sk.Level))).Set("data-index", strconv.Itoa(i)))
	}
	return section(SectionSkills, ul)
}

func languagesSection(r model.Resume) *Node {
	if len(r.Languages) == 0 {
		return nil
	}
	ul := El("ul", "tags")
	for i, l := range r.Languages {
		ul.Append(El("li", "tag", Text(LevelLabel(l.Name, l.Level))).Set("data-index", strconv.Itoa(i)))
	}
	return section(SectionLanguages, ul)
}

func contactLine(r model.Resume) *Node {
	ul := El("ul", "contact")
	for _, v := range []string{r.Email, r.Phone, r.Location} {
		if !model.Blank(v) {
			ul.Append(El("li", "", Text(strings.TrimSpace(v))))
		}
	}
	if !model.Blank(r.Website) {
		ul.Append(El("li", "", El("a", "", Text(LinkLabel(r.Website))).Set("href", strings.TrimSpace(r.Website))))
	}
	return nonEmpty(ul)
}

func identity(r model.Resume) *Node {
	return El("div", "identity",
		textEl("h1", "name", r.Name),
		textEl("div", "headline", r.Title),
		contactLine(r),
	)
}

func photo(r model.Resume, class string) *Node {
	if model.Blank(r.Photo) {
		return nil
	}
	return El("img", class).Set("src", strings.TrimSpace(r.Photo)).Set("alt", "")
}

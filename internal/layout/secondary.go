package layout

import "resume-builder/internal/model"

// renderSecondary keeps the single-column order but sets the photo beside
// the name block.
func renderSecondary(r model.Resume) *Node {
	return El("article", "resume resume-classic",
		El("header", "header header-inline", photo(r, "photo"), identity(r)),
		summarySection(r),
		experienceSection(r),
		educationSection(r),
		certificationsSection(r),
		skillsSection(r),
		languagesSection(r),
	)
}

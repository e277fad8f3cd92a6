package layout

import "resume-builder/internal/model"

// renderPrimary lays every section out in a single column.
func renderPrimary(r model.Resume) *Node {
	return El("article", "resume resume-modern",
		El("header", "header", identity(r)),
		summarySection(r),
		experienceSection(r),
		educationSection(r),
		certificationsSection(r),
		skillsSection(r),
		languagesSection(r),
	)
}

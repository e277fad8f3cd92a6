package layout

import "resume-builder/internal/model"

// renderTwoColumn puts a full-width banner over an aside for skills and
// languages and a main column for everything else.
func renderTwoColumn(r model.Resume) *Node {
	return El("article", "resume resume-hybrid",
		El("header", "banner", photo(r, "photo photo-round"), identity(r)),
		El("div", "columns",
			El("aside", "column-side", skillsSection(r), languagesSection(r)),
			El("main", "column-main",
				summarySection(r),
				experienceSection(r),
				educationSection(r),
				certificationsSection(r),
			),
		),
	)
}
